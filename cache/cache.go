// Package cache stores node coordinates of OSM files, so that the
// geometries of ways can be built from their node references.
package cache

import (
	bin "encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"
)

var (
	NotFound = errors.New("not found")
)

// Coords stores the coordinates of nodes by their id.
type Coords interface {
	PutCoords(nodes []osm.Node) error
	// GetCoord returns NotFound for unknown ids.
	GetCoord(id int64) (*osm.Node, error)
	Close() error
}

type Backend string

const (
	LevelDB Backend = "leveldb"
	Badger  Backend = "badger"
)

func ParseBackend(name string) (Backend, error) {
	switch Backend(name) {
	case "", LevelDB:
		return LevelDB, nil
	case Badger:
		return Badger, nil
	}
	return "", errors.Errorf("unknown cache backend %q (leveldb or badger)", name)
}

const coordsDir = "coords"

// Open opens the coords cache in dir. The cache is created if it does not
// exist.
func Open(dir string, backend Backend) (Coords, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating cache dir")
	}
	path := filepath.Join(dir, coordsDir)
	var c Coords
	var err error
	switch backend {
	case "", LevelDB:
		c, err = newLevelDBCoords(path)
	case Badger:
		c, err = newBadgerCoords(path)
	default:
		return nil, errors.Errorf("unknown cache backend %q", backend)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s cache %q", backend, path)
	}
	return c, nil
}

func Exists(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, coordsDir)); !os.IsNotExist(err) {
		return true
	}
	return false
}

func Remove(dir string) error {
	return os.RemoveAll(filepath.Join(dir, coordsDir))
}

// WayNodes returns the cached nodes for all refs in order.
func WayNodes(c Coords, refs []int64) ([]osm.Node, error) {
	nodes := make([]osm.Node, len(refs))
	for i, ref := range refs {
		nd, err := c.GetCoord(ref)
		if err != nil {
			return nil, &MissingNodeError{ID: ref, Err: err}
		}
		nodes[i] = *nd
	}
	return nodes, nil
}

type MissingNodeError struct {
	ID  int64
	Err error
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("node %d: %s", e.ID, e.Err)
}

func (e *MissingNodeError) Cause() error { return e.Err }

func idToKeyBuf(id int64) []byte {
	b := make([]byte, 8)
	bin.BigEndian.PutUint64(b, uint64(id))
	return b[:8]
}
