package cache

import (
	"math"
	"testing"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"
)

func node(id int64, long, lat float64) osm.Node {
	nd := osm.Node{Long: long, Lat: lat}
	nd.ID = id
	return nd
}

func TestParseBackend(t *testing.T) {
	for name, expected := range map[string]Backend{"": LevelDB, "leveldb": LevelDB, "badger": Badger} {
		if b, err := ParseBackend(name); err != nil || b != expected {
			t.Error(name, b, err)
		}
	}
	if _, err := ParseBackend("rocksdb"); err == nil {
		t.Error("expected error")
	}
}

func TestBadgerCoords(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Fatal("cache exists before open")
	}

	c, err := Open(dir, Badger)
	if err != nil {
		t.Fatal(err)
	}
	nodes := []osm.Node{
		node(1, 8.1, 53.1),
		node(2, 8.2, 53.2),
		node(1<<40, -73.985656, 40.748433),
	}
	if err := c.PutCoords(nodes); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if !Exists(dir) {
		t.Fatal("cache does not exist after close")
	}

	c, err = Open(dir, Badger)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	for _, expected := range nodes {
		nd, err := c.GetCoord(expected.ID)
		if err != nil {
			t.Fatal(expected.ID, err)
		}
		if nd.ID != expected.ID || math.Abs(nd.Long-expected.Long) > 1e-7 || math.Abs(nd.Lat-expected.Lat) > 1e-7 {
			t.Errorf("%v != %v", nd, expected)
		}
	}

	if _, err := c.GetCoord(3); err != NotFound {
		t.Fatal(err)
	}

	way, err := WayNodes(c, []int64{2, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(way) != 3 || way[0].ID != 2 || way[1].ID != 1 {
		t.Fatal(way)
	}

	_, err = WayNodes(c, []int64{1, 4, 2})
	if err == nil || errors.Cause(err) != NotFound {
		t.Fatal(err)
	}
	if e, ok := err.(*MissingNodeError); !ok || e.ID != 4 {
		t.Fatal(err)
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, Badger)
	if err != nil {
		t.Fatal(err)
	}
	c.Close()
	if err := Remove(dir); err != nil {
		t.Fatal(err)
	}
	if Exists(dir) {
		t.Fatal("cache not removed")
	}
}

func TestKeyOrder(t *testing.T) {
	// big endian keys keep the ids sorted for sequential writes
	a, b := idToKeyBuf(255), idToKeyBuf(256)
	if string(a) >= string(b) {
		t.Fatal(a, b)
	}
}
