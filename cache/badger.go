package cache

import (
	"github.com/dgraph-io/badger"
	osm "github.com/omniscale/go-osm"
	"github.com/treepedia/streetpoints/cache/binary"
	"github.com/treepedia/streetpoints/log"
)

type badgerCoords struct {
	db *badger.DB
}

func newBadgerCoords(path string) (*badgerCoords, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = badgerLogger{}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerCoords{db: db}, nil
}

// PutCoords writes nodes in as few transactions as possible.
func (p *badgerCoords) PutCoords(nodes []osm.Node) error {
	txn := p.db.NewTransaction(true)
	defer func() { txn.Discard() }()

	for _, nd := range nodes {
		key := idToKeyBuf(nd.ID)
		value := binary.MarshalCoord(nd.Long, nd.Lat)
		err := txn.Set(key, value)
		if err == badger.ErrTxnTooBig {
			if err := txn.Commit(); err != nil {
				return err
			}
			txn = p.db.NewTransaction(true)
			err = txn.Set(key, value)
		}
		if err != nil {
			return err
		}
	}
	return txn.Commit()
}

func (p *badgerCoords) GetCoord(id int64) (*osm.Node, error) {
	var data []byte
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idToKeyBuf(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, NotFound
	}
	if err != nil {
		return nil, err
	}
	return unmarshalNode(id, data)
}

func (p *badgerCoords) Close() error {
	return p.db.Close()
}

type badgerLogger struct{}

func (badgerLogger) Errorf(format string, v ...interface{}) {
	log.Printf("[error] badger: "+format, v...)
}

func (badgerLogger) Warningf(format string, v ...interface{}) {
	log.Printf("[warn] badger: "+format, v...)
}

func (badgerLogger) Infof(format string, v ...interface{}) {
	log.Printf("[debug] badger: "+format, v...)
}

func (badgerLogger) Debugf(format string, v ...interface{}) {
	log.Printf("[debug] badger: "+format, v...)
}
