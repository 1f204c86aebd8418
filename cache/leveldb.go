package cache

import (
	"github.com/jmhodges/levigo"
	osm "github.com/omniscale/go-osm"
	"github.com/treepedia/streetpoints/cache/binary"
)

type cache struct {
	db      *levigo.DB
	options *cacheOptions
	cache   *levigo.Cache
	wo      *levigo.WriteOptions
	ro      *levigo.ReadOptions
}

func (c *cache) open(path string) error {
	opts := levigo.NewOptions()
	opts.SetCreateIfMissing(true)
	if c.options.CacheSizeM > 0 {
		c.cache = levigo.NewLRUCache(c.options.CacheSizeM * 1024 * 1024)
		opts.SetCache(c.cache)
	}
	if c.options.MaxOpenFiles > 0 {
		opts.SetMaxOpenFiles(c.options.MaxOpenFiles)
	}
	if c.options.BlockRestartInterval > 0 {
		opts.SetBlockRestartInterval(c.options.BlockRestartInterval)
	}
	if c.options.WriteBufferSizeM > 0 {
		opts.SetWriteBufferSize(c.options.WriteBufferSizeM * 1024 * 1024)
	}
	if c.options.BlockSizeK > 0 {
		opts.SetBlockSize(c.options.BlockSizeK * 1024)
	}

	db, err := levigo.Open(path, opts)
	if err != nil {
		return err
	}
	c.db = db
	c.wo = levigo.NewWriteOptions()
	c.ro = levigo.NewReadOptions()
	return nil
}

func (c *cache) Close() error {
	if c.ro != nil {
		c.ro.Close()
		c.ro = nil
	}
	if c.wo != nil {
		c.wo.Close()
		c.wo = nil
	}
	if c.db != nil {
		c.db.Close()
		c.db = nil
	}
	if c.cache != nil {
		c.cache.Close()
		c.cache = nil
	}
	return nil
}

type levelDBCoords struct {
	cache
}

func newLevelDBCoords(path string) (*levelDBCoords, error) {
	c := levelDBCoords{}
	c.options = &globalCacheOptions.Coords
	if err := c.open(path); err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *levelDBCoords) PutCoords(nodes []osm.Node) error {
	batch := levigo.NewWriteBatch()
	defer batch.Close()

	for _, nd := range nodes {
		batch.Put(idToKeyBuf(nd.ID), binary.MarshalCoord(nd.Long, nd.Lat))
	}
	return p.db.Write(p.wo, batch)
}

func (p *levelDBCoords) GetCoord(id int64) (*osm.Node, error) {
	data, err := p.db.Get(p.ro, idToKeyBuf(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, NotFound
	}
	return unmarshalNode(id, data)
}

func unmarshalNode(id int64, data []byte) (*osm.Node, error) {
	long, lat, err := binary.UnmarshalCoord(data)
	if err != nil {
		return nil, err
	}
	nd := &osm.Node{Long: long, Lat: lat}
	nd.ID = id
	return nd, nil
}
