package cache

import (
	"encoding/json"
	"io/ioutil"
	"os"

	"github.com/treepedia/streetpoints/log"
)

type cacheOptions struct {
	CacheSizeM           int
	MaxOpenFiles         int
	BlockRestartInterval int
	WriteBufferSizeM     int
	BlockSizeK           int
}

type osmCacheOptions struct {
	Coords cacheOptions
}

const defaultConfig = `
{
    "Coords": {
        "CacheSizeM": 16,
        "WriteBufferSizeM": 64,
        "BlockSizeK": 0,
        "MaxOpenFiles": 64,
        "BlockRestartInterval": 256
    }
}
`

var globalCacheOptions osmCacheOptions

func init() {
	err := json.Unmarshal([]byte(defaultConfig), &globalCacheOptions)
	if err != nil {
		panic(err)
	}

	cacheConfFile := os.Getenv("STREETPOINTS_CACHE_CONFIG")
	if cacheConfFile != "" {
		data, err := ioutil.ReadFile(cacheConfFile)
		if err != nil {
			log.Println("[warn] Unable to read cache config:", err)
		}
		err = json.Unmarshal(data, &globalCacheOptions)
		if err != nil {
			log.Println("[warn] Unable to parse cache config:", err)
		}
	}
}
