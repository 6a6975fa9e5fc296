package config

import (
	"context"

	"github.com/matzehuels/archlayout/pkg/cache"
)

// OpenCache builds the configured cache backend and its keyer. A namespace
// scopes the keys; compress wraps the backend with snappy.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, cache.Keyer, error) {
	cc := c.Cache

	var keyer cache.Keyer = cache.NewDefaultKeyer()
	if cc.Namespace != "" {
		keyer = cache.NewScopedKeyer(keyer, cc.Namespace+":")
	}

	var (
		backend cache.Cache
		err     error
	)
	switch cc.Backend {
	case BackendNone:
		return cache.NewNullCache(), keyer, nil
	case BackendRedis:
		backend, err = cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cc.RedisAddr,
			Password: cc.RedisPassword,
			DB:       cc.RedisDB,
			Prefix:   appName + ":",
		})
	case BackendMongo:
		backend, err = cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        cc.MongoURI,
			Database:   cc.MongoDatabase,
			Collection: cc.MongoCollection,
		})
	default:
		dir := cc.Dir
		if dir == "" {
			if dir, err = CacheDir(); err != nil {
				return cache.NewNullCache(), keyer, nil
			}
		}
		backend, err = cache.NewFileCache(dir)
	}
	if err != nil {
		return nil, nil, err
	}

	if cc.Compress {
		backend = cache.NewCompressed(backend)
	}
	return backend, keyer, nil
}
