package cache

import (
	"context"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rebk-studio/ms-go-studio/app/factory"
)

const keyPrefix = "studio:gallery:"

func MenuKey() string {
	return keyPrefix + "menu"
}

func AlbumKey(slug string) string {
	return fmt.Sprintf("%salbum:%s", keyPrefix, slug)
}

func ImagesKey(filter string) string {
	return fmt.Sprintf("%simages:%s", keyPrefix, filter)
}

// GalleryCache caches rendered public gallery responses in redis. All
// operations degrade to cache misses on redis errors; the gallery must keep
// serving with redis down.
type GalleryCache struct {
	rdb    *rd.Client
	ttl    time.Duration
	logger logrus.FieldLogger
}

func NewGalleryCache(rdb *rd.Client, ttl time.Duration) *GalleryCache {
	return &GalleryCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: factory.NewModuleLogger("gallery-cache"),
	}
}

func (c *GalleryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err == rd.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache get failed")
		return nil, false
	}
	return payload, true
}

func (c *GalleryCache) Set(ctx context.Context, key string, payload []byte) {
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache set failed")
	}
}

// Flush drops every cached gallery payload. Called after any staff write so
// public views never serve stale albums.
func (c *GalleryCache) Flush(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.WithError(err).Warn("cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.WithError(err).Warn("cache flush failed")
	}
}
