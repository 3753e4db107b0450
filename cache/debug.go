// acloudcenter/livekit-alien-curator-demo/cache/debug.go
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
)

// Debug gives the inspection tool raw access to the curator keyspace.
type Debug struct {
	client *redis.Client
	ctx    context.Context
}

// NewDebug connects a read-only inspection client.
func NewDebug(cfg *config.RedisConfig) (*Debug, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("no cache address configured")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("could not reach cache at %s: %w", cfg.Addr, err)
	}
	return &Debug{client: client, ctx: ctx}, nil
}

// GetAllKeys returns every key under the curator prefix.
func (d *Debug) GetAllKeys() ([]string, error) {
	var keys []string
	iter := d.client.Scan(d.ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(d.ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

// GetType returns the redis type of a key.
func (d *Debug) GetType(key string) (string, error) {
	return d.client.Type(d.ctx, key).Result()
}

// Get returns a string key's value.
func (d *Debug) Get(key string) (string, error) {
	return d.client.Get(d.ctx, key).Result()
}

// LRange returns a slice of a list key.
func (d *Debug) LRange(key string, start, stop int64) ([]string, error) {
	return d.client.LRange(d.ctx, key, start, stop).Result()
}

// Close releases the client.
func (d *Debug) Close() error {
	return d.client.Close()
}
