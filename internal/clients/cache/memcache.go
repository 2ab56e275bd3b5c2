package cache

import (
	"context"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
)

const keyPrefix = "expense-snapshot:"

type itemStore interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
}

// MemcacheClient stores the snapshot as a single memcached item.
// Memcached may evict it or lose it on restart, so this backend suits shared
// development setups rather than long-lived data.
type MemcacheClient struct {
	client itemStore
	key    string
}

type config interface {
	Hosts() []string
}

func NewMemcache(config config, key string) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	if err := mc.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping memcached")
	}
	return &MemcacheClient{client: mc, key: keyPrefix + key}, nil
}

func (mc *MemcacheClient) Load(_ context.Context) ([]byte, bool, error) {
	logger.Debug("load snapshot from memcached", zap.String("key", mc.key))
	item, err := mc.client.Get(mc.key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "get snapshot")
	}
	return item.Value, true, nil
}

func (mc *MemcacheClient) Save(_ context.Context, snapshot []byte) error {
	logger.Debug("save snapshot to memcached", zap.String("key", mc.key), zap.Int("bytes", len(snapshot)))
	return errors.Wrap(mc.client.Set(&memcache.Item{
		Key:   mc.key,
		Value: snapshot,
	}), "set snapshot")
}

func (mc *MemcacheClient) Close() error {
	return nil
}
