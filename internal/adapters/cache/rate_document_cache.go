package cache

import (
	"fmt"
	"time"

	"fxconvert/internal/adapters"
	"fxconvert/internal/domain"

	"github.com/dgraph-io/ristretto"
	"github.com/sirupsen/logrus"
)

type entry struct {
	modTime time.Time
	doc     domain.RateDocument
}

// CachedStore keeps decoded documents in memory and serves them while the file mtime is unchanged.
type CachedStore struct {
	store adapters.RateStore
	key   string
	cache *ristretto.Cache
}

func NewCachedStore(store adapters.RateStore, key string, maxItems int64) (*CachedStore, error) {
	// entries are counted, not sized
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10 * maxItems,
		MaxCost:            maxItems,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create rate document cache failed: %w", err)
	}
	return &CachedStore{store: store, key: key, cache: c}, nil
}

func (c *CachedStore) Read() (domain.RateDocument, error) {
	modTime, err := c.store.ModTime()
	if err != nil {
		c.cache.Del(c.key)
		return nil, err
	}

	if v, ok := c.cache.Get(c.key); ok {
		if e, ok := v.(entry); ok && e.modTime.Equal(modTime) {
			return e.doc, nil
		}
	}

	doc, err := c.store.Read()
	if err != nil {
		return nil, err
	}
	c.cache.Set(c.key, entry{modTime: modTime, doc: doc}, 1)
	logrus.WithField("key", c.key).Debug("Rates document loaded into memory cache")
	return doc, nil
}

func (c *CachedStore) Write(doc domain.RateDocument) error {
	c.cache.Del(c.key)
	return c.store.Write(doc)
}

func (c *CachedStore) Exists() bool { return c.store.Exists() }

func (c *CachedStore) ModTime() (time.Time, error) { return c.store.ModTime() }

func (c *CachedStore) Close() { c.cache.Close() }
