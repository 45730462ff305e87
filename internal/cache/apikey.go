package cache

import (
	"context"
	"sync"

	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/store"
)

// KeyCache holds API keys indexed both by id and by their 12-char prefix,
// the lookup the auth middleware performs on every request.
type KeyCache struct {
	counter
	store store.APIKeyStore

	mu          sync.RWMutex
	byID        map[string]*model.APIKey
	byPrefix    map[string]*model.APIKey
	idToPrefix  map[string]string
}

func NewKeyCache(s store.APIKeyStore) *KeyCache {
	return &KeyCache{
		store:      s,
		byID:       make(map[string]*model.APIKey),
		byPrefix:   make(map[string]*model.APIKey),
		idToPrefix: make(map[string]string),
	}
}

func (c *KeyCache) Lookup(ctx context.Context, id string) (*model.APIKey, error) {
	c.mu.RLock()
	if k, ok := c.byID[id]; ok {
		c.mu.RUnlock()
		c.hit()
		return k, nil
	}
	c.mu.RUnlock()

	c.miss()
	k, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(k)
	return k, nil
}

func (c *KeyCache) LookupByPrefix(ctx context.Context, prefix string) (*model.APIKey, error) {
	c.mu.RLock()
	if k, ok := c.byPrefix[prefix]; ok {
		c.mu.RUnlock()
		c.hit()
		return k, nil
	}
	c.mu.RUnlock()

	c.miss()
	k, err := c.store.GetByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	c.put(k)
	return k, nil
}

func (c *KeyCache) put(k *model.APIKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[k.ID] = k
	c.byPrefix[k.Prefix] = k
	c.idToPrefix[k.ID] = k.Prefix
}

func (c *KeyCache) Refresh(ctx context.Context, id string) error {
	k, err := c.store.GetByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			c.Invalidate(id)
			return nil
		}
		return err
	}
	c.put(k)
	return nil
}

func (c *KeyCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prefix, ok := c.idToPrefix[id]; ok {
		delete(c.byPrefix, prefix)
		delete(c.idToPrefix, id)
	}
	delete(c.byID, id)
}

func (c *KeyCache) ReloadAll(ctx context.Context) error {
	keys, err := c.store.ListActive(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.byID = make(map[string]*model.APIKey, len(keys))
	c.byPrefix = make(map[string]*model.APIKey, len(keys))
	c.idToPrefix = make(map[string]string, len(keys))
	c.mu.Unlock()

	for i := range keys {
		c.put(&keys[i])
	}
	return nil
}

func (c *KeyCache) Stats() Stats {
	c.mu.RLock()
	entries := len(c.byID)
	c.mu.RUnlock()
	hits, misses := c.snapshot()
	return Stats{Entries: entries, Hits: hits, Misses: misses}
}
