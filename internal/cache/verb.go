package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/store"
)

// VerbCache keeps a verb indexed both by id and by infinitive key, the two
// indices kept coherent on every write.
type VerbCache struct {
	counter
	store store.VerbStore

	mu           sync.RWMutex
	byID         map[uuid.UUID]*model.Verb
	byInfinitive map[string]*model.Verb
	idToInfKey   map[uuid.UUID]string
}

func NewVerbCache(s store.VerbStore) *VerbCache {
	return &VerbCache{
		store:        s,
		byID:         make(map[uuid.UUID]*model.Verb),
		byInfinitive: make(map[string]*model.Verb),
		idToInfKey:   make(map[uuid.UUID]string),
	}
}

func infKey(infinitive string, aux model.Auxiliary, reflexive bool) string {
	key := infinitive + "|" + string(aux)
	if reflexive {
		key += "|r"
	}
	return key
}

// Lookup returns the cached verb, fetching and populating on miss.
func (c *VerbCache) Lookup(ctx context.Context, id uuid.UUID) (*model.Verb, error) {
	c.mu.RLock()
	if v, ok := c.byID[id]; ok {
		c.mu.RUnlock()
		c.hit()
		return v, nil
	}
	c.mu.RUnlock()

	c.miss()
	v, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(v)
	return v, nil
}

// LookupByInfinitive returns the cached verb for the (infinitive, auxiliary,
// reflexive) key, fetching and populating on miss.
func (c *VerbCache) LookupByInfinitive(ctx context.Context, infinitive string, aux model.Auxiliary, reflexive bool) (*model.Verb, error) {
	key := infKey(infinitive, aux, reflexive)

	c.mu.RLock()
	if v, ok := c.byInfinitive[key]; ok {
		c.mu.RUnlock()
		c.hit()
		return v, nil
	}
	c.mu.RUnlock()

	c.miss()
	v, err := c.store.GetByInfinitive(ctx, infinitive, aux, reflexive)
	if err != nil {
		return nil, err
	}
	c.put(v)
	return v, nil
}

func (c *VerbCache) put(v *model.Verb) {
	key := infKey(v.Infinitive, v.Auxiliary, v.Reflexive)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[v.ID] = v
	c.byInfinitive[key] = v
	c.idToInfKey[v.ID] = key
}

// Refresh re-reads id from storage and replaces both index entries.
func (c *VerbCache) Refresh(ctx context.Context, id uuid.UUID) error {
	v, err := c.store.GetByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			c.Invalidate(id)
			return nil
		}
		return err
	}
	c.put(v)
	return nil
}

// Invalidate removes id from both indices.
func (c *VerbCache) Invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key, ok := c.idToInfKey[id]; ok {
		delete(c.byInfinitive, key)
		delete(c.idToInfKey, id)
	}
	delete(c.byID, id)
}

// ReloadAll drops every cached verb so the next lookups re-populate from
// storage; it does not pre-load any entries itself.
func (c *VerbCache) ReloadAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = make(map[uuid.UUID]*model.Verb)
	c.byInfinitive = make(map[string]*model.Verb)
	c.idToInfKey = make(map[uuid.UUID]string)
}

func (c *VerbCache) Stats() Stats {
	c.mu.RLock()
	entries := len(c.byID)
	c.mu.RUnlock()
	hits, misses := c.snapshot()
	return Stats{Entries: entries, Hits: hits, Misses: misses}
}
