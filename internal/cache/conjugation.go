package cache

import (
	"context"
	"sync"

	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/store"
)

// ConjugationCache holds every tense a verb conjugates to under one key:
// (infinitive, auxiliary). Conjugated forms do not depend on whether the verb
// is used reflexively in a given sentence, only on infinitive+auxiliary.
type ConjugationCache struct {
	counter
	store store.ConjugationStore

	mu      sync.RWMutex
	entries map[string][]model.Conjugation
}

func NewConjugationCache(s store.ConjugationStore) *ConjugationCache {
	return &ConjugationCache{
		store:   s,
		entries: make(map[string][]model.Conjugation),
	}
}

func conjugationKey(infinitive string, aux model.Auxiliary) string {
	return infinitive + "|" + string(aux)
}

// Lookup returns the conjugation for tense, fetching and caching the verb's
// full tense set on miss.
func (c *ConjugationCache) Lookup(ctx context.Context, infinitive string, aux model.Auxiliary, tense model.Tense) (*model.Conjugation, error) {
	key := conjugationKey(infinitive, aux)

	c.mu.RLock()
	if set, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		c.hit()
		return findTense(set, tense)
	}
	c.mu.RUnlock()

	c.miss()
	set, err := c.store.ListByVerb(ctx, infinitive, aux, false)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = set
	c.mu.Unlock()

	return findTense(set, tense)
}

func findTense(set []model.Conjugation, tense model.Tense) (*model.Conjugation, error) {
	for i := range set {
		if set[i].Tense == tense {
			return &set[i], nil
		}
	}
	return nil, store.ErrNotFound
}

// Refresh re-reads the full conjugation set for (infinitive, auxiliary).
func (c *ConjugationCache) Refresh(ctx context.Context, infinitive string, aux model.Auxiliary) error {
	set, err := c.store.ListByVerb(ctx, infinitive, aux, false)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[conjugationKey(infinitive, aux)] = set
	c.mu.Unlock()
	return nil
}

func (c *ConjugationCache) Invalidate(infinitive string, aux model.Auxiliary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, conjugationKey(infinitive, aux))
}

func (c *ConjugationCache) ReloadAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]model.Conjugation)
}

func (c *ConjugationCache) Stats() Stats {
	c.mu.RLock()
	entries := len(c.entries)
	c.mu.RUnlock()
	hits, misses := c.snapshot()
	return Stats{Entries: entries, Hits: hits, Misses: misses}
}
