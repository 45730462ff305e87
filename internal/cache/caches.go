package cache

import "context"

// Caches bundles the three write-through caches behind one handle so the
// storage layer can fan a single commit out to whichever caches it affects.
type Caches struct {
	Verbs        *VerbCache
	Conjugations *ConjugationCache
	Keys         *KeyCache
}

// AllStats reports stats per cache, keyed by name, for the /cache/stats endpoint.
func (c *Caches) AllStats() map[string]Stats {
	return map[string]Stats{
		"verbs":        c.Verbs.Stats(),
		"conjugations": c.Conjugations.Stats(),
		"keys":         c.Keys.Stats(),
	}
}

// ReloadAll drops and re-populates every cache. Verb and conjugation caches
// populate lazily on next lookup; the key cache pre-warms eagerly since the
// auth middleware can't tolerate a cold-cache storage round trip per request.
func (c *Caches) ReloadAll(ctx context.Context) error {
	c.Verbs.ReloadAll()
	c.Conjugations.ReloadAll()
	return c.Keys.ReloadAll(ctx)
}
