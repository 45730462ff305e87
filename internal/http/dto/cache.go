package dto

import "github.com/beverage/language-quiz-service/internal/cache"

// CacheStatsResponse reports effectiveness per named cache.
type CacheStatsResponse struct {
	Caches map[string]CacheStats `json:"caches"`
}

type CacheStats struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

func ToCacheStatsResponse(stats map[string]cache.Stats) *CacheStatsResponse {
	out := make(map[string]CacheStats, len(stats))
	for name, s := range stats {
		out[name] = CacheStats{
			Entries: s.Entries,
			Hits:    s.Hits,
			Misses:  s.Misses,
			HitRate: s.HitRate(),
		}
	}
	return &CacheStatsResponse{Caches: out}
}
