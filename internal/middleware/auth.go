package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/beverage/language-quiz-service/internal/apikeyauth"
	"github.com/beverage/language-quiz-service/internal/cache"
	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/ratelimit"
	"github.com/beverage/language-quiz-service/internal/store"
)

type contextKey string

const apiKeyContextKey contextKey = "api_key"

const authHeader = "X-API-Key"

// UsageRecorder persists that a key was used; invoked off the request path.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, id string, at time.Time) error
}

// RequireAPIKey authenticates every request against the prefix lookup in
// keys, enforces the key's IP allow-list and rate limit, and stamps usage
// asynchronously so the billing write never adds to request latency.
func RequireAPIKey(keys *cache.KeyCache, limiter *ratelimit.Limiter, usage UsageRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(authHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + authHeader})
			return
		}

		prefix, secret, ok := apikeyauth.Split(raw)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed api key"})
			return
		}

		key, err := keys.LookupByPrefix(c.Request.Context(), prefix)
		if err != nil {
			if err == store.ErrNotFound {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to look up api key"})
			return
		}

		if !key.Active || !apikeyauth.Verify(secret, key.Salt, key.SecretHash) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}

		if !ipAllowed(key.AllowedIPs, c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "client ip not permitted for this key"})
			return
		}

		if !limiter.Allow(key.ID, key.RateLimitRPM) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), apiKeyContextKey, key)
		c.Request = c.Request.WithContext(ctx)

		// Usage accounting must never slow down or fail the request it bills for.
		go func(id string) {
			_ = usage.RecordUsage(context.Background(), id, time.Now().UTC())
		}(key.ID)

		c.Next()
	}
}

// RequirePermission aborts with 403 unless the authenticated key carries p.
// Must run after RequireAPIKey.
func RequirePermission(p model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := GetAPIKey(c.Request.Context())
		if key == nil || !key.Has(p) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing required permission: " + string(p)})
			return
		}
		c.Next()
	}
}

// GetAPIKey retrieves the authenticated key attached by RequireAPIKey.
func GetAPIKey(ctx context.Context) *model.APIKey {
	key, _ := ctx.Value(apiKeyContextKey).(*model.APIKey)
	return key
}

func ipAllowed(allowed []string, clientIP string) bool {
	if len(allowed) == 0 {
		return true
	}
	ip := net.ParseIP(clientIP)
	if ip == nil {
		return false
	}
	for _, entry := range allowed {
		entry = strings.TrimSpace(entry)
		if !strings.Contains(entry, "/") {
			if entry == clientIP {
				return true
			}
			continue
		}
		_, cidr, err := net.ParseCIDR(entry)
		if err != nil {
			continue
		}
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
