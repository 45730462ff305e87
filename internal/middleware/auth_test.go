package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/beverage/language-quiz-service/internal/apikeyauth"
	"github.com/beverage/language-quiz-service/internal/cache"
	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/ratelimit"
	"github.com/beverage/language-quiz-service/internal/store"
)

type fakeAPIKeyStore struct {
	keys        map[string]*model.APIKey
	usageCalled []string
}

func (f *fakeAPIKeyStore) GetByID(ctx context.Context, id string) (*model.APIKey, error) {
	for _, k := range f.keys {
		if k.ID == id {
			return k, nil
		}
	}
	return nil, store.ErrNotFound
}
func (f *fakeAPIKeyStore) GetByPrefix(ctx context.Context, prefix string) (*model.APIKey, error) {
	if k, ok := f.keys[prefix]; ok {
		return k, nil
	}
	return nil, store.ErrNotFound
}
func (f *fakeAPIKeyStore) Create(ctx context.Context, k *model.APIKey) error { return nil }
func (f *fakeAPIKeyStore) Update(ctx context.Context, k *model.APIKey) error { return nil }
func (f *fakeAPIKeyStore) Delete(ctx context.Context, id string) error      { return nil }
func (f *fakeAPIKeyStore) RecordUsage(ctx context.Context, id string, at time.Time) error {
	f.usageCalled = append(f.usageCalled, id)
	return nil
}
func (f *fakeAPIKeyStore) ListActive(ctx context.Context) ([]model.APIKey, error) {
	out := make([]model.APIKey, 0, len(f.keys))
	for _, k := range f.keys {
		out = append(out, *k)
	}
	return out, nil
}

func newTestKey(t *testing.T, perms []model.Permission, allowedIPs []string, rpm int) (*fakeAPIKeyStore, string) {
	t.Helper()
	raw, prefix, salt, hash, err := apikeyauth.Generate()
	if err != nil {
		t.Fatalf("apikeyauth.Generate() error = %v", err)
	}
	key := &model.APIKey{
		ID:           "key-1",
		Prefix:       prefix,
		Salt:         salt,
		SecretHash:   hash,
		Active:       true,
		Permissions:  perms,
		AllowedIPs:   allowedIPs,
		RateLimitRPM: rpm,
	}
	fs := &fakeAPIKeyStore{keys: map[string]*model.APIKey{prefix: key}}
	return fs, raw
}

func setupRouter(fs *fakeAPIKeyStore, limiter *ratelimit.Limiter, requiredPerm *model.Permission) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	keyCache := cache.NewKeyCache(fs)
	handlers := []gin.HandlerFunc{RequireAPIKey(keyCache, limiter, fs)}
	if requiredPerm != nil {
		handlers = append(handlers, RequirePermission(*requiredPerm))
	}
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ping", handlers...)
	return r
}

func TestRequireAPIKey_Success(t *testing.T) {
	fs, raw := newTestKey(t, []model.Permission{model.PermissionRead}, nil, 60)
	r := setupRouter(fs, ratelimit.New(60), nil)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(authHeader, raw)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	time.Sleep(10 * time.Millisecond)
	if len(fs.usageCalled) != 1 {
		t.Errorf("expected usage to be recorded once, got %v", fs.usageCalled)
	}
}

func TestRequireAPIKey_MissingHeader(t *testing.T) {
	fs, _ := newTestKey(t, nil, nil, 60)
	r := setupRouter(fs, ratelimit.New(60), nil)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAPIKey_WrongSecret(t *testing.T) {
	fs, raw := newTestKey(t, nil, nil, 60)
	prefix, _, _ := apikeyauth.Split(raw)
	r := setupRouter(fs, ratelimit.New(60), nil)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(authHeader, prefix+".wrongsecret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAPIKey_IPNotAllowed(t *testing.T) {
	fs, raw := newTestKey(t, nil, []string{"10.0.0.1"}, 60)
	r := setupRouter(fs, ratelimit.New(60), nil)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(authHeader, raw)
	req.RemoteAddr = "192.168.1.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRequirePermission_Missing(t *testing.T) {
	fs, raw := newTestKey(t, []model.Permission{model.PermissionRead}, nil, 60)
	writePerm := model.PermissionWrite
	r := setupRouter(fs, ratelimit.New(60), &writePerm)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(authHeader, raw)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRequireAPIKey_RateLimited(t *testing.T) {
	fs, raw := newTestKey(t, nil, nil, 1)
	r := setupRouter(fs, ratelimit.New(60), nil)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(authHeader, raw)

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, req)
	if w1.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", w1.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", w2.Code)
	}
}
