package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/queue"
	"github.com/beverage/language-quiz-service/internal/selector"
	"github.com/beverage/language-quiz-service/internal/store"
	"github.com/beverage/language-quiz-service/internal/tracker"
)

type fakeProblemStore struct {
	byID    map[uuid.UUID]*model.Problem
	picked  *model.Problem
	pickErr error
}

func (f *fakeProblemStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Problem, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}
func (f *fakeProblemStore) Create(ctx context.Context, p *model.Problem) error { return nil }
func (f *fakeProblemStore) Update(ctx context.Context, p *model.Problem) error { return nil }
func (f *fakeProblemStore) Delete(ctx context.Context, id uuid.UUID) error    { return nil }
func (f *fakeProblemStore) DeleteOlderThan(ctx context.Context, cutoff time.Time, topicTag *string) (int64, error) {
	return 0, nil
}
func (f *fakeProblemStore) SelectRandomWeighted(ctx context.Context, filter store.ProblemFilter) (*model.Problem, error) {
	if f.pickErr != nil {
		return nil, f.pickErr
	}
	return f.picked, nil
}

type fakeRequestStore struct {
	reqs     map[uuid.UUID]*model.GenerationRequest
	deleted  []uuid.UUID
}

func (f *fakeRequestStore) Get(ctx context.Context, id uuid.UUID) (*model.GenerationRequest, error) {
	r, ok := f.reqs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r, nil
}
func (f *fakeRequestStore) GetWithProblems(ctx context.Context, id uuid.UUID) (*model.GenerationRequest, []model.Problem, error) {
	r, err := f.Get(ctx, id)
	return r, nil, err
}
func (f *fakeRequestStore) Create(ctx context.Context, r *model.GenerationRequest) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.Status = model.RequestPending
	f.reqs[r.ID] = r
	return nil
}
func (f *fakeRequestStore) MarkProcessing(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}
func (f *fakeRequestStore) IncrementGenerated(ctx context.Context, id uuid.UUID, messageID string) error {
	return nil
}
func (f *fakeRequestStore) IncrementFailed(ctx context.Context, id uuid.UUID, messageID string) error {
	return nil
}
func (f *fakeRequestStore) MessageAccounted(ctx context.Context, id uuid.UUID, messageID string) (bool, error) {
	return false, nil
}
func (f *fakeRequestStore) FinalizeIfDone(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}
func (f *fakeRequestStore) ExpireStale(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}
func (f *fakeRequestStore) List(ctx context.Context, status *model.RequestStatus, entityType *model.ProblemType, limit int) ([]model.GenerationRequest, error) {
	return nil, nil
}
func (f *fakeRequestStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}
func (f *fakeRequestStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.reqs[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.reqs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeProducer struct {
	failEnqueue bool
	failAfter   int // if > 0, Enqueue fails starting with the (failAfter+1)th call
	enqueued    []queue.GenerationMessage
}

func (f *fakeProducer) Enqueue(ctx context.Context, msg queue.GenerationMessage) error {
	if f.failEnqueue || (f.failAfter > 0 && len(f.enqueued) >= f.failAfter) {
		return context.DeadlineExceeded
	}
	f.enqueued = append(f.enqueued, msg)
	return nil
}
func (f *fakeProducer) Close() error { return nil }

func newTestHandler(problems *fakeProblemStore, requests *fakeRequestStore, producer *fakeProducer) (*ProblemHandler, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	sel := selector.New(problems)
	trk := tracker.New(requests)
	h := NewProblemHandler(problems, sel, trk, producer, "problem-generation-requests")

	r := gin.New()
	r.GET("/problems/random", h.Random)
	r.GET("/problems/:id", h.GetByID)
	r.POST("/problems/generate", h.Generate)
	return h, r
}

func TestProblemHandler_Random_Success(t *testing.T) {
	problem := &model.Problem{ID: uuid.New(), Statements: make([]model.Statement, 4)}
	problems := &fakeProblemStore{byID: map[uuid.UUID]*model.Problem{}, picked: problem}
	_, r := newTestHandler(problems, &fakeRequestStore{reqs: map[uuid.UUID]*model.GenerationRequest{}}, &fakeProducer{})

	req := httptest.NewRequest(http.MethodGet, "/problems/random", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}
}

func TestProblemHandler_Random_NotFound(t *testing.T) {
	problems := &fakeProblemStore{byID: map[uuid.UUID]*model.Problem{}, pickErr: store.ErrNotFound}
	_, r := newTestHandler(problems, &fakeRequestStore{reqs: map[uuid.UUID]*model.GenerationRequest{}}, &fakeProducer{})

	req := httptest.NewRequest(http.MethodGet, "/problems/random?grammatical_focus=subjunctive", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body=%s", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["code"] != "not_found" {
		t.Errorf("code = %v, want not_found", resp["code"])
	}
}

func TestProblemHandler_Generate_Success(t *testing.T) {
	requests := &fakeRequestStore{reqs: map[uuid.UUID]*model.GenerationRequest{}}
	producer := &fakeProducer{}
	_, r := newTestHandler(&fakeProblemStore{byID: map[uuid.UUID]*model.Problem{}}, requests, producer)

	body, _ := json.Marshal(map[string]any{"count": 3})
	req := httptest.NewRequest(http.MethodPost, "/problems/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body=%s", w.Code, w.Body.String())
	}
	if len(producer.enqueued) != 3 {
		t.Errorf("expected 3 enqueued messages (one per requested problem), got %d", len(producer.enqueued))
	}
	for _, msg := range producer.enqueued {
		if msg.Count != 1 {
			t.Errorf("expected every published message to carry count=1, got %d", msg.Count)
		}
	}
	if len(requests.reqs) != 1 {
		t.Errorf("expected 1 request record to remain, got %d", len(requests.reqs))
	}
}

func TestProblemHandler_Generate_InvalidCount(t *testing.T) {
	_, r := newTestHandler(&fakeProblemStore{byID: map[uuid.UUID]*model.Problem{}}, &fakeRequestStore{reqs: map[uuid.UUID]*model.GenerationRequest{}}, &fakeProducer{})

	body, _ := json.Marshal(map[string]any{"count": 0})
	req := httptest.NewRequest(http.MethodPost, "/problems/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body=%s", w.Code, w.Body.String())
	}
}

func TestProblemHandler_Generate_BrokerFailureRollsBackRequest(t *testing.T) {
	requests := &fakeRequestStore{reqs: map[uuid.UUID]*model.GenerationRequest{}}
	producer := &fakeProducer{failEnqueue: true}
	_, r := newTestHandler(&fakeProblemStore{byID: map[uuid.UUID]*model.Problem{}}, requests, producer)

	body, _ := json.Marshal(map[string]any{"count": 1})
	req := httptest.NewRequest(http.MethodPost, "/problems/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503, body=%s", w.Code, w.Body.String())
	}
	if len(requests.reqs) != 0 {
		t.Errorf("expected the request record to be rolled back, got %d remaining", len(requests.reqs))
	}
	if len(requests.deleted) != 1 {
		t.Errorf("expected Delete to be called once, got %d", len(requests.deleted))
	}
}

func TestProblemHandler_Generate_PartialPublishFailureKeepsRequest(t *testing.T) {
	requests := &fakeRequestStore{reqs: map[uuid.UUID]*model.GenerationRequest{}}
	producer := &fakeProducer{failAfter: 1}
	_, r := newTestHandler(&fakeProblemStore{byID: map[uuid.UUID]*model.Problem{}}, requests, producer)

	body, _ := json.Marshal(map[string]any{"count": 3})
	req := httptest.NewRequest(http.MethodPost, "/problems/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503, body=%s", w.Code, w.Body.String())
	}
	// One message already made it out before the broker failed on the
	// second publish: the request record must survive so that already
	// dispatched problem still gets counted against it.
	if len(requests.reqs) != 1 {
		t.Errorf("expected the request record to survive a partial publish, got %d remaining", len(requests.reqs))
	}
	if len(requests.deleted) != 0 {
		t.Errorf("expected Delete not to be called after a partial publish, got %d calls", len(requests.deleted))
	}
	if len(producer.enqueued) != 1 {
		t.Errorf("expected exactly 1 message to have been published before the failure, got %d", len(producer.enqueued))
	}
}
