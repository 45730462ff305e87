package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/model"
)

type fakeRequestStore struct {
	reqs   map[uuid.UUID]*model.GenerationRequest
	logged map[uuid.UUID]map[string]bool
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{
		reqs:   map[uuid.UUID]*model.GenerationRequest{},
		logged: map[uuid.UUID]map[string]bool{},
	}
}

func (f *fakeRequestStore) Get(ctx context.Context, id uuid.UUID) (*model.GenerationRequest, error) {
	r, ok := f.reqs[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *r
	return &cp, nil
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
	r.RequestedAt = time.Now()
	cp := *r
	f.reqs[r.ID] = &cp
	return nil
}

func (f *fakeRequestStore) MarkProcessing(ctx context.Context, id uuid.UUID, at time.Time) error {
	r, ok := f.reqs[id]
	if !ok {
		return errNotFound
	}
	if r.Status != model.RequestPending {
		return nil
	}
	r.Status = model.RequestProcessing
	r.StartedAt = &at
	return nil
}

func (f *fakeRequestStore) IncrementGenerated(ctx context.Context, id uuid.UUID, messageID string) error {
	r, ok := f.reqs[id]
	if !ok {
		return errNotFound
	}
	if f.markLogged(id, messageID) {
		r.GeneratedCount++
	}
	return nil
}

func (f *fakeRequestStore) IncrementFailed(ctx context.Context, id uuid.UUID, messageID string) error {
	r, ok := f.reqs[id]
	if !ok {
		return errNotFound
	}
	if f.markLogged(id, messageID) {
		r.FailedCount++
	}
	return nil
}

// markLogged returns true the first time messageID is seen for id, false on
// any replay, mirroring the real store's ON CONFLICT DO NOTHING dedup.
func (f *fakeRequestStore) markLogged(id uuid.UUID, messageID string) bool {
	seen, ok := f.logged[id]
	if !ok {
		seen = map[string]bool{}
		f.logged[id] = seen
	}
	if seen[messageID] {
		return false
	}
	seen[messageID] = true
	return true
}

func (f *fakeRequestStore) MessageAccounted(ctx context.Context, id uuid.UUID, messageID string) (bool, error) {
	return f.logged[id][messageID], nil
}

func (f *fakeRequestStore) FinalizeIfDone(ctx context.Context, id uuid.UUID, at time.Time) error {
	r, ok := f.reqs[id]
	if !ok {
		return errNotFound
	}
	if r.Status.IsTerminal() || !r.Accounted() {
		return nil
	}
	r.Status = r.TerminalStatus()
	r.CompletedAt = &at
	return nil
}

func (f *fakeRequestStore) ExpireStale(ctx context.Context, olderThan time.Time) (int64, error) {
	var n int64
	for _, r := range f.reqs {
		if (r.Status == model.RequestPending || r.Status == model.RequestProcessing) && r.RequestedAt.Before(olderThan) {
			r.Status = model.RequestExpired
			n++
		}
	}
	return n, nil
}

func (f *fakeRequestStore) List(ctx context.Context, status *model.RequestStatus, entityType *model.ProblemType, limit int) ([]model.GenerationRequest, error) {
	var out []model.GenerationRequest
	for _, r := range f.reqs {
		if status != nil && r.Status != *status {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRequestStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.reqs[id]; !ok {
		return errNotFound
	}
	delete(f.reqs, id)
	return nil
}

func (f *fakeRequestStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, r := range f.reqs {
		if r.Status.IsTerminal() && r.RequestedAt.Before(cutoff) {
			delete(f.reqs, id)
			n++
		}
	}
	return n, nil
}

type notFoundErr struct{}

func (notFoundErr) Error() string { return "not found" }

var errNotFound = notFoundErr{}

func TestTracker_FullLifecycle_AllSucceed(t *testing.T) {
	fake := newFakeRequestStore()
	tr := New(fake)
	ctx := context.Background()

	req, err := tr.Open(ctx, model.ProblemTypeGrammar, 2, model.Constraints{})
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Start(ctx, req.ID); err != nil {
		t.Fatal(err)
	}
	if err := tr.RecordSuccess(ctx, req.ID, "msg-1"); err != nil {
		t.Fatal(err)
	}
	got, err := tr.Get(ctx, req.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.RequestProcessing {
		t.Fatalf("expected still processing after 1/2, got %s", got.Status)
	}

	if err := tr.RecordSuccess(ctx, req.ID, "msg-2"); err != nil {
		t.Fatal(err)
	}
	got, err = tr.Get(ctx, req.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.RequestCompleted {
		t.Fatalf("expected completed after 2/2 successes, got %s", got.Status)
	}
}

func TestTracker_PartialOnMixedOutcomes(t *testing.T) {
	fake := newFakeRequestStore()
	tr := New(fake)
	ctx := context.Background()

	req, _ := tr.Open(ctx, model.ProblemTypeGrammar, 2, model.Constraints{})
	_ = tr.Start(ctx, req.ID)
	_ = tr.RecordSuccess(ctx, req.ID, "msg-1")
	_ = tr.RecordFailure(ctx, req.ID, "msg-2")

	got, err := tr.Get(ctx, req.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.RequestPartial {
		t.Fatalf("expected partial on 1 success + 1 failure, got %s", got.Status)
	}
}

func TestTracker_FailedWhenAllFail(t *testing.T) {
	fake := newFakeRequestStore()
	tr := New(fake)
	ctx := context.Background()

	req, _ := tr.Open(ctx, model.ProblemTypeGrammar, 1, model.Constraints{})
	_ = tr.Start(ctx, req.ID)
	_ = tr.RecordFailure(ctx, req.ID, "msg-1")

	got, err := tr.Get(ctx, req.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.RequestFailed {
		t.Fatalf("expected failed when 0 generated, got %s", got.Status)
	}
}

func TestTracker_Discard(t *testing.T) {
	fake := newFakeRequestStore()
	tr := New(fake)
	ctx := context.Background()

	req, _ := tr.Open(ctx, model.ProblemTypeGrammar, 1, model.Constraints{})
	if err := tr.Discard(ctx, req.ID); err != nil {
		t.Fatalf("Discard() error = %v", err)
	}
	if _, err := tr.Get(ctx, req.ID); err == nil {
		t.Fatal("expected discarded request to be gone")
	}
}

func TestTracker_RecordSuccess_ReplayedMessageIDDoesNotDoubleCount(t *testing.T) {
	fake := newFakeRequestStore()
	tr := New(fake)
	ctx := context.Background()

	req, _ := tr.Open(ctx, model.ProblemTypeGrammar, 1, model.Constraints{})
	_ = tr.Start(ctx, req.ID)

	if err := tr.RecordSuccess(ctx, req.ID, "msg-1"); err != nil {
		t.Fatal(err)
	}
	// Replaying the same message id (redelivery after crash, or a reclaim)
	// must not increment generated_count a second time.
	if err := tr.RecordSuccess(ctx, req.ID, "msg-1"); err != nil {
		t.Fatal(err)
	}

	got, err := tr.Get(ctx, req.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.GeneratedCount != 1 {
		t.Fatalf("expected generated_count = 1 after replay, got %d", got.GeneratedCount)
	}
	if got.Status != model.RequestCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
}

func TestTracker_Accounted(t *testing.T) {
	fake := newFakeRequestStore()
	tr := New(fake)
	ctx := context.Background()

	req, _ := tr.Open(ctx, model.ProblemTypeGrammar, 2, model.Constraints{})
	_ = tr.Start(ctx, req.ID)

	if accounted, err := tr.Accounted(ctx, req.ID, "msg-1"); err != nil || accounted {
		t.Fatalf("Accounted() = %v, %v; want false, nil before any record", accounted, err)
	}

	if err := tr.RecordSuccess(ctx, req.ID, "msg-1"); err != nil {
		t.Fatal(err)
	}

	if accounted, err := tr.Accounted(ctx, req.ID, "msg-1"); err != nil || !accounted {
		t.Fatalf("Accounted() = %v, %v; want true, nil after RecordSuccess", accounted, err)
	}
	if accounted, err := tr.Accounted(ctx, req.ID, "msg-2"); err != nil || accounted {
		t.Fatalf("Accounted() = %v, %v; want false, nil for an unrelated message id", accounted, err)
	}
}

func TestTracker_ExpireStale_OnlyExpiresRequestsPastDeadline(t *testing.T) {
	fake := newFakeRequestStore()
	tr := New(fake)
	ctx := context.Background()

	stuck, _ := tr.Open(ctx, model.ProblemTypeGrammar, 1, model.Constraints{})
	_ = tr.Start(ctx, stuck.ID)
	old := time.Now().Add(-time.Hour)
	fake.reqs[stuck.ID].RequestedAt = old

	fresh, _ := tr.Open(ctx, model.ProblemTypeGrammar, 1, model.Constraints{})
	_ = tr.Start(ctx, fresh.ID)

	pending, _ := tr.Open(ctx, model.ProblemTypeGrammar, 1, model.Constraints{})

	n, err := tr.ExpireStale(ctx, 30*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 request expired, got %d", n)
	}

	got, _ := tr.Get(ctx, stuck.ID)
	if got.Status != model.RequestExpired {
		t.Errorf("expected stuck request to be expired, got %s", got.Status)
	}
	got, _ = tr.Get(ctx, fresh.ID)
	if got.Status == model.RequestExpired {
		t.Errorf("expected freshly-started request to survive the sweep")
	}
	got, _ = tr.Get(ctx, pending.ID)
	if got.Status == model.RequestExpired {
		t.Errorf("expected still-pending request to survive the sweep")
	}
}
