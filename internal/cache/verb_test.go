package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/store"
)

type fakeVerbStore struct {
	byID   map[uuid.UUID]*model.Verb
	calls  int
}

func (f *fakeVerbStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Verb, error) {
	f.calls++
	if v, ok := f.byID[id]; ok {
		return v, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeVerbStore) GetByInfinitive(ctx context.Context, infinitive string, aux model.Auxiliary, reflexive bool) (*model.Verb, error) {
	f.calls++
	for _, v := range f.byID {
		if v.Infinitive == infinitive && v.Auxiliary == aux && v.Reflexive == reflexive {
			return v, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeVerbStore) Create(ctx context.Context, v *model.Verb) error { return nil }
func (f *fakeVerbStore) Update(ctx context.Context, v *model.Verb) error { return nil }
func (f *fakeVerbStore) Delete(ctx context.Context, id uuid.UUID) error  { return nil }
func (f *fakeVerbStore) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}
func (f *fakeVerbStore) RandomNonTest(ctx context.Context, c store.VerbConstraints) (*model.Verb, error) {
	return nil, store.ErrNotFound
}
func (f *fakeVerbStore) DeleteTestTagged(ctx context.Context) (int64, error) { return 0, nil }

func TestVerbCache_LookupPopulatesBothIndices(t *testing.T) {
	id := uuid.New()
	v := &model.Verb{ID: id, Infinitive: "parler", Auxiliary: model.AuxiliaryAvoir}
	fake := &fakeVerbStore{byID: map[uuid.UUID]*model.Verb{id: v}}
	c := NewVerbCache(fake)

	ctx := context.Background()
	got, err := c.Lookup(ctx, id)
	if err != nil || got.Infinitive != "parler" {
		t.Fatalf("Lookup() = %v, %v", got, err)
	}
	if fake.calls != 1 {
		t.Fatalf("expected 1 storage call, got %d", fake.calls)
	}

	byInf, err := c.LookupByInfinitive(ctx, "parler", model.AuxiliaryAvoir, false)
	if err != nil || byInf.ID != id {
		t.Fatalf("LookupByInfinitive() = %v, %v", byInf, err)
	}
	// populated from the id lookup above, so this should be a cache hit
	if fake.calls != 1 {
		t.Fatalf("expected byInfinitive lookup to hit cache, storage calls = %d", fake.calls)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestVerbCache_InvalidateRemovesBothIndices(t *testing.T) {
	id := uuid.New()
	v := &model.Verb{ID: id, Infinitive: "finir", Auxiliary: model.AuxiliaryAvoir}
	fake := &fakeVerbStore{byID: map[uuid.UUID]*model.Verb{id: v}}
	c := NewVerbCache(fake)
	ctx := context.Background()

	if _, err := c.Lookup(ctx, id); err != nil {
		t.Fatal(err)
	}
	c.Invalidate(id)

	delete(fake.byID, id)
	if _, err := c.Lookup(ctx, id); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound after invalidate+delete, got %v", err)
	}
	if _, err := c.LookupByInfinitive(ctx, "finir", model.AuxiliaryAvoir, false); err != store.ErrNotFound {
		t.Fatalf("expected infinitive index to also be cleared, got %v", err)
	}
}
