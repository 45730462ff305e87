package seed

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/store"
)

type fakeVerbStore struct {
	byKey map[string]bool
}

func newFakeVerbStore() *fakeVerbStore {
	return &fakeVerbStore{byKey: map[string]bool{}}
}

func (f *fakeVerbStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Verb, error) {
	return nil, store.ErrNotFound
}
func (f *fakeVerbStore) GetByInfinitive(ctx context.Context, infinitive string, aux model.Auxiliary, reflexive bool) (*model.Verb, error) {
	return nil, store.ErrNotFound
}

func (f *fakeVerbStore) Create(ctx context.Context, v *model.Verb) error {
	key := v.UniqueKey()
	if f.byKey[key] {
		return store.ErrConflict
	}
	f.byKey[key] = true
	return nil
}

func (f *fakeVerbStore) Update(ctx context.Context, v *model.Verb) error { return nil }
func (f *fakeVerbStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeVerbStore) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}
func (f *fakeVerbStore) RandomNonTest(ctx context.Context, c store.VerbConstraints) (*model.Verb, error) {
	return nil, store.ErrNotFound
}
func (f *fakeVerbStore) DeleteTestTagged(ctx context.Context) (int64, error) { return 0, nil }

func TestLoadVerbs_InsertsEveryVerbOnce(t *testing.T) {
	fake := newFakeVerbStore()

	created, skipped, err := LoadVerbs(context.Background(), fake)
	if err != nil {
		t.Fatalf("LoadVerbs() error = %v", err)
	}
	if want := len(Verbs()); created != want {
		t.Errorf("created = %d, want %d", created, want)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0 on first load", skipped)
	}
}

func TestLoadVerbs_SecondCallSkipsExisting(t *testing.T) {
	fake := newFakeVerbStore()
	ctx := context.Background()

	if _, _, err := LoadVerbs(ctx, fake); err != nil {
		t.Fatalf("first LoadVerbs() error = %v", err)
	}

	created, skipped, err := LoadVerbs(ctx, fake)
	if err != nil {
		t.Fatalf("second LoadVerbs() error = %v", err)
	}
	if created != 0 {
		t.Errorf("created = %d, want 0 on repeat load", created)
	}
	if want := len(Verbs()); skipped != want {
		t.Errorf("skipped = %d, want %d", skipped, want)
	}
}

func TestVerbs_NoneFlaggedTest(t *testing.T) {
	for _, v := range Verbs() {
		if v.IsTest {
			t.Errorf("seed verb %q is flagged is_test; seed data must survive `database clean`", v.Infinitive)
		}
	}
}
