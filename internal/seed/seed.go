package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/beverage/language-quiz-service/internal/store"
)

// LoadVerbs inserts the canonical verb set, skipping any verb that already
// exists (store.ErrConflict on the 5-tuple uniqueness constraint) so the
// command is idempotent against a database that was already seeded.
func LoadVerbs(ctx context.Context, verbs store.VerbStore) (created, skipped int, err error) {
	for _, v := range Verbs() {
		v := v
		if createErr := verbs.Create(ctx, &v); createErr != nil {
			if errors.Is(createErr, store.ErrConflict) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("seeding verb %q: %w", v.Infinitive, createErr)
		}
		created++
	}
	return created, skipped, nil
}
