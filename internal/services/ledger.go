// Package services – ledger helpers.
//
// Every economic mutation in the system funnels through mutateUser: read
// the current user row, validate and mutate in memory, persist with an
// optimistic version check. A conflicting concurrent writer triggers
// exactly one retry against a fresh read; a second conflict surfaces as
// ErrWriteConflict. Combined with the per-user lock held by callers on
// the turn critical path, two interleaved transactions can never both
// commit against the same stale balance.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kawanlabs/kawan-backend/internal/domain"
	"github.com/kawanlabs/kawan-backend/internal/repo"
)

// mutateUser applies mutate to the user's current persisted state and
// commits it. mutate runs against a fresh read on each attempt, so it must
// be pure in everything but its receiver: validations inside it (balance
// admission checks) abort the whole operation with no partial state.
func mutateUser(ctx context.Context, db *gorm.DB, userID string, mutate func(*domain.User) error) (*domain.User, error) {
	for attempt := 0; attempt < 2; attempt++ {
		u, err := repo.GetUser(ctx, db, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if err := mutate(u); err != nil {
			return nil, err
		}
		err = repo.SaveUser(ctx, db, u)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, repo.ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, ErrWriteConflict
}
