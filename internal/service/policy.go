package service

import (
	"alcyxob/coach-hub/internal/domain"
	"alcyxob/coach-hub/internal/repository"
	"context"
	"errors"
	"fmt"
)

// --- Error Definitions (shared taxonomy) ---
var (
	ErrForbidden       = errors.New("forbidden: wrong role or wrong identity for this resource")
	ErrNotFound        = errors.New("not found")
	ErrInvalidTarget   = errors.New("operation target is in the wrong state")
	ErrEmptyRecipients = errors.New("at least one recipient is required")
)

// AccountBlockedError is returned when a trainee-facing operation hits a
// blocked account. It carries the reason so the boundary can name it.
type AccountBlockedError struct {
	Reason domain.BlockReason
}

func (e *AccountBlockedError) Error() string {
	return fmt.Sprintf("account blocked: %s", e.Reason)
}

// assertCoach gates coach-only operations. Role checks live here instead
// of being scattered across call sites; handlers additionally enforce the
// same rule at the routing boundary for the redirect contract.
func assertCoach(identity domain.Identity) error {
	if !identity.IsCoach() {
		return ErrForbidden
	}
	return nil
}

// assertTrainee gates trainee-only operations.
func assertTrainee(identity domain.Identity) error {
	if !identity.IsTrainee() {
		return ErrForbidden
	}
	return nil
}

// requireUnblocked loads the caller's account and fails with
// AccountBlockedError unless the block state is NENHUM. Every
// trainee-facing read and write of assignments, completions, feedback,
// and documents goes through this gate. Coach operations never do: role
// and block state are orthogonal.
func requireUnblocked(ctx context.Context, users repository.UserRepository, identity domain.Identity) error {
	user, err := users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if user.IsBlocked() {
		return &AccountBlockedError{Reason: user.BlockReason}
	}
	return nil
}
