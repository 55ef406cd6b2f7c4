package service

import (
	"alcyxob/coach-hub/internal/domain"
	"alcyxob/coach-hub/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutEntry pairs an assignment with the caller's own completion row.
type WorkoutEntry struct {
	domain.WorkoutAssignment
	Completion domain.WorkoutCompletion `json:"completion"`
}

// TraineeService owns the trainee-facing read surface and the one
// trainee-owned mutation: marking a workout done. Every operation here
// passes the account block gate first.
type TraineeService interface {
	// TodaysAssignment resolves "today" against the reference timezone's
	// civil day. Returns nil (no error) when no workout is dated today.
	TodaysAssignment(ctx context.Context, identity domain.Identity) (*WorkoutEntry, error)
	// History returns all (assignment, completion) pairs, date descending.
	History(ctx context.Context, identity domain.Identity) ([]WorkoutEntry, error)
	// MarkDone flips one completion row to DONE. traineeID must be the
	// caller's own id, otherwise Forbidden. Idempotent: the first
	// completedAt wins and repeats are a no-op, also in the audit log.
	MarkDone(ctx context.Context, identity domain.Identity, assignmentID, traineeID primitive.ObjectID) (*domain.WorkoutCompletion, error)
	// MyFeedback returns feedback addressed to the caller, newest first.
	MyFeedback(ctx context.Context, identity domain.Identity) ([]domain.Feedback, error)
}

// traineeService implements the TraineeService interface.
type traineeService struct {
	userRepo       repository.UserRepository
	assignmentRepo repository.AssignmentRepository
	completionRepo repository.CompletionRepository
	feedbackRepo   repository.FeedbackRepository
	auditRepo      repository.AuditRepository
	loc            *time.Location   // reference timezone
	now            func() time.Time // swapped in tests
}

// NewTraineeService creates a new instance of traineeService.
func NewTraineeService(
	userRepo repository.UserRepository,
	assignmentRepo repository.AssignmentRepository,
	completionRepo repository.CompletionRepository,
	feedbackRepo repository.FeedbackRepository,
	auditRepo repository.AuditRepository,
	loc *time.Location,
) TraineeService {
	return &traineeService{
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		completionRepo: completionRepo,
		feedbackRepo:   feedbackRepo,
		auditRepo:      auditRepo,
		loc:            loc,
		now:            time.Now,
	}
}

// TodaysAssignment returns the workout dated today in the reference
// timezone, if any. The day range is computed from the reference
// timezone's midnight, never from the server's local clock.
func (s *traineeService) TodaysAssignment(ctx context.Context, identity domain.Identity) (*WorkoutEntry, error) {
	if err := assertTrainee(identity); err != nil {
		return nil, err
	}
	if err := requireUnblocked(ctx, s.userRepo, identity); err != nil {
		return nil, err
	}

	from, to := domain.DayRange(s.now(), s.loc)
	assignments, err := s.assignmentRepo.GetByTraineeAndDateRange(ctx, identity.UserID, from, to)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, nil
	}

	assignment := assignments[0]
	completion, err := s.completionRepo.GetByAssignmentAndTrainee(ctx, assignment.ID, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &WorkoutEntry{WorkoutAssignment: assignment, Completion: *completion}, nil
}

// History returns the trainee's full workout history, date descending.
func (s *traineeService) History(ctx context.Context, identity domain.Identity) ([]WorkoutEntry, error) {
	if err := assertTrainee(identity); err != nil {
		return nil, err
	}
	if err := requireUnblocked(ctx, s.userRepo, identity); err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.GetByTraineeID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	completions, err := s.completionRepo.GetByTraineeID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	byAssignment := make(map[primitive.ObjectID]domain.WorkoutCompletion, len(completions))
	for _, c := range completions {
		byAssignment[c.AssignmentID] = c
	}

	entries := make([]WorkoutEntry, 0, len(assignments))
	for _, a := range assignments {
		completion, ok := byAssignment[a.ID]
		if !ok {
			// Assignment and completion rows are created together; a
			// missing row means a torn write and is skipped, not fatal.
			continue
		}
		entries = append(entries, WorkoutEntry{WorkoutAssignment: a, Completion: completion})
	}
	return entries, nil
}

// MarkDone performs the ASSIGNED→DONE transition for the caller's own
// completion row. An audit entry is written only when the row actually
// transitioned; repeats return the existing row unchanged.
func (s *traineeService) MarkDone(ctx context.Context, identity domain.Identity, assignmentID, traineeID primitive.ObjectID) (*domain.WorkoutCompletion, error) {
	if err := assertTrainee(identity); err != nil {
		return nil, err
	}
	if traineeID != identity.UserID {
		return nil, ErrForbidden
	}
	if err := requireUnblocked(ctx, s.userRepo, identity); err != nil {
		return nil, err
	}

	err := s.completionRepo.MarkDone(ctx, assignmentID, identity.UserID, s.now())
	switch {
	case err == nil:
		// First transition: audit it.
		actor := identity.UserID
		if _, auditErr := s.auditRepo.Create(ctx, &domain.AuditEntry{
			ActorID: &actor,
			Action:  domain.AuditWorkoutDone,
			Detail:  fmt.Sprintf("workout %s marked done by trainee %s", assignmentID.Hex(), identity.UserID.Hex()),
		}); auditErr != nil {
			return nil, auditErr
		}
	case errors.Is(err, repository.ErrAlreadyDone):
		// Idempotent no-op: no audit entry, first completedAt stands.
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrNotFound
	default:
		return nil, err
	}

	return s.completionRepo.GetByAssignmentAndTrainee(ctx, assignmentID, identity.UserID)
}

// MyFeedback returns feedback addressed to the caller, newest first.
func (s *traineeService) MyFeedback(ctx context.Context, identity domain.Identity) ([]domain.Feedback, error) {
	if err := assertTrainee(identity); err != nil {
		return nil, err
	}
	if err := requireUnblocked(ctx, s.userRepo, identity); err != nil {
		return nil, err
	}

	traineeID := identity.UserID
	return s.feedbackRepo.List(ctx, &traineeID, nil)
}
