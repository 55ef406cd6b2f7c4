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

// --- Error Definitions ---
var (
	ErrTemplateNotFound     = errors.New("workout template not found")
	ErrTemplateAccessDenied = errors.New("access denied to modify this template")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrInvalidBlockReason   = errors.New("invalid block reason")
	ErrTraineeNotFound      = errors.New("trainee user not found")
	ErrNotATrainee          = errors.New("user found but is not a trainee")
)

// AssignmentOverview pairs an assignment with its per-trainee completion
// rows for the coach dashboard.
type AssignmentOverview struct {
	domain.WorkoutAssignment
	Completions []domain.WorkoutCompletion `json:"completions"`
}

// FeedbackFilter narrows ListFeedback by trainee and/or workout. Nil
// fields are ignored.
type FeedbackFilter struct {
	TraineeID    *primitive.ObjectID
	AssignmentID *primitive.ObjectID
}

// CoachService owns every coach-side mutation: the workout catalog,
// assignment fan-out, the blocking state machine, the feedback channel,
// and the audit read surface.
type CoachService interface {
	// Workout catalog
	CreateTemplate(ctx context.Context, identity domain.Identity, title string, content domain.WorkoutContent) (*domain.WorkoutTemplate, error)
	UpdateTemplate(ctx context.Context, identity domain.Identity, templateID primitive.ObjectID, title string, content domain.WorkoutContent) (*domain.WorkoutTemplate, error)
	ListTemplates(ctx context.Context, identity domain.Identity) ([]domain.WorkoutTemplate, error)

	// Assignment lifecycle
	AssignWorkout(ctx context.Context, identity domain.Identity, date time.Time, title string, content domain.WorkoutContent, templateID *primitive.ObjectID, traineeIDs []primitive.ObjectID) (*domain.WorkoutAssignment, error)
	ListAssignments(ctx context.Context, identity domain.Identity) ([]AssignmentOverview, error)
	AssignmentDetail(ctx context.Context, identity domain.Identity, assignmentID primitive.ObjectID) (*AssignmentOverview, error)

	// Blocking state machine
	SetBlockStatus(ctx context.Context, identity domain.Identity, traineeID primitive.ObjectID, reason domain.BlockReason) error

	// Feedback channel
	SendFeedback(ctx context.Context, identity domain.Identity, completionID primitive.ObjectID, body string) (*domain.Feedback, error)
	ListFeedback(ctx context.Context, identity domain.Identity, filter FeedbackFilter) ([]domain.Feedback, error)

	// Roster and audit surface
	ListTrainees(ctx context.Context, identity domain.Identity) ([]domain.User, error)
	ListAuditLog(ctx context.Context, identity domain.Identity, limit int64) ([]domain.AuditEntry, error)
}

// coachService implements the CoachService interface.
type coachService struct {
	userRepo       repository.UserRepository
	templateRepo   repository.TemplateRepository
	assignmentRepo repository.AssignmentRepository
	completionRepo repository.CompletionRepository
	feedbackRepo   repository.FeedbackRepository
	auditRepo      repository.AuditRepository
	loc            *time.Location // reference timezone for assignment dates
}

// NewCoachService creates a new instance of coachService. loc is the
// app's reference timezone; assignment dates are normalized to its
// midnight before storage.
func NewCoachService(
	userRepo repository.UserRepository,
	templateRepo repository.TemplateRepository,
	assignmentRepo repository.AssignmentRepository,
	completionRepo repository.CompletionRepository,
	feedbackRepo repository.FeedbackRepository,
	auditRepo repository.AuditRepository,
	loc *time.Location,
) CoachService {
	return &coachService{
		userRepo:       userRepo,
		templateRepo:   templateRepo,
		assignmentRepo: assignmentRepo,
		completionRepo: completionRepo,
		feedbackRepo:   feedbackRepo,
		auditRepo:      auditRepo,
		loc:            loc,
	}
}

// === Workout Catalog ===

// CreateTemplate stores a new reusable workout template.
func (s *coachService) CreateTemplate(ctx context.Context, identity domain.Identity, title string, content domain.WorkoutContent) (*domain.WorkoutTemplate, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, errors.New("template title is required")
	}

	tpl := &domain.WorkoutTemplate{
		CoachID: identity.UserID,
		Title:   title,
		Content: content,
	}
	tplID, err := s.templateRepo.Create(ctx, tpl)
	if err != nil {
		return nil, err
	}
	tpl.ID = tplID
	return tpl, nil
}

// UpdateTemplate edits a template in place. Assignments already created
// from it keep the snapshot they took at creation.
func (s *coachService) UpdateTemplate(ctx context.Context, identity domain.Identity, templateID primitive.ObjectID, title string, content domain.WorkoutContent) (*domain.WorkoutTemplate, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}

	tpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if tpl.CoachID != identity.UserID {
		return nil, ErrTemplateAccessDenied
	}

	tpl.Title = title
	tpl.Content = content
	if err := s.templateRepo.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// ListTemplates retrieves the coach's templates, newest first.
func (s *coachService) ListTemplates(ctx context.Context, identity domain.Identity) ([]domain.WorkoutTemplate, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}
	return s.templateRepo.GetByCoachID(ctx, identity.UserID)
}

// === Assignment Lifecycle ===

// AssignWorkout creates one dated assignment plus an ASSIGNED completion
// row for every trainee, atomically. Content is either given inline or
// snapshotted from the referenced template; either way the assignment
// carries its own copy.
func (s *coachService) AssignWorkout(ctx context.Context, identity domain.Identity, date time.Time, title string, content domain.WorkoutContent, templateID *primitive.ObjectID, traineeIDs []primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}
	if len(traineeIDs) == 0 {
		return nil, ErrEmptyRecipients
	}

	// Every target must exist and be a trainee; a bad id fails the whole
	// call rather than silently shrinking the set.
	for _, traineeID := range traineeIDs {
		trainee, err := s.userRepo.GetByID(ctx, traineeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTraineeNotFound
			}
			return nil, err
		}
		if !trainee.IsTrainee() {
			return nil, ErrNotATrainee
		}
	}

	if templateID != nil {
		tpl, err := s.templateRepo.GetByID(ctx, *templateID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTemplateNotFound
			}
			return nil, err
		}
		if tpl.CoachID != identity.UserID {
			return nil, ErrTemplateAccessDenied
		}
		// Snapshot the template content at instantiation time.
		title = tpl.Title
		content = tpl.Content
	}
	if title == "" {
		return nil, errors.New("assignment title is required")
	}

	assignment := &domain.WorkoutAssignment{
		CoachID:    identity.UserID,
		TemplateID: templateID,
		Date:       domain.DayOf(date, s.loc),
		Title:      title,
		Content:    content,
		TraineeIDs: traineeIDs,
	}

	assignmentID, err := s.assignmentRepo.CreateWithCompletions(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = assignmentID

	actor := identity.UserID
	_, err = s.auditRepo.Create(ctx, &domain.AuditEntry{
		ActorID: &actor,
		Action:  domain.AuditWorkoutAssigned,
		Detail:  fmt.Sprintf("workout %q assigned to %d trainee(s) for %s", title, len(traineeIDs), date.Format("2006-01-02")),
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// ListAssignments retrieves the coach's assignments with their
// per-trainee completion state, newest date first.
func (s *coachService) ListAssignments(ctx context.Context, identity domain.Identity) ([]AssignmentOverview, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.GetByCoachID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	overviews := make([]AssignmentOverview, 0, len(assignments))
	for _, a := range assignments {
		completions, err := s.completionRepo.GetByAssignmentID(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, AssignmentOverview{WorkoutAssignment: a, Completions: completions})
	}
	return overviews, nil
}

// AssignmentDetail retrieves one assignment with its completion rows.
func (s *coachService) AssignmentDetail(ctx context.Context, identity domain.Identity, assignmentID primitive.ObjectID) (*AssignmentOverview, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.CoachID != identity.UserID {
		return nil, ErrForbidden
	}

	completions, err := s.completionRepo.GetByAssignmentID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return &AssignmentOverview{WorkoutAssignment: *assignment, Completions: completions}, nil
}

// === Blocking State Machine ===

// SetBlockStatus transitions a trainee's account gate. Transitions are
// total: any state is reachable from any state. The audit entry records
// the previous and new state.
func (s *coachService) SetBlockStatus(ctx context.Context, identity domain.Identity, traineeID primitive.ObjectID, reason domain.BlockReason) error {
	if err := assertCoach(identity); err != nil {
		return err
	}
	if !domain.ValidBlockReason(reason) {
		return ErrInvalidBlockReason
	}

	trainee, err := s.userRepo.GetByID(ctx, traineeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTraineeNotFound
		}
		return err
	}
	previous := trainee.BlockReason
	if previous == "" {
		previous = domain.BlockNone
	}

	if err := s.userRepo.SetBlockReason(ctx, traineeID, reason); err != nil {
		return err
	}

	actor := identity.UserID
	_, err = s.auditRepo.Create(ctx, &domain.AuditEntry{
		ActorID: &actor,
		Action:  domain.AuditBlockChanged,
		Detail:  fmt.Sprintf("block state of %s changed: %s -> %s", traineeID.Hex(), previous, reason),
	})
	return err
}

// === Feedback Channel ===

// SendFeedback attaches coach feedback to a completed workout. The target
// completion must be DONE; feedback on an unstarted assignment is an
// InvalidTarget failure.
func (s *coachService) SendFeedback(ctx context.Context, identity domain.Identity, completionID primitive.ObjectID, body string) (*domain.Feedback, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}
	if body == "" {
		return nil, errors.New("feedback body cannot be empty")
	}

	completion, err := s.completionRepo.GetByID(ctx, completionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !completion.IsDone() {
		return nil, ErrInvalidTarget
	}

	fb := &domain.Feedback{
		CompletionID: completion.ID,
		AssignmentID: completion.AssignmentID,
		TraineeID:    completion.TraineeID,
		CoachID:      identity.UserID,
		Body:         body,
		SentAt:       time.Now().UTC(),
	}
	fbID, err := s.feedbackRepo.Create(ctx, fb)
	if err != nil {
		return nil, err
	}
	fb.ID = fbID

	actor := identity.UserID
	_, err = s.auditRepo.Create(ctx, &domain.AuditEntry{
		ActorID: &actor,
		Action:  domain.AuditFeedbackSent,
		Detail:  fmt.Sprintf("feedback sent on completion %s (trainee %s)", completion.ID.Hex(), completion.TraineeID.Hex()),
	})
	if err != nil {
		return nil, err
	}
	return fb, nil
}

// ListFeedback retrieves feedback newest first, optionally filtered.
func (s *coachService) ListFeedback(ctx context.Context, identity domain.Identity, filter FeedbackFilter) ([]domain.Feedback, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}
	return s.feedbackRepo.List(ctx, filter.TraineeID, filter.AssignmentID)
}

// === Roster and Audit Surface ===

// ListTrainees retrieves all trainee accounts for the coach dashboard.
func (s *coachService) ListTrainees(ctx context.Context, identity domain.Identity) ([]domain.User, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}
	trainees, err := s.userRepo.ListByRole(ctx, domain.RoleTrainee)
	if err != nil {
		return nil, err
	}
	for i := range trainees {
		trainees[i].PasswordHash = ""
	}
	return trainees, nil
}

// ListAuditLog retrieves the most recent audit entries, newest first.
func (s *coachService) ListAuditLog(ctx context.Context, identity domain.Identity, limit int64) ([]domain.AuditEntry, error) {
	if err := assertCoach(identity); err != nil {
		return nil, err
	}
	return s.auditRepo.List(ctx, limit)
}
