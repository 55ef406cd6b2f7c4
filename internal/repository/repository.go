package repository

import (
	"alcyxob/coach-hub/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrDuplicate     = RepositoryError("duplicate key")
	ErrUpdateFailed  = RepositoryError("update failed")
	ErrAlreadyDone   = RepositoryError("completion already done")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// GetByIDs returns the users that exist, preserving the order of ids.
	// Ids that resolve to no user are silently dropped.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	SetBlockReason(ctx context.Context, id primitive.ObjectID, reason domain.BlockReason) error
	SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string, mustChange bool) error
}

// TemplateRepository defines the interface for workout template data.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error)
	Update(ctx context.Context, tpl *domain.WorkoutTemplate) error
	// No Delete: assignments keep templateId back-references historically.
}

// AssignmentRepository defines the interface for workout assignment data.
type AssignmentRepository interface {
	// CreateWithCompletions inserts the assignment and one ASSIGNED
	// completion per trainee all-or-nothing.
	CreateWithCompletions(ctx context.Context, assignment *domain.WorkoutAssignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutAssignment, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutAssignment, error)
	// GetByTraineeAndDateRange returns assignments targeting the trainee
	// with date in [from, to), newest first.
	GetByTraineeAndDateRange(ctx context.Context, traineeID primitive.ObjectID, from, to time.Time) ([]domain.WorkoutAssignment, error)
	GetByTraineeID(ctx context.Context, traineeID primitive.ObjectID) ([]domain.WorkoutAssignment, error)
}

// CompletionRepository defines the interface for per-trainee completion rows.
type CompletionRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutCompletion, error)
	GetByAssignmentAndTrainee(ctx context.Context, assignmentID, traineeID primitive.ObjectID) (*domain.WorkoutCompletion, error)
	GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.WorkoutCompletion, error)
	GetByTraineeID(ctx context.Context, traineeID primitive.ObjectID) ([]domain.WorkoutCompletion, error)
	// MarkDone sets completedAt only if it is currently null, as a single
	// conditional update. Returns ErrNotFound when no row exists for the
	// pair and ErrAlreadyDone when the row was already completed.
	MarkDone(ctx context.Context, assignmentID, traineeID primitive.ObjectID, completedAt time.Time) error
}

// FeedbackRepository defines the interface for coach feedback entries.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *domain.Feedback) (primitive.ObjectID, error)
	// List returns entries ordered by sentAt descending. Either filter id
	// may be nil to skip that axis.
	List(ctx context.Context, traineeID, assignmentID *primitive.ObjectID) ([]domain.Feedback, error)
}

// DocumentRepository defines the interface for distributed document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Document, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Document, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Document, error)
	GetByRecipientID(ctx context.Context, userID primitive.ObjectID) ([]domain.Document, error)
	SetRecipients(ctx context.Context, id primitive.ObjectID, recipientIDs []primitive.ObjectID) error
}

// AuditRepository is append-only: entries are never updated or deleted.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) (primitive.ObjectID, error)
	List(ctx context.Context, limit int64) ([]domain.AuditEntry, error)
}
