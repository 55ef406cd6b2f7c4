package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutAssignment is a dated workout instance targeting one or more
// trainees. Date is a calendar day, not an instant: it is stored as the
// midnight of that day in the app's reference timezone, and "today's
// workout" queries use the half-open range [startOfDay, startOfDay+24h).
//
// Content is a snapshot taken at creation. TemplateID is only a
// back-reference; later template edits do not propagate here.
type WorkoutAssignment struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CoachID    primitive.ObjectID   `bson:"coachId" json:"coachId"`
	TemplateID *primitive.ObjectID  `bson:"templateId,omitempty" json:"templateId,omitempty"`
	Date       time.Time            `bson:"date" json:"date"`
	Title      string               `bson:"title" json:"title"`
	Content    WorkoutContent       `bson:"content" json:"content"`
	TraineeIDs []primitive.ObjectID `bson:"traineeIds" json:"traineeIds"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// CompletionStatus of a (assignment, trainee) pair. DONE is terminal.
type CompletionStatus string

const (
	StatusAssigned CompletionStatus = "assigned"
	StatusDone     CompletionStatus = "done"
)

// WorkoutCompletion tracks one trainee's progress against one assignment.
// The (AssignmentID, TraineeID) pair is unique. CompletedAt is set exactly
// once; the ASSIGNED→DONE transition is a conditional update in the
// repository so concurrent duplicate calls keep the first timestamp.
type WorkoutCompletion struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	TraineeID    primitive.ObjectID `bson:"traineeId" json:"traineeId"`
	CompletedAt  *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// Status derives the lifecycle state from CompletedAt.
func (c *WorkoutCompletion) Status() CompletionStatus {
	if c.CompletedAt != nil {
		return StatusDone
	}
	return StatusAssigned
}

func (c *WorkoutCompletion) IsDone() bool {
	return c.CompletedAt != nil
}
