package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is a coach-authored note attached to a completed workout.
// It must reference a completion that is already DONE; feedback on an
// unstarted assignment is rejected at the service layer.
// Multiple entries per completion are allowed, read newest first.
type Feedback struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompletionID primitive.ObjectID `bson:"completionId" json:"completionId"`
	AssignmentID primitive.ObjectID `bson:"assignmentId" json:"assignmentId"` // Denormalized for filtering by workout
	TraineeID    primitive.ObjectID `bson:"traineeId" json:"traineeId"`       // Denormalized for filtering by trainee
	CoachID      primitive.ObjectID `bson:"coachId" json:"coachId"`
	Body         string             `bson:"body" json:"body"`
	SentAt       time.Time          `bson:"sentAt" json:"sentAt"`
}
