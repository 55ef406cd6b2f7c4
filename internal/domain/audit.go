package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditAction identifies the kind of privileged action recorded.
type AuditAction string

const (
	AuditBlockChanged        AuditAction = "block.changed"
	AuditWorkoutAssigned     AuditAction = "workout.assigned"
	AuditWorkoutDone         AuditAction = "workout.done"
	AuditFeedbackSent        AuditAction = "feedback.sent"
	AuditDocumentDistributed AuditAction = "document.distributed"
	AuditPasswordChanged     AuditAction = "password.changed"
	AuditPasswordReset       AuditAction = "password.reset"
)

// AuditEntry is one append-only record of a privileged action.
// ActorID is nil only for system-initiated actions. Entries are never
// updated or deleted.
type AuditEntry struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ActorID   *primitive.ObjectID `bson:"actorId,omitempty" json:"actorId,omitempty"`
	Action    AuditAction         `bson:"action" json:"action"`
	Detail    string              `bson:"detail,omitempty" json:"detail,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}
