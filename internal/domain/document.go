package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a distributed file (typically a PDF) the core tracks by
// metadata only; the bytes live in object storage under StoragePath.
// RecipientIDs is the resolved recipient set at distribution time. The
// human-readable "Ana, Beto…" summary is a presentation-time projection
// and is never persisted.
type Document struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CoachID      primitive.ObjectID   `bson:"coachId" json:"coachId"`
	Title        string               `bson:"title" json:"title"`
	Slug         string               `bson:"slug" json:"slug"` // Unique
	Description  string               `bson:"description,omitempty" json:"description,omitempty"`
	StoragePath  string               `bson:"storagePath" json:"storagePath"`
	RecipientIDs []primitive.ObjectID `bson:"recipientIds" json:"recipientIds"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}
