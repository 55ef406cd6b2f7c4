package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutContent holds the block structure shared by templates and
// assignment snapshots. Every field is free text authored by the coach.
type WorkoutContent struct {
	Focus      string `bson:"focus,omitempty" json:"focus,omitempty"`           // e.g., "Lower body strength"
	Mobility   string `bson:"mobility,omitempty" json:"mobility,omitempty"`
	WarmUp     string `bson:"warmUp,omitempty" json:"warmUp,omitempty"`
	Skill      string `bson:"skill,omitempty" json:"skill,omitempty"`           // Skill / strength block
	WOD        string `bson:"wod,omitempty" json:"wod,omitempty"`               // Workout of the day
	Stretching string `bson:"stretching,omitempty" json:"stretching,omitempty"`
	VideoURL   string `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`     // Optional demo video link
}

// WorkoutTemplate is a reusable workout a coach authors once and
// instantiates into dated assignments. Assignments snapshot the content at
// instantiation time, so editing a template never rewrites history.
type WorkoutTemplate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"` // Who authored the template
	Title     string             `bson:"title" json:"title"`
	Content   WorkoutContent     `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
