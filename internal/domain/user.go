package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleCoach   Role = "coach"
	RoleTrainee Role = "aluno"
)

// BlockReason is the account-level gate on a trainee's access.
// NENHUM means the account is not blocked.
type BlockReason string

const (
	BlockNone      BlockReason = "NENHUM"
	BlockFinancial BlockReason = "FINANCEIRO"
	BlockManual    BlockReason = "MANUAL"
)

// ValidBlockReason reports whether r is one of the closed set of reasons.
func ValidBlockReason(r BlockReason) bool {
	switch r {
	case BlockNone, BlockFinancial, BlockManual:
		return true
	}
	return false
}

// User represents a user in the system (either a Coach or a Trainee).
type User struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	Email              string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash       string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role               Role               `bson:"role" json:"role"`
	MustChangePassword bool               `bson:"mustChangePassword" json:"mustChangePassword"`
	BlockReason        BlockReason        `bson:"blockReason" json:"blockReason"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsTrainee() bool {
	return u.Role == RoleTrainee
}

// IsBlocked reports whether the account gate is closed. Role and block
// state are orthogonal axes: only trainee-facing operations consult this.
func (u *User) IsBlocked() bool {
	return u.BlockReason != "" && u.BlockReason != BlockNone
}
