package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Identity is the resolved caller, threaded explicitly into every service
// operation instead of living in any process-wide state. It carries only
// what the session token proves; the full User record is fetched when an
// operation needs block state or profile data.
type Identity struct {
	UserID             primitive.ObjectID
	Role               Role
	MustChangePassword bool
}

func (i Identity) IsCoach() bool {
	return i.Role == RoleCoach
}

func (i Identity) IsTrainee() bool {
	return i.Role == RoleTrainee
}
