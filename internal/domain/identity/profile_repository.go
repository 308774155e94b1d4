package identity

import (
	"context"

	"github.com/google/uuid"
)

// ProfileRepository defines persistence for one profile kind
type ProfileRepository[P any] interface {
	// Create inserts a profile. Unique attribute collisions yield DUPLICATE_ENTITY.
	Create(ctx context.Context, profile *P) error

	// Update persists all attributes of an existing profile
	Update(ctx context.Context, profile *P) error

	// FindByUserID finds the profile of a user
	FindByUserID(ctx context.Context, userID uuid.UUID) (*P, error)
}

type (
	TeacherProfileRepository = ProfileRepository[TeacherProfile]
	StudentProfileRepository = ProfileRepository[StudentProfile]
	StaffProfileRepository   = ProfileRepository[StaffProfile]
	ParentProfileRepository  = ProfileRepository[ParentProfile]
)
