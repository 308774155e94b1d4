package identity

import (
	"maps"
	"regexp"
	"strings"

	"github.com/campus/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserType is the kind of identity a workflow provisions
type UserType string

const (
	UserTypeTeacher UserType = "teacher"
	UserTypeStudent UserType = "student"
	UserTypeStaff   UserType = "staff"
	UserTypeParent  UserType = "parent"
)

// AllUserTypes lists the provisionable user types
var AllUserTypes = []UserType{UserTypeTeacher, UserTypeStudent, UserTypeStaff, UserTypeParent}

// IsValid returns true if t is a provisionable user type
func (t UserType) IsValid() bool {
	switch t {
	case UserTypeTeacher, UserTypeStudent, UserTypeStaff, UserTypeParent:
		return true
	}
	return false
}

// RoleType returns the role a user of this type is assigned
func (t UserType) RoleType() RoleType {
	return RoleType(t)
}

// ParseUserType parses a user type string
func ParseUserType(s string) (UserType, error) {
	t := UserType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.NewValidationError("user_type", "User type must be one of teacher, student, staff, parent")
	}
	return t, nil
}

// User is an identity inside a tenant partition. Users are never physically
// deleted; deactivation only clears IsActive.
type User struct {
	shared.BaseEntity
	Email              string
	PasswordHash       string
	FirstName          string
	LastName           string
	Phone              string
	UserType           UserType
	IsActive           bool
	MustChangePassword bool
	Metadata           map[string]string
	CreatedBy          *uuid.UUID
}

// NewUser creates an active user that must change its temporary password on first login
func NewUser(email string, userType UserType, passwordHash string, createdBy uuid.UUID) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !userType.IsValid() {
		return nil, shared.NewValidationError("user_type", "Invalid user type")
	}
	if passwordHash == "" {
		return nil, shared.NewValidationError("password", "Password hash cannot be empty")
	}

	user := &User{
		BaseEntity:         shared.NewBaseEntity(),
		Email:              email,
		PasswordHash:       passwordHash,
		UserType:           userType,
		IsActive:           true,
		MustChangePassword: true,
		Metadata:           map[string]string{},
	}
	if createdBy != uuid.Nil {
		actor := createdBy
		user.CreatedBy = &actor
	}
	return user, nil
}

// SetName sets first and last name
func (u *User) SetName(firstName, lastName string) error {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if len(firstName) > 100 || len(lastName) > 100 {
		return shared.NewValidationError("name", "Name cannot exceed 100 characters")
	}
	u.FirstName = firstName
	u.LastName = lastName
	return nil
}

// SetPhone sets the user's phone number
func (u *User) SetPhone(phone string) error {
	if len(phone) > 50 {
		return shared.NewValidationError("phone", "Phone cannot exceed 50 characters")
	}
	u.Phone = strings.TrimSpace(phone)
	return nil
}

// MergeMetadata copies defaults then overrides into the user's metadata.
// Keys in overrides win over defaults.
func (u *User) MergeMetadata(defaults, overrides map[string]string) {
	merged := make(map[string]string, len(defaults)+len(overrides))
	maps.Copy(merged, defaults)
	maps.Copy(merged, overrides)
	u.Metadata = merged
}

// FullName returns "First Last" or the email if no name is set
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Deactivate clears IsActive. It returns false if the user was already inactive.
func (u *User) Deactivate() bool {
	if !u.IsActive {
		return false
	}
	u.IsActive = false
	return true
}

// Reactivate sets IsActive. It returns false if the user was already active.
func (u *User) Reactivate() bool {
	if u.IsActive {
		return false
	}
	u.IsActive = true
	return true
}

// NormalizeEmail lower-cases and trims an email address.
// Email uniqueness inside a partition is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether email, once normalized, is accepted as a login address
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(NormalizeEmail(email))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewValidationError("email", "Email is required")
	}
	if len(email) > 200 {
		return shared.NewValidationError("email", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewValidationError("email", "Invalid email format")
	}
	return nil
}
