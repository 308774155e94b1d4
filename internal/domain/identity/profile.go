package identity

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the type-specific part of a user. Every provisioned user has
// exactly one profile matching its UserType.
type Profile interface {
	ProfileUserID() uuid.UUID
	ProfileType() UserType
}

// TeacherProfile holds teacher attributes
type TeacherProfile struct {
	UserID         uuid.UUID
	EmployeeNumber string
	Qualification  string
	Specialization string
	HireDate       *time.Time
	CreatedAt      time.Time
}

// StudentProfile holds student attributes. AdmissionNumber is unique per partition.
type StudentProfile struct {
	UserID          uuid.UUID
	AdmissionNumber string
	GradeLevel      string
	DateOfBirth     *time.Time
	GuardianEmail   string
	CreatedAt       time.Time
}

// StaffProfile holds non-teaching staff attributes
type StaffProfile struct {
	UserID         uuid.UUID
	EmployeeNumber string
	Department     string
	Position       string
	CreatedAt      time.Time
}

// ParentProfile holds parent/guardian attributes
type ParentProfile struct {
	UserID       uuid.UUID
	Relationship string
	Occupation   string
	CreatedAt    time.Time
}

func (p *TeacherProfile) ProfileUserID() uuid.UUID { return p.UserID }
func (p *TeacherProfile) ProfileType() UserType    { return UserTypeTeacher }
func (p *StudentProfile) ProfileUserID() uuid.UUID { return p.UserID }
func (p *StudentProfile) ProfileType() UserType    { return UserTypeStudent }
func (p *StaffProfile) ProfileUserID() uuid.UUID   { return p.UserID }
func (p *StaffProfile) ProfileType() UserType      { return UserTypeStaff }
func (p *ParentProfile) ProfileUserID() uuid.UUID  { return p.UserID }
func (p *ParentProfile) ProfileType() UserType     { return UserTypeParent }
