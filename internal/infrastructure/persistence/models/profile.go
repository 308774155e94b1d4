package models

import (
	"time"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// TeacherProfileModel is the persistence model for TeacherProfile
type TeacherProfileModel struct {
	UserID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EmployeeNumber *string    `gorm:"type:varchar(50);uniqueIndex"`
	Qualification  string     `gorm:"type:varchar(200)"`
	Specialization string     `gorm:"type:varchar(200)"`
	HireDate       *time.Time `gorm:"type:date"`
	CreatedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TeacherProfileModel) TableName() string {
	return "teacher_profiles"
}

// ToDomain converts the persistence model to a domain TeacherProfile
func (m *TeacherProfileModel) ToDomain() *identity.TeacherProfile {
	return &identity.TeacherProfile{
		UserID:         m.UserID,
		EmployeeNumber: derefString(m.EmployeeNumber),
		Qualification:  m.Qualification,
		Specialization: m.Specialization,
		HireDate:       m.HireDate,
		CreatedAt:      m.CreatedAt,
	}
}

// TeacherProfileModelFromDomain creates a persistence model from a domain TeacherProfile
func TeacherProfileModelFromDomain(p *identity.TeacherProfile) *TeacherProfileModel {
	return &TeacherProfileModel{
		UserID:         p.UserID,
		EmployeeNumber: nullableString(p.EmployeeNumber),
		Qualification:  p.Qualification,
		Specialization: p.Specialization,
		HireDate:       p.HireDate,
		CreatedAt:      p.CreatedAt,
	}
}

// StudentProfileModel is the persistence model for StudentProfile
type StudentProfileModel struct {
	UserID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AdmissionNumber string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	GradeLevel      string     `gorm:"type:varchar(50)"`
	DateOfBirth     *time.Time `gorm:"type:date"`
	GuardianEmail   string     `gorm:"type:varchar(200)"`
	CreatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StudentProfileModel) TableName() string {
	return "student_profiles"
}

// ToDomain converts the persistence model to a domain StudentProfile
func (m *StudentProfileModel) ToDomain() *identity.StudentProfile {
	return &identity.StudentProfile{
		UserID:          m.UserID,
		AdmissionNumber: m.AdmissionNumber,
		GradeLevel:      m.GradeLevel,
		DateOfBirth:     m.DateOfBirth,
		GuardianEmail:   m.GuardianEmail,
		CreatedAt:       m.CreatedAt,
	}
}

// StudentProfileModelFromDomain creates a persistence model from a domain StudentProfile
func StudentProfileModelFromDomain(p *identity.StudentProfile) *StudentProfileModel {
	return &StudentProfileModel{
		UserID:          p.UserID,
		AdmissionNumber: p.AdmissionNumber,
		GradeLevel:      p.GradeLevel,
		DateOfBirth:     p.DateOfBirth,
		GuardianEmail:   p.GuardianEmail,
		CreatedAt:       p.CreatedAt,
	}
}

// StaffProfileModel is the persistence model for StaffProfile
type StaffProfileModel struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeNumber *string   `gorm:"type:varchar(50);uniqueIndex"`
	Department     string    `gorm:"type:varchar(100)"`
	Position       string    `gorm:"type:varchar(100)"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StaffProfileModel) TableName() string {
	return "staff_profiles"
}

// ToDomain converts the persistence model to a domain StaffProfile
func (m *StaffProfileModel) ToDomain() *identity.StaffProfile {
	return &identity.StaffProfile{
		UserID:         m.UserID,
		EmployeeNumber: derefString(m.EmployeeNumber),
		Department:     m.Department,
		Position:       m.Position,
		CreatedAt:      m.CreatedAt,
	}
}

// StaffProfileModelFromDomain creates a persistence model from a domain StaffProfile
func StaffProfileModelFromDomain(p *identity.StaffProfile) *StaffProfileModel {
	return &StaffProfileModel{
		UserID:         p.UserID,
		EmployeeNumber: nullableString(p.EmployeeNumber),
		Department:     p.Department,
		Position:       p.Position,
		CreatedAt:      p.CreatedAt,
	}
}

// ParentProfileModel is the persistence model for ParentProfile
type ParentProfileModel struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Relationship string    `gorm:"type:varchar(50)"`
	Occupation   string    `gorm:"type:varchar(100)"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ParentProfileModel) TableName() string {
	return "parent_profiles"
}

// ToDomain converts the persistence model to a domain ParentProfile
func (m *ParentProfileModel) ToDomain() *identity.ParentProfile {
	return &identity.ParentProfile{
		UserID:       m.UserID,
		Relationship: m.Relationship,
		Occupation:   m.Occupation,
		CreatedAt:    m.CreatedAt,
	}
}

// ParentProfileModelFromDomain creates a persistence model from a domain ParentProfile
func ParentProfileModelFromDomain(p *identity.ParentProfile) *ParentProfileModel {
	return &ParentProfileModel{
		UserID:       p.UserID,
		Relationship: p.Relationship,
		Occupation:   p.Occupation,
		CreatedAt:    p.CreatedAt,
	}
}

// Empty employee numbers are stored as NULL so the unique index ignores them
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
