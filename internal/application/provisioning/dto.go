package provisioning

import (
	"time"

	"github.com/campus/backend/internal/domain/identity"
)

// UserInput holds the account attributes shared by every user type
type UserInput struct {
	Email     string            `json:"email" validate:"required,account_email,max=200"`
	FirstName string            `json:"first_name" validate:"max=100"`
	LastName  string            `json:"last_name" validate:"max=100"`
	Phone     string            `json:"phone" validate:"max=50"`
	Metadata  map[string]string `json:"metadata"`
}

// CreateTeacherInput contains input for provisioning a teacher
type CreateTeacherInput struct {
	UserInput
	EmployeeNumber string     `json:"employee_number" validate:"max=50"`
	Qualification  string     `json:"qualification" validate:"max=200"`
	Specialization string     `json:"specialization" validate:"max=200"`
	HireDate       *time.Time `json:"hire_date"`
}

// CreateStudentInput contains input for provisioning a student
type CreateStudentInput struct {
	UserInput
	AdmissionNumber string     `json:"admission_number" validate:"required,max=50"`
	GradeLevel      string     `json:"grade_level" validate:"max=50"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	GuardianEmail   string     `json:"guardian_email" validate:"omitempty,email,max=200"`
}

// CreateStaffInput contains input for provisioning non-teaching staff
type CreateStaffInput struct {
	UserInput
	EmployeeNumber string `json:"employee_number" validate:"max=50"`
	Department     string `json:"department" validate:"max=100"`
	Position       string `json:"position" validate:"max=100"`
}

// CreateParentInput contains input for provisioning a parent or guardian
type CreateParentInput struct {
	UserInput
	Relationship string `json:"relationship" validate:"max=50"`
	Occupation   string `json:"occupation" validate:"max=100"`
}

// BulkUserInput is one row of a bulk batch. Only the profile fields of the
// batch's user type are used.
type BulkUserInput struct {
	UserInput
	EmployeeNumber  string     `json:"employee_number,omitempty"`
	Qualification   string     `json:"qualification,omitempty"`
	Specialization  string     `json:"specialization,omitempty"`
	HireDate        *time.Time `json:"hire_date,omitempty"`
	AdmissionNumber string     `json:"admission_number,omitempty"`
	GradeLevel      string     `json:"grade_level,omitempty"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	GuardianEmail   string     `json:"guardian_email,omitempty"`
	Department      string     `json:"department,omitempty"`
	Position        string     `json:"position,omitempty"`
	Relationship    string     `json:"relationship,omitempty"`
	Occupation      string     `json:"occupation,omitempty"`
}

// BulkCreateInput contains input for provisioning many users of one type
type BulkCreateInput struct {
	UserType        identity.UserType `json:"user_type" validate:"required,oneof=teacher student staff parent"`
	Users           []BulkUserInput   `json:"users" validate:"required,min=1"`
	DefaultMetadata map[string]string `json:"default_metadata"`
}

// ProvisionResult is returned by the create workflows.
// TempPassword is only ever available here.
type ProvisionResult struct {
	User         *identity.User
	TempPassword string
}

// BulkSuccess is a provisioned row of a bulk batch
type BulkSuccess struct {
	Index        int
	User         *identity.User
	TempPassword string
}

// BulkFailure is a rejected row of a bulk batch.
// Code is a shared error code; Error is safe to show to the caller.
type BulkFailure struct {
	Index int    `json:"index"`
	Email string `json:"email"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
	Error string `json:"error"`
}

// BulkResult reports every row of a batch exactly once, in input order.
// Retrying only the Failed rows is safe.
type BulkResult struct {
	Success []BulkSuccess
	Failed  []BulkFailure
}

// Total returns the number of processed rows
func (r *BulkResult) Total() int {
	return len(r.Success) + len(r.Failed)
}
