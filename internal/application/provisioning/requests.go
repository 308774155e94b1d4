package provisioning

import (
	"context"
	"strings"
	"time"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/shared"
	"github.com/google/uuid"
)

func teacherRequest(in CreateTeacherInput) provisionRequest {
	return provisionRequest{
		userType: identity.UserTypeTeacher,
		user:     in.UserInput,
		createProfile: func(ctx context.Context, repos TransactionalRepositories, userID uuid.UUID) error {
			return repos.TeacherProfileRepo().Create(ctx, &identity.TeacherProfile{
				UserID:         userID,
				EmployeeNumber: strings.TrimSpace(in.EmployeeNumber),
				Qualification:  strings.TrimSpace(in.Qualification),
				Specialization: strings.TrimSpace(in.Specialization),
				HireDate:       in.HireDate,
				CreatedAt:      time.Now().UTC(),
			})
		},
	}
}

func studentRequest(in CreateStudentInput) provisionRequest {
	return provisionRequest{
		userType: identity.UserTypeStudent,
		user:     in.UserInput,
		createProfile: func(ctx context.Context, repos TransactionalRepositories, userID uuid.UUID) error {
			return repos.StudentProfileRepo().Create(ctx, &identity.StudentProfile{
				UserID:          userID,
				AdmissionNumber: strings.TrimSpace(in.AdmissionNumber),
				GradeLevel:      strings.TrimSpace(in.GradeLevel),
				DateOfBirth:     in.DateOfBirth,
				GuardianEmail:   identity.NormalizeEmail(in.GuardianEmail),
				CreatedAt:       time.Now().UTC(),
			})
		},
	}
}

func staffRequest(in CreateStaffInput) provisionRequest {
	return provisionRequest{
		userType: identity.UserTypeStaff,
		user:     in.UserInput,
		createProfile: func(ctx context.Context, repos TransactionalRepositories, userID uuid.UUID) error {
			return repos.StaffProfileRepo().Create(ctx, &identity.StaffProfile{
				UserID:         userID,
				EmployeeNumber: strings.TrimSpace(in.EmployeeNumber),
				Department:     strings.TrimSpace(in.Department),
				Position:       strings.TrimSpace(in.Position),
				CreatedAt:      time.Now().UTC(),
			})
		},
	}
}

func parentRequest(in CreateParentInput) provisionRequest {
	return provisionRequest{
		userType: identity.UserTypeParent,
		user:     in.UserInput,
		createProfile: func(ctx context.Context, repos TransactionalRepositories, userID uuid.UUID) error {
			return repos.ParentProfileRepo().Create(ctx, &identity.ParentProfile{
				UserID:       userID,
				Relationship: strings.TrimSpace(in.Relationship),
				Occupation:   strings.TrimSpace(in.Occupation),
				CreatedAt:    time.Now().UTC(),
			})
		},
	}
}

// bulkRequest converts a bulk row to the typed input of userType, validates it
// and returns the matching request
func (s *Service) bulkRequest(userType identity.UserType, row BulkUserInput, defaults map[string]string) (provisionRequest, error) {
	var (
		req provisionRequest
		in  any
	)
	switch userType {
	case identity.UserTypeTeacher:
		t := CreateTeacherInput{
			UserInput:      row.UserInput,
			EmployeeNumber: row.EmployeeNumber,
			Qualification:  row.Qualification,
			Specialization: row.Specialization,
			HireDate:       row.HireDate,
		}
		in, req = t, teacherRequest(t)
	case identity.UserTypeStudent:
		t := CreateStudentInput{
			UserInput:       row.UserInput,
			AdmissionNumber: row.AdmissionNumber,
			GradeLevel:      row.GradeLevel,
			DateOfBirth:     row.DateOfBirth,
			GuardianEmail:   row.GuardianEmail,
		}
		in, req = t, studentRequest(t)
	case identity.UserTypeStaff:
		t := CreateStaffInput{
			UserInput:      row.UserInput,
			EmployeeNumber: row.EmployeeNumber,
			Department:     row.Department,
			Position:       row.Position,
		}
		in, req = t, staffRequest(t)
	case identity.UserTypeParent:
		t := CreateParentInput{
			UserInput:    row.UserInput,
			Relationship: row.Relationship,
			Occupation:   row.Occupation,
		}
		in, req = t, parentRequest(t)
	default:
		return provisionRequest{}, shared.NewValidationError("user_type", "user_type must be one of: teacher student staff parent")
	}

	if err := s.validateStruct(in); err != nil {
		return provisionRequest{}, err
	}
	req.defaultMetadata = defaults
	return req, nil
}
