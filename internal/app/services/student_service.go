package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/repositories"
	"github.com/yigit/placementcell/internal/pkg/apperrors"
	"github.com/yigit/placementcell/internal/pkg/gradesheet"
)

// ManualBlockReason is stored when staff block a student without a note
const ManualBlockReason = "Manually blocked by placement policy."

// CreateStudentInput carries the fields of a new student
type CreateStudentInput struct {
	RollNo            string
	Name              string
	Branch            string
	IsLateralEntry    bool
	CurrentSemester   int
	ResumeLink        string
	EligibilityStatus string
	BlockReason       string
}

// BacklogCorrection is a manual change to one semester's backlog count
type BacklogCorrection struct {
	SemesterNo int
	NewBacklog int
	Note       string
}

// StudentService manages student profiles
type StudentService interface {
	Create(ctx context.Context, in CreateStudentInput) (*models.Student, error)
	List(ctx context.Context) ([]*models.Student, error)
	// Get returns the student with semester records and blocking company
	Get(ctx context.Context, actor models.Actor, id int64) (*models.Student, error)
	Delete(ctx context.Context, id int64) error
	UpdateResumeLink(ctx context.Context, actor models.Actor, id int64, link string) (*models.Student, error)
	CorrectBacklog(ctx context.Context, id int64, in BacklogCorrection) (*models.Student, *models.BacklogUpdate, error)
	UpdateEligibilityStatus(ctx context.Context, id int64, status, note string) (*models.Student, error)
}

type studentServiceImpl struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(store repositories.Store, logger zerolog.Logger) StudentService {
	return &studentServiceImpl{
		store:  store,
		logger: logger.With().Str("service", "student").Logger(),
	}
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *studentServiceImpl) Create(ctx context.Context, in CreateStudentInput) (*models.Student, error) {
	rollNo := gradesheet.NormalizeRollNo(in.RollNo)
	if !gradesheet.ValidRollNo(rollNo) {
		return nil, apperrors.NewValidationError("Invalid roll number.")
	}
	name := strings.TrimSpace(in.Name)
	branch := strings.ToUpper(strings.TrimSpace(in.Branch))
	if name == "" || branch == "" {
		return nil, apperrors.NewValidationError("Name and branch are required.")
	}

	status := models.StatusEligible
	if strings.TrimSpace(in.EligibilityStatus) != "" {
		parsed, ok := models.ParseEligibilityStatus(in.EligibilityStatus)
		if !ok {
			return nil, apperrors.NewValidationError("Invalid eligibility status.")
		}
		status = parsed
	}

	semester := in.CurrentSemester
	if semester == 0 {
		semester = 1
	}
	if semester < 1 {
		return nil, apperrors.NewValidationError("Current semester must be at least 1.")
	}

	student := &models.Student{
		RollNo:            rollNo,
		Name:              name,
		Branch:            branch,
		IsLateralEntry:    in.IsLateralEntry,
		CurrentSemester:   semester,
		ResumeLink:        optionalString(in.ResumeLink),
		EligibilityStatus: status,
		BlockReason:       optionalString(in.BlockReason),
	}
	if err := s.store.Students().Create(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", student.ID).Str("rollNo", student.RollNo).Msg("Student created")
	return student, nil
}

func (s *studentServiceImpl) List(ctx context.Context) ([]*models.Student, error) {
	return s.store.Students().List(ctx)
}

func (s *studentServiceImpl) Get(ctx context.Context, actor models.Actor, id int64) (*models.Student, error) {
	if actor.Role == models.RoleStudent && !actor.OwnsStudent(id) {
		return nil, apperrors.NewForbiddenError("You can view only your own profile.")
	}

	student, err := s.store.Students().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if student.Semesters, err = s.store.Performances().ListByStudent(ctx, id); err != nil {
		return nil, err
	}
	if student.BlockedByCompanyID != nil {
		company, err := s.store.Companies().GetByID(ctx, *student.BlockedByCompanyID)
		switch {
		case err == nil:
			student.BlockedByCompany = company
		case !errors.Is(err, apperrors.ErrCompanyNotFound):
			return nil, err
		}
	}
	return student, nil
}

func (s *studentServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.store.Students().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("studentID", id).Msg("Student deleted")
	return nil
}

func (s *studentServiceImpl) UpdateResumeLink(ctx context.Context, actor models.Actor, id int64, link string) (*models.Student, error) {
	if actor.Role == models.RoleStudent && !actor.OwnsStudent(id) {
		return nil, apperrors.NewForbiddenError("You can update resume link only for your own profile.")
	}
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, apperrors.NewValidationError("Resume link is required.")
	}

	var student *models.Student
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		if student, err = tx.Students().GetByIDForUpdate(ctx, id); err != nil {
			return err
		}
		student.ResumeLink = &link
		return tx.Students().Update(ctx, student)
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

func (s *studentServiceImpl) CorrectBacklog(ctx context.Context, id int64, in BacklogCorrection) (*models.Student, *models.BacklogUpdate, error) {
	if in.NewBacklog < 0 {
		return nil, nil, apperrors.NewValidationError("Backlog count cannot be negative.")
	}

	var (
		student *models.Student
		entry   *models.BacklogUpdate
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		if student, err = tx.Students().GetByIDForUpdate(ctx, id); err != nil {
			return err
		}
		perf, err := tx.Performances().Get(ctx, id, in.SemesterNo)
		if errors.Is(err, apperrors.ErrPerformanceNotFound) {
			return &apperrors.CustomError{
				Err:     apperrors.ErrPerformanceNotFound,
				Message: "Semester record not found. Import SGPA first.",
			}
		}
		if err != nil {
			return err
		}

		if err := tx.Performances().UpdateBacklog(ctx, perf.ID, in.NewBacklog); err != nil {
			return err
		}
		entry = &models.BacklogUpdate{
			StudentID:  id,
			SemesterNo: in.SemesterNo,
			OldBacklog: perf.BacklogCount,
			NewBacklog: in.NewBacklog,
			Note:       strings.TrimSpace(in.Note),
		}
		if err := tx.BacklogUpdates().Create(ctx, entry); err != nil {
			return err
		}
		return refreshMetrics(ctx, tx, student)
	})
	if err != nil {
		return nil, nil, err
	}

	entry.RollNo, entry.StudentName = student.RollNo, student.Name
	s.logger.Info().
		Int64("studentID", id).
		Int("semester", in.SemesterNo).
		Int("oldBacklog", entry.OldBacklog).
		Int("newBacklog", entry.NewBacklog).
		Msg("Backlog corrected")
	return student, entry, nil
}

func (s *studentServiceImpl) UpdateEligibilityStatus(ctx context.Context, id int64, status, note string) (*models.Student, error) {
	parsed, ok := models.ParseEligibilityStatus(status)
	if !ok {
		return nil, apperrors.NewValidationError("Invalid eligibility status.")
	}

	var student *models.Student
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		if student, err = tx.Students().GetByIDForUpdate(ctx, id); err != nil {
			return err
		}
		student.EligibilityStatus = parsed
		student.BlockReason = optionalString(note)
		if parsed == models.StatusBlockedByPolicy {
			if student.BlockReason == nil {
				reason := ManualBlockReason
				student.BlockReason = &reason
			}
		} else {
			student.BlockedByCompanyID = nil
		}
		return tx.Students().Update(ctx, student)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", id).Str("status", string(parsed)).Msg("Eligibility status updated")
	return student, nil
}
