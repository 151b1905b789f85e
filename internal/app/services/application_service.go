package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/placement"
	"github.com/yigit/placementcell/internal/app/repositories"
	"github.com/yigit/placementcell/internal/pkg/apperrors"
)

// NotificationNoLinkedUser is reported when a status change has nobody to notify
const NotificationNoLinkedUser = "NO_LINKED_USER"

// StatusUpdateResult is the outcome of an application status change
type StatusUpdateResult struct {
	Application        *models.Application `json:"application"`
	EligibilityStatus  string              `json:"eligibilityStatus"`
	NotificationStatus string              `json:"notificationStatus"`
}

// ApplicationService handles student applications to companies
type ApplicationService interface {
	// Submit applies on behalf of studentID; students always apply for their
	// own linked profile and studentID is ignored for them
	Submit(ctx context.Context, actor models.Actor, studentID, companyID int64) (*models.Application, error)
	List(ctx context.Context, actor models.Actor, companyID *int64) ([]*models.Application, error)
	// UpdateStatus changes the status, re-resolves the blocking policy in the
	// same transaction, then notifies the student best-effort
	UpdateStatus(ctx context.Context, applicationID int64, status string) (*StatusUpdateResult, error)
}

type applicationServiceImpl struct {
	store         repositories.Store
	notifications NotificationService
	logger        zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(store repositories.Store, notifications NotificationService, logger zerolog.Logger) ApplicationService {
	return &applicationServiceImpl{
		store:         store,
		notifications: notifications,
		logger:        logger.With().Str("service", "application").Logger(),
	}
}

func (s *applicationServiceImpl) Submit(ctx context.Context, actor models.Actor, studentID, companyID int64) (*models.Application, error) {
	if actor.Role == models.RoleStudent {
		if actor.StudentID == nil {
			return nil, &apperrors.CustomError{
				Err:     apperrors.ErrNoStudentProfile,
				Message: "No student profile linked to your account.",
			}
		}
		studentID = *actor.StudentID
	}

	student, err := s.store.Students().GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	company, err := s.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if decision := placement.Evaluate(student, company); !decision.Allowed {
		s.logger.Info().Int64("studentID", student.ID).Int64("companyID", company.ID).Str("reason", decision.Reason).Msg("Application denied")
		return nil, apperrors.NewNotEligibleError(decision.Reason)
	}

	exists, err := s.store.Applications().Exists(ctx, student.ID, company.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &apperrors.CustomError{Err: apperrors.ErrApplicationExists, Message: "Student already applied to this company."}
	}

	if student.ResumeLink == nil || *student.ResumeLink == "" {
		return nil, &apperrors.CustomError{
			Err:     apperrors.ErrResumeRequired,
			Message: "No resume link found for this student. Add resume link first.",
		}
	}

	app := &models.Application{StudentID: student.ID, CompanyID: company.ID, Status: models.AppStatusApplied}
	if err := s.store.Applications().Create(ctx, app); err != nil {
		return nil, err
	}
	app.Student, app.Company = student, company

	s.logger.Info().Int64("applicationID", app.ID).Int64("studentID", student.ID).Int64("companyID", company.ID).Msg("Application submitted")
	return app, nil
}

func (s *applicationServiceImpl) List(ctx context.Context, actor models.Actor, companyID *int64) ([]*models.Application, error) {
	filter := repositories.ApplicationFilter{CompanyID: companyID}
	if actor.Role == models.RoleStudent {
		if actor.StudentID == nil {
			return []*models.Application{}, nil
		}
		filter.StudentID = actor.StudentID
	}
	return s.store.Applications().List(ctx, filter)
}

// StatusEmail renders the status-change notification
func StatusEmail(app *models.Application) (subject, body string) {
	subject = fmt.Sprintf("Application Status Updated - %s", app.Company.Name)
	body = fmt.Sprintf("Hello %s,\n\nYour application status for %s is now: %s.\nApplied on: %s UTC\n\nRegards,\nPlacement Cell",
		app.Student.Name, app.Company.Name, app.Status, app.AppliedAt.UTC().Format(placement.ExportTimeLayout))
	return subject, body
}

func (s *applicationServiceImpl) UpdateStatus(ctx context.Context, applicationID int64, status string) (*StatusUpdateResult, error) {
	parsed, ok := models.ParseApplicationStatus(status)
	if !ok {
		return nil, apperrors.NewValidationError("Invalid status.")
	}

	var (
		app         *models.Application
		studentUser *models.User
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		if app, err = tx.Applications().GetByID(ctx, applicationID); err != nil {
			return err
		}
		if err := tx.Applications().UpdateStatus(ctx, app.ID, parsed); err != nil {
			return err
		}
		app.Status = parsed

		student, err := tx.Students().GetByIDForUpdate(ctx, app.StudentID)
		if err != nil {
			return err
		}
		selection, err := tx.Applications().LatestBlockingSelection(ctx, student.ID)
		if err != nil {
			return err
		}
		if placement.ResolveBlocking(student, selection) {
			if err := tx.Students().Update(ctx, student); err != nil {
				return err
			}
			s.logger.Info().Int64("studentID", student.ID).Str("status", string(student.EligibilityStatus)).Msg("Blocking policy re-resolved")
		}
		app.Student = student

		studentUser, err = tx.Users().GetStudentUser(ctx, student.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &StatusUpdateResult{
		Application:        app,
		EligibilityStatus:  string(app.Student.EligibilityStatus),
		NotificationStatus: NotificationNoLinkedUser,
	}
	if studentUser != nil && s.notifications != nil {
		subject, body := StatusEmail(app)
		entry := s.notifications.Send(ctx, &studentUser.ID, studentUser.Email, subject, body)
		result.NotificationStatus = entry.Status
	}

	s.logger.Info().Int64("applicationID", app.ID).Str("status", string(parsed)).Str("notification", result.NotificationStatus).Msg("Application status updated")
	return result, nil
}
