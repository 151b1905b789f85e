package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/repositories"
)

// Dashboard holds the headline counts shown after login
type Dashboard struct {
	StudentCount     int `json:"studentCount"`
	CompanyCount     int `json:"companyCount"`
	ApplicationCount int `json:"applicationCount"`
}

// ReportService builds read-only summaries
type ReportService interface {
	// Dashboard scopes the counts to the actor's own profile for students
	Dashboard(ctx context.Context, actor models.Actor) (*Dashboard, error)
	BacklogHistory(ctx context.Context) ([]models.BacklogUpdate, error)
}

type reportServiceImpl struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewReportService creates a new ReportService
func NewReportService(store repositories.Store, logger zerolog.Logger) ReportService {
	return &reportServiceImpl{
		store:  store,
		logger: logger.With().Str("service", "report").Logger(),
	}
}

func (s *reportServiceImpl) Dashboard(ctx context.Context, actor models.Actor) (*Dashboard, error) {
	companies, err := s.store.Companies().Count(ctx)
	if err != nil {
		return nil, err
	}
	out := &Dashboard{CompanyCount: companies}

	if actor.Role == models.RoleStudent {
		if actor.StudentID == nil {
			return out, nil
		}
		out.StudentCount = 1
		out.ApplicationCount, err = s.store.Applications().Count(ctx, repositories.ApplicationFilter{StudentID: actor.StudentID})
		if err != nil {
			return nil, err
		}
		return out, nil
	}

	if out.StudentCount, err = s.store.Students().Count(ctx); err != nil {
		return nil, err
	}
	if out.ApplicationCount, err = s.store.Applications().Count(ctx, repositories.ApplicationFilter{}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *reportServiceImpl) BacklogHistory(ctx context.Context) ([]models.BacklogUpdate, error) {
	return s.store.BacklogUpdates().ListHistory(ctx)
}
