package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/repositories"
	"github.com/yigit/placementcell/internal/pkg/apperrors"
)

// Company defaults applied when a field is omitted
const (
	DefaultMinCGPA     = 0.0
	DefaultMaxBacklogs = 999
)

// CreateCompanyInput carries the fields of a new company
type CreateCompanyInput struct {
	Name               string
	EligibleBranches   string
	MinCGPA            *float64
	MaxBacklogs        *int
	SelectionPolicy    string
	ExportTemplateJSON string
}

// CompanyService manages recruiters and their eligibility rules
type CompanyService interface {
	Create(ctx context.Context, in CreateCompanyInput) (*models.Company, error)
	List(ctx context.Context) ([]*models.Company, error)
	Get(ctx context.Context, id int64) (*models.Company, error)
	Delete(ctx context.Context, id int64) error
}

type companyServiceImpl struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(store repositories.Store, logger zerolog.Logger) CompanyService {
	return &companyServiceImpl{
		store:  store,
		logger: logger.With().Str("service", "company").Logger(),
	}
}

// ValidateExportTemplate checks that text is a JSON list of {header, source}
// objects and returns it normalized; empty text is an empty template
func ValidateExportTemplate(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "[]", nil
	}
	var columns []models.ExportColumn
	if err := json.Unmarshal([]byte(text), &columns); err != nil || columns == nil {
		return "", &apperrors.CustomError{
			Err:     apperrors.ErrInvalidTemplate,
			Message: "Invalid export template JSON.",
		}
	}
	return text, nil
}

// normalizeBranches upper-cases the CSV whitelist, defaulting to ALL
func normalizeBranches(text string) string {
	var branches []string
	for _, item := range strings.Split(text, ",") {
		if item = strings.ToUpper(strings.TrimSpace(item)); item != "" {
			branches = append(branches, item)
		}
	}
	if len(branches) == 0 {
		return models.AllBranches
	}
	for _, b := range branches {
		if b == models.AllBranches {
			return models.AllBranches
		}
	}
	return strings.Join(branches, ",")
}

func (s *companyServiceImpl) Create(ctx context.Context, in CreateCompanyInput) (*models.Company, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("Company name is required.")
	}

	policy := models.PolicyNonBlocking
	if strings.TrimSpace(in.SelectionPolicy) != "" {
		parsed, ok := models.ParseSelectionPolicy(in.SelectionPolicy)
		if !ok {
			return nil, apperrors.NewValidationError("Invalid company selection policy.")
		}
		policy = parsed
	}

	template, err := ValidateExportTemplate(in.ExportTemplateJSON)
	if err != nil {
		return nil, err
	}

	minCGPA := DefaultMinCGPA
	if in.MinCGPA != nil {
		minCGPA = *in.MinCGPA
	}
	if minCGPA < 0 || minCGPA > 10 {
		return nil, apperrors.NewValidationError("Minimum CGPA must be between 0 and 10.")
	}
	maxBacklogs := DefaultMaxBacklogs
	if in.MaxBacklogs != nil {
		maxBacklogs = *in.MaxBacklogs
	}
	if maxBacklogs < 0 {
		return nil, apperrors.NewValidationError("Maximum backlogs cannot be negative.")
	}

	company := &models.Company{
		Name:               name,
		EligibleBranches:   normalizeBranches(in.EligibleBranches),
		MinCGPA:            minCGPA,
		MaxBacklogs:        maxBacklogs,
		SelectionPolicy:    policy,
		ExportTemplateJSON: template,
	}
	if err := s.store.Companies().Create(ctx, company); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("companyID", company.ID).Str("name", company.Name).Str("policy", string(policy)).Msg("Company created")
	return company, nil
}

func (s *companyServiceImpl) List(ctx context.Context) ([]*models.Company, error) {
	return s.store.Companies().List(ctx)
}

func (s *companyServiceImpl) Get(ctx context.Context, id int64) (*models.Company, error) {
	return s.store.Companies().GetByID(ctx, id)
}

func (s *companyServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.store.Companies().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("companyID", id).Msg("Company deleted")
	return nil
}
