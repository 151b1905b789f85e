package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/db"
	"github.com/yigit/placementcell/internal/pkg/apperrors"
	"github.com/yigit/placementcell/internal/pkg/dberrors"
	"github.com/yigit/placementcell/internal/pkg/logger"
)

var companyColumns = []string{
	"id", "name", "eligible_branches", "min_cgpa", "max_backlogs", "selection_policy",
	"export_template_json", "created_at",
}

// PgCompanyRepository handles company database operations
type PgCompanyRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(q db.Querier) *PgCompanyRepository {
	return &PgCompanyRepository{db: q, sb: statementBuilder()}
}

func scanCompany(row pgx.Row) (*models.Company, error) {
	c := &models.Company{}
	err := row.Scan(&c.ID, &c.Name, &c.EligibleBranches, &c.MinCGPA, &c.MaxBacklogs,
		&c.SelectionPolicy, &c.ExportTemplateJSON, &c.CreatedAt)
	return c, err
}

// Create inserts a company
func (r *PgCompanyRepository) Create(ctx context.Context, c *models.Company) error {
	sql, args, err := r.sb.Insert("companies").
		Columns("name", "eligible_branches", "min_cgpa", "max_backlogs", "selection_policy", "export_template_json").
		Values(c.Name, c.EligibleBranches, c.MinCGPA, c.MaxBacklogs, c.SelectionPolicy, c.ExportTemplateJSON).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create company SQL")
		return fmt.Errorf("failed to build create company query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.CompanyNameKey) {
			return apperrors.ErrCompanyExists
		}
		logger.Error().Err(err).Str("name", c.Name).Msg("Error executing create company query")
		return fmt.Errorf("error creating company: %w", err)
	}
	return nil
}

// GetByID retrieves a company by ID
func (r *PgCompanyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	sql, args, err := r.sb.Select(companyColumns...).
		From("companies").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get company query: %w", err)
	}

	c, err := scanCompany(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCompanyNotFound
		}
		logger.Error().Err(err).Int64("companyID", id).Msg("Error scanning company row")
		return nil, fmt.Errorf("error getting company: %w", err)
	}
	return c, nil
}

// List returns all companies ordered by name
func (r *PgCompanyRepository) List(ctx context.Context) ([]*models.Company, error) {
	sql, args, err := r.sb.Select(companyColumns...).From("companies").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list companies query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list companies query")
		return nil, fmt.Errorf("error querying companies: %w", err)
	}
	defer rows.Close()

	companies := []*models.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning company row: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating company rows: %w", err)
	}
	return companies, nil
}

// Delete removes a company; its applications cascade and students blocked
// by it lose the reference
func (r *PgCompanyRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("companies").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete company query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("companyID", id).Msg("Error executing delete company query")
		return fmt.Errorf("error deleting company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCompanyNotFound
	}
	return nil
}

// Count returns the number of companies
func (r *PgCompanyRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("companies"))
}
