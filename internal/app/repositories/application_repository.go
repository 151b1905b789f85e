package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/placement"
	"github.com/yigit/placementcell/internal/db"
	"github.com/yigit/placementcell/internal/pkg/apperrors"
	"github.com/yigit/placementcell/internal/pkg/dberrors"
	"github.com/yigit/placementcell/internal/pkg/logger"
)

// PgApplicationRepository handles application database operations
type PgApplicationRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(q db.Querier) *PgApplicationRepository {
	return &PgApplicationRepository{db: q, sb: statementBuilder()}
}

func prefixed(prefix string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = prefix + "." + c
	}
	return out
}

// joinedSelect selects an application with its student and company
func (r *PgApplicationRepository) joinedSelect() squirrel.SelectBuilder {
	columns := []string{"a.id", "a.student_id", "a.company_id", "a.status", "a.applied_at", "a.exported_at"}
	columns = append(columns, prefixed("s", studentColumns)...)
	columns = append(columns, prefixed("c", companyColumns)...)
	return r.sb.Select(columns...).
		From("applications a").
		Join("students s ON s.id = a.student_id").
		Join("companies c ON c.id = a.company_id")
}

func scanJoinedApplication(row pgx.Row) (*models.Application, error) {
	a := &models.Application{Student: &models.Student{}, Company: &models.Company{}}
	s, c := a.Student, a.Company
	err := row.Scan(
		&a.ID, &a.StudentID, &a.CompanyID, &a.Status, &a.AppliedAt, &a.ExportedAt,
		&s.ID, &s.RollNo, &s.Name, &s.Branch, &s.IsLateralEntry, &s.CurrentSemester,
		&s.CGPA, &s.TotalBacklogs, &s.ResumeLink, &s.EligibilityStatus, &s.BlockReason,
		&s.BlockedByCompanyID, &s.CreatedAt,
		&c.ID, &c.Name, &c.EligibleBranches, &c.MinCGPA, &c.MaxBacklogs,
		&c.SelectionPolicy, &c.ExportTemplateJSON, &c.CreatedAt,
	)
	return a, err
}

func applyFilter(b squirrel.SelectBuilder, filter ApplicationFilter) squirrel.SelectBuilder {
	if filter.StudentID != nil {
		b = b.Where(squirrel.Eq{"a.student_id": *filter.StudentID})
	}
	if filter.CompanyID != nil {
		b = b.Where(squirrel.Eq{"a.company_id": *filter.CompanyID})
	}
	return b
}

// Create inserts an application
func (r *PgApplicationRepository) Create(ctx context.Context, a *models.Application) error {
	if a.Status == "" {
		a.Status = models.AppStatusApplied
	}
	sql, args, err := r.sb.Insert("applications").
		Columns("student_id", "company_id", "status").
		Values(a.StudentID, a.CompanyID, a.Status).
		Suffix("RETURNING id, applied_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create application SQL")
		return fmt.Errorf("failed to build create application query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.AppliedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.UniqStudentCompany) {
			return apperrors.ErrApplicationExists
		}
		logger.Error().Err(err).Int64("studentID", a.StudentID).Int64("companyID", a.CompanyID).Msg("Error executing create application query")
		return fmt.Errorf("error creating application: %w", err)
	}
	return nil
}

// GetByID retrieves an application with its student and company
func (r *PgApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	sql, args, err := r.joinedSelect().Where(squirrel.Eq{"a.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	a, err := scanJoinedApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error scanning application row")
		return nil, fmt.Errorf("error getting application: %w", err)
	}
	return a, nil
}

// Exists reports whether the student already applied to the company
func (r *PgApplicationRepository) Exists(ctx context.Context, studentID, companyID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("applications").
		Where(squirrel.Eq{"student_id": studentID, "company_id": companyID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build application exists query: %w", err)
	}
	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking application existence: %w", err)
	}
	return exists, nil
}

// List returns the filtered applications newest first
func (r *PgApplicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]*models.Application, error) {
	sql, args, err := applyFilter(r.joinedSelect(), filter).
		OrderBy("a.applied_at DESC", "a.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list applications query")
		return nil, fmt.Errorf("error querying applications: %w", err)
	}
	defer rows.Close()

	apps := []*models.Application{}
	for rows.Next() {
		a, err := scanJoinedApplication(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning application row during list")
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}
	return apps, nil
}

// Count returns the number of filtered applications
func (r *PgApplicationRepository) Count(ctx context.Context, filter ApplicationFilter) (int, error) {
	return countRows(ctx, r.db, applyFilter(r.sb.Select("COUNT(*)").From("applications a"), filter))
}

// UpdateStatus sets the status of one application
func (r *PgApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	sql, args, err := r.sb.Update("applications").
		Set("status", status).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update application status query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error executing update application status query")
		return fmt.Errorf("error updating application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrApplicationNotFound
	}
	return nil
}

// MarkExported stamps exported_at on the given applications
func (r *PgApplicationRepository) MarkExported(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	sql, args, err := r.sb.Update("applications").
		Set("exported_at", at).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark exported query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int("count", len(ids)).Msg("Error executing mark exported query")
		return fmt.Errorf("error marking applications exported: %w", err)
	}
	return nil
}

// LatestBlockingSelection finds the newest SELECTED application at a BLOCKING company
func (r *PgApplicationRepository) LatestBlockingSelection(ctx context.Context, studentID int64) (*placement.BlockingSelection, error) {
	sql, args, err := r.sb.Select("c.id", "c.name").
		From("applications a").
		Join("companies c ON c.id = a.company_id").
		Where(squirrel.Eq{
			"a.student_id":       studentID,
			"a.status":           models.AppStatusSelected,
			"c.selection_policy": models.PolicyBlocking,
		}).
		OrderBy("a.applied_at DESC", "a.id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build blocking selection query: %w", err)
	}

	var sel placement.BlockingSelection
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&sel.CompanyID, &sel.CompanyName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error scanning blocking selection")
		return nil, fmt.Errorf("error finding blocking selection: %w", err)
	}
	return &sel, nil
}
