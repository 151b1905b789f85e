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

var studentColumns = []string{
	"id", "roll_no", "name", "branch", "is_lateral_entry", "current_semester",
	"cgpa", "total_backlogs", "resume_link", "eligibility_status", "block_reason",
	"blocked_by_company_id", "created_at",
}

// PgStudentRepository handles student database operations
type PgStudentRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(q db.Querier) *PgStudentRepository {
	return &PgStudentRepository{db: q, sb: statementBuilder()}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	s := &models.Student{}
	err := row.Scan(
		&s.ID, &s.RollNo, &s.Name, &s.Branch, &s.IsLateralEntry, &s.CurrentSemester,
		&s.CGPA, &s.TotalBacklogs, &s.ResumeLink, &s.EligibilityStatus, &s.BlockReason,
		&s.BlockedByCompanyID, &s.CreatedAt,
	)
	return s, err
}

// Create inserts a student and fills in its ID and creation time
func (r *PgStudentRepository) Create(ctx context.Context, s *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns("roll_no", "name", "branch", "is_lateral_entry", "current_semester",
			"cgpa", "total_backlogs", "resume_link", "eligibility_status", "block_reason",
			"blocked_by_company_id").
		Values(s.RollNo, s.Name, s.Branch, s.IsLateralEntry, s.CurrentSemester,
			s.CGPA, s.TotalBacklogs, s.ResumeLink, s.EligibilityStatus, s.BlockReason,
			s.BlockedByCompanyID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.StudentRollNoKey) {
			return apperrors.ErrStudentExists
		}
		logger.Error().Err(err).Str("rollNo", s.RollNo).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

func (r *PgStudentRepository) getOne(ctx context.Context, where squirrel.Sqlizer, forUpdate bool) (*models.Student, error) {
	q := r.sb.Select(studentColumns...).From("students").Where(where).Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get student SQL")
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	s, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student: %w", err)
	}
	return s, nil
}

// GetByID retrieves a student by ID
func (r *PgStudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, false)
}

// GetByIDForUpdate retrieves and row-locks a student by ID
func (r *PgStudentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, true)
}

// GetByRollNoForUpdate retrieves and row-locks a student by roll number
func (r *PgStudentRepository) GetByRollNoForUpdate(ctx context.Context, rollNo string) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"roll_no": rollNo}, true)
}

// List returns all students ordered by branch then roll number
func (r *PgStudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students").
		OrderBy("branch ASC", "roll_no ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning student row during list")
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, nil
}

// Update writes every mutable column of the student
func (r *PgStudentRepository) Update(ctx context.Context, s *models.Student) error {
	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"name":                  s.Name,
			"branch":                s.Branch,
			"is_lateral_entry":      s.IsLateralEntry,
			"current_semester":      s.CurrentSemester,
			"cgpa":                  s.CGPA,
			"total_backlogs":        s.TotalBacklogs,
			"resume_link":           s.ResumeLink,
			"eligibility_status":    s.EligibilityStatus,
			"block_reason":          s.BlockReason,
			"blocked_by_company_id": s.BlockedByCompanyID,
		}).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update student SQL")
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", s.ID).Msg("Error executing update student query")
		return fmt.Errorf("error updating student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// Delete removes a student; performance records, backlog ledger and
// applications cascade in the schema
func (r *PgStudentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete student query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing delete student query")
		return fmt.Errorf("error deleting student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// Count returns the number of students
func (r *PgStudentRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("students"))
}

func countRows(ctx context.Context, q db.Querier, b squirrel.SelectBuilder) (int, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var n int
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		logger.Error().Err(err).Msg("Error executing count query")
		return 0, fmt.Errorf("error counting rows: %w", err)
	}
	return n, nil
}
