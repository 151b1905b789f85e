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

var performanceColumns = []string{
	"id", "student_id", "semester_no", "sgpa", "semester_credits", "backlog_count",
	"imported_at", "source_file",
}

// PgPerformanceRepository handles semester performance database operations
type PgPerformanceRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewPerformanceRepository creates a new performance repository
func NewPerformanceRepository(q db.Querier) *PgPerformanceRepository {
	return &PgPerformanceRepository{db: q, sb: statementBuilder()}
}

func scanPerformance(row pgx.Row, p *models.SemesterPerformance) error {
	return row.Scan(&p.ID, &p.StudentID, &p.SemesterNo, &p.SGPA, &p.SemesterCredits,
		&p.BacklogCount, &p.ImportedAt, &p.SourceFile)
}

// ListByStudent returns a student's records ordered by semester
func (r *PgPerformanceRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.SemesterPerformance, error) {
	sql, args, err := r.sb.Select(performanceColumns...).
		From("semester_performances").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("semester_no ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list performances SQL")
		return nil, fmt.Errorf("failed to build list performances query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing list performances query")
		return nil, fmt.Errorf("error querying performances: %w", err)
	}
	defer rows.Close()

	records := []models.SemesterPerformance{}
	for rows.Next() {
		var p models.SemesterPerformance
		if err := scanPerformance(rows, &p); err != nil {
			logger.Error().Err(err).Msg("Error scanning performance row")
			return nil, fmt.Errorf("error scanning performance row: %w", err)
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating performance rows: %w", err)
	}
	return records, nil
}

// Get returns the record for one (student, semester)
func (r *PgPerformanceRepository) Get(ctx context.Context, studentID int64, semesterNo int) (*models.SemesterPerformance, error) {
	sql, args, err := r.sb.Select(performanceColumns...).
		From("semester_performances").
		Where(squirrel.Eq{"student_id": studentID, "semester_no": semesterNo}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get performance query: %w", err)
	}

	var p models.SemesterPerformance
	if err := scanPerformance(r.db.QueryRow(ctx, sql, args...), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPerformanceNotFound
		}
		logger.Error().Err(err).Int64("studentID", studentID).Int("semester", semesterNo).Msg("Error scanning performance row")
		return nil, fmt.Errorf("error getting performance: %w", err)
	}
	return &p, nil
}

// Upsert inserts the record or overwrites sgpa, credits, backlog and source
// on the (student, semester) unique key
func (r *PgPerformanceRepository) Upsert(ctx context.Context, p *models.SemesterPerformance) error {
	sql, args, err := r.sb.Insert("semester_performances").
		Columns("student_id", "semester_no", "sgpa", "semester_credits", "backlog_count", "source_file").
		Values(p.StudentID, p.SemesterNo, p.SGPA, p.SemesterCredits, p.BacklogCount, p.SourceFile).
		Suffix(`ON CONFLICT ON CONSTRAINT ` + dberrors.UniqStudentSemester + ` DO UPDATE SET
			sgpa = EXCLUDED.sgpa,
			semester_credits = EXCLUDED.semester_credits,
			backlog_count = EXCLUDED.backlog_count,
			source_file = EXCLUDED.source_file,
			imported_at = NOW()
			RETURNING id, imported_at`).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert performance SQL")
		return fmt.Errorf("failed to build upsert performance query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.ImportedAt); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", p.StudentID).Int("semester", p.SemesterNo).Msg("Error executing upsert performance query")
		return fmt.Errorf("error upserting performance: %w", err)
	}
	return nil
}

// UpdateBacklog overwrites the backlog count of one record
func (r *PgPerformanceRepository) UpdateBacklog(ctx context.Context, id int64, backlog int) error {
	sql, args, err := r.sb.Update("semester_performances").
		Set("backlog_count", backlog).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update backlog query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("performanceID", id).Msg("Error executing update backlog query")
		return fmt.Errorf("error updating backlog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPerformanceNotFound
	}
	return nil
}

// PgBacklogUpdateRepository handles the backlog correction ledger
type PgBacklogUpdateRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewBacklogUpdateRepository creates a new backlog ledger repository
func NewBacklogUpdateRepository(q db.Querier) *PgBacklogUpdateRepository {
	return &PgBacklogUpdateRepository{db: q, sb: statementBuilder()}
}

// Create appends a ledger entry
func (r *PgBacklogUpdateRepository) Create(ctx context.Context, u *models.BacklogUpdate) error {
	sql, args, err := r.sb.Insert("backlog_updates").
		Columns("student_id", "semester_no", "old_backlog", "new_backlog", "note").
		Values(u.StudentID, u.SemesterNo, u.OldBacklog, u.NewBacklog, u.Note).
		Suffix("RETURNING id, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create backlog update query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&u.ID, &u.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("studentID", u.StudentID).Msg("Error executing create backlog update query")
		return fmt.Errorf("error creating backlog update: %w", err)
	}
	return nil
}

// ListHistory returns every ledger entry newest first, with student identity
func (r *PgBacklogUpdateRepository) ListHistory(ctx context.Context) ([]models.BacklogUpdate, error) {
	sql, args, err := r.sb.Select(
		"b.id", "b.student_id", "b.semester_no", "b.old_backlog", "b.new_backlog",
		"b.note", "b.updated_at", "s.roll_no", "s.name").
		From("backlog_updates b").
		Join("students s ON s.id = b.student_id").
		OrderBy("b.updated_at DESC", "b.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build backlog history query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing backlog history query")
		return nil, fmt.Errorf("error querying backlog history: %w", err)
	}
	defer rows.Close()

	history := []models.BacklogUpdate{}
	for rows.Next() {
		var u models.BacklogUpdate
		if err := rows.Scan(&u.ID, &u.StudentID, &u.SemesterNo, &u.OldBacklog, &u.NewBacklog,
			&u.Note, &u.UpdatedAt, &u.RollNo, &u.StudentName); err != nil {
			return nil, fmt.Errorf("error scanning backlog update row: %w", err)
		}
		history = append(history, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating backlog update rows: %w", err)
	}
	return history, nil
}
