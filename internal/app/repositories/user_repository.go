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

var userColumns = []string{"id", "email", "password_hash", "role", "is_verified", "student_id", "created_at"}

// PgUserRepository handles user database operations
type PgUserRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new user repository
func NewUserRepository(q db.Querier) *PgUserRepository {
	return &PgUserRepository{db: q, sb: statementBuilder()}
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.RoleType, &u.IsVerified, &u.StudentID, &u.CreatedAt)
	return u, err
}

// Create inserts a user
func (r *PgUserRepository) Create(ctx context.Context, u *models.User) error {
	sql, args, err := r.sb.Insert("users").
		Columns("email", "password_hash", "role", "is_verified", "student_id").
		Values(u.Email, u.Password, u.RoleType, u.IsVerified, u.StudentID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&u.ID, &u.CreatedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, dberrors.UserEmailKey):
			return apperrors.ErrEmailAlreadyExists
		case dberrors.IsDuplicateConstraintError(err, dberrors.UserStudentKey):
			return apperrors.NewConflictError("This student profile is already linked to an account.")
		}
		logger.Error().Err(err).Str("email", u.Email).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *PgUserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}
	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *PgUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by normalized email
func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// GetStudentUser returns the student account linked to studentID, or nil
func (r *PgUserRepository) GetStudentUser(ctx context.Context, studentID int64) (*models.User, error) {
	u, err := r.getOne(ctx, squirrel.Eq{"student_id": studentID, "role": models.RoleStudent})
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, nil
	}
	return u, err
}

// EmailExists checks whether an email is taken
func (r *PgUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email existence: %w", err)
	}
	return exists, nil
}

// SetVerified marks the user's email as verified
func (r *PgUserRepository) SetVerified(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET is_verified = TRUE WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error executing verify user query")
		return fmt.Errorf("error verifying user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// List returns all users newest first
func (r *PgUserRepository) List(ctx context.Context) ([]*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// CountByRole counts users holding role
func (r *PgUserRepository) CountByRole(ctx context.Context, role models.RoleType) (int, error) {
	return countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("users").Where(squirrel.Eq{"role": role}))
}
