package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/db"
	"github.com/yigit/placementcell/internal/pkg/logger"
)

// PgNotificationRepository handles notification log database operations
type PgNotificationRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new notification log repository
func NewNotificationRepository(q db.Querier) *PgNotificationRepository {
	return &PgNotificationRepository{db: q, sb: statementBuilder()}
}

// Create inserts a log row
func (r *PgNotificationRepository) Create(ctx context.Context, n *models.NotificationLog) error {
	sql, args, err := r.sb.Insert("notification_logs").
		Columns("user_id", "email", "subject", "body", "status", "error_message").
		Values(n.UserID, n.Email, n.Subject, n.Body, n.Status, n.ErrorMessage).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notification query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		logger.Error().Err(err).Str("email", n.Email).Msg("Error executing create notification query")
		return fmt.Errorf("error creating notification log: %w", err)
	}
	return nil
}

// UpdateStatus records the delivery outcome
func (r *PgNotificationRepository) UpdateStatus(ctx context.Context, n *models.NotificationLog) error {
	sql, args, err := r.sb.Update("notification_logs").
		Set("status", n.Status).
		Set("error_message", n.ErrorMessage).
		Where(squirrel.Eq{"id": n.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update notification query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("notificationID", n.ID).Msg("Error executing update notification query")
		return fmt.Errorf("error updating notification log: %w", err)
	}
	return nil
}

// ListRecent returns the newest limit rows
func (r *PgNotificationRepository) ListRecent(ctx context.Context, limit int) ([]*models.NotificationLog, error) {
	sql, args, err := r.sb.Select("id", "user_id", "email", "subject", "body", "status", "error_message", "created_at").
		From("notification_logs").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list notifications query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying notifications: %w", err)
	}
	defer rows.Close()

	logs := []*models.NotificationLog{}
	for rows.Next() {
		n := &models.NotificationLog{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Email, &n.Subject, &n.Body, &n.Status, &n.ErrorMessage, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		logs = append(logs, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return logs, nil
}
