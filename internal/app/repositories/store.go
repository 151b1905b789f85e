package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/placement"
	"github.com/yigit/placementcell/internal/db"
)

// StudentRepository persists students
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	// GetByIDForUpdate locks the row for the rest of the transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Student, error)
	GetByRollNoForUpdate(ctx context.Context, rollNo string) (*models.Student, error)
	List(ctx context.Context) ([]*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// PerformanceRepository persists semester performance records
type PerformanceRepository interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.SemesterPerformance, error)
	Get(ctx context.Context, studentID int64, semesterNo int) (*models.SemesterPerformance, error)
	// Upsert creates or overwrites the record for (student, semester)
	Upsert(ctx context.Context, perf *models.SemesterPerformance) error
	UpdateBacklog(ctx context.Context, id int64, backlog int) error
}

// BacklogUpdateRepository persists the append-only backlog correction ledger
type BacklogUpdateRepository interface {
	Create(ctx context.Context, update *models.BacklogUpdate) error
	ListHistory(ctx context.Context) ([]models.BacklogUpdate, error)
}

// CompanyRepository persists companies
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	List(ctx context.Context) ([]*models.Company, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// ApplicationFilter narrows application listings; nil fields match everything
type ApplicationFilter struct {
	StudentID *int64
	CompanyID *int64
}

// ApplicationRepository persists applications
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	Exists(ctx context.Context, studentID, companyID int64) (bool, error)
	// List returns applications newest first with student and company populated
	List(ctx context.Context, filter ApplicationFilter) ([]*models.Application, error)
	Count(ctx context.Context, filter ApplicationFilter) (int, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error
	MarkExported(ctx context.Context, ids []int64, at time.Time) error
	// LatestBlockingSelection returns the most recent SELECTED application of
	// the student at a BLOCKING company, or nil when there is none
	LatestBlockingSelection(ctx context.Context, studentID int64) (*placement.BlockingSelection, error)
}

// UserRepository persists login accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetStudentUser returns the STUDENT account linked to a student, or nil
	GetStudentUser(ctx context.Context, studentID int64) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SetVerified(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.User, error)
	CountByRole(ctx context.Context, role models.RoleType) (int, error)
}

// NotificationRepository persists outbound email attempts
type NotificationRepository interface {
	Create(ctx context.Context, log *models.NotificationLog) error
	UpdateStatus(ctx context.Context, log *models.NotificationLog) error
	ListRecent(ctx context.Context, limit int) ([]*models.NotificationLog, error)
}

// Store groups the repositories and opens transactions over them
type Store interface {
	Students() StudentRepository
	Performances() PerformanceRepository
	BacklogUpdates() BacklogUpdateRepository
	Companies() CompanyRepository
	Applications() ApplicationRepository
	Users() UserRepository
	Notifications() NotificationRepository

	// WithTransaction runs fn against a Store bound to one transaction.
	// Nested calls reuse the outer transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// PostgresStore implements Store on pgx
type PostgresStore struct {
	pool *pgxpool.Pool
	q    db.Querier
	inTx bool
}

// NewPostgresStore creates a Store over the pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, q: pool}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (s *PostgresStore) Students() StudentRepository { return NewStudentRepository(s.q) }

func (s *PostgresStore) Performances() PerformanceRepository { return NewPerformanceRepository(s.q) }

func (s *PostgresStore) BacklogUpdates() BacklogUpdateRepository {
	return NewBacklogUpdateRepository(s.q)
}

func (s *PostgresStore) Companies() CompanyRepository { return NewCompanyRepository(s.q) }

func (s *PostgresStore) Applications() ApplicationRepository { return NewApplicationRepository(s.q) }

func (s *PostgresStore) Users() UserRepository { return NewUserRepository(s.q) }

func (s *PostgresStore) Notifications() NotificationRepository {
	return NewNotificationRepository(s.q)
}

// WithTransaction runs fn in a database transaction
func (s *PostgresStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	return db.WithTransaction(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &PostgresStore{pool: s.pool, q: tx, inTx: true})
	})
}
