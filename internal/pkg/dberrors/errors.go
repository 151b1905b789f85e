package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Constraint names from migrations/001_init.sql
const (
	StudentRollNoKey    = "students_roll_no_key"
	CompanyNameKey      = "companies_name_key"
	UserEmailKey        = "users_email_key"
	UserStudentKey      = "users_student_id_key"
	UniqStudentSemester = "uniq_student_semester"
	UniqStudentCompany  = "uniq_student_company"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == constraintName
}

// IsDuplicateKeyError checks for any unique violation
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsForeignKeyError checks for a foreign key violation, e.g. a dangling student or company ID
func IsForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}
