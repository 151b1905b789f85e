package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/placement"
	"github.com/yigit/placementcell/internal/app/repositories"
	"github.com/yigit/placementcell/internal/pkg/apperrors"
	"github.com/yigit/placementcell/internal/pkg/filestorage"
	"github.com/yigit/placementcell/internal/pkg/gradesheet"
	"github.com/yigit/placementcell/internal/pkg/locks"
)

// PDFImportDir is the storage subdirectory for uploaded gradesheets
const PDFImportDir = "pdf_imports"

// Skip reasons recorded in the import report
const (
	SkipBranchMismatch  = "branch_mismatch"
	SkipLateralSemester = "lateral_semester"
)

const importLockTTL = 2 * time.Minute

// ImportRequest describes one gradesheet batch
type ImportRequest struct {
	Branch          string
	SemesterNo      int
	SemesterCredits float64
	SourceFile      string
}

// SkippedRow is one row the reconciler left untouched
type SkippedRow struct {
	RollNo string `json:"rollNo"`
	Reason string `json:"reason"`
}

// ImportReport summarizes a reconciled batch
type ImportReport struct {
	Rows            int          `json:"rows"`
	Updated         int          `json:"updated"`
	CreatedStudents int          `json:"createdStudents"`
	LateralSkips    int          `json:"lateralSkips"`
	Skipped         []SkippedRow `json:"skipped"`
	SourceFile      string       `json:"sourceFile,omitempty"`
}

// ImportService turns gradesheets into semester performance records
type ImportService interface {
	// ImportDocument stores the uploaded PDF, extracts its rows and reconciles them
	ImportDocument(ctx context.Context, req ImportRequest, filename string, content io.Reader) (*ImportReport, error)
	// ImportTables reconciles tables that were extracted outside the service
	ImportTables(ctx context.Context, req ImportRequest, tables []gradesheet.Table) (*ImportReport, error)
	// Reconcile applies parsed rows to the record store in one transaction
	Reconcile(ctx context.Context, req ImportRequest, rows []gradesheet.Row) (*ImportReport, error)
}

type importServiceImpl struct {
	store  repositories.Store
	files  filestorage.FileStorage
	source gradesheet.TableSource
	locker locks.Locker
	logger zerolog.Logger
}

// NewImportService creates a new ImportService
func NewImportService(
	store repositories.Store,
	files filestorage.FileStorage,
	source gradesheet.TableSource,
	locker locks.Locker,
	logger zerolog.Logger,
) ImportService {
	return &importServiceImpl{
		store:  store,
		files:  files,
		source: source,
		locker: locker,
		logger: logger.With().Str("service", "import").Logger(),
	}
}

func normalizeImportRequest(req *ImportRequest) error {
	req.Branch = strings.ToUpper(strings.TrimSpace(req.Branch))
	if req.Branch == "" {
		return apperrors.NewValidationError("Branch is required.")
	}
	if req.SemesterNo < 1 {
		return apperrors.NewValidationError("Semester number must be at least 1.")
	}
	if req.SemesterCredits <= 0 {
		return apperrors.NewValidationError("Semester credits must be greater than 0.")
	}
	return nil
}

func (s *importServiceImpl) ImportDocument(ctx context.Context, req ImportRequest, filename string, content io.Reader) (*ImportReport, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") || content == nil {
		return nil, apperrors.NewValidationError("Please upload a valid PDF.")
	}
	if err := normalizeImportRequest(&req); err != nil {
		return nil, err
	}

	path, err := s.files.Save(content, filename, PDFImportDir)
	if err != nil {
		return nil, fmt.Errorf("failed to store uploaded gradesheet: %w", err)
	}
	req.SourceFile = path

	report, err := s.importStored(ctx, req, path)
	if err != nil {
		if delErr := s.files.DeleteFile(path); delErr != nil {
			s.logger.Warn().Err(delErr).Str("file", path).Msg("Failed to discard rejected upload")
		}
		return nil, err
	}
	return report, nil
}

func (s *importServiceImpl) importStored(ctx context.Context, req ImportRequest, path string) (*ImportReport, error) {
	tables, err := s.source.Tables(ctx, path)
	if err != nil {
		s.logger.Error().Err(err).Str("file", path).Msg("Table extraction failed")
		return nil, apperrors.NewValidationError("Could not read tables from the uploaded PDF.")
	}
	return s.ImportTables(ctx, req, tables)
}

func (s *importServiceImpl) ImportTables(ctx context.Context, req ImportRequest, tables []gradesheet.Table) (*ImportReport, error) {
	if err := normalizeImportRequest(&req); err != nil {
		return nil, err
	}
	rows := gradesheet.ParseTables(tables)
	if len(rows) == 0 {
		return nil, &apperrors.CustomError{
			Err:     apperrors.ErrNoValidRows,
			Message: "No valid rows found in PDF. Ensure columns include Roll and SGPA.",
		}
	}
	return s.Reconcile(ctx, req, rows)
}

func (s *importServiceImpl) obtainLock(ctx context.Context, req ImportRequest) (locks.Release, error) {
	if s.locker == nil {
		return func(context.Context) {}, nil
	}
	key := fmt.Sprintf("import:%s:%d", req.Branch, req.SemesterNo)
	release, err := s.locker.Obtain(ctx, key, importLockTTL)
	if errors.Is(err, locks.ErrNotObtained) {
		return nil, apperrors.NewConflictError("Another import for this branch and semester is in progress.")
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Import lock unavailable; proceeding without lock")
		return func(context.Context) {}, nil
	}
	return release, nil
}

func (s *importServiceImpl) Reconcile(ctx context.Context, req ImportRequest, rows []gradesheet.Row) (*ImportReport, error) {
	if err := normalizeImportRequest(&req); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNoValidRows
	}

	release, err := s.obtainLock(ctx, req)
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	var report *ImportReport
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		report = &ImportReport{Rows: len(rows), Skipped: []SkippedRow{}, SourceFile: req.SourceFile}
		for _, row := range rows {
			if err := s.reconcileRow(ctx, tx, req, row, report); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("branch", req.Branch).Int("semester", req.SemesterNo).Msg("Import rolled back")
		return nil, err
	}

	event := s.logger.Info().
		Str("branch", req.Branch).
		Int("semester", req.SemesterNo).
		Int("rows", report.Rows).
		Int("updated", report.Updated).
		Int("createdStudents", report.CreatedStudents).
		Int("lateralSkips", report.LateralSkips)
	for _, skip := range report.Skipped {
		s.logger.Info().Str("rollNo", skip.RollNo).Str("reason", skip.Reason).Msg("Import row skipped")
	}
	event.Msg("Gradesheet imported")
	return report, nil
}

func (s *importServiceImpl) reconcileRow(ctx context.Context, tx repositories.Store, req ImportRequest, row gradesheet.Row, report *ImportReport) error {
	student, err := tx.Students().GetByRollNoForUpdate(ctx, row.RollNo)
	if errors.Is(err, apperrors.ErrStudentNotFound) {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			name = row.RollNo
		}
		student = &models.Student{
			RollNo:            row.RollNo,
			Name:              name,
			Branch:            req.Branch,
			CurrentSemester:   req.SemesterNo,
			EligibilityStatus: models.StatusEligible,
		}
		if err := tx.Students().Create(ctx, student); err != nil {
			return fmt.Errorf("failed to create student %s: %w", row.RollNo, err)
		}
		report.CreatedStudents++
	} else if err != nil {
		return err
	}

	if !strings.EqualFold(student.Branch, req.Branch) {
		report.Skipped = append(report.Skipped, SkippedRow{RollNo: row.RollNo, Reason: SkipBranchMismatch})
		return nil
	}
	if student.IsLateralEntry && req.SemesterNo < placement.LateralEntrySemester {
		report.LateralSkips++
		report.Skipped = append(report.Skipped, SkippedRow{RollNo: row.RollNo, Reason: SkipLateralSemester})
		return nil
	}

	var source *string
	if req.SourceFile != "" {
		sf := req.SourceFile
		source = &sf
	}
	perf := &models.SemesterPerformance{
		StudentID:       student.ID,
		SemesterNo:      req.SemesterNo,
		SGPA:            row.SGPA,
		SemesterCredits: req.SemesterCredits,
		BacklogCount:    row.Backlog,
		SourceFile:      source,
	}
	if err := tx.Performances().Upsert(ctx, perf); err != nil {
		return fmt.Errorf("failed to store semester %d for %s: %w", req.SemesterNo, row.RollNo, err)
	}

	if req.SemesterNo > student.CurrentSemester {
		student.CurrentSemester = req.SemesterNo
	}
	if err := refreshMetrics(ctx, tx, student); err != nil {
		return err
	}
	report.Updated++
	return nil
}

// refreshMetrics recomputes the cached CGPA and backlog total and saves the student
func refreshMetrics(ctx context.Context, tx repositories.Store, student *models.Student) error {
	records, err := tx.Performances().ListByStudent(ctx, student.ID)
	if err != nil {
		return err
	}
	placement.Refresh(student, records)
	if err := tx.Students().Update(ctx, student); err != nil {
		return fmt.Errorf("failed to update student %s: %w", student.RollNo, err)
	}
	return nil
}
