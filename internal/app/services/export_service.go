package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/placement"
	"github.com/yigit/placementcell/internal/app/repositories"
)

// Export workbook constants
const (
	ExportSheet       = "Applications"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	unknownHeader     = "Unknown"
)

// Workbook is a rendered company export
type Workbook struct {
	Filename string
	Content  []byte
	Rows     int
}

// ExportService renders a company's applications as a spreadsheet
type ExportService interface {
	// CompanyWorkbook renders every application of the company using its
	// export template and stamps each exported application
	CompanyWorkbook(ctx context.Context, companyID int64) (*Workbook, error)
}

type exportServiceImpl struct {
	store  repositories.Store
	now    func() time.Time
	logger zerolog.Logger
}

// NewExportService creates a new ExportService
func NewExportService(store repositories.Store, logger zerolog.Logger) ExportService {
	return &exportServiceImpl{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With().Str("service", "export").Logger(),
	}
}

// ExportFilename builds "<Company_Name>_applications_<YYYYmmddHHMMSS>.xlsx"
func ExportFilename(companyName string, at time.Time) string {
	return fmt.Sprintf("%s_applications_%s.xlsx", strings.ReplaceAll(companyName, " ", "_"), at.UTC().Format("20060102150405"))
}

func (s *exportServiceImpl) CompanyWorkbook(ctx context.Context, companyID int64) (*Workbook, error) {
	company, err := s.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	template := company.ExportTemplate()
	if len(template) == 0 {
		template = placement.DefaultExportTemplate()
	}

	apps, err := s.store.Applications().List(ctx, repositories.ApplicationFilter{CompanyID: &company.ID})
	if err != nil {
		return nil, err
	}

	content, err := renderWorkbook(template, apps)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ids := make([]int64, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ID)
	}
	if len(ids) > 0 {
		if err := s.store.Applications().MarkExported(ctx, ids, now); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Int64("companyID", company.ID).Int("rows", len(apps)).Msg("Company applications exported")
	return &Workbook{
		Filename: ExportFilename(company.Name, now),
		Content:  content,
		Rows:     len(apps),
	}, nil
}

func renderWorkbook(template []models.ExportColumn, apps []*models.Application) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, fmt.Errorf("failed to name export sheet: %w", err)
	}

	for col, column := range template {
		header := strings.TrimSpace(column.Header)
		if header == "" {
			header = unknownHeader
		}
		if err := setCell(f, col+1, 1, header); err != nil {
			return nil, err
		}
	}

	for row, app := range apps {
		for col, column := range template {
			if err := setCell(f, col+1, row+2, placement.ResolveSource(column.Source, app)); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid export cell: %w", err)
	}
	if err := f.SetCellValue(ExportSheet, cell, value); err != nil {
		return fmt.Errorf("failed to set export cell %s: %w", cell, err)
	}
	return nil
}
