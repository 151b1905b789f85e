package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/repositories"
)

func readSheet(t *testing.T, content []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(ExportSheet)
	require.NoError(t, err)
	return rows
}

func TestCompanyWorkbook_DefaultTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.student(t, "CS2021001", "CSE", false)
	c := f.company(t, "Acme Systems", models.PolicyNonBlocking)
	app, err := f.svc.Application.Submit(ctx, staff, st.ID, c.ID)
	require.NoError(t, err)

	exportedAt := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	svc := NewExportService(f.store, zerolog.Nop()).(*exportServiceImpl)
	svc.now = func() time.Time { return exportedAt }

	wb, err := svc.CompanyWorkbook(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme_Systems_applications_20240305103000.xlsx", wb.Filename)
	assert.Equal(t, 1, wb.Rows)

	rows := readSheet(t, wb.Content)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Roll No", "Name", "Branch", "CGPA", "Backlogs", "Applied At"}, rows[0])
	assert.Equal(t, "CS2021001", rows[1][0])
	assert.Equal(t, "CSE", rows[1][2])
	assert.Equal(t, app.AppliedAt.UTC().Format("2006-01-02 15:04:05"), rows[1][5])

	stored, err := f.store.Applications().GetByID(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ExportedAt)
	assert.True(t, stored.ExportedAt.Equal(exportedAt))
}

func TestCompanyWorkbook_CustomTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.student(t, "CS2021001", "CSE", false)
	c, err := f.svc.Company.Create(ctx, CreateCompanyInput{
		Name:               "Globex",
		ExportTemplateJSON: `[{"header":"Roll","source":"student.roll_no"},{"header":"","source":"company.name"},{"header":"Mystery","source":"student.shoe_size"},{"header":"Resume","source":"resume.link"}]`,
	})
	require.NoError(t, err)
	_, err = f.svc.Application.Submit(ctx, staff, st.ID, c.ID)
	require.NoError(t, err)

	wb, err := f.svc.Export.CompanyWorkbook(ctx, c.ID)
	require.NoError(t, err)

	rows := readSheet(t, wb.Content)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Roll", unknownHeader, "Mystery", "Resume"}, rows[0])
	assert.Equal(t, "CS2021001", rows[1][0])
	assert.Equal(t, "Globex", rows[1][1])
	assert.Equal(t, "", rows[1][2])
	assert.Equal(t, *st.ResumeLink, rows[1][3])
}

func TestCompanyWorkbook_EmptyCompanyAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.company(t, "Initech", models.PolicyNonBlocking)

	wb, err := f.svc.Export.CompanyWorkbook(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, wb.Rows)
	assert.Len(t, readSheet(t, wb.Content), 1)

	_, err = f.svc.Export.CompanyWorkbook(ctx, 999)
	assert.Error(t, err)

	n, err := f.store.Applications().Count(ctx, repositories.ApplicationFilter{CompanyID: &c.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
}
