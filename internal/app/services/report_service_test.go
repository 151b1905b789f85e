package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placementcell/internal/app/models"
)

func TestDashboard_ScopesCountsForStudents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.student(t, "CS2021001", "CSE", false)
	b := f.student(t, "CS2021002", "CSE", false)
	c1 := f.company(t, "Acme", models.PolicyNonBlocking)
	c2 := f.company(t, "Globex", models.PolicyNonBlocking)
	for _, id := range []int64{c1.ID, c2.ID} {
		_, err := f.svc.Application.Submit(ctx, staff, a.ID, id)
		require.NoError(t, err)
	}
	_, err := f.svc.Application.Submit(ctx, staff, b.ID, c1.ID)
	require.NoError(t, err)

	d, err := f.svc.Report.Dashboard(ctx, staff)
	require.NoError(t, err)
	assert.Equal(t, Dashboard{StudentCount: 2, CompanyCount: 2, ApplicationCount: 3}, *d)

	d, err = f.svc.Report.Dashboard(ctx, models.Actor{Role: models.RoleStudent, StudentID: &b.ID})
	require.NoError(t, err)
	assert.Equal(t, Dashboard{StudentCount: 1, CompanyCount: 2, ApplicationCount: 1}, *d)

	d, err = f.svc.Report.Dashboard(ctx, models.Actor{Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, Dashboard{CompanyCount: 2}, *d)
}
