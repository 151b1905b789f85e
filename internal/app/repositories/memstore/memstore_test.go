package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/repositories"
	"github.com/yigit/placementcell/internal/pkg/apperrors"
)

func TestWithTransaction_RollbackRestoresData(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		require.NoError(t, tx.Students().Create(ctx, &models.Student{RollNo: "CS2021001", Branch: "CSE"}))
		return tx.WithTransaction(ctx, func(ctx context.Context, inner repositories.Store) error {
			require.NoError(t, inner.Companies().Create(ctx, &models.Company{Name: "Acme"}))
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	n, err := s.Students().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = s.Companies().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	st := &models.Student{RollNo: "CS2021001", Branch: "CSE"}
	require.NoError(t, s.Students().Create(ctx, st))
	assert.Equal(t, int64(1), st.ID, "sequence rolls back with the data")
	assert.Equal(t, models.StatusEligible, st.EligibilityStatus)
}

func TestFailOn(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.FailOn = func(op string) error {
		if op == "students.Create" {
			return errors.New("injected")
		}
		return nil
	}
	assert.Error(t, s.Students().Create(ctx, &models.Student{RollNo: "CS2021001"}))
	assert.NoError(t, s.Companies().Create(ctx, &models.Company{Name: "Acme"}))
}

func TestUniqueKeys(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Students().Create(ctx, &models.Student{RollNo: "CS2021001"}))
	assert.ErrorIs(t, s.Students().Create(ctx, &models.Student{RollNo: "CS2021001"}), apperrors.ErrStudentExists)

	_, err := s.Students().GetByID(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestLatestBlockingSelection(t *testing.T) {
	s := New()
	ctx := context.Background()

	st := &models.Student{RollNo: "CS2021001", Branch: "CSE"}
	require.NoError(t, s.Students().Create(ctx, st))
	first := &models.Company{Name: "First", SelectionPolicy: models.PolicyBlocking}
	second := &models.Company{Name: "Second", SelectionPolicy: models.PolicyBlocking}
	open := &models.Company{Name: "Open", SelectionPolicy: models.PolicyNonBlocking}
	for _, c := range []*models.Company{first, second, open} {
		require.NoError(t, s.Companies().Create(ctx, c))
	}

	sel, err := s.Applications().LatestBlockingSelection(ctx, st.ID)
	require.NoError(t, err)
	assert.Nil(t, sel)

	var apps []*models.Application
	for _, c := range []*models.Company{first, second, open} {
		a := &models.Application{StudentID: st.ID, CompanyID: c.ID, Status: models.AppStatusApplied}
		require.NoError(t, s.Applications().Create(ctx, a))
		require.NoError(t, s.Applications().UpdateStatus(ctx, a.ID, models.AppStatusSelected))
		apps = append(apps, a)
	}
	// the earlier application wins when its applied-at is later
	s.SetAppliedAt(apps[0].ID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	sel, err = s.Applications().LatestBlockingSelection(ctx, st.ID)
	require.NoError(t, err)
	require.NotNil(t, sel)
	assert.Equal(t, first.ID, sel.CompanyID)
	assert.Equal(t, "First", sel.CompanyName)
}
