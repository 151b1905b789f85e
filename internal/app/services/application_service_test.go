package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/placement"
	"github.com/yigit/placementcell/internal/pkg/apperrors"
	"github.com/yigit/placementcell/internal/pkg/gradesheet"
)

func TestSubmit_CreatesApplication(t *testing.T) {
	f := newFixture(t)
	st := f.student(t, "CS2021001", "CSE", false)
	c := f.company(t, "Acme", models.PolicyNonBlocking)

	app, err := f.svc.Application.Submit(context.Background(), staff, st.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppStatusApplied, app.Status)
	assert.Equal(t, "Acme", app.Company.Name)

	_, err = f.svc.Application.Submit(context.Background(), staff, st.ID, c.ID)
	require.ErrorIs(t, err, apperrors.ErrApplicationExists)
	assert.Equal(t, "Student already applied to this company.", err.Error())
}

func TestSubmit_StudentAppliesForOwnProfileOnly(t *testing.T) {
	f := newFixture(t)
	own := f.student(t, "CS2021001", "CSE", false)
	other := f.student(t, "CS2021002", "CSE", false)
	c := f.company(t, "Acme", models.PolicyNonBlocking)

	actor := models.Actor{UserID: 9, Role: models.RoleStudent, StudentID: &own.ID}
	app, err := f.svc.Application.Submit(context.Background(), actor, other.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, own.ID, app.StudentID)

	_, err = f.svc.Application.Submit(context.Background(), models.Actor{Role: models.RoleStudent}, own.ID, c.ID)
	assert.ErrorIs(t, err, apperrors.ErrNoStudentProfile)

	apps, err := f.svc.Application.List(context.Background(), actor, nil)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, own.ID, apps[0].StudentID)
}

func TestSubmit_EligibilityGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importRows(t, "CSE", 1, 20, gradesheet.Row{RollNo: "CS2021001", SGPA: 6.5, Backlog: 2})
	st := f.reload(t, 1)

	strict, err := f.svc.Company.Create(ctx, CreateCompanyInput{Name: "Strict", EligibleBranches: "cse", MinCGPA: ptrFloat(7), MaxBacklogs: ptrInt(0)})
	require.NoError(t, err)
	itOnly, err := f.svc.Company.Create(ctx, CreateCompanyInput{Name: "ITCo", EligibleBranches: "IT"})
	require.NoError(t, err)

	_, err = f.svc.Application.Submit(ctx, staff, st.ID, strict.ID)
	require.ErrorIs(t, err, apperrors.ErrNotEligible)
	assert.Equal(t, "Application blocked: CGPA 6.5 is below min 7.0", err.Error())

	_, err = f.svc.Application.Submit(ctx, staff, st.ID, itOnly.ID)
	require.ErrorIs(t, err, apperrors.ErrNotEligible)
	assert.Contains(t, err.Error(), "CSE is not eligible for ITCo")

	_, err = f.svc.Student.UpdateEligibilityStatus(ctx, st.ID, "BLOCKED_BY_POLICY", "")
	require.NoError(t, err)
	_, err = f.svc.Application.Submit(ctx, staff, st.ID, strict.ID)
	require.ErrorIs(t, err, apperrors.ErrNotEligible)
	assert.Equal(t, "Application blocked: "+ManualBlockReason, err.Error())
}

func TestSubmit_RequiresResumeLink(t *testing.T) {
	f := newFixture(t)
	st, err := f.svc.Student.Create(context.Background(), CreateStudentInput{RollNo: "CS2021001", Name: "Asha", Branch: "CSE"})
	require.NoError(t, err)
	c := f.company(t, "Acme", models.PolicyNonBlocking)

	_, err = f.svc.Application.Submit(context.Background(), staff, st.ID, c.ID)
	require.ErrorIs(t, err, apperrors.ErrResumeRequired)
}

func TestSubmit_UnknownCompany(t *testing.T) {
	f := newFixture(t)
	st := f.student(t, "CS2021001", "CSE", false)
	_, err := f.svc.Application.Submit(context.Background(), staff, st.ID, 404)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateStatus_BlockingPolicyLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.student(t, "CS2021001", "CSE", false)
	open := f.company(t, "OpenCo", models.PolicyNonBlocking)
	dream := f.company(t, "DreamCo", models.PolicyBlocking)

	first, err := f.svc.Application.Submit(ctx, staff, st.ID, open.ID)
	require.NoError(t, err)
	second, err := f.svc.Application.Submit(ctx, staff, st.ID, dream.ID)
	require.NoError(t, err)

	res, err := f.svc.Application.UpdateStatus(ctx, first.ID, "selected")
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusEligible), res.EligibilityStatus)
	assert.Equal(t, NotificationNoLinkedUser, res.NotificationStatus)

	res, err = f.svc.Application.UpdateStatus(ctx, second.ID, "SELECTED")
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusBlockedByPolicy), res.EligibilityStatus)

	blocked := f.reload(t, st.ID)
	require.NotNil(t, blocked.BlockedByCompanyID)
	assert.Equal(t, dream.ID, *blocked.BlockedByCompanyID)
	assert.Equal(t, placement.BlockMessage("DreamCo"), *blocked.BlockReason)

	res, err = f.svc.Application.UpdateStatus(ctx, second.ID, "REJECTED")
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusEligible), res.EligibilityStatus)

	cleared := f.reload(t, st.ID)
	assert.Nil(t, cleared.BlockedByCompanyID)
	assert.Nil(t, cleared.BlockReason)
}

func TestUpdateStatus_KeepsManualStatuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.student(t, "CS2021001", "CSE", false)
	dream := f.company(t, "DreamCo", models.PolicyBlocking)

	app, err := f.svc.Application.Submit(ctx, staff, st.ID, dream.ID)
	require.NoError(t, err)
	_, err = f.svc.Student.UpdateEligibilityStatus(ctx, st.ID, "EXTERNAL_PLACED", "")
	require.NoError(t, err)

	res, err := f.svc.Application.UpdateStatus(ctx, app.ID, "SELECTED")
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusExternalPlaced), res.EligibilityStatus)
	assert.Nil(t, f.reload(t, st.ID).BlockedByCompanyID)
}

func TestUpdateStatus_NotifiesLinkedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.student(t, "CS2021001", "CSE", false)
	c := f.company(t, "Acme", models.PolicyNonBlocking)
	require.NoError(t, f.store.Users().Create(ctx, &models.User{Email: "asha@college.edu", RoleType: models.RoleStudent, StudentID: &st.ID}))

	app, err := f.svc.Application.Submit(ctx, staff, st.ID, c.ID)
	require.NoError(t, err)

	res, err := f.svc.Application.UpdateStatus(ctx, app.ID, "SHORTLISTED")
	require.NoError(t, err)
	assert.Equal(t, models.NotificationSent, res.NotificationStatus)

	mail := f.sender.last()
	assert.Equal(t, "asha@college.edu", mail.To)
	assert.Equal(t, "Application Status Updated - Acme", mail.Subject)
	assert.Contains(t, mail.Body, "Your application status for Acme is now: SHORTLISTED.")
}

func TestUpdateStatus_NotificationFailureKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.student(t, "CS2021001", "CSE", false)
	c := f.company(t, "DreamCo", models.PolicyBlocking)
	require.NoError(t, f.store.Users().Create(ctx, &models.User{Email: "asha@college.edu", RoleType: models.RoleStudent, StudentID: &st.ID}))
	app, err := f.svc.Application.Submit(ctx, staff, st.ID, c.ID)
	require.NoError(t, err)

	f.sender.err = errBoom
	res, err := f.svc.Application.UpdateStatus(ctx, app.ID, "SELECTED")
	require.NoError(t, err)
	assert.Equal(t, models.NotificationFailed, res.NotificationStatus)

	stored, err := f.store.Applications().GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppStatusSelected, stored.Status)
	assert.Equal(t, models.StatusBlockedByPolicy, f.reload(t, st.ID).EligibilityStatus)

	logs, err := f.store.Notifications().ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].ErrorMessage)
	assert.Equal(t, "boom", *logs[0].ErrorMessage)
}

func TestUpdateStatus_RollsBackOnStorageError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.student(t, "CS2021001", "CSE", false)
	c := f.company(t, "DreamCo", models.PolicyBlocking)
	app, err := f.svc.Application.Submit(ctx, staff, st.ID, c.ID)
	require.NoError(t, err)

	f.store.FailOn = func(op string) error {
		if op == "students.Update" {
			return errBoom
		}
		return nil
	}
	_, err = f.svc.Application.UpdateStatus(ctx, app.ID, "SELECTED")
	require.ErrorIs(t, err, errBoom)
	f.store.FailOn = nil

	stored, err := f.store.Applications().GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppStatusApplied, stored.Status)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Application.UpdateStatus(context.Background(), 1, "HIRED")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "Invalid status.", err.Error())
}
