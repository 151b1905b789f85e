package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/pkg/apperrors"
	"github.com/yigit/placementcell/internal/pkg/otp"
)

var otpPattern = regexp.MustCompile(`\b(\d{6})\b`)

func mailedOTP(t *testing.T, f *fixture) string {
	t.Helper()
	m := otpPattern.FindStringSubmatch(f.sender.last().Body)
	require.Len(t, m, 2)
	return m[1]
}

func registerStudent(t *testing.T, f *fixture) *RegisterResult {
	t.Helper()
	res, err := f.svc.Auth.Register(context.Background(), nil, RegisterInput{
		Email:    " Asha@College.edu ",
		Password: "s3cret-pass",
		Role:     "ADMIN",
		RollNo:   "cs2021001",
		Name:     "Asha",
		Branch:   "cse",
	})
	require.NoError(t, err)
	return res
}

func TestRegister_StudentSelfRegistration(t *testing.T) {
	f := newFixture(t)
	res := registerStudent(t, f)

	assert.Equal(t, "asha@college.edu", res.User.Email)
	assert.Equal(t, models.RoleStudent, res.User.RoleType)
	assert.False(t, res.User.IsVerified)
	require.NotNil(t, res.User.StudentID)
	assert.Equal(t, models.NotificationSent, res.Delivery.NotificationStatus)
	assert.Nil(t, res.Delivery.Code)

	mail := f.sender.last()
	assert.Equal(t, "Verify your Placement Portal account", mail.Subject)
	assert.Regexp(t, `^Your OTP is \d{6}\. It expires in 10 minutes\.$`, mail.Body)

	st := f.reload(t, *res.User.StudentID)
	assert.Equal(t, "CS2021001", st.RollNo)
	assert.Equal(t, 1, st.CurrentSemester)
}

func TestRegister_LinksExistingStudent(t *testing.T) {
	f := newFixture(t)
	existing := f.student(t, "CS2021001", "CSE", false)
	res := registerStudent(t, f)
	assert.Equal(t, existing.ID, *res.User.StudentID)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registerStudent(t, f)

	_, err := f.svc.Auth.Register(ctx, nil, RegisterInput{Email: "asha@college.edu", Password: "s3cret-pass", RollNo: "X", Name: "Y", Branch: "Z"})
	require.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
	assert.Equal(t, "Email already registered.", err.Error())

	_, err = f.svc.Auth.Register(ctx, nil, RegisterInput{Email: "b@college.edu", Password: "short", RollNo: "X", Name: "Y", Branch: "Z"})
	require.Error(t, err)
	assert.Equal(t, "Password should be at least 8 characters.", err.Error())

	_, err = f.svc.Auth.Register(ctx, nil, RegisterInput{Email: "b@college.edu", Password: "long-enough"})
	require.Error(t, err)
	assert.Equal(t, "Roll no, name, and branch are required for student registration.", err.Error())

	admin := &models.Actor{Role: models.RoleAdmin}
	_, err = f.svc.Auth.Register(ctx, admin, RegisterInput{Email: "c@college.edu", Password: "long-enough", Role: "DEAN"})
	require.Error(t, err)
	assert.Equal(t, "Invalid role.", err.Error())

	res, err := f.svc.Auth.Register(ctx, admin, RegisterInput{Email: "c@college.edu", Password: "long-enough", Role: "placement_coordinator"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoordinator, res.User.RoleType)
	assert.Nil(t, res.User.StudentID)
}

func TestLoginFlow_VerifyThenOTPThenToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registerStudent(t, f)
	verifyCode := mailedOTP(t, f)

	_, err := f.svc.Auth.Login(ctx, "asha@college.edu", "s3cret-pass")
	require.Error(t, err)
	assert.Equal(t, "Verify your email first.", err.Error())

	err = f.svc.Auth.VerifyEmail(ctx, "asha@college.edu", "000000x")
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)
	assert.Equal(t, "Invalid OTP.", err.Error())

	require.NoError(t, f.svc.Auth.VerifyEmail(ctx, "asha@college.edu", verifyCode))

	_, err = f.svc.Auth.Login(ctx, "asha@college.edu", "wrong-pass")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Equal(t, "Invalid credentials.", err.Error())

	_, err = f.svc.Auth.VerifyLogin(ctx, "asha@college.edu", "123456")
	require.ErrorIs(t, err, apperrors.ErrNoActiveOTP)
	assert.Equal(t, "No active OTP found.", err.Error())

	delivery, err := f.svc.Auth.Login(ctx, "ASHA@college.edu", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, 600, delivery.ExpiresInSeconds)
	assert.Equal(t, "Your login OTP", f.sender.last().Subject)
	loginCode := mailedOTP(t, f)

	res, err := f.svc.Auth.VerifyLogin(ctx, "asha@college.edu", loginCode)
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "Bearer", res.TokenType)

	_, err = f.svc.Auth.VerifyLogin(ctx, "asha@college.edu", loginCode)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveOTP)
}

func TestVerifyEmail_TooManyAttemptsDiscardsCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registerStudent(t, f)
	code := mailedOTP(t, f)

	for i := 1; i < otp.MaxAttempts; i++ {
		require.ErrorIs(t, f.svc.Auth.VerifyEmail(ctx, "asha@college.edu", "wrong"), apperrors.ErrInvalidOTP)
	}
	err := f.svc.Auth.VerifyEmail(ctx, "asha@college.edu", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)
	assert.Equal(t, "Too many invalid attempts. Request a new OTP.", err.Error())

	assert.ErrorIs(t, f.svc.Auth.VerifyEmail(ctx, "asha@college.edu", code), apperrors.ErrNoActiveOTP)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Auth.Login(context.Background(), "nobody@college.edu", "whatever1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestSendOTP_ExposesCodeWhenUndelivered(t *testing.T) {
	f := newFixture(t)
	f.sender.configured = false

	res := registerStudent(t, f)
	assert.Equal(t, models.NotificationNoMailServer, res.Delivery.NotificationStatus)
	require.NotNil(t, res.Delivery.Code)
	assert.NoError(t, f.svc.Auth.VerifyEmail(context.Background(), "asha@college.edu", *res.Delivery.Code))
}

func TestResendVerification_ReplacesCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registerStudent(t, f)
	first := mailedOTP(t, f)

	_, err := f.svc.Auth.ResendVerification(ctx, "asha@college.edu")
	require.NoError(t, err)
	second := mailedOTP(t, f)

	if first != second {
		assert.ErrorIs(t, f.svc.Auth.VerifyEmail(ctx, "asha@college.edu", first), apperrors.ErrInvalidOTP)
	}
	require.NoError(t, f.svc.Auth.VerifyEmail(ctx, "asha@college.edu", second))

	_, err = f.svc.Auth.ResendVerification(ctx, "asha@college.edu")
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateStaffUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Auth.CreateStaffUser(ctx, "s@college.edu", "long-enough", "STUDENT")
	require.Error(t, err)
	assert.Equal(t, "Admin can create only ADMIN or PLACEMENT_COORDINATOR here.", err.Error())

	user, err := f.svc.Auth.CreateStaffUser(ctx, "Coord@College.edu", "long-enough", "PLACEMENT_COORDINATOR")
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Equal(t, "coord@college.edu", user.Email)

	_, err = f.svc.Auth.CreateStaffUser(ctx, "coord@college.edu", "long-enough", "ADMIN")
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	users, err := f.svc.Auth.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
