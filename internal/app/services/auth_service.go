package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/repositories"
	"github.com/yigit/placementcell/internal/pkg/apperrors"
	"github.com/yigit/placementcell/internal/pkg/auth"
	"github.com/yigit/placementcell/internal/pkg/otp"
)

// RegisterInput carries a registration request
type RegisterInput struct {
	Email          string
	Password       string
	Role           string
	RollNo         string
	Name           string
	Branch         string
	IsLateralEntry bool
}

// OTPDelivery reports how a one-time code reached the user. Code is only
// set when the email was not delivered and codes may be echoed.
type OTPDelivery struct {
	NotificationStatus string  `json:"notificationStatus"`
	Code               *string `json:"otp,omitempty"`
	ExpiresInSeconds   int     `json:"expiresIn"`
}

// RegisterResult is the outcome of a registration
type RegisterResult struct {
	User     *models.User `json:"user"`
	Delivery OTPDelivery  `json:"delivery"`
}

// LoginResult is returned after a verified login OTP
type LoginResult struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresIn   int          `json:"expiresIn"`
	User        *models.User `json:"user"`
}

// AuthService handles accounts and the password + OTP login flow
type AuthService interface {
	// Register creates an account; only admins may pick a role other than STUDENT
	Register(ctx context.Context, actor *models.Actor, in RegisterInput) (*RegisterResult, error)
	VerifyEmail(ctx context.Context, email, code string) error
	ResendVerification(ctx context.Context, email string) (*OTPDelivery, error)
	// Login checks the password and sends a login OTP
	Login(ctx context.Context, email, password string) (*OTPDelivery, error)
	VerifyLogin(ctx context.Context, email, code string) (*LoginResult, error)
	CreateStaffUser(ctx context.Context, email, password, role string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

type authServiceImpl struct {
	store         repositories.Store
	otps          *otp.Manager
	jwt           *auth.JWTService
	notifications NotificationService
	exposeOTP     bool
	logger        zerolog.Logger
}

// NewAuthService creates a new AuthService. exposeOTP allows undelivered
// codes to be returned to the caller, which only makes sense outside production.
func NewAuthService(
	store repositories.Store,
	otps *otp.Manager,
	jwtService *auth.JWTService,
	notifications NotificationService,
	exposeOTP bool,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		store:         store,
		otps:          otps,
		jwt:           jwtService,
		notifications: notifications,
		exposeOTP:     exposeOTP,
		logger:        logger.With().Str("service", "auth").Logger(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authServiceImpl) Register(ctx context.Context, actor *models.Actor, in RegisterInput) (*RegisterResult, error) {
	email := normalizeEmail(in.Email)
	role := models.RoleType(strings.ToUpper(strings.TrimSpace(in.Role)))
	if role == "" || actor == nil || actor.Role != models.RoleAdmin {
		role = models.RoleStudent
	}

	if !role.IsValid() {
		return nil, apperrors.NewValidationError("Invalid role.")
	}
	if email == "" {
		return nil, apperrors.NewValidationError("Email is required.")
	}
	exists, err := s.store.Users().EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &apperrors.CustomError{Err: apperrors.ErrEmailAlreadyExists, Message: "Email already registered."}
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Password should be at least %d characters.", auth.MinPasswordLength))
	}

	rollNo := strings.ToUpper(strings.TrimSpace(in.RollNo))
	name := strings.TrimSpace(in.Name)
	branch := strings.ToUpper(strings.TrimSpace(in.Branch))
	if role == models.RoleStudent && (rollNo == "" || name == "" || branch == "") {
		return nil, apperrors.NewValidationError("Roll no, name, and branch are required for student registration.")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, Password: hash, RoleType: role}
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		if role == models.RoleStudent {
			student, err := tx.Students().GetByRollNoForUpdate(ctx, rollNo)
			if errors.Is(err, apperrors.ErrStudentNotFound) {
				student = &models.Student{
					RollNo:            rollNo,
					Name:              name,
					Branch:            branch,
					IsLateralEntry:    in.IsLateralEntry,
					CurrentSemester:   1,
					EligibilityStatus: models.StatusEligible,
				}
				err = tx.Students().Create(ctx, student)
			}
			if err != nil {
				return err
			}
			user.StudentID = &student.ID
		}
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("User registered")

	delivery, err := s.sendOTP(ctx, user, otp.PurposeVerifyEmail, "Verify your Placement Portal account", "Your OTP is %s. It expires in %d minutes.")
	if err != nil {
		return nil, err
	}
	return &RegisterResult{User: user, Delivery: *delivery}, nil
}

func (s *authServiceImpl) sendOTP(ctx context.Context, user *models.User, purpose otp.Purpose, subject, bodyFormat string) (*OTPDelivery, error) {
	code, err := s.otps.Issue(ctx, user.ID, purpose)
	if err != nil {
		return nil, err
	}
	ttl := s.otps.TTL()
	body := fmt.Sprintf(bodyFormat, code, int(ttl/time.Minute))

	delivery := &OTPDelivery{NotificationStatus: models.NotificationNoMailServer, ExpiresInSeconds: int(ttl.Seconds())}
	if s.notifications != nil {
		delivery.NotificationStatus = s.notifications.Send(ctx, &user.ID, user.Email, subject, body).Status
	}
	if delivery.NotificationStatus != models.NotificationSent {
		s.logger.Warn().Int64("userID", user.ID).Str("purpose", string(purpose)).Str("status", delivery.NotificationStatus).Msg("OTP email not delivered")
		if s.exposeOTP {
			delivery.Code = &code
		}
	}
	return delivery, nil
}

func (s *authServiceImpl) verifyOTP(ctx context.Context, userID int64, purpose otp.Purpose, code string) error {
	err := s.otps.Verify(ctx, userID, purpose, code)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, otp.ErrNoActiveCode):
		return &apperrors.CustomError{Err: apperrors.ErrNoActiveOTP, Message: "No active OTP found."}
	case errors.Is(err, otp.ErrMismatch):
		return &apperrors.CustomError{Err: apperrors.ErrInvalidOTP, Message: "Invalid OTP."}
	case errors.Is(err, otp.ErrTooManyAttempts):
		return &apperrors.CustomError{Err: apperrors.ErrInvalidOTP, Message: "Too many invalid attempts. Request a new OTP."}
	}
	return err
}

func (s *authServiceImpl) userByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.Users().GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, &apperrors.CustomError{Err: apperrors.ErrInvalidCredentials, Message: "Invalid credentials."}
	}
	return user, err
}

func (s *authServiceImpl) VerifyEmail(ctx context.Context, email, code string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return nil
	}
	if err := s.verifyOTP(ctx, user.ID, otp.PurposeVerifyEmail, code); err != nil {
		return err
	}
	if err := s.store.Users().SetVerified(ctx, user.ID); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", user.ID).Msg("Email verified")
	return nil
}

func (s *authServiceImpl) ResendVerification(ctx context.Context, email string) (*OTPDelivery, error) {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, apperrors.NewValidationError("Email already verified.")
	}
	return s.sendOTP(ctx, user, otp.PurposeVerifyEmail, "Verify your Placement Portal account", "Your OTP is %s. It expires in %d minutes.")
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*OTPDelivery, error) {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.Password, password) {
		s.logger.Info().Int64("userID", user.ID).Msg("Login rejected: wrong password")
		return nil, &apperrors.CustomError{Err: apperrors.ErrInvalidCredentials, Message: "Invalid credentials."}
	}
	if !user.IsVerified {
		return nil, &apperrors.CustomError{Err: apperrors.ErrEmailNotVerified, Message: "Verify your email first."}
	}
	return s.sendOTP(ctx, user, otp.PurposeLogin, "Your login OTP", "Your login OTP is %s. It expires in %d minutes.")
}

func (s *authServiceImpl) VerifyLogin(ctx context.Context, email, code string) (*LoginResult, error) {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.verifyOTP(ctx, user.ID, otp.PurposeLogin, code); err != nil {
		return nil, err
	}

	token, expiresIn, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", user.ID).Msg("User logged in")
	return &LoginResult{AccessToken: token, TokenType: "Bearer", ExpiresIn: expiresIn, User: user}, nil
}

func (s *authServiceImpl) CreateStaffUser(ctx context.Context, email, password, role string) (*models.User, error) {
	roleType := models.RoleType(strings.ToUpper(strings.TrimSpace(role)))
	if !roleType.IsStaff() {
		return nil, apperrors.NewValidationError("Admin can create only ADMIN or PLACEMENT_COORDINATOR here.")
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.NewValidationError("Email is required.")
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Password should be at least %d characters.", auth.MinPasswordLength))
	}
	exists, err := s.store.Users().EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &apperrors.CustomError{Err: apperrors.ErrEmailAlreadyExists, Message: "Email already registered."}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: email, Password: hash, RoleType: roleType, IsVerified: true}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", user.ID).Str("role", string(roleType)).Msg("Staff user created")
	return user, nil
}

func (s *authServiceImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.Users().List(ctx)
}

func (s *authServiceImpl) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.store.Users().GetByID(ctx, id)
}
