package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/models/dto"
	"github.com/yigit/placementcell/internal/app/services"
	"github.com/yigit/placementcell/internal/middleware"
)

// AuthController handles registration and the password + OTP login flow
type AuthController struct {
	authService services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Register handles account registration
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.APIResponse{data=services.RegisterResult}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	var actor *models.Actor
	if a, ok := middleware.ActorFrom(ctx); ok {
		actor = &a
	}

	result, err := c.authService.Register(ctx.Request.Context(), actor, services.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		RollNo:         req.RollNo,
		Name:           req.Name,
		Branch:         req.Branch,
		IsLateralEntry: req.IsLateralEntry,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(result, otpMessage("Account created.", result.Delivery)))
}

// otpMessage tells the caller where the code went
func otpMessage(prefix string, d services.OTPDelivery) string {
	switch d.NotificationStatus {
	case models.NotificationSent:
		return prefix + " OTP sent to email."
	case models.NotificationNoMailServer:
		return prefix + " Mail server not configured."
	default:
		return prefix + " OTP email failed to send."
	}
}

// VerifyEmail confirms the account email with the registration OTP
// @Summary Verify account email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Email and OTP"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired OTP"
// @Router /auth/verify-email [post]
func (c *AuthController) VerifyEmail(ctx *gin.Context) {
	var req dto.VerifyOTPRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := c.authService.VerifyEmail(ctx.Request.Context(), req.Email, req.OTP); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Email verified. Please login."))
}

// ResendVerification issues a fresh registration OTP
// @Summary Resend verification OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.EmailRequest true "Account email"
// @Success 200 {object} dto.APIResponse{data=services.OTPDelivery}
// @Router /auth/resend-verification [post]
func (c *AuthController) ResendVerification(ctx *gin.Context) {
	var req dto.EmailRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	delivery, err := c.authService.ResendVerification(ctx.Request.Context(), req.Email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(delivery, otpMessage("Verification code issued.", *delivery)))
}

// Login checks the password and sends a login OTP
// @Summary Start login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=services.OTPDelivery}
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Email not verified"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	delivery, err := c.authService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(delivery, otpMessage("Login code issued.", *delivery)))
}

// VerifyLogin exchanges the login OTP for an access token
// @Summary Complete login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Email and OTP"
// @Success 200 {object} dto.APIResponse{data=services.LoginResult}
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired OTP"
// @Router /auth/verify-login [post]
func (c *AuthController) VerifyLogin(ctx *gin.Context) {
	var req dto.VerifyOTPRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	result, err := c.authService.VerifyLogin(ctx.Request.Context(), req.Email, req.OTP)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Logged in successfully."))
}

// Me returns the authenticated account
// @Summary Current account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	actor, _ := middleware.ActorFrom(ctx)
	user, err := c.authService.GetUser(ctx.Request.Context(), actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, ""))
}
