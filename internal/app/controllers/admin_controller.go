package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placementcell/internal/app/models/dto"
	"github.com/yigit/placementcell/internal/app/services"
	"github.com/yigit/placementcell/internal/middleware"
)

// AdminController handles staff accounts and mail diagnostics
type AdminController struct {
	authService         services.AuthService
	notificationService services.NotificationService
}

// NewAdminController creates a new AdminController
func NewAdminController(authService services.AuthService, notificationService services.NotificationService) *AdminController {
	return &AdminController{
		authService:         authService,
		notificationService: notificationService,
	}
}

// ListUsers returns every account
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.User}
// @Router /admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	users, err := c.authService.ListUsers(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(users, ""))
}

// CreateUser creates a verified staff account
// @Summary Create staff user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "Staff account"
// @Success 201 {object} dto.APIResponse{data=models.User}
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Router /admin/users [post]
func (c *AdminController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	user, err := c.authService.CreateStaffUser(ctx.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(user, "User created."))
}

// MailDebug shows which mail settings are loaded and the latest attempts
// @Summary Mail diagnostics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=services.MailDebugReport}
// @Router /admin/mail-debug [get]
func (c *AdminController) MailDebug(ctx *gin.Context) {
	report, err := c.notificationService.MailDebug(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report, ""))
}
