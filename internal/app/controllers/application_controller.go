package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placementcell/internal/app/models/dto"
	"github.com/yigit/placementcell/internal/app/services"
	"github.com/yigit/placementcell/internal/middleware"
	"github.com/yigit/placementcell/internal/pkg/helpers"
)

// ApplicationController handles applications and their status pipeline
type ApplicationController struct {
	applicationService services.ApplicationService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService services.ApplicationService) *ApplicationController {
	return &ApplicationController{applicationService: applicationService}
}

// SubmitApplication applies a student to a company after the eligibility gate
// @Summary Submit application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitApplicationRequest true "Student and company"
// @Success 201 {object} dto.APIResponse{data=models.Application}
// @Failure 409 {object} dto.ErrorResponse "Already applied"
// @Failure 422 {object} dto.ErrorResponse "Blocked by eligibility rules"
// @Router /applications [post]
func (c *ApplicationController) SubmitApplication(ctx *gin.Context) {
	var req dto.SubmitApplicationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	actor, _ := middleware.ActorFrom(ctx)
	app, err := c.applicationService.Submit(ctx.Request.Context(), actor, req.StudentID, req.CompanyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(app, "Application submitted."))
}

// ListApplications returns applications, optionally for one company
// @Summary List applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param companyId query int false "Company ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Application}
// @Router /applications [get]
func (c *ApplicationController) ListApplications(ctx *gin.Context) {
	companyID, ok := helpers.OptionalIDQuery(ctx, "companyId")
	if !ok {
		return
	}
	actor, _ := middleware.ActorFrom(ctx)
	apps, err := c.applicationService.List(ctx.Request.Context(), actor, companyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(apps, ""))
}

// UpdateApplicationStatus moves an application and refreshes placement status
// @Summary Update application status
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=services.StatusUpdateResult}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse
// @Router /applications/{id}/status [put]
func (c *ApplicationController) UpdateApplicationStatus(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id", "Application")
	if !ok {
		return
	}
	var req dto.UpdateApplicationStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	result, err := c.applicationService.UpdateStatus(ctx.Request.Context(), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Application status updated."))
}
