package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placementcell/internal/app/models/dto"
	"github.com/yigit/placementcell/internal/app/services"
	"github.com/yigit/placementcell/internal/middleware"
)

// Pinger reports backing store connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReportController serves dashboard counts, audit history and health
type ReportController struct {
	reportService services.ReportService
	db            Pinger
}

// NewReportController creates a new ReportController. db may be nil.
func NewReportController(reportService services.ReportService, db Pinger) *ReportController {
	return &ReportController{reportService: reportService, db: db}
}

// Dashboard returns headline counts scoped to the caller
// @Summary Dashboard counts
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=services.Dashboard}
// @Router /dashboard [get]
func (c *ReportController) Dashboard(ctx *gin.Context) {
	actor, _ := middleware.ActorFrom(ctx)
	dash, err := c.reportService.Dashboard(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dash, ""))
}

// BacklogHistory returns the backlog correction ledger, newest first
// @Summary Backlog correction history
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.BacklogUpdate}
// @Router /backlog-history [get]
func (c *ReportController) BacklogHistory(ctx *gin.Context) {
	history, err := c.reportService.BacklogHistory(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(history, ""))
}

// Health reports liveness and database reachability
func (c *ReportController) Health(ctx *gin.Context) {
	status := gin.H{"status": "ok", "database": "unchecked"}
	if c.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.db.Ping(pingCtx); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			ctx.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	ctx.JSON(http.StatusOK, status)
}
