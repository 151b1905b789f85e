package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placementcell/internal/app/models/dto"
	"github.com/yigit/placementcell/internal/app/services"
	"github.com/yigit/placementcell/internal/middleware"
	"github.com/yigit/placementcell/internal/pkg/helpers"
)

// CompanyController handles recruiters and their application exports
type CompanyController struct {
	companyService services.CompanyService
	exportService  services.ExportService
}

// NewCompanyController creates a new CompanyController
func NewCompanyController(companyService services.CompanyService, exportService services.ExportService) *CompanyController {
	return &CompanyController{
		companyService: companyService,
		exportService:  exportService,
	}
}

// CreateCompany handles company creation
// @Summary Create a company
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCompanyRequest true "Company information"
// @Success 201 {object} dto.APIResponse{data=models.Company}
// @Failure 400 {object} dto.ErrorResponse "Invalid template or policy"
// @Failure 409 {object} dto.ErrorResponse "Company already exists"
// @Router /companies [post]
func (c *CompanyController) CreateCompany(ctx *gin.Context) {
	var req dto.CreateCompanyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	company, err := c.companyService.Create(ctx.Request.Context(), services.CreateCompanyInput{
		Name:               req.Name,
		EligibleBranches:   req.EligibleBranches,
		MinCGPA:            req.MinCGPA,
		MaxBacklogs:        req.MaxBacklogs,
		SelectionPolicy:    req.SelectionPolicy,
		ExportTemplateJSON: req.ExportTemplateJSON,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(company, "Company added."))
}

// ListCompanies returns all companies
// @Summary List companies
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Company}
// @Router /companies [get]
func (c *CompanyController) ListCompanies(ctx *gin.Context) {
	companies, err := c.companyService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(companies, ""))
}

// GetCompany returns one company
// @Summary Get company
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {object} dto.APIResponse{data=models.Company}
// @Failure 404 {object} dto.ErrorResponse
// @Router /companies/{id} [get]
func (c *CompanyController) GetCompany(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id", "Company")
	if !ok {
		return
	}
	company, err := c.companyService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(company, ""))
}

// DeleteCompany removes a company and its applications
// @Summary Delete company
// @Tags companies
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {object} dto.APIResponse
// @Router /companies/{id} [delete]
func (c *CompanyController) DeleteCompany(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id", "Company")
	if !ok {
		return
	}
	if err := c.companyService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Company deleted."))
}

// ExportApplications downloads the company's applications as a workbook
// @Summary Export applications
// @Tags companies
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Router /companies/{id}/export [get]
func (c *CompanyController) ExportApplications(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id", "Company")
	if !ok {
		return
	}
	wb, err := c.exportService.CompanyWorkbook(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", wb.Filename))
	ctx.Data(http.StatusOK, services.ExportContentType, wb.Content)
}
