package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placementcell/internal/app/models/dto"
	"github.com/yigit/placementcell/internal/app/services"
	"github.com/yigit/placementcell/internal/middleware"
	"github.com/yigit/placementcell/internal/pkg/gradesheet"
)

// ImportController handles gradesheet imports
type ImportController struct {
	importService services.ImportService
	maxUploadSize int64
}

// NewImportController creates a new ImportController. maxUploadMB bounds the
// request body of a PDF upload.
func NewImportController(importService services.ImportService, maxUploadMB int) *ImportController {
	return &ImportController{
		importService: importService,
		maxUploadSize: int64(maxUploadMB) << 20,
	}
}

// ImportPDF reconciles an uploaded gradesheet PDF
// @Summary Import gradesheet PDF
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Gradesheet PDF"
// @Param branch formData string true "Branch"
// @Param semesterNo formData int true "Semester number"
// @Param semesterCredits formData number true "Semester credits"
// @Success 200 {object} dto.APIResponse{data=services.ImportReport}
// @Failure 400 {object} dto.ErrorResponse "No valid rows"
// @Router /imports/pdf [post]
func (c *ImportController) ImportPDF(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadSize)

	var form dto.ImportForm
	if !middleware.BindForm(ctx, &form) {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.RespondBadRequest(ctx, "PDF file is required.", err.Error())
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		middleware.RespondBadRequest(ctx, "Could not read uploaded file.", err.Error())
		return
	}
	defer file.Close()

	report, err := c.importService.ImportDocument(ctx.Request.Context(), services.ImportRequest{
		Branch:          form.Branch,
		SemesterNo:      form.SemesterNo,
		SemesterCredits: form.SemesterCredits,
	}, fileHeader.Filename, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report, "Import completed."))
}

// ImportTables reconciles tables extracted by another tool
// @Summary Import extracted tables
// @Tags imports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ImportTablesRequest true "Tables"
// @Success 200 {object} dto.APIResponse{data=services.ImportReport}
// @Router /imports/tables [post]
func (c *ImportController) ImportTables(ctx *gin.Context) {
	var req dto.ImportTablesRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tables := make([]gradesheet.Table, 0, len(req.Tables))
	for _, t := range req.Tables {
		tables = append(tables, gradesheet.Table(t))
	}

	report, err := c.importService.ImportTables(ctx.Request.Context(), services.ImportRequest{
		Branch:          req.Branch,
		SemesterNo:      req.SemesterNo,
		SemesterCredits: req.SemesterCredits,
		SourceFile:      req.SourceFile,
	}, tables)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report, "Import completed."))
}
