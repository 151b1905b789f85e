package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placementcell/internal/app/models/dto"
	"github.com/yigit/placementcell/internal/app/services"
	"github.com/yigit/placementcell/internal/middleware"
	"github.com/yigit/placementcell/internal/pkg/helpers"
)

// StudentController handles student profiles and their academic records
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// CreateStudent handles student creation
// @Summary Create a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Roll number already exists"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.Create(ctx.Request.Context(), services.CreateStudentInput{
		RollNo:            req.RollNo,
		Name:              req.Name,
		Branch:            req.Branch,
		IsLateralEntry:    req.IsLateralEntry,
		CurrentSemester:   req.CurrentSemester,
		ResumeLink:        req.ResumeLink,
		EligibilityStatus: req.EligibilityStatus,
		BlockReason:       req.BlockReason,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(student, "Student added."))
}

// ListStudents returns all students ordered by branch and roll number
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Student}
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	students, err := c.studentService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(students, ""))
}

// GetStudent returns one student with semester records
// @Summary Get student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 403 {object} dto.ErrorResponse "Students can view only their own profile"
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id", "Student")
	if !ok {
		return
	}
	actor, _ := middleware.ActorFrom(ctx)
	student, err := c.studentService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, ""))
}

// DeleteStudent removes a student with all semester and backlog records
// @Summary Delete student
// @Tags students
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id", "Student")
	if !ok {
		return
	}
	if err := c.studentService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Student deleted."))
}

// UpdateResumeLink sets the resume link
// @Summary Update resume link
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.ResumeLinkRequest true "Resume link"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Router /students/{id}/resume-link [put]
func (c *StudentController) UpdateResumeLink(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id", "Student")
	if !ok {
		return
	}
	var req dto.ResumeLinkRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	actor, _ := middleware.ActorFrom(ctx)
	student, err := c.studentService.UpdateResumeLink(ctx.Request.Context(), actor, id, req.ResumeLink)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, "Resume link updated."))
}

// UpdateBacklog corrects one semester's backlog count
// @Summary Correct backlog count
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.BacklogUpdateRequest true "Correction"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse "Semester record not found"
// @Router /students/{id}/backlogs [post]
func (c *StudentController) UpdateBacklog(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id", "Student")
	if !ok {
		return
	}
	var req dto.BacklogUpdateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	student, entry, err := c.studentService.CorrectBacklog(ctx.Request.Context(), id, services.BacklogCorrection{
		SemesterNo: req.SemesterNo,
		NewBacklog: *req.NewBacklog,
		Note:       req.Note,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"student": student, "update": entry}, "Backlog updated and audit log recorded."))
}

// UpdateEligibilityStatus sets the eligibility status by hand
// @Summary Update eligibility status
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.EligibilityStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Router /students/{id}/eligibility-status [put]
func (c *StudentController) UpdateEligibilityStatus(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id", "Student")
	if !ok {
		return
	}
	var req dto.EligibilityStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	student, err := c.studentService.UpdateEligibilityStatus(ctx.Request.Context(), id, req.Status, req.Note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, "Eligibility status updated."))
}
