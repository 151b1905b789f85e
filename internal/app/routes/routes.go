package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/placementcell/internal/app/controllers"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/middleware"
)

// Controllers groups the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Auth        *controllers.AuthController
	Student     *controllers.StudentController
	Company     *controllers.CompanyController
	Application *controllers.ApplicationController
	Import      *controllers.ImportController
	Report      *controllers.ReportController
	Admin       *controllers.AdminController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/healthz", c.Report.Health)

	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		// Admins may register staff accounts through the same endpoint
		auth.POST("/register", authMiddleware.OptionalAuth(), c.Auth.Register)
		auth.POST("/verify-email", c.Auth.VerifyEmail)
		auth.POST("/resend-verification", c.Auth.ResendVerification)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/verify-login", c.Auth.VerifyLogin)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", c.Auth.Me)
		authenticated.GET("/dashboard", c.Report.Dashboard)

		// Students see only their own profile, the service enforces it
		authenticated.GET("/students/:id", c.Student.GetStudent)
		authenticated.PUT("/students/:id/resume-link", c.Student.UpdateResumeLink)

		authenticated.GET("/companies", c.Company.ListCompanies)
		authenticated.GET("/companies/:id", c.Company.GetCompany)

		authenticated.POST("/applications", c.Application.SubmitApplication)
		authenticated.GET("/applications", c.Application.ListApplications)
	}

	staff := authenticated.Group("")
	staff.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleCoordinator))
	{
		students := staff.Group("/students")
		{
			students.POST("", c.Student.CreateStudent)
			students.GET("", c.Student.ListStudents)
			students.DELETE("/:id", c.Student.DeleteStudent)
			students.POST("/:id/backlogs", c.Student.UpdateBacklog)
			students.PUT("/:id/eligibility-status", c.Student.UpdateEligibilityStatus)
		}

		companies := staff.Group("/companies")
		{
			companies.POST("", c.Company.CreateCompany)
			companies.DELETE("/:id", c.Company.DeleteCompany)
			companies.GET("/:id/export", c.Company.ExportApplications)
		}

		staff.PUT("/applications/:id/status", c.Application.UpdateApplicationStatus)

		imports := staff.Group("/imports")
		{
			imports.POST("/pdf", c.Import.ImportPDF)
			imports.POST("/tables", c.Import.ImportTables)
		}

		staff.GET("/backlog-history", c.Report.BacklogHistory)
	}

	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/users", c.Admin.ListUsers)
		admin.POST("/users", c.Admin.CreateUser)
		admin.GET("/mail-debug", c.Admin.MailDebug)
	}
}
