package services

// Services bundles every application service for the HTTP layer
type Services struct {
	Auth         AuthService
	Student      StudentService
	Company      CompanyService
	Application  ApplicationService
	Import       ImportService
	Export       ExportService
	Notification NotificationService
	Report       ReportService
}
