package placement

import (
	"github.com/yigit/placementcell/internal/app/models"
)

// ExportTimeLayout formats timestamps in exported sheets
const ExportTimeLayout = "2006-01-02 15:04:05"

// DefaultExportTemplate is used when a company has no template of its own
func DefaultExportTemplate() []models.ExportColumn {
	return []models.ExportColumn{
		{Header: "Roll No", Source: "student.roll_no"},
		{Header: "Name", Source: "student.name"},
		{Header: "Branch", Source: "student.branch"},
		{Header: "CGPA", Source: "student.cgpa"},
		{Header: "Backlogs", Source: "student.backlogs"},
		{Header: "Applied At", Source: "application.applied_at"},
	}
}

// ResolveSource returns the value of a source key for one application.
// app.Student and app.Company must be loaded. Unknown keys resolve to "".
func ResolveSource(source string, app *models.Application) interface{} {
	student := app.Student
	resume := ""
	if student.ResumeLink != nil {
		resume = *student.ResumeLink
	}

	switch source {
	case "student.roll_no":
		return student.RollNo
	case "student.name":
		return student.Name
	case "student.branch":
		return student.Branch
	case "student.cgpa":
		return student.CGPA
	case "student.backlogs":
		return student.TotalBacklogs
	case "student.lateral_entry":
		if student.IsLateralEntry {
			return "YES"
		}
		return "NO"
	case "student.resume_link", "resume.link", "resume.path", "resume.filename":
		return resume
	case "student.eligibility_status":
		return string(student.EligibilityStatus)
	case "application.status":
		return string(app.Status)
	case "application.applied_at":
		return app.AppliedAt.UTC().Format(ExportTimeLayout)
	case "company.name":
		return app.Company.Name
	}
	return ""
}
