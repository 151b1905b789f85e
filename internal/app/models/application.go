package models

import "time"

// Application links one student to one company
type Application struct {
	ID         int64             `json:"id" db:"id"`
	StudentID  int64             `json:"studentId" db:"student_id"`
	CompanyID  int64             `json:"companyId" db:"company_id"`
	Status     ApplicationStatus `json:"status" db:"status" example:"APPLIED"`
	AppliedAt  time.Time         `json:"appliedAt" db:"applied_at"`
	ExportedAt *time.Time        `json:"exportedAt,omitempty" db:"exported_at"`

	// Relations (populated when needed)
	Student *Student `json:"student,omitempty"`
	Company *Company `json:"company,omitempty"`
}
