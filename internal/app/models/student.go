package models

import "time"

// Student defines the student model based on the 'students' table.
// CGPA and TotalBacklogs are caches derived from the student's semester
// performance records; only placement.Refresh writes them.
type Student struct {
	ID                 int64             `json:"id" db:"id" example:"1"`
	RollNo             string            `json:"rollNo" db:"roll_no" example:"CS2021001"`
	Name               string            `json:"name" db:"name" example:"Asha Rao"`
	Branch             string            `json:"branch" db:"branch" example:"CSE"`
	IsLateralEntry     bool              `json:"isLateralEntry" db:"is_lateral_entry"`
	CurrentSemester    int               `json:"currentSemester" db:"current_semester" example:"5"`
	CGPA               float64           `json:"cgpa" db:"cgpa" example:"8.5"`
	TotalBacklogs      int               `json:"totalBacklogs" db:"total_backlogs" example:"0"`
	ResumeLink         *string           `json:"resumeLink,omitempty" db:"resume_link"`
	EligibilityStatus  EligibilityStatus `json:"eligibilityStatus" db:"eligibility_status" example:"ELIGIBLE"`
	BlockReason        *string           `json:"blockReason,omitempty" db:"block_reason"`
	BlockedByCompanyID *int64            `json:"blockedByCompanyId,omitempty" db:"blocked_by_company_id"`
	CreatedAt          time.Time         `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	BlockedByCompany *Company              `json:"blockedByCompany,omitempty"`
	Semesters        []SemesterPerformance `json:"semesters,omitempty"`
}

// SemesterPerformance is one student's result for one semester
type SemesterPerformance struct {
	ID              int64     `json:"id" db:"id"`
	StudentID       int64     `json:"studentId" db:"student_id"`
	SemesterNo      int       `json:"semesterNo" db:"semester_no" example:"3"`
	SGPA            float64   `json:"sgpa" db:"sgpa" example:"8.25"`
	SemesterCredits float64   `json:"semesterCredits" db:"semester_credits" example:"22"`
	BacklogCount    int       `json:"backlogCount" db:"backlog_count" example:"0"`
	ImportedAt      time.Time `json:"importedAt" db:"imported_at"`
	SourceFile      *string   `json:"sourceFile,omitempty" db:"source_file"`
}

// BacklogUpdate is an append-only audit entry for a manual backlog correction
type BacklogUpdate struct {
	ID         int64     `json:"id" db:"id"`
	StudentID  int64     `json:"studentId" db:"student_id"`
	SemesterNo int       `json:"semesterNo" db:"semester_no"`
	OldBacklog int       `json:"oldBacklog" db:"old_backlog"`
	NewBacklog int       `json:"newBacklog" db:"new_backlog"`
	Note       string    `json:"note" db:"note"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`

	// Populated by the history report
	RollNo      string `json:"rollNo,omitempty"`
	StudentName string `json:"studentName,omitempty"`
}
