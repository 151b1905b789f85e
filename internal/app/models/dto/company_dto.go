package dto

// CreateCompanyRequest represents a new recruiter and its eligibility rules
type CreateCompanyRequest struct {
	Name               string   `json:"name" binding:"required"`
	EligibleBranches   string   `json:"eligibleBranches" example:"CSE,IT"`
	MinCGPA            *float64 `json:"minCgpa" binding:"omitempty,gte=0,lte=10"`
	MaxBacklogs        *int     `json:"maxBacklogs" binding:"omitempty,min=0"`
	SelectionPolicy    string   `json:"selectionPolicy" example:"BLOCKING"`
	ExportTemplateJSON string   `json:"exportTemplateJson" example:"[{\"header\":\"Roll No\",\"source\":\"student.roll_no\"}]"`
}
