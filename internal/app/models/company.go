package models

import (
	"encoding/json"
	"strings"
	"time"
)

// AllBranches is the branch rule admitting every branch
const AllBranches = "ALL"

// Company is a recruiter and its eligibility policy
type Company struct {
	ID                 int64           `json:"id" db:"id"`
	Name               string          `json:"name" db:"name" example:"Acme Systems"`
	EligibleBranches   string          `json:"eligibleBranches" db:"eligible_branches" example:"CSE,IT"`
	MinCGPA            float64         `json:"minCgpa" db:"min_cgpa" example:"7"`
	MaxBacklogs        int             `json:"maxBacklogs" db:"max_backlogs" example:"0"`
	SelectionPolicy    SelectionPolicy `json:"selectionPolicy" db:"selection_policy" example:"BLOCKING"`
	ExportTemplateJSON string          `json:"-" db:"export_template_json"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
}

// ExportColumn maps one spreadsheet header to a source key
type ExportColumn struct {
	Header string `json:"header"`
	Source string `json:"source"`
}

// BranchList returns the normalized branch whitelist; ["ALL"] admits everyone
func (c *Company) BranchList() []string {
	text := strings.TrimSpace(c.EligibleBranches)
	if text == "" || strings.EqualFold(text, AllBranches) {
		return []string{AllBranches}
	}
	var branches []string
	for _, item := range strings.Split(text, ",") {
		if item = strings.TrimSpace(item); item != "" {
			branches = append(branches, strings.ToUpper(item))
		}
	}
	return branches
}

// ExportTemplate decodes the stored template; invalid JSON yields an empty template
func (c *Company) ExportTemplate() []ExportColumn {
	var columns []ExportColumn
	if err := json.Unmarshal([]byte(c.ExportTemplateJSON), &columns); err != nil {
		return nil
	}
	return columns
}
