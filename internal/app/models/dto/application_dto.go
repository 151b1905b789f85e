package dto

// SubmitApplicationRequest applies a student to a company. StudentID is
// ignored for student callers, who always apply for themselves.
type SubmitApplicationRequest struct {
	StudentID int64 `json:"studentId"`
	CompanyID int64 `json:"companyId" binding:"required,min=1"`
}

// UpdateApplicationStatusRequest moves an application to a new stage
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
