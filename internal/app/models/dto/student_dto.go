package dto

// CreateStudentRequest represents a new student profile
type CreateStudentRequest struct {
	RollNo            string `json:"rollNo" binding:"required,rollno"`
	Name              string `json:"name" binding:"required"`
	Branch            string `json:"branch" binding:"required"`
	IsLateralEntry    bool   `json:"isLateralEntry"`
	CurrentSemester   int    `json:"currentSemester" binding:"omitempty,min=1,max=12"`
	ResumeLink        string `json:"resumeLink" binding:"omitempty,url"`
	EligibilityStatus string `json:"eligibilityStatus"`
	BlockReason       string `json:"blockReason"`
}

// ResumeLinkRequest updates a student's resume link
type ResumeLinkRequest struct {
	ResumeLink string `json:"resumeLink" binding:"required"`
}

// BacklogUpdateRequest is a manual backlog correction for one semester
type BacklogUpdateRequest struct {
	SemesterNo int    `json:"semesterNo" binding:"required,min=1"`
	NewBacklog *int   `json:"newBacklog" binding:"required,min=0"`
	Note       string `json:"note"`
}

// EligibilityStatusRequest sets a student's eligibility status by hand
type EligibilityStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}
