package dto

// ImportForm is the multipart form of a gradesheet PDF upload
type ImportForm struct {
	Branch          string  `form:"branch" binding:"required"`
	SemesterNo      int     `form:"semesterNo" binding:"required,min=1"`
	SemesterCredits float64 `form:"semesterCredits"`
}

// ImportTablesRequest imports tables that were extracted elsewhere
type ImportTablesRequest struct {
	Branch          string       `json:"branch" binding:"required"`
	SemesterNo      int          `json:"semesterNo" binding:"required,min=1"`
	SemesterCredits float64      `json:"semesterCredits"`
	SourceFile      string       `json:"sourceFile"`
	Tables          [][][]string `json:"tables" binding:"required,min=1"`
}
