// Package placement holds the placement cell's decision rules: academic
// metrics, company eligibility, the blocking policy and export field
// resolution. Everything here is pure; callers load and persist records.
package placement

import (
	"github.com/shopspring/decimal"
	"github.com/yigit/placementcell/internal/app/models"
)

// LateralEntrySemester is the first semester counted for lateral-entry students
const LateralEntrySemester = 3

// FirstCountedSemester returns the lowest semester that contributes to CGPA
func FirstCountedSemester(lateralEntry bool) int {
	if lateralEntry {
		return LateralEntrySemester
	}
	return 1
}

// CGPA returns the credit-weighted mean SGPA of the counted semesters,
// rounded half-to-even to two decimal places. Semesters below the first
// counted semester and semesters without credits are ignored.
func CGPA(lateralEntry bool, records []models.SemesterPerformance) float64 {
	if len(records) == 0 {
		return 0
	}

	minSemester := FirstCountedSemester(lateralEntry)
	weighted := decimal.Zero
	credits := decimal.Zero
	for _, r := range records {
		if r.SemesterNo < minSemester || r.SemesterCredits <= 0 {
			continue
		}
		c := decimal.NewFromFloat(r.SemesterCredits)
		weighted = weighted.Add(decimal.NewFromFloat(r.SGPA).Mul(c))
		credits = credits.Add(c)
	}
	if !credits.IsPositive() {
		return 0
	}

	cgpa, _ := weighted.Div(credits).RoundBank(2).Float64()
	return cgpa
}

// Backlogs sums the non-negative backlog counts of every semester,
// including semesters excluded from CGPA.
func Backlogs(records []models.SemesterPerformance) int {
	total := 0
	for _, r := range records {
		if r.BacklogCount > 0 {
			total += r.BacklogCount
		}
	}
	return total
}

// Refresh recomputes the student's cached CGPA and backlog total from its
// full set of semester records. It must run after every change to them.
func Refresh(student *models.Student, records []models.SemesterPerformance) {
	student.CGPA = CGPA(student.IsLateralEntry, records)
	student.TotalBacklogs = Backlogs(records)
}
