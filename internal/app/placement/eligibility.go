package placement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yigit/placementcell/internal/app/models"
)

// Decision is the outcome of an eligibility check
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// Evaluate decides whether the student may apply to the company. Checks run
// in a fixed order and the first failing one supplies the reason.
// student.BlockedByCompany is used for the default block message when set.
func Evaluate(student *models.Student, company *models.Company) Decision {
	switch student.EligibilityStatus {
	case models.StatusExternalPlaced:
		return deny("Student is marked as already placed externally.")
	case models.StatusExternalIntern:
		return deny("Student is marked as already interned externally.")
	case models.StatusCampusIntern:
		return deny("Student is marked as already interned via campus placement.")
	case models.StatusBlockedByPolicy:
		if student.BlockReason != nil && *student.BlockReason != "" {
			return deny(*student.BlockReason)
		}
		by := "policy"
		if student.BlockedByCompany != nil {
			by = student.BlockedByCompany.Name
		}
		return deny(fmt.Sprintf("Blocked after selection in %s.", by))
	}

	if !branchAllowed(company.BranchList(), student.Branch) {
		return deny(fmt.Sprintf("%s is not eligible for %s", student.Branch, company.Name))
	}
	if student.CGPA < company.MinCGPA {
		return deny(fmt.Sprintf("CGPA %s is below min %s", formatFloat(student.CGPA), formatFloat(company.MinCGPA)))
	}
	if student.TotalBacklogs > company.MaxBacklogs {
		return deny(fmt.Sprintf("Backlogs %d exceed max %d", student.TotalBacklogs, company.MaxBacklogs))
	}
	return Decision{Allowed: true, Reason: "Eligible"}
}

func branchAllowed(branches []string, branch string) bool {
	branch = strings.ToUpper(strings.TrimSpace(branch))
	for _, b := range branches {
		if b == models.AllBranches || b == branch {
			return true
		}
	}
	return false
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
