package placement

import (
	"fmt"

	"github.com/yigit/placementcell/internal/app/models"
)

// BlockingSelection is a SELECTED application at a BLOCKING company
type BlockingSelection struct {
	CompanyID   int64
	CompanyName string
}

// BlockMessage is the reason stored when a blocking selection blocks a student
func BlockMessage(companyName string) string {
	return fmt.Sprintf("Selected in blocking company: %s", companyName)
}

// ResolveBlocking applies the blocking policy to the student. selection is
// the student's most recent SELECTED application at a BLOCKING company, or
// nil when there is none. It reports whether the student changed.
//
// Manual-only statuses are never overridden: a student marked placed or
// interned keeps that status even after a blocking selection.
func ResolveBlocking(student *models.Student, selection *BlockingSelection) bool {
	if student.EligibilityStatus.IsManualOnly() {
		return false
	}

	if selection != nil {
		reason := BlockMessage(selection.CompanyName)
		companyID := selection.CompanyID
		changed := student.EligibilityStatus != models.StatusBlockedByPolicy ||
			student.BlockedByCompanyID == nil || *student.BlockedByCompanyID != companyID ||
			student.BlockReason == nil || *student.BlockReason != reason
		student.EligibilityStatus = models.StatusBlockedByPolicy
		student.BlockedByCompanyID = &companyID
		student.BlockReason = &reason
		return changed
	}

	if student.EligibilityStatus == models.StatusBlockedByPolicy {
		student.EligibilityStatus = models.StatusEligible
		student.BlockedByCompanyID = nil
		student.BlockReason = nil
		student.BlockedByCompany = nil
		return true
	}
	return false
}
