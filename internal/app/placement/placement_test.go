package placement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/placementcell/internal/app/models"
)

func perf(sem int, sgpa, credits float64, backlog int) models.SemesterPerformance {
	return models.SemesterPerformance{SemesterNo: sem, SGPA: sgpa, SemesterCredits: credits, BacklogCount: backlog}
}

func strPtr(s string) *string { return &s }

func TestCGPA(t *testing.T) {
	t.Run("no records", func(t *testing.T) {
		assert.Equal(t, 0.0, CGPA(false, nil))
	})

	t.Run("credit weighted mean", func(t *testing.T) {
		records := []models.SemesterPerformance{perf(1, 8.0, 20, 0), perf(2, 9.0, 20, 0)}
		assert.Equal(t, 8.5, CGPA(false, records))
	})

	t.Run("order independent", func(t *testing.T) {
		a := []models.SemesterPerformance{perf(1, 7.1, 18, 0), perf(2, 8.3, 22, 0), perf(3, 9.05, 24, 0)}
		b := []models.SemesterPerformance{a[2], a[0], a[1]}
		assert.Equal(t, CGPA(false, a), CGPA(false, b))
	})

	t.Run("lateral entry ignores first two semesters", func(t *testing.T) {
		records := []models.SemesterPerformance{perf(1, 4.0, 20, 0), perf(2, 4.0, 20, 0), perf(3, 9.0, 20, 0)}
		assert.Equal(t, 9.0, CGPA(true, records))
		assert.Equal(t, 5.67, CGPA(false, records))
	})

	t.Run("lateral entry with only early semesters", func(t *testing.T) {
		records := []models.SemesterPerformance{perf(1, 8.0, 20, 0), perf(2, 9.0, 20, 0)}
		assert.Equal(t, 0.0, CGPA(true, records))
	})

	t.Run("zero credit semesters are ignored", func(t *testing.T) {
		records := []models.SemesterPerformance{perf(1, 2.0, 0, 0), perf(2, 7.5, 20, 0)}
		assert.Equal(t, 7.5, CGPA(false, records))
		assert.Equal(t, 0.0, CGPA(false, []models.SemesterPerformance{perf(1, 9.0, 0, 0)}))
	})

	t.Run("rounds half to even", func(t *testing.T) {
		// (8.125*1 + 8.125*1) / 2 = 8.125 -> 8.12
		records := []models.SemesterPerformance{perf(1, 8.125, 1, 0), perf(2, 8.125, 1, 0)}
		assert.Equal(t, 8.12, CGPA(false, records))
		// 8.135 -> 8.14
		assert.Equal(t, 8.14, CGPA(false, []models.SemesterPerformance{perf(1, 8.135, 1, 0)}))
	})

	t.Run("rounds once from the exact mean", func(t *testing.T) {
		// mean is 8.125 + 0.005/2000000001, just above the half
		records := []models.SemesterPerformance{perf(1, 8.13, 1000000001, 0), perf(2, 8.12, 1000000000, 0)}
		assert.Equal(t, 8.13, CGPA(false, records))
	})
}

func TestBacklogs(t *testing.T) {
	records := []models.SemesterPerformance{perf(1, 6, 20, 2), perf(2, 6, 20, -3), perf(3, 6, 0, 1)}
	assert.Equal(t, 3, Backlogs(records))
	assert.Equal(t, 0, Backlogs(nil))
}

func TestRefreshCountsLateralBacklogs(t *testing.T) {
	student := &models.Student{IsLateralEntry: true, CGPA: 1, TotalBacklogs: 99}
	records := []models.SemesterPerformance{perf(1, 5, 20, 2), perf(3, 8, 20, 1)}

	Refresh(student, records)

	assert.Equal(t, 8.0, student.CGPA)
	assert.Equal(t, 3, student.TotalBacklogs)
}

func TestEvaluate(t *testing.T) {
	company := &models.Company{Name: "Acme", EligibleBranches: "CSE, it", MinCGPA: 7, MaxBacklogs: 1}
	eligible := func() *models.Student {
		return &models.Student{Branch: "CSE", CGPA: 8, TotalBacklogs: 0, EligibilityStatus: models.StatusEligible}
	}

	cases := []struct {
		name    string
		mutate  func(s *models.Student)
		allowed bool
		reason  string
	}{
		{"eligible", func(s *models.Student) {}, true, "Eligible"},
		{"placed externally", func(s *models.Student) { s.EligibilityStatus = models.StatusExternalPlaced }, false, "Student is marked as already placed externally."},
		{"external intern", func(s *models.Student) { s.EligibilityStatus = models.StatusExternalIntern }, false, "Student is marked as already interned externally."},
		{"campus intern", func(s *models.Student) { s.EligibilityStatus = models.StatusCampusIntern }, false, "Student is marked as already interned via campus placement."},
		{"blocked with reason", func(s *models.Student) {
			s.EligibilityStatus = models.StatusBlockedByPolicy
			s.BlockReason = strPtr("Selected in blocking company: Globex")
		}, false, "Selected in blocking company: Globex"},
		{"blocked without reason names company", func(s *models.Student) {
			s.EligibilityStatus = models.StatusBlockedByPolicy
			s.BlockedByCompany = &models.Company{Name: "Globex"}
		}, false, "Blocked after selection in Globex."},
		{"blocked without reason or company", func(s *models.Student) { s.EligibilityStatus = models.StatusBlockedByPolicy }, false, "Blocked after selection in policy."},
		{"branch case insensitive", func(s *models.Student) { s.Branch = "it" }, true, "Eligible"},
		{"branch not listed", func(s *models.Student) { s.Branch = "ME" }, false, "ME is not eligible for Acme"},
		{"cgpa below min", func(s *models.Student) { s.CGPA = 6.5 }, false, "CGPA 6.5 is below min 7.0"},
		{"cgpa equal to min", func(s *models.Student) { s.CGPA = 7 }, true, "Eligible"},
		{"backlogs above max", func(s *models.Student) { s.TotalBacklogs = 2 }, false, "Backlogs 2 exceed max 1"},
		{"backlogs equal to max", func(s *models.Student) { s.TotalBacklogs = 1 }, true, "Eligible"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := eligible()
			tc.mutate(s)
			d := Evaluate(s, company)
			assert.Equal(t, tc.allowed, d.Allowed)
			assert.Equal(t, tc.reason, d.Reason)
		})
	}
}

func TestEvaluateBlockTakesPriorityOverCGPA(t *testing.T) {
	s := &models.Student{
		Branch:            "CSE",
		CGPA:              5,
		EligibilityStatus: models.StatusBlockedByPolicy,
		BlockReason:       strPtr("Selected in blocking company: Globex"),
	}
	d := Evaluate(s, &models.Company{Name: "Acme", EligibleBranches: "ALL", MinCGPA: 7, MaxBacklogs: 999})
	assert.False(t, d.Allowed)
	assert.Equal(t, "Selected in blocking company: Globex", d.Reason)
}

func TestEvaluateAllBranches(t *testing.T) {
	s := &models.Student{Branch: "ECE", CGPA: 9, EligibilityStatus: models.StatusEligible}
	for _, rule := range []string{"ALL", "all", "", "CSE,ALL"} {
		d := Evaluate(s, &models.Company{Name: "Acme", EligibleBranches: rule, MaxBacklogs: 999})
		assert.True(t, d.Allowed, rule)
	}
}

func TestResolveBlocking(t *testing.T) {
	t.Run("blocks on blocking selection", func(t *testing.T) {
		s := &models.Student{EligibilityStatus: models.StatusEligible}
		changed := ResolveBlocking(s, &BlockingSelection{CompanyID: 7, CompanyName: "Globex"})
		assert.True(t, changed)
		assert.Equal(t, models.StatusBlockedByPolicy, s.EligibilityStatus)
		assert.Equal(t, int64(7), *s.BlockedByCompanyID)
		assert.Equal(t, "Selected in blocking company: Globex", *s.BlockReason)

		assert.False(t, ResolveBlocking(s, &BlockingSelection{CompanyID: 7, CompanyName: "Globex"}))
	})

	t.Run("reverts when no selection remains", func(t *testing.T) {
		id := int64(7)
		s := &models.Student{EligibilityStatus: models.StatusBlockedByPolicy, BlockedByCompanyID: &id, BlockReason: strPtr("x")}
		assert.True(t, ResolveBlocking(s, nil))
		assert.Equal(t, models.StatusEligible, s.EligibilityStatus)
		assert.Nil(t, s.BlockedByCompanyID)
		assert.Nil(t, s.BlockReason)
	})

	t.Run("eligible stays eligible", func(t *testing.T) {
		s := &models.Student{EligibilityStatus: models.StatusEligible}
		assert.False(t, ResolveBlocking(s, nil))
		assert.Equal(t, models.StatusEligible, s.EligibilityStatus)
	})

	t.Run("manual statuses are never touched", func(t *testing.T) {
		for _, status := range []models.EligibilityStatus{models.StatusExternalPlaced, models.StatusExternalIntern, models.StatusCampusIntern} {
			s := &models.Student{EligibilityStatus: status}
			assert.False(t, ResolveBlocking(s, &BlockingSelection{CompanyID: 1, CompanyName: "Globex"}))
			assert.Equal(t, status, s.EligibilityStatus)
			assert.Nil(t, s.BlockedByCompanyID)
			assert.False(t, ResolveBlocking(s, nil))
			assert.Equal(t, status, s.EligibilityStatus)
		}
	})
}

func TestResolveSource(t *testing.T) {
	applied := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	app := &models.Application{
		Status:    models.AppStatusShortlisted,
		AppliedAt: applied,
		Student: &models.Student{
			RollNo: "CS2021001", Name: "Asha", Branch: "CSE", CGPA: 8.5, TotalBacklogs: 1,
			IsLateralEntry: true, ResumeLink: strPtr("https://cv.example/asha"),
			EligibilityStatus: models.StatusEligible,
		},
		Company: &models.Company{Name: "Acme"},
	}

	assert.Equal(t, "CS2021001", ResolveSource("student.roll_no", app))
	assert.Equal(t, 8.5, ResolveSource("student.cgpa", app))
	assert.Equal(t, 1, ResolveSource("student.backlogs", app))
	assert.Equal(t, "YES", ResolveSource("student.lateral_entry", app))
	assert.Equal(t, "https://cv.example/asha", ResolveSource("resume.link", app))
	assert.Equal(t, "SHORTLISTED", ResolveSource("application.status", app))
	assert.Equal(t, "2025-01-02 03:04:05", ResolveSource("application.applied_at", app))
	assert.Equal(t, "Acme", ResolveSource("company.name", app))
	assert.Equal(t, "", ResolveSource("student.favourite_colour", app))

	app.Student.ResumeLink = nil
	assert.Equal(t, "", ResolveSource("student.resume_link", app))
}
