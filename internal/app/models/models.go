package models

import "strings"

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin       RoleType = "ADMIN"
	RoleCoordinator RoleType = "PLACEMENT_COORDINATOR"
	RoleStudent     RoleType = "STUDENT"
)

// IsValid reports whether the role is one of the known roles
func (r RoleType) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleStudent:
		return true
	}
	return false
}

// IsStaff reports whether the role manages placement data
func (r RoleType) IsStaff() bool {
	return r == RoleAdmin || r == RoleCoordinator
}

// EligibilityStatus is the placement standing of a student.
//
// EXTERNAL_PLACED, EXTERNAL_INTERN and CAMPUS_INTERN are set only by staff.
// BLOCKED_BY_POLICY is owned by the blocking policy resolver (staff may also
// set it manually).
type EligibilityStatus string

const (
	StatusEligible        EligibilityStatus = "ELIGIBLE"
	StatusExternalIntern  EligibilityStatus = "EXTERNAL_INTERN"
	StatusCampusIntern    EligibilityStatus = "CAMPUS_INTERN"
	StatusExternalPlaced  EligibilityStatus = "EXTERNAL_PLACED"
	StatusBlockedByPolicy EligibilityStatus = "BLOCKED_BY_POLICY"
)

// ParseEligibilityStatus normalizes and validates a status string
func ParseEligibilityStatus(s string) (EligibilityStatus, bool) {
	status := EligibilityStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case StatusEligible, StatusExternalIntern, StatusCampusIntern, StatusExternalPlaced, StatusBlockedByPolicy:
		return status, true
	}
	return "", false
}

// IsManualOnly reports whether the status can only be set by staff action
func (s EligibilityStatus) IsManualOnly() bool {
	switch s {
	case StatusExternalIntern, StatusCampusIntern, StatusExternalPlaced:
		return true
	}
	return false
}

// SelectionPolicy decides whether a selection at a company ends a student's run
type SelectionPolicy string

const (
	PolicyBlocking    SelectionPolicy = "BLOCKING"
	PolicyNonBlocking SelectionPolicy = "NON_BLOCKING"
)

// ParseSelectionPolicy normalizes and validates a policy string
func ParseSelectionPolicy(s string) (SelectionPolicy, bool) {
	policy := SelectionPolicy(strings.ToUpper(strings.TrimSpace(s)))
	switch policy {
	case PolicyBlocking, PolicyNonBlocking:
		return policy, true
	}
	return "", false
}

// ApplicationStatus is the hiring stage of an application
type ApplicationStatus string

const (
	AppStatusApplied     ApplicationStatus = "APPLIED"
	AppStatusShortlisted ApplicationStatus = "SHORTLISTED"
	AppStatusInterview   ApplicationStatus = "INTERVIEW"
	AppStatusSelected    ApplicationStatus = "SELECTED"
	AppStatusRejected    ApplicationStatus = "REJECTED"
)

// ParseApplicationStatus normalizes and validates an application status string
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	status := ApplicationStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case AppStatusApplied, AppStatusShortlisted, AppStatusInterview, AppStatusSelected, AppStatusRejected:
		return status, true
	}
	return "", false
}

// Actor is the authenticated user performing an operation
type Actor struct {
	UserID    int64
	Email     string
	Role      RoleType
	StudentID *int64 // linked student profile, students only
}

// OwnsStudent reports whether the actor is the student with the given ID
func (a Actor) OwnsStudent(studentID int64) bool {
	return a.Role == RoleStudent && a.StudentID != nil && *a.StudentID == studentID
}
