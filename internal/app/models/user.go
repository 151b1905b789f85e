package models

import (
	"time"
	"unicode/utf8"
)

// User defines the user model based on the 'users' table
type User struct {
	ID         int64     `json:"id" db:"id" example:"1"`
	Email      string    `json:"email" db:"email" example:"coordinator@college.edu"`
	Password   string    `json:"-" db:"password_hash"` // bcrypt hash, never serialized
	RoleType   RoleType  `json:"roleType" db:"role" example:"STUDENT"`
	IsVerified bool      `json:"isVerified" db:"is_verified"`
	StudentID  *int64    `json:"studentId,omitempty" db:"student_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Actor returns the authorization identity of the user
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Email: u.Email, Role: u.RoleType, StudentID: u.StudentID}
}

// Notification delivery outcomes
const (
	NotificationPending       = "PENDING"
	NotificationSent          = "SENT"
	NotificationFailed        = "FAILED"
	NotificationNoMailServer  = "NO_MAIL_SERVER_CONFIGURED"
	maxNotificationErrorBytes = 1024
)

// NotificationLog records every outbound email attempt
type NotificationLog struct {
	ID           int64     `json:"id" db:"id"`
	UserID       *int64    `json:"userId,omitempty" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	Subject      string    `json:"subject" db:"subject"`
	Body         string    `json:"-" db:"body"`
	Status       string    `json:"status" db:"status"`
	ErrorMessage *string   `json:"errorMessage,omitempty" db:"error_message"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// SetError records a delivery failure message, truncated to the column size
func (n *NotificationLog) SetError(msg string) {
	if len(msg) > maxNotificationErrorBytes {
		cut := maxNotificationErrorBytes
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	n.ErrorMessage = &msg
}
