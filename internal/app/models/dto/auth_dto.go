package dto

// RegisterRequest represents an account registration. Role is honored only
// for admin callers; student fields are required for STUDENT accounts.
type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required"`
	Role           string `json:"role"`
	RollNo         string `json:"rollNo"`
	Name           string `json:"name"`
	Branch         string `json:"branch"`
	IsLateralEntry bool   `json:"isLateralEntry"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyOTPRequest submits a one-time code for an account
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

// EmailRequest identifies an account by email
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CreateUserRequest is the admin form for staff accounts
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=ADMIN PLACEMENT_COORDINATOR"`
}
