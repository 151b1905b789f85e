package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placementcell/internal/app/models/dto"
	"github.com/yigit/placementcell/internal/pkg/apperrors"
	"github.com/yigit/placementcell/internal/pkg/logger"
)

// errorMessage prefers the user-facing message of a CustomError
func errorMessage(err error, fallback string) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}

// HandleAPIError maps service errors to HTTP responses
func HandleAPIError(c *gin.Context, err error) {
	var (
		status = http.StatusInternalServerError
		detail *dto.ErrorDetail
	)

	switch {
	case apperrors.IsValidation(err):
		status = http.StatusBadRequest
		detail = dto.NewErrorDetail(dto.ErrorCodeValidationFailed, errorMessage(err, "Validation failed"))
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
		detail = dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, errorMessage(err, "Resource not found"))
	case apperrors.IsConflict(err):
		status = http.StatusConflict
		detail = dto.NewErrorDetail(dto.ErrorCodeConflict, errorMessage(err, "Resource already exists"))
	case errors.Is(err, apperrors.ErrNotEligible):
		status = http.StatusUnprocessableEntity
		detail = dto.NewErrorDetail(dto.ErrorCodeNotEligible, errorMessage(err, "Student is not eligible"))
	case apperrors.Is(err, apperrors.ErrResumeRequired, apperrors.ErrNoStudentProfile):
		status = http.StatusUnprocessableEntity
		detail = dto.NewErrorDetail(dto.ErrorCodeValidationFailed, errorMessage(err, "Student profile incomplete"))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		status = http.StatusForbidden
		detail = dto.NewErrorDetail(dto.ErrorCodeForbidden, errorMessage(err, "Permission denied"))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, errorMessage(err, "Invalid credentials."))
	case errors.Is(err, apperrors.ErrEmailNotVerified):
		status = http.StatusForbidden
		detail = dto.NewErrorDetail(dto.ErrorCodeEmailNotVerified, errorMessage(err, "Verify your email first."))
	case errors.Is(err, apperrors.ErrInvalidOTP):
		status = http.StatusBadRequest
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidOTP, errorMessage(err, "Invalid OTP."))
	case errors.Is(err, apperrors.ErrNoActiveOTP):
		status = http.StatusBadRequest
		detail = dto.NewErrorDetail(dto.ErrorCodeNoActiveOTP, errorMessage(err, "No active OTP found."))
	case errors.Is(err, apperrors.ErrTokenExpired):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		detail = dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// RespondBadRequest writes a 400 for malformed path or query input
func RespondBadRequest(c *gin.Context, message, details string) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message)
	if details != "" {
		detail = detail.WithDetails(details)
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}
