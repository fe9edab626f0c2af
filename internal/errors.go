package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodePasswordTooLong  ErrorCode = "PASSWORD_TOO_LONG"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodePrincipalNotFound  ErrorCode = "PRINCIPAL_NOT_FOUND"

	// Refresh token failures all surface to callers as UNAUTHORIZED but keep
	// distinct codes so the audit trail can tell them apart.
	ErrCodeRefreshInvalid ErrorCode = "REFRESH_INVALID"
	ErrCodeRefreshRevoked ErrorCode = "REFRESH_REVOKED"
	ErrCodeRefreshExpired ErrorCode = "REFRESH_EXPIRED"

	ErrCodeAccessDenied    ErrorCode = "ACCESS_DENIED"
	ErrCodeRestrictedField ErrorCode = "RESTRICTED_FIELD"

	ErrCodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	ErrCodeOrganisationNotFound ErrorCode = "ORGANISATION_NOT_FOUND"
	ErrCodeDepartmentNotFound   ErrorCode = "DEPARTMENT_NOT_FOUND"

	ErrCodeDuplicateEmail      ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeDuplicateName       ErrorCode = "DUPLICATE_NAME"
	ErrCodeRoleAlreadyHeld     ErrorCode = "ROLE_ALREADY_HELD"
	ErrCodeOrganisationMismatch ErrorCode = "ORGANISATION_MISMATCH"
	ErrCodeSelfPromotion        ErrorCode = "SELF_PROMOTION"

	ErrCodeAuditWriteFailed ErrorCode = "AUDIT_WRITE_FAILED"
)

type AppError struct {
	Type       ErrorType `json:"type"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token expired. Please log in again.", ErrCodeTokenExpired)
	ErrPrincipalNotFound  = NewUnauthorizedError("Invalid or expired authentication token", ErrCodePrincipalNotFound)

	ErrRefreshInvalid = NewUnauthorizedError("Invalid refresh token", ErrCodeRefreshInvalid)
	ErrRefreshRevoked = NewUnauthorizedError("Refresh token revoked", ErrCodeRefreshRevoked)
	ErrRefreshExpired = NewUnauthorizedError("Refresh token expired", ErrCodeRefreshExpired)

	ErrForbidden = NewForbiddenError("Access denied", ErrCodeAccessDenied)

	ErrUserNotFound         = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrOrganisationNotFound = NewNotFoundError("Organisation not found", ErrCodeOrganisationNotFound)
	ErrDepartmentNotFound   = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)

	ErrDuplicateEmail = NewConflictError("Email already exists", ErrCodeDuplicateEmail)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType `json:"type"`
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
	})
}
