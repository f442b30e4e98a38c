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
	ErrorTypeInvalidState ErrorType = "INVALID_STATE"
	ErrorTypeTransient    ErrorType = "TRANSIENT_ERROR"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidName      ErrorCode = "INVALID_NAME"
	ErrCodeInvalidLogoPatch ErrorCode = "INVALID_LOGO_PATCH"

	ErrCodeCompanyNotFound ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeBranchNotFound  ErrorCode = "BRANCH_NOT_FOUND"
	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"

	// Access-denial codes stay distinct so callers can tell "not yours"
	// from "not your branch" from "missing permission".
	ErrCodeRoleNotAllowed    ErrorCode = "ROLE_NOT_ALLOWED"
	ErrCodeNotOwner          ErrorCode = "NOT_OWNER"
	ErrCodeBranchMismatch    ErrorCode = "BRANCH_MISMATCH"
	ErrCodeMissingPermission ErrorCode = "MISSING_PERMISSION"

	ErrCodeNameUnavailable ErrorCode = "NAME_UNAVAILABLE"
	ErrCodeBranchInactive  ErrorCode = "BRANCH_INACTIVE"
	ErrCodeAlreadyArchived ErrorCode = "ALREADY_ARCHIVED"
	ErrCodeNotArchived     ErrorCode = "NOT_ARCHIVED"
	ErrCodeCompanyLimit    ErrorCode = "COMPANY_LIMIT_REACHED"

	ErrCodeTransientStorage ErrorCode = "TRANSIENT_STORAGE_ERROR"
	ErrCodeAssetStore       ErrorCode = "ASSET_STORE_ERROR"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeAccountSuspended   ErrorCode = "ACCOUNT_SUSPENDED"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
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

// Is lets sentinel AppErrors match wrapped copies by code.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
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

func NewInvalidStateError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidState,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewTransientError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTransient,
		Code:       ErrCodeTransientStorage,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
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

func NewExternalError(message string, code ErrorCode, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrCompanyNotFound = NewNotFoundError("company not found", ErrCodeCompanyNotFound)
	ErrBranchNotFound  = NewNotFoundError("branch not found", ErrCodeBranchNotFound)
	ErrUserNotFound    = NewNotFoundError("user not found", ErrCodeUserNotFound)

	ErrRoleNotAllowed    = NewForbiddenError("role is not allowed to perform this action", ErrCodeRoleNotAllowed)
	ErrNotOwner          = NewForbiddenError("resource is not owned by this account", ErrCodeNotOwner)
	ErrBranchMismatch    = NewForbiddenError("account is not assigned to this branch", ErrCodeBranchMismatch)
	ErrMissingPermission = NewForbiddenError("permission not granted for this module action", ErrCodeMissingPermission)

	ErrCompanyNameUnavailable = NewConflictError("company name is already taken", ErrCodeNameUnavailable)
	ErrCompanyAlreadyArchived = NewInvalidStateError("company is already archived", ErrCodeAlreadyArchived)
	ErrCompanyNotArchived     = NewInvalidStateError("company is not archived", ErrCodeNotArchived)
	ErrCompanyLimitReached    = NewValidationError("company limit reached for this account", ErrCodeCompanyLimit)

	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrAccountSuspended   = NewForbiddenError("account is suspended", ErrCodeAccountSuspended)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsAccessDenied reports whether err belongs to the authorization-denial
// family, regardless of which gate produced it.
func IsAccessDenied(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeForbidden
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
