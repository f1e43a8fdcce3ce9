package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized   ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden      ErrorType = "FORBIDDEN"
	ErrorTypeConflict       ErrorType = "CONFLICT"
	ErrorTypeRateLimited    ErrorType = "RATE_LIMITED"
	ErrorTypeInternal       ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal       ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidPassword  ErrorCode = "INVALID_PASSWORD"
	ErrCodeInvalidName      ErrorCode = "INVALID_NAME"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidSlug      ErrorCode = "INVALID_SLUG"

	ErrCodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	ErrCodeBlogNotFound     ErrorCode = "BLOG_NOT_FOUND"
	ErrCodeCategoryNotFound ErrorCode = "CATEGORY_NOT_FOUND"
	ErrCodeEmailTaken       ErrorCode = "EMAIL_TAKEN"
	ErrCodeSlugTaken        ErrorCode = "SLUG_TAKEN"

	ErrCodeMissingPermission ErrorCode = "MISSING_PERMISSION"
	ErrCodeOwnerProtected    ErrorCode = "OWNER_PROTECTED"
	ErrCodeSelfDeletion      ErrorCode = "SELF_DELETION"
	ErrCodeTooManyRequests   ErrorCode = "TOO_MANY_REQUESTS"
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
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
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

func NewRateLimitedError(message string, retryAfterSeconds int64) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       ErrCodeTooManyRequests,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
		Details:    map[string]int64{"retry_after_seconds": retryAfterSeconds},
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

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrMissingPermission = NewForbiddenError("Forbidden: insufficient permissions", ErrCodeMissingPermission)
	ErrOwnerProtected    = NewForbiddenError("Owner accounts cannot be modified or deleted", ErrCodeOwnerProtected)
	ErrSelfDeletion      = NewForbiddenError("You cannot delete your own account", ErrCodeSelfDeletion)

	ErrUserNotFound     = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrBlogNotFound     = NewNotFoundError("Blog post not found", ErrCodeBlogNotFound)
	ErrCategoryNotFound = NewNotFoundError("Category not found", ErrCodeCategoryNotFound)
	ErrEmailTaken       = NewConflictError("Email address is already in use", ErrCodeEmailTaken)
	ErrSlugTaken        = NewConflictError("Slug is already in use", ErrCodeSlugTaken)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
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
