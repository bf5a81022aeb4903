package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeAppError   = "APP_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeCredential = "CREDENTIAL_ERROR"
	CodeAnalysis   = "ANALYSIS_ERROR"
	CodeBusy       = "BUSY"
	CodeNotFound   = "NOT_FOUND"
	CodeService    = "SERVICE_ERROR"
	CodeCache      = "CACHE_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
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

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// AsAppError finds the first *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var carrier interface{ App() *AppError }
	if stderrors.As(err, &carrier) {
		return carrier.App(), true
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type ValidationError struct {
	*AppError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: http.StatusBadRequest,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

func (e *ValidationError) App() *AppError { return e.AppError }

// CredentialError reports a missing or rejected API credential. Message is
// already localized for the caller.
type CredentialError struct {
	*AppError
	Missing bool
}

func NewCredentialError(message string, missing bool, cause error) *CredentialError {
	return &CredentialError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCredential,
			StatusCode: http.StatusUnauthorized,
			Context:    map[string]any{"missing": missing},
			Cause:      cause,
		},
		Missing: missing,
	}
}

func (e *CredentialError) App() *AppError { return e.AppError }

// AnalysisError is the single user-facing failure of a report fetch.
type AnalysisError struct {
	*AppError
	Language string
}

func NewAnalysisError(message, language string, cause error) *AnalysisError {
	return &AnalysisError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeAnalysis,
			StatusCode: http.StatusBadGateway,
			Context:    map[string]any{"language": language},
			Cause:      cause,
		},
		Language: language,
	}
}

func (e *AnalysisError) App() *AppError { return e.AppError }

// Error hides the cause; the message is what users see.
func (e *AnalysisError) Error() string {
	return e.Message
}

type BusyError struct {
	*AppError
	Phase string
}

func NewBusyError(message, phase string) *BusyError {
	return &BusyError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeBusy,
			StatusCode: http.StatusConflict,
			Context:    map[string]any{"phase": phase},
		},
		Phase: phase,
	}
}

func (e *BusyError) App() *AppError { return e.AppError }

type NotFoundError struct {
	*AppError
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		AppError: &AppError{
			Message:    fmt.Sprintf("%s not found: %s", resource, id),
			Code:       CodeNotFound,
			StatusCode: http.StatusNotFound,
			Context: map[string]any{
				"resource": resource,
				"id":       id,
			},
		},
		Resource: resource,
		ID:       id,
	}
}

func (e *NotFoundError) App() *AppError { return e.AppError }

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, statusCode int, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeService,
			StatusCode: statusCode,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

func (e *ServiceError) App() *AppError { return e.AppError }

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

func (e *CacheError) App() *AppError { return e.AppError }
