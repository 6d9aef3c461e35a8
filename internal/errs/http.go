package errs

import (
	"net/http"
)

func newError(kind Kind, message string) *HTTPError {
	status := StatusFor(kind)
	return &HTTPError{
		Kind:    kind,
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}

// NewUnauthorizedError creates a 401.
func NewUnauthorizedError(message string) *HTTPError {
	return newError(KindUnauthorized, message)
}

// NewInvalidOperationError creates a 403 for requests that break a domain rule,
// e.g. un-archiving a template.
func NewInvalidOperationError(message string) *HTTPError {
	return newError(KindInvalidOperation, message)
}

// NewBadRequestError creates a 400. code overrides the default "BAD_REQUEST"
// when non-nil.
func NewBadRequestError(message string, code *string, errors []FieldError, action *Action) *HTTPError {
	err := newError(KindValidation, message)
	if code != nil {
		err.Code = *code
	}
	err.Errors = errors
	err.Action = action
	return err
}

// NewNotFoundError creates a 404.
func NewNotFoundError(message string) *HTTPError {
	return newError(KindNotFound, message)
}

// NewRateLimitedError creates a 429.
func NewRateLimitedError(message string) *HTTPError {
	return newError(KindRateLimited, message)
}

// NewInternalServerError creates a 500 with the generic status text as message.
func NewInternalServerError() *HTTPError {
	return newError(KindInternal, http.StatusText(http.StatusInternalServerError))
}

// ValidationError wraps an arbitrary validation failure into a 400.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), nil, nil, nil)
}
