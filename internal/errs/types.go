package errs

import (
	"net/http"
	"strings"
)

// Kind is the closed set of failure categories the API can report.
type Kind int

const (
	// KindInternal is the catch-all. Its message never leaks internals.
	KindInternal Kind = iota
	// KindValidation means the request did not satisfy its schema.
	KindValidation
	// KindNotFound means the addressed record does not exist in the caller's account.
	KindNotFound
	// KindInvalidOperation means the request is well formed but violates a domain rule.
	KindInvalidOperation
	// KindUnauthorized is produced by the auth middleware only.
	KindUnauthorized
	// KindRateLimited is produced by the rate limiter only.
	KindRateLimited
)

var kindStatus = map[Kind]int{
	KindInternal:         http.StatusInternalServerError,
	KindValidation:       http.StatusBadRequest,
	KindNotFound:         http.StatusNotFound,
	KindInvalidOperation: http.StatusForbidden,
	KindUnauthorized:     http.StatusUnauthorized,
	KindRateLimited:      http.StatusTooManyRequests,
}

// Kinds lists every Kind.
func Kinds() []Kind {
	return []Kind{
		KindInternal,
		KindValidation,
		KindNotFound,
		KindInvalidOperation,
		KindUnauthorized,
		KindRateLimited,
	}
}

// StatusFor returns the HTTP status for a kind. Unknown kinds are 500.
func StatusFor(k Kind) int {
	if status, ok := kindStatus[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// FieldError is a single field-level validation failure.
//
//	{ "field": "name", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType tells a client what to do next.
type ActionType string

const (
	ActionTypeRedirect ActionType = "redirect"
)

// Action is an optional client instruction, e.g. redirect to sign-in.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the error type handlers and middlewares return.
//
// Status is always StatusFor(Kind); constructors keep them in sync.
type HTTPError struct {
	Kind    Kind         `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Errors  []FieldError `json:"errors,omitempty"`
	Action  *Action      `json:"action,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError of the same kind.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithMessage returns a copy of the error with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	cp := *e
	cp.Message = message
	return &cp
}

// ErrorBody is the JSON body of every failed response.
type ErrorBody struct {
	Error string     `json:"error"`
	Meta  *ErrorMeta `json:"meta,omitempty"`
}

// ErrorMeta carries the machine-readable part of a failure.
type ErrorMeta struct {
	Code   string       `json:"code"`
	Errors []FieldError `json:"errors,omitempty"`
	Action *Action      `json:"action,omitempty"`
}

// Body renders the failure envelope for this error.
func (e *HTTPError) Body() ErrorBody {
	body := ErrorBody{Error: e.Message}
	if len(e.Errors) > 0 || e.Action != nil {
		body.Meta = &ErrorMeta{
			Code:   e.Code,
			Errors: e.Errors,
			Action: e.Action,
		}
	}
	return body
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
