package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/deppfellow/codetemplate/internal/errs"
	"github.com/deppfellow/codetemplate/internal/model"
)

// Validatable is implemented by every request type.
//
// Validate usually just calls Struct(r). Types with rules tags can't express
// return CustomValidationErrors instead.
type Validatable interface {
	Validate() error
}

// RuleValidatable is implemented by requests with domain rules that run after
// the schema passed. ValidateRules returns an *errs.HTTPError, usually 403.
type RuleValidatable interface {
	ValidateRules() error
}

// GatewayBinder receives the identity injected by the API gateway.
type GatewayBinder interface {
	BindGateway(gw model.GatewayData)
}

// AccountBinder receives the identity of the authenticated session.
type AccountBinder interface {
	BindAccount(acc model.Account)
}

// CustomValidationError is a single field failure produced outside struct tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors aggregates CustomValidationError values.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// tagOrder is the order in which struct tags are consulted to name a field.
var tagOrder = []string{"json", "query", "param", "gateway", "account"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range tagOrder {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return strings.ToLower(fld.Name)
	})
	return v
}

// Struct validates a struct against its `validate` tags.
func Struct(s any) error {
	return validate.Struct(s)
}

// FieldCheck is one scalar validation for Fields.
type FieldCheck struct {
	Name  string
	Value any
	Tag   string
}

// Fields runs each check with validator.Var and aggregates every failure.
func Fields(checks ...FieldCheck) error {
	var out CustomValidationErrors
	for _, check := range checks {
		err := validate.Var(check.Value, check.Tag)
		if err == nil {
			continue
		}

		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		for _, fe := range ve {
			out = append(out, CustomValidationError{
				Field:   check.Name,
				Message: messageFor(fe),
			})
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// BindAndValidate fills payload from the request and validates it.
//
//  1. c.Bind fills `param`, `query` (GET/DELETE only) and `json` fields.
//  2. Gateway and session identity are copied in through the binder hooks,
//     so clients can never supply them.
//  3. payload.Validate runs.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return bindError(c, err)
	}

	if b, ok := payload.(GatewayBinder); ok {
		b.BindGateway(model.GetGatewayData(c))
	}
	if b, ok := payload.(AccountBinder); ok {
		b.BindAccount(model.GetAccount(c))
	}

	if err := payload.Validate(); err != nil {
		return ToHTTPError(err)
	}

	return nil
}

// bindError turns an echo binding failure into a 400 that names the field.
// The decoder's own message is never sent to the client.
func bindError(c echo.Context, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fieldTypeError(bodyFieldName(typeErr.Field), typeMessage(typeErr.Type.Kind()))
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		if name := inputNameFor(c, numErr.Num); name != "" {
			return fieldTypeError(name, "must be a number")
		}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return errs.NewBadRequestError("Invalid request body", nil, nil, nil)
	}

	return errs.NewBadRequestError("Invalid request", nil, nil, nil)
}

func fieldTypeError(field, message string) error {
	return errs.NewBadRequestError("Validation failed", nil, []errs.FieldError{{Field: field, Error: message}}, nil)
}

// bodyFieldName keeps the last segment of a JSON path such as
// "code template.status", matching the names the validator reports.
func bodyFieldName(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

// inputNameFor finds the path parameter or query key that carried value.
// Path parameters are bound first, so they are checked first.
func inputNameFor(c echo.Context, value string) string {
	values := c.ParamValues()
	for i, name := range c.ParamNames() {
		if i < len(values) && values[i] == value {
			return name
		}
	}

	for name, vs := range c.QueryParams() {
		for _, v := range vs {
			if v == value {
				return name
			}
		}
	}
	return ""
}

func typeMessage(kind reflect.Kind) string {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "must be a number"
	case reflect.String:
		return "must be a string"
	case reflect.Bool:
		return "must be a boolean"
	default:
		return "has an invalid type"
	}
}

// ToHTTPError converts a Validate() error into a 400. *errs.HTTPError values
// pass through untouched.
func ToHTTPError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	fieldErrors := extractFieldErrors(err)
	if fieldErrors == nil {
		return errs.ValidationError(err)
	}
	return errs.NewBadRequestError("Validation failed", nil, fieldErrors, nil)
}

func extractFieldErrors(err error) []errs.FieldError {
	var fieldErrors []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, ce := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: ce.Field, Error: ce.Message})
		}
		return fieldErrors
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: fe.Field(),
				Error: messageFor(fe),
			})
		}
	}

	return fieldErrors
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"

	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())

	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())

	case "numeric":
		return "must be a number"

	case "dive":
		return "some items are invalid"

	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s: %s:%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s: %s", fe.Field(), fe.Tag())
	}
}
