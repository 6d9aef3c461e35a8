package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/codetemplate/internal/errs"
	"github.com/deppfellow/codetemplate/internal/model"
)

type widgetRequest struct {
	ID        int64  `param:"widget_id" json:"-" validate:"required,min=1"`
	Name      string `json:"name" validate:"required,max=5"`
	AccountID string `json:"-" gateway:"account_id" validate:"required"`
	OrgID     string `json:"-" account:"org_id"`
}

func (r *widgetRequest) Validate() error { return Struct(r) }

func (r *widgetRequest) BindGateway(gw model.GatewayData) { r.AccountID = gw.AccountID }

func (r *widgetRequest) BindAccount(acc model.Account) { r.OrgID = acc.ID }

func newContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/widgets/5", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/widgets/:widget_id")
	c.SetParamNames("widget_id")
	c.SetParamValues("5")
	return c, rec
}

func TestBindAndValidate_MergesSources(t *testing.T) {
	c, _ := newContext(`{"name":"abc","account_id":"spoofed"}`)
	c.Set(model.GatewayDataKey, model.GatewayData{AccountID: "acc_1"})
	c.Set(model.AccountKey, model.Account{ID: "org_1"})

	req := &widgetRequest{}
	require.NoError(t, BindAndValidate(c, req))

	assert.Equal(t, int64(5), req.ID)
	assert.Equal(t, "abc", req.Name)
	assert.Equal(t, "acc_1", req.AccountID)
	assert.Equal(t, "org_1", req.OrgID)
}

func TestBindAndValidate_FieldErrors(t *testing.T) {
	c, _ := newContext(`{"name":"too long"}`)

	err := BindAndValidate(c, &widgetRequest{})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "Validation failed", httpErr.Message)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "name", Error: "must not exceed 5 characters"},
		{Field: "account_id", Error: "is required"},
	}, httpErr.Errors)
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	c, _ := newContext(`{"name":`)

	err := BindAndValidate(c, &widgetRequest{})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, errs.KindValidation, httpErr.Kind)
	assert.True(t, strings.HasPrefix(httpErr.Message, "Invalid request"))
	assert.NotContains(t, httpErr.Message, "EOF")
}

func TestBindAndValidate_TypeMismatchNamesField(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		param     string
		body      string
		wantField errs.FieldError
	}{
		{
			name:      "body field",
			target:    "/widgets/5",
			param:     "5",
			body:      `{"name":5}`,
			wantField: errs.FieldError{Field: "name", Error: "must be a string"},
		},
		{
			name:      "path parameter",
			target:    "/widgets/abc",
			param:     "abc",
			body:      `{"name":"abc"}`,
			wantField: errs.FieldError{Field: "widget_id", Error: "must be a number"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			c := e.NewContext(req, httptest.NewRecorder())
			c.SetPath("/widgets/:widget_id")
			c.SetParamNames("widget_id")
			c.SetParamValues(tt.param)

			err := BindAndValidate(c, &widgetRequest{})

			var httpErr *errs.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Status)
			assert.Equal(t, "Validation failed", httpErr.Message)
			assert.Equal(t, []errs.FieldError{tt.wantField}, httpErr.Errors)
		})
	}
}

func TestBindAndValidate_QueryTypeMismatch(t *testing.T) {
	type pageRequest struct {
		PageNo int `query:"page_no"`
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/widgets?page_no=two", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := bindError(c, c.Bind(&pageRequest{}))

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, []errs.FieldError{{Field: "page_no", Error: "must be a number"}}, httpErr.Errors)
	assert.NotContains(t, httpErr.Message, "strconv")
}

func TestFields_Aggregates(t *testing.T) {
	err := Fields(
		FieldCheck{Name: "a", Value: "", Tag: "required"},
		FieldCheck{Name: "b", Value: 0, Tag: "required"},
		FieldCheck{Name: "c", Value: 3, Tag: "min=1"},
	)

	var custom CustomValidationErrors
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, CustomValidationErrors{
		{Field: "a", Message: "is required"},
		{Field: "b", Message: "is required"},
	}, custom)

	assert.NoError(t, Fields(FieldCheck{Name: "c", Value: 3, Tag: "min=1"}))
}

func TestToHTTPError_PassesThroughHTTPError(t *testing.T) {
	orig := errs.NewInvalidOperationError("no")
	assert.Same(t, orig, ToHTTPError(orig))
}
