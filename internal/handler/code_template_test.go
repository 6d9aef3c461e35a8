package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/codetemplate/internal/config"
	"github.com/deppfellow/codetemplate/internal/errs"
	"github.com/deppfellow/codetemplate/internal/middleware"
	"github.com/deppfellow/codetemplate/internal/model"
	"github.com/deppfellow/codetemplate/internal/model/codetemplate"
	"github.com/deppfellow/codetemplate/internal/server"
)

type fakeService struct {
	listResult *codetemplate.ListResult
	record     *codetemplate.CodeTemplate
	err        error

	gotList   codetemplate.ListQuery
	gotGet    codetemplate.GetQuery
	gotCreate codetemplate.CreateInput
	gotUpdate codetemplate.UpdateInput
	gotClone  codetemplate.CloneInput
	gotDelete codetemplate.DeleteInput
	calls     int
}

func (f *fakeService) GetCodeTemplateList(_ context.Context, q codetemplate.ListQuery) (*codetemplate.ListResult, error) {
	f.calls++
	f.gotList = q
	if f.err != nil {
		return nil, f.err
	}
	return f.listResult, nil
}

func (f *fakeService) GetCodeTemplate(_ context.Context, q codetemplate.GetQuery) (*codetemplate.CodeTemplate, error) {
	f.calls++
	f.gotGet = q
	return f.record, f.err
}

func (f *fakeService) CreateCodeTemplate(_ context.Context, in codetemplate.CreateInput) (*codetemplate.CodeTemplate, error) {
	f.calls++
	f.gotCreate = in
	return f.record, f.err
}

func (f *fakeService) UpdateCodeTemplate(_ context.Context, in codetemplate.UpdateInput) (*codetemplate.CodeTemplate, error) {
	f.calls++
	f.gotUpdate = in
	return f.record, f.err
}

func (f *fakeService) CloneCodeTemplate(_ context.Context, in codetemplate.CloneInput) (*codetemplate.CodeTemplate, error) {
	f.calls++
	f.gotClone = in
	return f.record, f.err
}

func (f *fakeService) DeleteCodeTemplate(_ context.Context, in codetemplate.DeleteInput) (*codetemplate.CodeTemplate, error) {
	f.calls++
	f.gotDelete = in
	return f.record, f.err
}

func (f *fakeService) MinifyCodeObject(tpl codetemplate.CodeTemplate) codetemplate.MinCodeTemplate {
	return tpl.Minify()
}

func testServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{Primary: config.Primary{Env: "test"}},
		Logger: &logger,
	}
}

// sessionAccount stands in for RequireAuth.
func sessionAccount(acc model.Account) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(model.AccountKey, acc)
			return next(c)
		}
	}
}

func newCodeTemplateEcho(svc *fakeService) *echo.Echo {
	s := testServer()
	h := NewCodeTemplateHandler(s, svc)

	e := echo.New()
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler
	e.Use(middleware.RequestID(), middleware.Gateway())

	g := e.Group("/api/v1/codes")
	g.GET("", Handle(h.Handler, h.GetCodeTemplateList, http.StatusOK))
	g.GET("/all", Handle(h.Handler, h.GetCodeTemplateList, http.StatusOK))
	g.GET("/:code_id", Handle(h.Handler, h.GetCodeTemplate, http.StatusOK))
	g.POST("", Handle(h.Handler, h.CreateCodeTemplate, http.StatusOK))
	g.PUT("/:code_id", Handle(h.Handler, h.UpdateCodeTemplate, http.StatusOK))

	authed := g.Group("", sessionAccount(model.Account{ID: "acc_1", UserID: "usr_1"}))
	authed.POST("/:code_id/clone", Handle(h.Handler, h.CloneCodeTemplate, http.StatusOK))
	authed.DELETE("/:code_id", Handle(h.Handler, h.DeleteCodeTemplate, http.StatusOK))

	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(model.HeaderAccountID, "acc_1")
	req.Header.Set(model.HeaderUserID, "usr_1")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func sampleTemplate(id int64, name string) codetemplate.CodeTemplate {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return codetemplate.CodeTemplate{
		ID:        id,
		Name:      name,
		Status:    codetemplate.StatusActive,
		AccountID: "acc_1",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateCodeTemplate(t *testing.T) {
	tpl := sampleTemplate(1, "A")
	svc := &fakeService{record: &tpl}
	e := newCodeTemplateEcho(svc)

	rec := do(e, http.MethodPost, "/api/v1/codes", `{"name":"A","status":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "", body["meta"])

	record := body["data"].(map[string]any)["codeTemplate"].(map[string]any)
	assert.Equal(t, "A", record["name"])
	assert.Nil(t, record["description"])
	assert.EqualValues(t, 1, record["status"])

	assert.Equal(t, "A", svc.gotCreate.Name)
	assert.Equal(t, "acc_1", svc.gotCreate.AccountID)
	assert.Equal(t, codetemplate.StatusActive, svc.gotCreate.Status)
}

func TestCreateCodeTemplate_ValidationFailure(t *testing.T) {
	svc := &fakeService{}
	e := newCodeTemplateEcho(svc)

	rec := do(e, http.MethodPost, "/api/v1/codes", `{"name":"","status":7}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Validation failed", body["error"])

	meta := body["meta"].(map[string]any)
	var fields []string
	for _, fe := range meta["errors"].([]any) {
		fields = append(fields, fe.(map[string]any)["field"].(string))
	}
	assert.ElementsMatch(t, []string{"name", "status"}, fields)
	assert.Zero(t, svc.calls)
}

func TestCreateCodeTemplate_MissingGatewayAccount(t *testing.T) {
	svc := &fakeService{}
	e := newCodeTemplateEcho(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/codes", strings.NewReader(`{"name":"A","account_id":"spoofed"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestGetCodeTemplateList_Paginated(t *testing.T) {
	rows := []codetemplate.CodeTemplate{sampleTemplate(5, "E"), sampleTemplate(4, "D")}
	svc := &fakeService{listResult: &codetemplate.ListResult{Rows: rows, Count: 5}}
	e := newCodeTemplateEcho(svc)

	rec := do(e, http.MethodGet, "/api/v1/codes?page_size=2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	list := body["data"].(map[string]any)["code_templates"].([]any)
	assert.Len(t, list, 2)
	assert.NotContains(t, list[0].(map[string]any), "description")

	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 5, meta["total_items"])
	assert.EqualValues(t, 1, meta["page_no"])
	assert.EqualValues(t, 2, meta["page_size"])
	assert.Equal(t, "created_at", meta["sort_by"])
	assert.Equal(t, "desc", meta["sort_order"])

	assert.True(t, svc.gotList.Paginate)
	assert.Equal(t, "acc_1", svc.gotList.AccountID)
}

func TestGetCodeTemplateList_All(t *testing.T) {
	svc := &fakeService{listResult: &codetemplate.ListResult{Rows: nil, Count: 0}}
	e := newCodeTemplateEcho(svc)

	rec := do(e, http.MethodGet, "/api/v1/codes/all?status=2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "", body["meta"])
	assert.Equal(t, []any{}, body["data"].(map[string]any)["code_templates"])

	assert.False(t, svc.gotList.Paginate)
	require.NotNil(t, svc.gotList.Status)
	assert.Equal(t, codetemplate.StatusArchived, *svc.gotList.Status)
}

func TestGetCodeTemplateList_InvalidQuery(t *testing.T) {
	svc := &fakeService{}
	e := newCodeTemplateEcho(svc)

	rec := do(e, http.MethodGet, "/api/v1/codes?page_size=500&sort_by=password", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestGetCodeTemplate_NotFound(t *testing.T) {
	svc := &fakeService{}
	e := newCodeTemplateEcho(svc)

	rec := do(e, http.MethodGet, "/api/v1/codes/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Code not found"}`, rec.Body.String())
	assert.Equal(t, codetemplate.GetQuery{ID: 42, AccountID: "acc_1"}, svc.gotGet)
}

func TestUpdateCodeTemplate(t *testing.T) {
	tpl := sampleTemplate(7, "renamed")
	svc := &fakeService{record: &tpl}
	e := newCodeTemplateEcho(svc)

	rec := do(e, http.MethodPut, "/api/v1/codes/7", `{"code template":{"name":"renamed","status":0}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, int64(7), svc.gotUpdate.ID)
	require.NotNil(t, svc.gotUpdate.Name)
	assert.Equal(t, "renamed", *svc.gotUpdate.Name)
	require.NotNil(t, svc.gotUpdate.Status)
	assert.Equal(t, codetemplate.StatusInactive, *svc.gotUpdate.Status)
	assert.Nil(t, svc.gotUpdate.Description)
}

func TestUpdateCodeTemplate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCalled bool
	}{
		{
			name:       "deleted status is rejected before the service",
			body:       `{"code template":{"status":3}}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing payload",
			body:       `{"name":"flat"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "service refuses the transition",
			body:       `{"code template":{"status":1}}`,
			serviceErr: errs.NewInvalidOperationError("Cannot change status of a archived code template to active"),
			wantStatus: http.StatusForbidden,
			wantCalled: true,
		},
		{
			name:       "unexpected failure",
			body:       `{"code template":{"name":"x"}}`,
			serviceErr: errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.serviceErr}
			e := newCodeTemplateEcho(svc)

			rec := do(e, http.MethodPut, "/api/v1/codes/7", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCalled, svc.calls > 0)
		})
	}
}

func TestCloneCodeTemplate_UsesSessionAccount(t *testing.T) {
	tpl := sampleTemplate(8, "A (copy)")
	svc := &fakeService{record: &tpl}
	e := newCodeTemplateEcho(svc)

	rec := do(e, http.MethodPost, "/api/v1/codes/7/clone", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, int64(7), svc.gotClone.ID)
	assert.Equal(t, "acc_1", svc.gotClone.AccountID)
	assert.Nil(t, svc.gotClone.Name)

	record := decode(t, rec)["data"].(map[string]any)["codeTemplate"].(map[string]any)
	assert.Equal(t, "A (copy)", record["name"])
}

func TestDeleteCodeTemplate(t *testing.T) {
	t.Run("missing record", func(t *testing.T) {
		svc := &fakeService{}
		e := newCodeTemplateEcho(svc)

		rec := do(e, http.MethodDelete, "/api/v1/codes/999", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Code not found"}`, rec.Body.String())
		assert.Equal(t, codetemplate.DeleteInput{ID: 999, AccountID: "acc_1"}, svc.gotDelete)
	})

	t.Run("returns final state", func(t *testing.T) {
		tpl := sampleTemplate(3, "gone")
		tpl.Status = codetemplate.StatusDeleted
		svc := &fakeService{record: &tpl}
		e := newCodeTemplateEcho(svc)

		rec := do(e, http.MethodDelete, "/api/v1/codes/3", "")
		require.Equal(t, http.StatusOK, rec.Code)

		record := decode(t, rec)["data"].(map[string]any)["codeTemplate"].(map[string]any)
		assert.EqualValues(t, 3, record["status"])
	})
}

func TestDeleteCodeTemplate_WithoutSession(t *testing.T) {
	s := testServer()
	svc := &fakeService{}
	h := NewCodeTemplateHandler(s, svc)

	e := echo.New()
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler
	e.DELETE("/api/v1/codes/:code_id", Handle(h.Handler, h.DeleteCodeTemplate, http.StatusOK))

	rec := do(e, http.MethodDelete, "/api/v1/codes/0", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	meta := decode(t, rec)["meta"].(map[string]any)
	assert.Len(t, meta["errors"], 2)
	assert.Zero(t, svc.calls)
}

func TestCodeTemplate_TypeMismatchReportsField(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		target    string
		body      string
		wantField string
		wantError string
	}{
		{name: "non numeric code_id", method: http.MethodGet, target: "/api/v1/codes/abc", wantField: "code_id", wantError: "must be a number"},
		{name: "non numeric page_no", method: http.MethodGet, target: "/api/v1/codes?page_no=two", wantField: "page_no", wantError: "must be a number"},
		{name: "numeric name", method: http.MethodPost, target: "/api/v1/codes", body: `{"name":5}`, wantField: "name", wantError: "must be a string"},
		{name: "string status", method: http.MethodPut, target: "/api/v1/codes/1", body: `{"code template":{"status":"1"}}`, wantField: "status", wantError: "must be a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			e := newCodeTemplateEcho(svc)

			rec := do(e, tt.method, tt.target, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decode(t, rec)
			assert.Equal(t, "Validation failed", body["error"])

			fieldErrors := body["meta"].(map[string]any)["errors"].([]any)
			require.Len(t, fieldErrors, 1)
			first := fieldErrors[0].(map[string]any)
			assert.Equal(t, tt.wantField, first["field"])
			assert.Equal(t, tt.wantError, first["error"])

			assert.NotContains(t, rec.Body.String(), "strconv")
			assert.NotContains(t, rec.Body.String(), "offset")
			assert.Zero(t, svc.calls)
		})
	}
}

func TestGetCodeTemplateList_MetaEchoesSuppliedParams(t *testing.T) {
	svc := &fakeService{listResult: &codetemplate.ListResult{Count: 0}}
	e := newCodeTemplateEcho(svc)

	rec := do(e, http.MethodGet, "/api/v1/codes?sort_order=DESC&search=%20foo%20", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	meta := decode(t, rec)["meta"].(map[string]any)
	assert.Equal(t, "DESC", meta["sort_order"])
	assert.Equal(t, " foo ", meta["search"])
	assert.Equal(t, "created_at", meta["sort_by"])
	assert.EqualValues(t, 10, meta["page_size"])
}

func TestHandle_ClientErrorsLogBelowError(t *testing.T) {
	s := testServer()
	h := NewCodeTemplateHandler(s, &fakeService{})

	var buf bytes.Buffer
	e := echo.New()
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler
	e.Use(middleware.Gateway(), func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			middleware.SetLogger(c, zerolog.New(&buf))
			return next(c)
		}
	})
	e.GET("/api/v1/codes/:code_id", Handle(h.Handler, h.GetCodeTemplate, http.StatusOK))

	rec := do(e, http.MethodGet, "/api/v1/codes/42", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	logs := buf.String()
	assert.Contains(t, logs, "handler execution failed")
	assert.NotContains(t, logs, `"level":"error"`)
	assert.Contains(t, logs, `"level":"warn"`)
}
