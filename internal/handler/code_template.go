package handler

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/codetemplate/internal/errs"
	"github.com/deppfellow/codetemplate/internal/model"
	"github.com/deppfellow/codetemplate/internal/model/codetemplate"
	"github.com/deppfellow/codetemplate/internal/server"
)

// CodeNotFoundMessage is returned for any single-record miss.
const CodeNotFoundMessage = "Code not found"

// CodeTemplateService is what CodeTemplateHandler needs from the service layer.
type CodeTemplateService interface {
	GetCodeTemplateList(ctx context.Context, q codetemplate.ListQuery) (*codetemplate.ListResult, error)
	GetCodeTemplate(ctx context.Context, q codetemplate.GetQuery) (*codetemplate.CodeTemplate, error)
	CreateCodeTemplate(ctx context.Context, in codetemplate.CreateInput) (*codetemplate.CodeTemplate, error)
	UpdateCodeTemplate(ctx context.Context, in codetemplate.UpdateInput) (*codetemplate.CodeTemplate, error)
	CloneCodeTemplate(ctx context.Context, in codetemplate.CloneInput) (*codetemplate.CodeTemplate, error)
	DeleteCodeTemplate(ctx context.Context, in codetemplate.DeleteInput) (*codetemplate.CodeTemplate, error)
	MinifyCodeObject(tpl codetemplate.CodeTemplate) codetemplate.MinCodeTemplate
}

type CodeTemplateHandler struct {
	Handler
	service CodeTemplateService
}

func NewCodeTemplateHandler(s *server.Server, svc CodeTemplateService) *CodeTemplateHandler {
	return &CodeTemplateHandler{
		Handler: NewHandler(s),
		service: svc,
	}
}

// CodeTemplateListData is the data of both list endpoints.
type CodeTemplateListData struct {
	CodeTemplates []codetemplate.MinCodeTemplate `json:"code_templates"`
}

// CodeTemplateData is the data of every single-record endpoint.
type CodeTemplateData struct {
	CodeTemplate *codetemplate.CodeTemplate `json:"codeTemplate"`
}

// GetCodeTemplateList serves both the paginated list and the unpaginated
// /all variant. Only the paginated one carries page meta.
//
// @Summary	List code templates
// @Tags		code-templates
// @Produce	json
// @Param		page_no		query	int		false	"Page number"	default(1)
// @Param		page_size	query	int		false	"Page size"		default(10)
// @Param		sort_by		query	string	false	"Sort column"	Enums(id, name, status, created_at, updated_at)
// @Param		sort_order	query	string	false	"Sort order"	Enums(asc, desc)
// @Param		search		query	string	false	"Name filter"
// @Param		status		query	string	false	"Status filter"	Enums(0, 1, 2)
// @Success	200	{object}	model.Envelope{data=CodeTemplateListData,meta=codetemplate.PageMeta}
// @Failure	400	{object}	errs.ErrorBody
// @Router		/api/v1/codes [get]
// @Router		/api/v1/codes/all [get]
func (h *CodeTemplateHandler) GetCodeTemplateList(c echo.Context, req *codetemplate.ListCodeTemplatesRequest) (model.Envelope, error) {
	paginate := !strings.HasSuffix(c.Path(), "/all")
	q := req.ToQuery(paginate)

	result, err := h.service.GetCodeTemplateList(c.Request().Context(), q)
	if err != nil {
		return model.Envelope{}, err
	}

	rows := make([]codetemplate.MinCodeTemplate, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, h.service.MinifyCodeObject(row))
	}

	env := model.NewEnvelope(CodeTemplateListData{CodeTemplates: rows})
	if paginate {
		env.Meta = codetemplate.NewPageMeta(q, result.Count)
	}
	return env, nil
}

// GetCodeTemplate
//
// @Summary	Get a code template
// @Tags		code-templates
// @Produce	json
// @Param		code_id	path	int	true	"Code template ID"
// @Success	200	{object}	model.Envelope{data=CodeTemplateData}
// @Failure	404	{object}	errs.ErrorBody
// @Router		/api/v1/codes/{code_id} [get]
func (h *CodeTemplateHandler) GetCodeTemplate(c echo.Context, req *codetemplate.GetCodeTemplateRequest) (model.Envelope, error) {
	tpl, err := h.service.GetCodeTemplate(c.Request().Context(), req.ToQuery())
	return singleRecord(tpl, err)
}

// CreateCodeTemplate
//
// @Summary	Create a code template
// @Tags		code-templates
// @Accept		json
// @Produce	json
// @Param		body	body	codetemplate.CreateCodeTemplateRequest	true	"Code template"
// @Success	200	{object}	model.Envelope{data=CodeTemplateData}
// @Failure	400	{object}	errs.ErrorBody
// @Router		/api/v1/codes [post]
func (h *CodeTemplateHandler) CreateCodeTemplate(c echo.Context, req *codetemplate.CreateCodeTemplateRequest) (model.Envelope, error) {
	tpl, err := h.service.CreateCodeTemplate(c.Request().Context(), req.ToInput())
	return singleRecord(tpl, err)
}

// UpdateCodeTemplate applies the fields present under "code template".
//
// @Summary	Update a code template
// @Tags		code-templates
// @Accept		json
// @Produce	json
// @Param		code_id	path	int										true	"Code template ID"
// @Param		body	body	codetemplate.UpdateCodeTemplateRequest	true	"Changes"
// @Success	200	{object}	model.Envelope{data=CodeTemplateData}
// @Failure	400	{object}	errs.ErrorBody
// @Failure	403	{object}	errs.ErrorBody
// @Failure	404	{object}	errs.ErrorBody
// @Router		/api/v1/codes/{code_id} [put]
func (h *CodeTemplateHandler) UpdateCodeTemplate(c echo.Context, req *codetemplate.UpdateCodeTemplateRequest) (model.Envelope, error) {
	tpl, err := h.service.UpdateCodeTemplate(c.Request().Context(), req.ToInput())
	return singleRecord(tpl, err)
}

// CloneCodeTemplate
//
// @Summary	Clone a code template
// @Tags		code-templates
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		code_id	path	int										true	"Source template ID"
// @Param		body	body	codetemplate.CloneCodeTemplateRequest	false	"Overrides"
// @Success	200	{object}	model.Envelope{data=CodeTemplateData}
// @Failure	401	{object}	errs.ErrorBody
// @Failure	404	{object}	errs.ErrorBody
// @Router		/api/v1/codes/{code_id}/clone [post]
func (h *CodeTemplateHandler) CloneCodeTemplate(c echo.Context, req *codetemplate.CloneCodeTemplateRequest) (model.Envelope, error) {
	tpl, err := h.service.CloneCodeTemplate(c.Request().Context(), req.ToInput())
	return singleRecord(tpl, err)
}

// DeleteCodeTemplate soft deletes a template and returns its final state.
//
// @Summary	Delete a code template
// @Tags		code-templates
// @Produce	json
// @Security	BearerAuth
// @Param		code_id	path	int	true	"Code template ID"
// @Success	200	{object}	model.Envelope{data=CodeTemplateData}
// @Failure	401	{object}	errs.ErrorBody
// @Failure	404	{object}	errs.ErrorBody
// @Router		/api/v1/codes/{code_id} [delete]
func (h *CodeTemplateHandler) DeleteCodeTemplate(c echo.Context, req *codetemplate.DeleteCodeTemplateRequest) (model.Envelope, error) {
	tpl, err := h.service.DeleteCodeTemplate(c.Request().Context(), req.ToInput())
	return singleRecord(tpl, err)
}

func singleRecord(tpl *codetemplate.CodeTemplate, err error) (model.Envelope, error) {
	if err != nil {
		return model.Envelope{}, err
	}
	if tpl == nil {
		return model.Envelope{}, errs.NewNotFoundError(CodeNotFoundMessage)
	}
	return model.NewEnvelope(CodeTemplateData{CodeTemplate: tpl}), nil
}
