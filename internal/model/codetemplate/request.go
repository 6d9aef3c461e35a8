package codetemplate

import (
	"strconv"

	"github.com/deppfellow/codetemplate/internal/errs"
	"github.com/deppfellow/codetemplate/internal/model"
	"github.com/deppfellow/codetemplate/internal/validation"
)

// Request types are filled by validation.BindAndValidate:
//
//	param:"..."   route parameters
//	query:"..."   query string (GET and DELETE only)
//	json:"..."    request body
//	gateway:"..." copied from model.GatewayData by BindGateway
//	account:"..." copied from model.Account by BindAccount
//
// Identity fields carry json:"-" so a body can never set them.

// ------------------------------------------------------------

type ListCodeTemplatesRequest struct {
	PageNo    int    `query:"page_no" validate:"omitempty,min=1"`
	PageSize  int    `query:"page_size" validate:"omitempty,min=1,max=100"`
	SortBy    string `query:"sort_by" validate:"omitempty,oneof=id name status created_at updated_at"`
	SortOrder string `query:"sort_order" validate:"omitempty,oneof=asc desc ASC DESC"`
	Search    string `query:"search" validate:"max=255"`
	Status    string `query:"status" validate:"omitempty,oneof=0 1 2"`

	AccountID    string `json:"-" gateway:"account_id" validate:"required"`
	WhitelabelID string `json:"-" gateway:"whitelabel_id"`
	UserID       string `json:"-" gateway:"user_id"`
}

func (r *ListCodeTemplatesRequest) Validate() error {
	return validation.Struct(r)
}

func (r *ListCodeTemplatesRequest) BindGateway(gw model.GatewayData) {
	r.AccountID = gw.AccountID
	r.WhitelabelID = gw.WhitelabelID
	r.UserID = gw.UserID
}

// ToQuery fills in defaults for the list parameters the client omitted and
// keeps supplied ones verbatim, so the page meta echoes them unchanged.
// paginate is false for the /all variant.
func (r *ListCodeTemplatesRequest) ToQuery(paginate bool) ListQuery {
	q := ListQuery{
		PageNo:       r.PageNo,
		PageSize:     r.PageSize,
		SortBy:       r.SortBy,
		SortOrder:    r.SortOrder,
		Search:       r.Search,
		Paginate:     paginate,
		AccountID:    r.AccountID,
		WhitelabelID: model.OptionalString(r.WhitelabelID),
		UserID:       model.OptionalString(r.UserID),
	}

	if q.PageNo == 0 {
		q.PageNo = DefaultPageNo
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if q.SortBy == "" {
		q.SortBy = DefaultSortBy
	}
	if q.SortOrder == "" {
		q.SortOrder = DefaultSortOrder
	}

	// Status already passed oneof=0 1 2.
	if r.Status != "" {
		if n, err := strconv.Atoi(r.Status); err == nil {
			s := Status(n)
			q.Status = &s
		}
	}

	return q
}

// ------------------------------------------------------------

type GetCodeTemplateRequest struct {
	ID int64 `param:"code_id" validate:"required,min=1"`

	AccountID string `json:"-" gateway:"account_id" validate:"required"`
}

func (r *GetCodeTemplateRequest) Validate() error {
	return validation.Struct(r)
}

func (r *GetCodeTemplateRequest) BindGateway(gw model.GatewayData) {
	r.AccountID = gw.AccountID
}

func (r *GetCodeTemplateRequest) ToQuery() GetQuery {
	return GetQuery{ID: r.ID, AccountID: r.AccountID}
}

// ------------------------------------------------------------

type CreateCodeTemplateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	CodeTableID *int64  `json:"code_table_id" validate:"omitempty,min=1"`
	Status      *Status `json:"status" validate:"omitempty,oneof=0 1"`

	AccountID    string `json:"-" gateway:"account_id" validate:"required"`
	WhitelabelID string `json:"-" gateway:"whitelabel_id"`
	UserID       string `json:"-" gateway:"user_id"`
}

func (r *CreateCodeTemplateRequest) Validate() error {
	return validation.Struct(r)
}

func (r *CreateCodeTemplateRequest) BindGateway(gw model.GatewayData) {
	r.AccountID = gw.AccountID
	r.WhitelabelID = gw.WhitelabelID
	r.UserID = gw.UserID
}

// ToInput defaults the status to active.
func (r *CreateCodeTemplateRequest) ToInput() CreateInput {
	status := StatusActive
	if r.Status != nil {
		status = *r.Status
	}

	return CreateInput{
		Name:         r.Name,
		Description:  r.Description,
		CodeTableID:  r.CodeTableID,
		Status:       status,
		AccountID:    r.AccountID,
		WhitelabelID: model.OptionalString(r.WhitelabelID),
		UserID:       model.OptionalString(r.UserID),
	}
}

// ------------------------------------------------------------

// UpdateCodeTemplatePayload is the body of an update, sent under the
// "code template" key:
//
//	{ "code template": { "name": "...", "status": 0 } }
type UpdateCodeTemplatePayload struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	CodeTableID *int64  `json:"code_table_id" validate:"omitempty,min=1"`
	Status      *Status `json:"status" validate:"omitempty,oneof=0 1 2 3"`
}

type UpdateCodeTemplateRequest struct {
	ID      int64                      `param:"code_id" json:"-" validate:"required,min=1"`
	Payload *UpdateCodeTemplatePayload `json:"code template" validate:"required"`

	AccountID string `json:"-" gateway:"account_id" validate:"required"`
	UserID    string `json:"-" gateway:"user_id"`
}

func (r *UpdateCodeTemplateRequest) Validate() error {
	return validation.Struct(r)
}

// ValidateRules rejects status changes the update endpoint must never make.
// Transitions that depend on the stored status are checked by the service.
func (r *UpdateCodeTemplateRequest) ValidateRules() error {
	if r.Payload != nil && r.Payload.Status != nil && *r.Payload.Status == StatusDeleted {
		return errs.NewInvalidOperationError("Status cannot be set to deleted, use the delete endpoint")
	}
	return nil
}

func (r *UpdateCodeTemplateRequest) BindGateway(gw model.GatewayData) {
	r.AccountID = gw.AccountID
	r.UserID = gw.UserID
}

func (r *UpdateCodeTemplateRequest) ToInput() UpdateInput {
	return UpdateInput{
		ID:          r.ID,
		AccountID:   r.AccountID,
		UserID:      model.OptionalString(r.UserID),
		Name:        r.Payload.Name,
		Description: r.Payload.Description,
		CodeTableID: r.Payload.CodeTableID,
		Status:      r.Payload.Status,
	}
}

// ------------------------------------------------------------

// CloneCodeTemplateRequest takes its identity from the authenticated
// session rather than the gateway headers.
type CloneCodeTemplateRequest struct {
	ID          int64   `param:"code_id" json:"-" validate:"required,min=1"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`

	AccountID string `json:"-" account:"account_id" validate:"required"`
	UserID    string `json:"-" account:"user_id"`
}

func (r *CloneCodeTemplateRequest) Validate() error {
	return validation.Struct(r)
}

func (r *CloneCodeTemplateRequest) BindAccount(acc model.Account) {
	r.AccountID = acc.ID
	r.UserID = acc.UserID
}

func (r *CloneCodeTemplateRequest) ToInput() CloneInput {
	return CloneInput{
		ID:          r.ID,
		AccountID:   r.AccountID,
		UserID:      model.OptionalString(r.UserID),
		Name:        r.Name,
		Description: r.Description,
	}
}

// ------------------------------------------------------------

// DeleteCodeTemplateRequest takes its identity from the authenticated
// session rather than the gateway headers.
type DeleteCodeTemplateRequest struct {
	ID int64 `param:"code_id" json:"-"`

	AccountID string `json:"-" account:"account_id"`
}

// Validate checks both fields independently and reports every failure.
func (r *DeleteCodeTemplateRequest) Validate() error {
	return validation.Fields(
		validation.FieldCheck{Name: "account_id", Value: r.AccountID, Tag: "required"},
		validation.FieldCheck{Name: "code_id", Value: r.ID, Tag: "required,min=1"},
	)
}

func (r *DeleteCodeTemplateRequest) BindAccount(acc model.Account) {
	r.AccountID = acc.ID
}

func (r *DeleteCodeTemplateRequest) ToInput() DeleteInput {
	return DeleteInput{ID: r.ID, AccountID: r.AccountID}
}
