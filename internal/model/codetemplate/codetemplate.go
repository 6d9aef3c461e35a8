// Package codetemplate defines the code template resource: the stored
// entity, its status lifecycle, the request types the HTTP layer binds and
// the inputs the service layer accepts.
package codetemplate

import (
	"strconv"
	"time"
)

// Status is the lifecycle state of a code template.
type Status int16

const (
	StatusInactive Status = 0
	StatusActive   Status = 1
	StatusArchived Status = 2
	// StatusDeleted is only ever set by a soft delete.
	StatusDeleted Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusActive:
		return "active"
	case StatusArchived:
		return "archived"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s >= StatusInactive && s <= StatusDeleted
}

// CanTransitionTo reports whether a stored template in state s may be
// updated into state next. Archived templates stay archived; deleted ones
// are never updated.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusArchived:
		return next == StatusArchived
	case StatusDeleted:
		return false
	default:
		return next.Valid() && next != StatusDeleted
	}
}

// CodeTableRef is the nested code table of a template.
type CodeTableRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CodeTemplate is a stored code template.
type CodeTemplate struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Description  *string       `json:"description"`
	CodeTableID  *int64        `json:"code_table_id"`
	CodeTable    *CodeTableRef `json:"code_table"`
	Status       Status        `json:"status"`
	AccountID    string        `json:"account_id"`
	WhitelabelID *string       `json:"whitelabel_id"`
	UserID       *string       `json:"user_id"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// MinCodeTemplate is the list projection of a CodeTemplate.
type MinCodeTemplate struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	CodeTable *CodeTableRef `json:"code_table"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Minify projects t onto MinCodeTemplate.
func (t CodeTemplate) Minify() MinCodeTemplate {
	return MinCodeTemplate{
		ID:        t.ID,
		Name:      t.Name,
		Status:    t.Status,
		CodeTable: t.CodeTable,
		UpdatedAt: t.UpdatedAt,
	}
}

// ListResult is one page of templates plus the number of matching rows.
type ListResult struct {
	Rows  []CodeTemplate
	Count int64
}
