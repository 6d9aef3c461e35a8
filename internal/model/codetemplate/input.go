package codetemplate

// Sort columns accepted by ListQuery.SortBy.
const (
	SortByID        = "id"
	SortByName      = "name"
	SortByStatus    = "status"
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
)

// List defaults.
const (
	DefaultPageNo    = 1
	DefaultPageSize  = 10
	DefaultSortBy    = SortByCreatedAt
	DefaultSortOrder = "desc"
)

// ListQuery selects templates of one account.
//
// When Paginate is false PageNo and PageSize are ignored and every matching
// row is returned.
type ListQuery struct {
	PageNo    int
	PageSize  int
	SortBy    string
	SortOrder string
	Search    string
	Status    *Status
	Paginate  bool

	AccountID    string
	WhitelabelID *string
	UserID       *string
}

// Offset is the number of rows skipped before the current page.
func (q ListQuery) Offset() int {
	if q.PageNo < 1 {
		return 0
	}
	return (q.PageNo - 1) * q.PageSize
}

// GetQuery addresses a single template.
type GetQuery struct {
	ID        int64
	AccountID string
}

// CreateInput is a new template.
type CreateInput struct {
	Name        string
	Description *string
	CodeTableID *int64
	Status      Status

	AccountID    string
	WhitelabelID *string
	UserID       *string
}

// UpdateInput is a partial update. Nil fields are left untouched.
type UpdateInput struct {
	ID          int64
	AccountID   string
	UserID      *string
	Name        *string
	Description *string
	CodeTableID *int64
	Status      *Status
}

// CloneInput duplicates template ID. Name and Description override the copy.
type CloneInput struct {
	ID          int64
	AccountID   string
	UserID      *string
	Name        *string
	Description *string
}

// DeleteInput soft deletes template ID.
type DeleteInput struct {
	ID        int64
	AccountID string
}

// PageMeta echoes the effective list parameters of a paginated response.
type PageMeta struct {
	PageNo     int    `json:"page_no"`
	PageSize   int    `json:"page_size"`
	TotalItems int64  `json:"total_items"`
	SortBy     string `json:"sort_by"`
	SortOrder  string `json:"sort_order"`
	Search     string `json:"search"`
}

// NewPageMeta builds the pagination echo of q.
func NewPageMeta(q ListQuery, total int64) PageMeta {
	return PageMeta{
		PageNo:     q.PageNo,
		PageSize:   q.PageSize,
		TotalItems: total,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
		Search:     q.Search,
	}
}
