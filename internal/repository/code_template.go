package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/deppfellow/codetemplate/internal/model/codetemplate"
)

// ErrCodeTableNotFound is returned when a code_table_id does not name a
// code table of the same account.
var ErrCodeTableNotFound = errors.New("code table not found")

type CodeTemplateRepository struct {
	db DB
}

func NewCodeTemplateRepository(db DB) *CodeTemplateRepository {
	return &CodeTemplateRepository{db: db}
}

// codeTemplateRow is one row of selectColumns.
type codeTemplateRow struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	Description   *string   `db:"description"`
	CodeTableID   *int64    `db:"code_table_id"`
	CodeTableName *string   `db:"code_table_name"`
	Status        int16     `db:"status"`
	AccountID     string    `db:"account_id"`
	WhitelabelID  *string   `db:"whitelabel_id"`
	UserID        *string   `db:"user_id"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r codeTemplateRow) toModel() codetemplate.CodeTemplate {
	t := codetemplate.CodeTemplate{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		CodeTableID:  r.CodeTableID,
		Status:       codetemplate.Status(r.Status),
		AccountID:    r.AccountID,
		WhitelabelID: r.WhitelabelID,
		UserID:       r.UserID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.CodeTableID != nil && r.CodeTableName != nil {
		t.CodeTable = &codetemplate.CodeTableRef{ID: *r.CodeTableID, Name: *r.CodeTableName}
	}
	return t
}

// selectColumns reads a template aliased as t joined with its code table as ct.
const selectColumns = `
	t.id, t.name, t.description, t.code_table_id, ct.name AS code_table_name,
	t.status, t.account_id, t.whitelabel_id, t.user_id, t.created_at, t.updated_at`

const joinCodeTable = `LEFT JOIN code_tables ct ON ct.id = t.code_table_id`

var sortColumns = map[string]string{
	codetemplate.SortByID:        "t.id",
	codetemplate.SortByName:      "t.name",
	codetemplate.SortByStatus:    "t.status",
	codetemplate.SortByCreatedAt: "t.created_at",
	codetemplate.SortByUpdatedAt: "t.updated_at",
}

// orderClause only ever emits whitelisted columns. Unknown input falls back
// to the default sort.
func orderClause(sortBy, sortOrder string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = sortColumns[codetemplate.DefaultSortBy]
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}

	clause := fmt.Sprintf("ORDER BY %s %s", column, direction)
	if column != "t.id" {
		clause += ", t.id " + direction
	}
	return clause
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// listFilter builds the WHERE clause of a list query and its arguments.
func listFilter(q codetemplate.ListQuery) (string, pgx.NamedArgs) {
	conditions := []string{
		"t.account_id = @account_id",
		"t.deleted_at IS NULL",
	}
	args := pgx.NamedArgs{"account_id": q.AccountID}

	if q.Status != nil {
		conditions = append(conditions, "t.status = @status")
		args["status"] = int16(*q.Status)
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		conditions = append(conditions, "(t.name ILIKE @search OR t.description ILIKE @search)")
		args["search"] = "%" + likeEscaper.Replace(search) + "%"
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List returns the matching templates and the total number of matches.
// Without q.Paginate every match is returned.
func (r *CodeTemplateRepository) List(ctx context.Context, q codetemplate.ListQuery) (*codetemplate.ListResult, error) {
	where, args := listFilter(q)

	var count int64
	countSQL := "SELECT COUNT(*) FROM code_templates t " + where
	if err := r.db.QueryRow(ctx, countSQL, args).Scan(&count); err != nil {
		return nil, errors.Wrap(err, "count code templates")
	}

	query := fmt.Sprintf("SELECT %s FROM code_templates t %s %s %s",
		selectColumns, joinCodeTable, where, orderClause(q.SortBy, q.SortOrder))
	if q.Paginate {
		query += " LIMIT @limit OFFSET @offset"
		args["limit"] = q.PageSize
		args["offset"] = q.Offset()
	}

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return nil, errors.Wrap(err, "list code templates")
	}

	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[codeTemplateRow])
	if err != nil {
		return nil, errors.Wrap(err, "scan code templates")
	}

	result := &codetemplate.ListResult{
		Rows:  make([]codetemplate.CodeTemplate, 0, len(collected)),
		Count: count,
	}
	for _, row := range collected {
		result.Rows = append(result.Rows, row.toModel())
	}
	return result, nil
}

// Get returns nil when the template does not exist in the account.
func (r *CodeTemplateRepository) Get(ctx context.Context, q codetemplate.GetQuery) (*codetemplate.CodeTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM code_templates t %s
		WHERE t.id = @id AND t.account_id = @account_id AND t.deleted_at IS NULL`,
		selectColumns, joinCodeTable)

	return r.queryOne(ctx, r.db, query, pgx.NamedArgs{"id": q.ID, "account_id": q.AccountID}, "get code template")
}

func (r *CodeTemplateRepository) Create(ctx context.Context, in codetemplate.CreateInput) (*codetemplate.CodeTemplate, error) {
	if in.CodeTableID != nil {
		if err := r.checkCodeTable(ctx, r.db, in.AccountID, *in.CodeTableID); err != nil {
			return nil, err
		}
	}

	query := fmt.Sprintf(`WITH t AS (
			INSERT INTO code_templates (name, description, code_table_id, status, account_id, whitelabel_id, user_id)
			VALUES (@name, @description, @code_table_id, @status, @account_id, @whitelabel_id, @user_id)
			RETURNING *
		)
		SELECT %s FROM t %s`, selectColumns, joinCodeTable)

	args := pgx.NamedArgs{
		"name":          in.Name,
		"description":   in.Description,
		"code_table_id": in.CodeTableID,
		"status":        int16(in.Status),
		"account_id":    in.AccountID,
		"whitelabel_id": in.WhitelabelID,
		"user_id":       in.UserID,
	}

	return r.queryOne(ctx, r.db, query, args, "create code template")
}

// UpdateGuard inspects the locked current row before an update is applied.
// A non-nil error aborts the update and is returned as-is.
type UpdateGuard func(current codetemplate.CodeTemplate) error

// Update applies a partial update in one transaction: the row is locked,
// guard runs against the stored state, then the patch is written.
// It returns nil when the template does not exist in the account.
func (r *CodeTemplateRepository) Update(ctx context.Context, in codetemplate.UpdateInput, guard UpdateGuard) (*codetemplate.CodeTemplate, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin update code template")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lockQuery := fmt.Sprintf(`SELECT %s FROM code_templates t %s
		WHERE t.id = @id AND t.account_id = @account_id AND t.deleted_at IS NULL
		FOR UPDATE OF t`, selectColumns, joinCodeTable)

	current, err := r.queryOne(ctx, tx, lockQuery, pgx.NamedArgs{"id": in.ID, "account_id": in.AccountID}, "lock code template")
	if err != nil || current == nil {
		return nil, err
	}

	if guard != nil {
		if err := guard(*current); err != nil {
			return nil, err
		}
	}

	if in.CodeTableID != nil {
		if err := r.checkCodeTable(ctx, tx, in.AccountID, *in.CodeTableID); err != nil {
			return nil, err
		}
	}

	var status *int16
	if in.Status != nil {
		s := int16(*in.Status)
		status = &s
	}

	updateQuery := fmt.Sprintf(`WITH t AS (
			UPDATE code_templates SET
				name = COALESCE(@name, name),
				description = COALESCE(@description, description),
				code_table_id = COALESCE(@code_table_id, code_table_id),
				status = COALESCE(@status, status),
				updated_at = now()
			WHERE id = @id AND account_id = @account_id
			RETURNING *
		)
		SELECT %s FROM t %s`, selectColumns, joinCodeTable)

	args := pgx.NamedArgs{
		"id":            in.ID,
		"account_id":    in.AccountID,
		"name":          in.Name,
		"description":   in.Description,
		"code_table_id": in.CodeTableID,
		"status":        status,
	}

	updated, err := r.queryOne(ctx, tx, updateQuery, args, "update code template")
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit update code template")
	}
	return updated, nil
}

// CloneNameSuffix is appended to the source name when a clone has no name.
const CloneNameSuffix = " (copy)"

// Clone copies a template of the account. It returns nil when the source
// does not exist.
func (r *CodeTemplateRepository) Clone(ctx context.Context, in codetemplate.CloneInput) (*codetemplate.CodeTemplate, error) {
	query := fmt.Sprintf(`WITH source AS (
			SELECT * FROM code_templates
			WHERE id = @id AND account_id = @account_id AND deleted_at IS NULL
		), t AS (
			INSERT INTO code_templates (name, description, code_table_id, status, account_id, whitelabel_id, user_id)
			SELECT
				COALESCE(@name, LEFT(s.name, @max_base_len) || @suffix),
				COALESCE(@description, s.description),
				s.code_table_id,
				s.status,
				s.account_id,
				s.whitelabel_id,
				COALESCE(@user_id, s.user_id)
			FROM source s
			RETURNING *
		)
		SELECT %s FROM t %s`, selectColumns, joinCodeTable)

	args := pgx.NamedArgs{
		"id":           in.ID,
		"account_id":   in.AccountID,
		"name":         in.Name,
		"description":  in.Description,
		"user_id":      in.UserID,
		"suffix":       CloneNameSuffix,
		"max_base_len": 255 - len(CloneNameSuffix),
	}

	return r.queryOne(ctx, r.db, query, args, "clone code template")
}

// Delete soft deletes a template and returns its final state, or nil when it
// does not exist in the account.
func (r *CodeTemplateRepository) Delete(ctx context.Context, in codetemplate.DeleteInput) (*codetemplate.CodeTemplate, error) {
	query := fmt.Sprintf(`WITH t AS (
			UPDATE code_templates SET
				status = @deleted,
				deleted_at = now(),
				updated_at = now()
			WHERE id = @id AND account_id = @account_id AND deleted_at IS NULL
			RETURNING *
		)
		SELECT %s FROM t %s`, selectColumns, joinCodeTable)

	args := pgx.NamedArgs{
		"id":         in.ID,
		"account_id": in.AccountID,
		"deleted":    int16(codetemplate.StatusDeleted),
	}

	return r.queryOne(ctx, r.db, query, args, "delete code template")
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *CodeTemplateRepository) queryOne(ctx context.Context, q querier, query string, args pgx.NamedArgs, op string) (*codetemplate.CodeTemplate, error) {
	rows, err := q.Query(ctx, query, args)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[codeTemplateRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, op)
	}

	t := row.toModel()
	return &t, nil
}

func (r *CodeTemplateRepository) checkCodeTable(ctx context.Context, q querier, accountID string, id int64) error {
	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM code_tables WHERE id = @id AND account_id = @account_id)`,
		pgx.NamedArgs{"id": id, "account_id": accountID},
	).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "check code table")
	}
	if !exists {
		return ErrCodeTableNotFound
	}
	return nil
}
