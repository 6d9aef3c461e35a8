package service

import (
	"context"
	"testing"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/codetemplate/internal/errs"
	"github.com/deppfellow/codetemplate/internal/model"
	"github.com/deppfellow/codetemplate/internal/model/codetemplate"
	"github.com/deppfellow/codetemplate/internal/repository"
)

// fakeRepo keeps templates in memory, keyed by id.
type fakeRepo struct {
	templates map[int64]codetemplate.CodeTemplate
	nextID    int64
	err       error
}

func newFakeRepo(templates ...codetemplate.CodeTemplate) *fakeRepo {
	r := &fakeRepo{templates: map[int64]codetemplate.CodeTemplate{}, nextID: 100}
	for _, t := range templates {
		r.templates[t.ID] = t
	}
	return r
}

func (r *fakeRepo) lookup(id int64, accountID string) (codetemplate.CodeTemplate, bool) {
	t, ok := r.templates[id]
	if !ok || t.AccountID != accountID || t.Status == codetemplate.StatusDeleted {
		return codetemplate.CodeTemplate{}, false
	}
	return t, true
}

func (r *fakeRepo) List(_ context.Context, q codetemplate.ListQuery) (*codetemplate.ListResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	res := &codetemplate.ListResult{}
	for _, t := range r.templates {
		if t.AccountID == q.AccountID {
			res.Rows = append(res.Rows, t)
		}
	}
	res.Count = int64(len(res.Rows))
	return res, nil
}

func (r *fakeRepo) Get(_ context.Context, q codetemplate.GetQuery) (*codetemplate.CodeTemplate, error) {
	if t, ok := r.lookup(q.ID, q.AccountID); ok {
		return &t, nil
	}
	return nil, r.err
}

func (r *fakeRepo) Create(_ context.Context, in codetemplate.CreateInput) (*codetemplate.CodeTemplate, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	t := codetemplate.CodeTemplate{ID: r.nextID, Name: in.Name, Status: in.Status, AccountID: in.AccountID}
	r.templates[t.ID] = t
	return &t, nil
}

func (r *fakeRepo) Update(_ context.Context, in codetemplate.UpdateInput, guard repository.UpdateGuard) (*codetemplate.CodeTemplate, error) {
	t, ok := r.lookup(in.ID, in.AccountID)
	if !ok {
		return nil, r.err
	}
	if err := guard(t); err != nil {
		return nil, err
	}
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	r.templates[t.ID] = t
	return &t, nil
}

func (r *fakeRepo) Clone(_ context.Context, in codetemplate.CloneInput) (*codetemplate.CodeTemplate, error) {
	src, ok := r.lookup(in.ID, in.AccountID)
	if !ok {
		return nil, r.err
	}
	r.nextID++
	src.ID = r.nextID
	src.Name += repository.CloneNameSuffix
	r.templates[src.ID] = src
	return &src, nil
}

func (r *fakeRepo) Delete(_ context.Context, in codetemplate.DeleteInput) (*codetemplate.CodeTemplate, error) {
	t, ok := r.lookup(in.ID, in.AccountID)
	if !ok {
		return nil, r.err
	}
	t.Status = codetemplate.StatusDeleted
	r.templates[t.ID] = t
	return &t, nil
}

func statusPtr(s codetemplate.Status) *codetemplate.Status { return &s }

func TestUpdateCodeTemplate_Transitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		stored   codetemplate.Status
		next     *codetemplate.Status
		wantKind *errs.Kind
	}{
		{name: "no status change", stored: codetemplate.StatusArchived, next: nil},
		{name: "active to inactive", stored: codetemplate.StatusActive, next: statusPtr(codetemplate.StatusInactive)},
		{name: "active to archived", stored: codetemplate.StatusActive, next: statusPtr(codetemplate.StatusArchived)},
		{name: "archived stays archived", stored: codetemplate.StatusArchived, next: statusPtr(codetemplate.StatusArchived)},
		{name: "archived to active", stored: codetemplate.StatusArchived, next: statusPtr(codetemplate.StatusActive), wantKind: func() *errs.Kind { k := errs.KindInvalidOperation; return &k }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo(codetemplate.CodeTemplate{ID: 1, Name: "A", Status: tt.stored, AccountID: "acc"})
			svc := NewCodeTemplateService(repo, nil)

			tpl, err := svc.UpdateCodeTemplate(ctx, codetemplate.UpdateInput{ID: 1, AccountID: "acc", Status: tt.next})

			if tt.wantKind != nil {
				var httpErr *errs.HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, *tt.wantKind, httpErr.Kind)
				assert.Equal(t, tt.stored, repo.templates[1].Status)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, tpl)
		})
	}
}

func TestUpdateCodeTemplate_NotFoundInOtherAccount(t *testing.T) {
	repo := newFakeRepo(codetemplate.CodeTemplate{ID: 1, Name: "A", AccountID: "acc"})
	svc := NewCodeTemplateService(repo, nil)

	tpl, err := svc.UpdateCodeTemplate(context.Background(), codetemplate.UpdateInput{ID: 1, AccountID: "other"})
	require.NoError(t, err)
	assert.Nil(t, tpl)
}

func TestCloneAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(codetemplate.CodeTemplate{ID: 1, Name: "A", Status: codetemplate.StatusActive, AccountID: "acc"})
	svc := NewCodeTemplateService(repo, nil)

	clone, err := svc.CloneCodeTemplate(ctx, codetemplate.CloneInput{ID: 1, AccountID: "acc"})
	require.NoError(t, err)
	assert.Equal(t, "A (copy)", clone.Name)

	deleted, err := svc.DeleteCodeTemplate(ctx, codetemplate.DeleteInput{ID: 1, AccountID: "acc"})
	require.NoError(t, err)
	assert.Equal(t, codetemplate.StatusDeleted, deleted.Status)

	again, err := svc.DeleteCodeTemplate(ctx, codetemplate.DeleteInput{ID: 1, AccountID: "acc"})
	require.NoError(t, err)
	assert.Nil(t, again)

	missing, err := svc.CloneCodeTemplate(ctx, codetemplate.CloneInput{ID: 1, AccountID: "acc"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateCodeTemplate_UnknownCodeTable(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.Wrap(repository.ErrCodeTableNotFound, "create")
	svc := NewCodeTemplateService(repo, nil)

	_, err := svc.CreateCodeTemplate(context.Background(), codetemplate.CreateInput{Name: "A", AccountID: "acc"})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Status)
	assert.Equal(t, "CODE_TABLE_NOT_FOUND", httpErr.Code)
	assert.Equal(t, []errs.FieldError{{Field: "code_table_id", Error: "does not exist"}}, httpErr.Errors)
}

func TestGetCodeTemplateList_WrapsErrors(t *testing.T) {
	repo := newFakeRepo()
	boom := errors.New("boom")
	repo.err = boom
	svc := NewCodeTemplateService(repo, nil)

	_, err := svc.GetCodeTemplateList(context.Background(), codetemplate.ListQuery{AccountID: "acc"})
	assert.ErrorIs(t, err, boom)
}

func TestMinifyCodeObject(t *testing.T) {
	svc := NewCodeTemplateService(newFakeRepo(), nil)
	got := svc.MinifyCodeObject(codetemplate.CodeTemplate{ID: 3, Name: "A", Status: codetemplate.StatusInactive})
	assert.Equal(t, codetemplate.MinCodeTemplate{ID: 3, Name: "A", Status: codetemplate.StatusInactive}, got)
}

func TestAuthService_AccountFromClaims(t *testing.T) {
	a := &AuthService{}
	assert.Equal(t, model.Account{}, a.AccountFromClaims(nil))

	claims := &clerk.SessionClaims{
		RegisteredClaims: clerk.RegisteredClaims{Subject: "user_1"},
		Claims: clerk.Claims{
			ActiveOrganizationID:   "org_1",
			ActiveOrganizationRole: "org:admin",
		},
	}
	assert.Equal(t, model.Account{ID: "org_1", UserID: "user_1", Role: "org:admin"}, a.AccountFromClaims(claims))
}
