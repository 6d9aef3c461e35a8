package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/codetemplate/internal/errs"
	"github.com/deppfellow/codetemplate/internal/model/codetemplate"
	"github.com/deppfellow/codetemplate/internal/repository"
)

// CodeTemplateRepository is the storage CodeTemplateService depends on.
// *repository.CodeTemplateRepository implements it.
type CodeTemplateRepository interface {
	List(ctx context.Context, q codetemplate.ListQuery) (*codetemplate.ListResult, error)
	Get(ctx context.Context, q codetemplate.GetQuery) (*codetemplate.CodeTemplate, error)
	Create(ctx context.Context, in codetemplate.CreateInput) (*codetemplate.CodeTemplate, error)
	Update(ctx context.Context, in codetemplate.UpdateInput, guard repository.UpdateGuard) (*codetemplate.CodeTemplate, error)
	Clone(ctx context.Context, in codetemplate.CloneInput) (*codetemplate.CodeTemplate, error)
	Delete(ctx context.Context, in codetemplate.DeleteInput) (*codetemplate.CodeTemplate, error)
}

// CodeTemplateService implements the code template operations. Every
// single-record method returns (nil, nil) when the record does not exist in
// the caller's account.
type CodeTemplateService struct {
	repo   CodeTemplateRepository
	logger *zerolog.Logger
}

func NewCodeTemplateService(repo CodeTemplateRepository, logger *zerolog.Logger) *CodeTemplateService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CodeTemplateService{repo: repo, logger: logger}
}

func (s *CodeTemplateService) GetCodeTemplateList(ctx context.Context, q codetemplate.ListQuery) (*codetemplate.ListResult, error) {
	result, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, errors.WithMessage(err, "get code template list")
	}
	return result, nil
}

func (s *CodeTemplateService) GetCodeTemplate(ctx context.Context, q codetemplate.GetQuery) (*codetemplate.CodeTemplate, error) {
	tpl, err := s.repo.Get(ctx, q)
	if err != nil {
		return nil, errors.WithMessage(err, "get code template")
	}
	return tpl, nil
}

func (s *CodeTemplateService) CreateCodeTemplate(ctx context.Context, in codetemplate.CreateInput) (*codetemplate.CodeTemplate, error) {
	tpl, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, mapRepositoryError(err, "create code template")
	}

	s.logger.Info().
		Int64("code_template_id", tpl.ID).
		Str("account_id", tpl.AccountID).
		Msg("code template created")

	return tpl, nil
}

// UpdateCodeTemplate applies a partial update. Status changes must be
// allowed by the stored status (archived templates stay archived).
func (s *CodeTemplateService) UpdateCodeTemplate(ctx context.Context, in codetemplate.UpdateInput) (*codetemplate.CodeTemplate, error) {
	guard := func(current codetemplate.CodeTemplate) error {
		return checkTransition(current.Status, in.Status)
	}

	tpl, err := s.repo.Update(ctx, in, guard)
	if err != nil {
		return nil, mapRepositoryError(err, "update code template")
	}
	if tpl == nil {
		return nil, nil
	}

	s.logger.Info().
		Int64("code_template_id", tpl.ID).
		Str("account_id", tpl.AccountID).
		Msg("code template updated")

	return tpl, nil
}

func (s *CodeTemplateService) CloneCodeTemplate(ctx context.Context, in codetemplate.CloneInput) (*codetemplate.CodeTemplate, error) {
	tpl, err := s.repo.Clone(ctx, in)
	if err != nil {
		return nil, mapRepositoryError(err, "clone code template")
	}
	if tpl == nil {
		return nil, nil
	}

	s.logger.Info().
		Int64("source_id", in.ID).
		Int64("code_template_id", tpl.ID).
		Str("account_id", tpl.AccountID).
		Msg("code template cloned")

	return tpl, nil
}

func (s *CodeTemplateService) DeleteCodeTemplate(ctx context.Context, in codetemplate.DeleteInput) (*codetemplate.CodeTemplate, error) {
	tpl, err := s.repo.Delete(ctx, in)
	if err != nil {
		return nil, errors.WithMessage(err, "delete code template")
	}
	if tpl == nil {
		return nil, nil
	}

	s.logger.Info().
		Int64("code_template_id", tpl.ID).
		Str("account_id", tpl.AccountID).
		Msg("code template deleted")

	return tpl, nil
}

// MinifyCodeObject projects a template for list responses.
func (s *CodeTemplateService) MinifyCodeObject(tpl codetemplate.CodeTemplate) codetemplate.MinCodeTemplate {
	return tpl.Minify()
}

func checkTransition(current codetemplate.Status, next *codetemplate.Status) error {
	if next == nil || *next == current {
		return nil
	}
	if !current.CanTransitionTo(*next) {
		return errs.NewInvalidOperationError(
			fmt.Sprintf("Cannot change status of a %s code template to %s", current, *next))
	}
	return nil
}

var codeTableNotFoundCode = "CODE_TABLE_NOT_FOUND"

func mapRepositoryError(err error, op string) error {
	if errors.Is(err, repository.ErrCodeTableNotFound) {
		return errs.NewBadRequestError(
			"The referenced Code Table does not exist",
			&codeTableNotFoundCode,
			[]errs.FieldError{{Field: "code_table_id", Error: "does not exist"}},
			nil,
		)
	}

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	return errors.WithMessage(err, op)
}
