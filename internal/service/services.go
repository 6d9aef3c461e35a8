package service

import (
	"github.com/deppfellow/codetemplate/internal/repository"
	"github.com/deppfellow/codetemplate/internal/server"
)

type Services struct {
	Auth         *AuthService
	CodeTemplate *CodeTemplateService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Auth:         NewAuthService(s.Config.Auth.SecretKey),
		CodeTemplate: NewCodeTemplateService(repos.CodeTemplate, s.Logger),
	}
}
