package repository

import (
	"github.com/deppfellow/codetemplate/internal/server"
)

// Repositories groups every repository so services receive a single value.
type Repositories struct {
	CodeTemplate *CodeTemplateRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		CodeTemplate: NewCodeTemplateRepository(s.DB.Pool),
	}
}
