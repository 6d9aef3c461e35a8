package handler

import (
	"github.com/deppfellow/codetemplate/internal/server"
	"github.com/deppfellow/codetemplate/internal/service"
)

// Handlers groups every HTTP handler so the router receives a single value.
type Handlers struct {
	Health       *HealthHandler
	OpenAPI      *OpenAPIHandler
	CodeTemplate *CodeTemplateHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(s),
		OpenAPI:      NewOpenAPIHandler(s),
		CodeTemplate: NewCodeTemplateHandler(s, services.CodeTemplate),
	}
}
