package ports

import "github.com/larriantoniy/wa_gateway/internal/domain"

// TemplateSource отдаёт дополнительные/переопределённые шаблоны
type TemplateSource interface {
	LoadTemplates() ([]domain.Template, error)
}
