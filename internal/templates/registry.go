// Package templates хранит каталог шаблонов сообщений и рендерит их.
package templates

import (
	"sort"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

// Registry: неизменяемый набор шаблонов по id
type Registry struct {
	byID map[string]domain.Template
}

func NewRegistry(tmpls ...domain.Template) *Registry {
	r := &Registry{byID: make(map[string]domain.Template, len(tmpls))}
	for _, t := range tmpls {
		r.byID[t.ID] = t
	}
	return r
}

// Default: реестр со встроенным каталогом
func Default() *Registry {
	return NewRegistry(Builtin()...)
}

// With возвращает новый реестр, где overrides добавлены поверх текущих шаблонов
func (r *Registry) With(overrides ...domain.Template) *Registry {
	merged := make([]domain.Template, 0, len(r.byID)+len(overrides))
	for _, t := range r.byID {
		merged = append(merged, t)
	}
	merged = append(merged, overrides...)
	return NewRegistry(merged...)
}

func (r *Registry) Lookup(id string) (domain.Template, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// IDs: отсортированный список id
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
