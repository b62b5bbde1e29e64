package templates

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

type Renderer struct {
	registry *Registry
}

func NewRenderer(registry *Registry) *Renderer {
	return &Renderer{registry: registry}
}

// Render подставляет значения из data вместо {key}.
// Плейсхолдеры без ключа в data остаются как есть. Замена делается за один
// проход, поэтому подставленные значения повторно не раскрываются.
func (r *Renderer) Render(templateID string, data map[string]any) (string, error) {
	tmpl, ok := r.registry.Lookup(templateID)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, templateID)
	}
	if len(data) == 0 {
		return tmpl.Body, nil
	}

	// nil-значение оставляет плейсхолдер как есть, как и отсутствующий ключ
	keys := make([]string, 0, len(data))
	for key, value := range data {
		if value != nil {
			keys = append(keys, key)
		}
	}
	// длинные ключи первыми: при общем префиксе результат не зависит от порядка map
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, len(keys)*2)
	for _, key := range keys {
		pairs = append(pairs, "{"+key+"}", stringify(data[key]))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl.Body), nil
}

func (r *Renderer) RenderRequest(req domain.RenderRequest) (string, error) {
	return r.Render(req.TemplateID, req.Data)
}

func (r *Renderer) Registry() *Registry {
	return r.registry
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
