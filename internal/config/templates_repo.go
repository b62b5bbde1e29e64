package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

type templatesFile struct {
	Templates []domain.Template `yaml:"templates"`
}

// YAMLTemplateRepo читает переопределения шаблонов из YAML-файла:
//
//	templates:
//	  - id: registration
//	    body: "Halo {name}"
type YAMLTemplateRepo struct {
	path string
}

func NewYAMLTemplateRepo(path string) *YAMLTemplateRepo {
	return &YAMLTemplateRepo{path: path}
}

// LoadTemplates: при пустом пути переопределений нет
func (r *YAMLTemplateRepo) LoadTemplates() ([]domain.Template, error) {
	if r.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	var raw templatesFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", r.path, err)
	}

	seen := make(map[string]struct{}, len(raw.Templates))
	for i, t := range raw.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("%s: template #%d: %w", r.path, i, errEmptyTemplateID)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate template id %q", r.path, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return raw.Templates, nil
}

var errEmptyTemplateID = errors.New("empty template id")
