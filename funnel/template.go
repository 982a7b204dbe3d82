package funnel

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates/default.yaml
var defaultTemplates []byte

// Template is a reusable pipeline definition, e.g. "Standard Engineering Hire".
type Template struct {
	Name         string          `json:"name" yaml:"name"`
	Industry     string          `json:"industry,omitempty" yaml:"industry,omitempty"`
	RoleCategory string          `json:"role_category,omitempty" yaml:"role_category,omitempty"`
	Description  string          `json:"description,omitempty" yaml:"description,omitempty"`
	Stages       []PipelineStage `json:"stages" yaml:"stages"`
}

type templateFile struct {
	Templates []Template `yaml:"templates"`
}

// ParseTemplates decodes and validates a YAML template document.
func ParseTemplates(data []byte) ([]Template, error) {
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	seen := map[string]bool{}
	for _, t := range f.Templates {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: template with empty name", ErrInvalidPipeline)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate template %q", ErrInvalidPipeline, name)
		}
		seen[name] = true
		if err := Validate(t.Stages); err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}
	}
	return f.Templates, nil
}

// LoadTemplates reads templates from path, or the built-in set when path is empty.
func LoadTemplates(path string) ([]Template, error) {
	if path == "" {
		return DefaultTemplates()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return ParseTemplates(data)
}

func DefaultTemplates() ([]Template, error) {
	return ParseTemplates(defaultTemplates)
}

// FindTemplate looks a template up by case-insensitive name.
func FindTemplate(templates []Template, name string) (Template, bool) {
	for _, t := range templates {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, true
		}
	}
	return Template{}, false
}
