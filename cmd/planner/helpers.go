package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tadeyemo32/vanguard-staffing/funnel"
)

type pipelineFlags struct {
	pipelinePath  string
	templatesPath string
	template      string
}

// loadStages resolves the stage list from --pipeline or --template.
func (f pipelineFlags) loadStages() ([]funnel.PipelineStage, string, error) {
	if f.pipelinePath != "" {
		data, err := os.ReadFile(f.pipelinePath)
		if err != nil {
			return nil, "", fmt.Errorf("read pipeline: %w", err)
		}
		var t funnel.Template
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, "", fmt.Errorf("parse pipeline: %w", err)
		}
		if err := funnel.Validate(t.Stages); err != nil {
			return nil, "", err
		}
		return t.Stages, t.Industry, nil
	}
	if f.template == "" {
		return nil, "", errors.New("one of --pipeline or --template is required")
	}

	templates, err := funnel.LoadTemplates(f.templatesPath)
	if err != nil {
		return nil, "", err
	}
	t, ok := funnel.FindTemplate(templates, f.template)
	if !ok {
		return nil, "", fmt.Errorf("template %q not found", f.template)
	}
	return t.Stages, t.Industry, nil
}
