package funnel

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	// ErrNoPlannableStages means the pipeline has no stage with order > 0 and
	// a positive conversion rate, so no plan can be generated from it.
	ErrNoPlannableStages = errors.New("pipeline has no plannable stages")
	ErrInvalidTarget     = errors.New("target hires must be at least 1")
	ErrInvalidPipeline   = errors.New("invalid pipeline definition")
)

// PipelineStage is one step of a hiring funnel as supplied by pipeline config.
//
// A conversion rate of 0 or an order <= 0 marks an exit stage ("Rejected",
// "On Hold"); those stages only exist for reporting and never enter quota math.
type PipelineStage struct {
	Name           string   `json:"name" yaml:"name"`
	Order          int      `json:"order" yaml:"order"`
	ConversionRate float64  `json:"conversion_rate" yaml:"conversion_rate"`
	TATDays        int      `json:"tat_days" yaml:"tat_days"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	Statuses       []string `json:"statuses,omitempty" yaml:"statuses,omitempty"`
}

// Plannable reports whether the stage takes part in the backward walk.
func (s PipelineStage) Plannable() bool {
	return s.Order > 0 && s.ConversionRate > 0
}

// PlannableStages returns the planning stages sorted by ascending order.
// Input order is kept for equal orders.
func PlannableStages(stages []PipelineStage) []PipelineStage {
	out := make([]PipelineStage, 0, len(stages))
	for _, s := range stages {
		if s.Plannable() {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Validate checks a pipeline definition at the config boundary.
func Validate(stages []PipelineStage) error {
	if len(stages) == 0 {
		return fmt.Errorf("%w: no stages", ErrInvalidPipeline)
	}

	seen := make(map[string]bool, len(stages))
	orders := make(map[int]string, len(stages))
	for _, s := range stages {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("%w: stage with empty name", ErrInvalidPipeline)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate stage %q", ErrInvalidPipeline, name)
		}
		seen[key] = true

		if err := checkRate(s); err != nil {
			return err
		}
		if s.TATDays < 0 {
			return fmt.Errorf("%w: stage %q has negative TAT", ErrInvalidPipeline, name)
		}
		if s.Order > 0 {
			if other, dup := orders[s.Order]; dup {
				return fmt.Errorf("%w: stages %q and %q share order %d", ErrInvalidPipeline, other, name, s.Order)
			}
			orders[s.Order] = name
		}
	}
	return nil
}

// checkRate rejects conversion rates outside [0,100], NaN included.
func checkRate(s PipelineStage) error {
	if math.IsNaN(s.ConversionRate) || s.ConversionRate < 0 || s.ConversionRate > 100 {
		return fmt.Errorf("%w: stage %q conversion rate %g outside [0,100]", ErrInvalidPipeline, s.Name, s.ConversionRate)
	}
	return nil
}
