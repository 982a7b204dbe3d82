package matcher

import (
	"context"
	"sort"
)

// CensusSource exposes the whole-store aggregates behind the data quality report.
type CensusSource interface {
	// StatusCensus counts every candidate record by raw status.
	StatusCensus(ctx context.Context) (map[string]int, error)
	// MissingClientOrRole counts records with no client or no role.
	MissingClientOrRole(ctx context.Context) (int, error)
	// OrphanedPlanRefs counts records pointing at a plan that does not exist.
	OrphanedPlanRefs(ctx context.Context) (int, error)
}

// QualityReport surfaces records the ladder can never count correctly.
type QualityReport struct {
	UnrecognizedStatuses int            `json:"unrecognized_statuses"`
	UnrecognizedByStatus map[string]int `json:"unrecognized_by_status"`
	MissingClientRole    int            `json:"missing_client_role_mapping"`
	UnmatchedPlans       int            `json:"unmatched_staffing_plans"`
	TotalStatusMappings  int            `json:"total_status_mappings"`
	ExcludedStatuses     []string       `json:"excluded_statuses"`

	// valid statuses that no stage of the table lists
	OutsidePipeline         int            `json:"outside_pipeline"`
	OutsidePipelineByStatus map[string]int `json:"outside_pipeline_by_status"`
}

// DataQuality builds a report against the given table (DefaultTable when nil).
func DataQuality(ctx context.Context, src CensusSource, table *Table) (QualityReport, error) {
	if table == nil {
		table = DefaultTable()
	}

	census, err := src.StatusCensus(ctx)
	if err != nil {
		return QualityReport{}, sourceErr(err)
	}
	missing, err := src.MissingClientOrRole(ctx)
	if err != nil {
		return QualityReport{}, sourceErr(err)
	}
	orphans, err := src.OrphanedPlanRefs(ctx)
	if err != nil {
		return QualityReport{}, sourceErr(err)
	}

	rep := QualityReport{
		UnrecognizedByStatus:    map[string]int{},
		OutsidePipelineByStatus: map[string]int{},
		MissingClientRole:    missing,
		UnmatchedPlans:       orphans,
	}
	for raw, n := range census {
		s := ParseStatus(raw)
		switch {
		case s == StatusUnrecognized:
			rep.UnrecognizedStatuses += n
			rep.UnrecognizedByStatus[raw] += n
		case !table.Known(s):
			rep.OutsidePipeline += n
			rep.OutsidePipelineByStatus[raw] += n
		}
	}

	for _, s := range Statuses() {
		if table.Known(s) {
			rep.TotalStatusMappings++
		}
		if s.IsExit() {
			rep.ExcludedStatuses = append(rep.ExcludedStatuses, s.String())
		}
	}
	sort.Strings(rep.ExcludedStatuses)
	return rep, nil
}
