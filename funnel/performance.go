package funnel

import "fmt"

// PipelineMetrics summarises a pipeline's shape over its plannable stages.
type PipelineMetrics struct {
	TotalTATDays         int     `json:"total_tat_days"`
	AverageConversionPct float64 `json:"average_conversion_rate"`
	OverallConversionPct float64 `json:"overall_conversion_rate"`
	StageCount           int     `json:"stage_count"`
	EfficiencyScore      float64 `json:"efficiency_score"`
}

// Benchmark is the typical shape of a pipeline for one industry.
type Benchmark struct {
	AvgTATDays        int     `json:"avg_tat_days"`
	AvgConversionRate float64 `json:"avg_conversion_rate"`
	TypicalStages     int     `json:"typical_stages"`
}

const defaultIndustry = "Software Engineering"

var benchmarks = map[string]Benchmark{
	"Software Engineering": {AvgTATDays: 32, AvgConversionRate: 65, TypicalStages: 4},
	"Data Science":         {AvgTATDays: 28, AvgConversionRate: 58, TypicalStages: 5},
	"Sales":                {AvgTATDays: 25, AvgConversionRate: 72, TypicalStages: 3},
	"Marketing":            {AvgTATDays: 30, AvgConversionRate: 68, TypicalStages: 4},
	"Product Management":   {AvgTATDays: 35, AvgConversionRate: 62, TypicalStages: 4},
}

// BenchmarkFor returns the benchmark for industry, falling back to Software Engineering.
func BenchmarkFor(industry string) Benchmark {
	if b, ok := benchmarks[industry]; ok {
		return b
	}
	return benchmarks[defaultIndustry]
}

// Recommendation is one piece of advice produced by comparing a pipeline to its benchmark.
type Recommendation struct {
	Kind       string `json:"type"` // "warning" or "info"
	Category   string `json:"category"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// Performance computes pipeline metrics over plannable stages only; exit
// stages carry no rate or TAT worth averaging.
func Performance(stages []PipelineStage) (PipelineMetrics, error) {
	plannable := PlannableStages(stages)
	if len(plannable) == 0 {
		return PipelineMetrics{}, ErrNoPlannableStages
	}

	m := PipelineMetrics{StageCount: len(plannable), OverallConversionPct: 1}
	var rateSum float64
	for _, s := range plannable {
		m.TotalTATDays += s.TATDays
		rateSum += s.ConversionRate
		m.OverallConversionPct *= s.ConversionRate / 100
	}
	m.OverallConversionPct *= 100
	m.AverageConversionPct = rateSum / float64(len(plannable))
	if m.TotalTATDays > 0 {
		m.EfficiencyScore = m.AverageConversionPct / float64(m.TotalTATDays) * 100
	}
	return m, nil
}

// Recommend compares metrics against the industry benchmark.
func Recommend(m PipelineMetrics, industry string) []Recommendation {
	b := BenchmarkFor(industry)
	recs := []Recommendation{}

	if m.TotalTATDays > b.AvgTATDays {
		recs = append(recs, Recommendation{
			Kind:       "warning",
			Category:   "Time to Fill",
			Message:    fmt.Sprintf("TAT is %d days above industry average", m.TotalTATDays-b.AvgTATDays),
			Suggestion: "Consider streamlining interview processes or parallel scheduling",
		})
	}
	if m.AverageConversionPct < b.AvgConversionRate {
		recs = append(recs, Recommendation{
			Kind:       "info",
			Category:   "Conversion Rate",
			Message:    fmt.Sprintf("Average conversion rate is %.1f%% below industry average", b.AvgConversionRate-m.AverageConversionPct),
			Suggestion: "Review screening criteria and interview quality",
		})
	}
	if m.StageCount > b.TypicalStages {
		recs = append(recs, Recommendation{
			Kind:       "warning",
			Category:   "Process Complexity",
			Message:    fmt.Sprintf("Pipeline has %d more stages than typical", m.StageCount-b.TypicalStages),
			Suggestion: "Consider consolidating stages to reduce candidate drop-off",
		})
	}
	return recs
}
