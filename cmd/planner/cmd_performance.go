package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tadeyemo32/vanguard-staffing/funnel"
)

var performanceFlags struct {
	pipelineFlags
	industry string
}

var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "Score a pipeline against its industry benchmark",
	RunE:  runPerformance,
}

func init() {
	f := performanceCmd.Flags()
	f.StringVar(&performanceFlags.pipelinePath, "pipeline", "", "Pipeline YAML file (name, industry, stages)")
	f.StringVar(&performanceFlags.templatesPath, "templates", "", "Template YAML file (default: built-in templates)")
	f.StringVar(&performanceFlags.template, "template", "", "Template name")
	f.StringVar(&performanceFlags.industry, "industry", "", "Industry benchmark (default: the pipeline's industry)")
}

func runPerformance(cmd *cobra.Command, _ []string) error {
	stages, industry, err := performanceFlags.loadStages()
	if err != nil {
		return err
	}
	if performanceFlags.industry != "" {
		industry = performanceFlags.industry
	}

	m, err := funnel.Performance(stages)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Stages:              %d\n", m.StageCount)
	fmt.Fprintf(out, "Total TAT:           %d days\n", m.TotalTATDays)
	fmt.Fprintf(out, "Average conversion:  %.1f%%\n", m.AverageConversionPct)
	fmt.Fprintf(out, "Overall conversion:  %.1f%%\n", m.OverallConversionPct)
	fmt.Fprintf(out, "Efficiency score:    %.1f\n", m.EfficiencyScore)

	recs := funnel.Recommend(m, industry)
	if len(recs) == 0 {
		fmt.Fprintln(out, "\nNo recommendations.")
		return nil
	}
	fmt.Fprintln(out, "\nRecommendations:")
	for _, r := range recs {
		fmt.Fprintf(out, "  [%s] %s: %s\n", r.Kind, r.Category, r.Message)
		fmt.Fprintf(out, "      %s\n", r.Suggestion)
	}
	return nil
}
