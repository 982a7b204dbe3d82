package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tadeyemo32/vanguard-staffing/funnel"
)

var calculateFlags struct {
	pipelineFlags
	target int
	date   string
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Back-calculate per-stage quotas and deadlines for a hiring target",
	RunE:  runCalculate,
}

func init() {
	f := calculateCmd.Flags()
	f.StringVar(&calculateFlags.pipelinePath, "pipeline", "", "Pipeline YAML file (name, stages)")
	f.StringVar(&calculateFlags.templatesPath, "templates", "", "Template YAML file (default: built-in templates)")
	f.StringVar(&calculateFlags.template, "template", "", "Template name")
	f.IntVar(&calculateFlags.target, "target", 0, "Number of hires (required)")
	f.StringVar(&calculateFlags.date, "date", "", "Target date YYYY-MM-DD (required)")

	_ = calculateCmd.MarkFlagRequired("target")
	_ = calculateCmd.MarkFlagRequired("date")
}

func runCalculate(cmd *cobra.Command, _ []string) error {
	stages, _, err := calculateFlags.loadStages()
	if err != nil {
		return err
	}
	date, err := funnel.ParseDate(calculateFlags.date)
	if err != nil {
		return err
	}
	reqs, err := funnel.Calculate(stages, calculateFlags.target, date)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tRATE\tTAT\tNEEDED\tCONVERTED\tNEEDED BY")
	for _, r := range reqs {
		fmt.Fprintf(w, "%s\t%.0f%%\t%dd\t%d\t%d\t%s\n",
			r.StageName, r.ConversionRatePct, r.TATDays, r.CandidatesNeeded, r.CandidatesConverted, r.NeededByDate)
	}
	return w.Flush()
}
