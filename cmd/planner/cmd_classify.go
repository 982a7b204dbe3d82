package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tadeyemo32/vanguard-staffing/funnel"
	"github.com/tadeyemo32/vanguard-staffing/health"
)

var classifyFlags struct {
	actual   int
	required int
	neededBy string
	today    string
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify one stage as Green, Amber or Red",
	RunE:  runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.IntVar(&classifyFlags.actual, "actual", 0, "Candidates currently at the stage")
	f.IntVar(&classifyFlags.required, "required", 0, "Candidates the stage needs")
	f.StringVar(&classifyFlags.neededBy, "needed-by", "", "Stage deadline YYYY-MM-DD (required)")
	f.StringVar(&classifyFlags.today, "today", "", "Evaluation date YYYY-MM-DD (default: today)")

	_ = classifyCmd.MarkFlagRequired("needed-by")
}

func runClassify(cmd *cobra.Command, _ []string) error {
	neededBy, err := funnel.ParseDate(classifyFlags.neededBy)
	if err != nil {
		return err
	}
	today := funnel.DateOf(time.Now())
	if classifyFlags.today != "" {
		if today, err = funnel.ParseDate(classifyFlags.today); err != nil {
			return err
		}
	}

	h := health.Classify(classifyFlags.actual, classifyFlags.required, neededBy, today)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", h.Color, h.Reason)
	return nil
}
