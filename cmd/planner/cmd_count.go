package main

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tadeyemo32/vanguard-staffing/db"
	"github.com/tadeyemo32/vanguard-staffing/matcher"
)

const defaultDBPath = "data/staffing.db"

var countFlags struct {
	dbPath     string
	client     string
	plan       string
	role       string
	stage      string
	countType  string
	cumulative bool
	timeout    time.Duration
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count candidates for a stage using the fallback match ladder",
	RunE:  runCount,
}

func init() {
	f := countCmd.Flags()
	f.StringVar(&countFlags.dbPath, "db", defaultDBPath, "Planner SQLite database")
	f.StringVar(&countFlags.client, "client", "", "Client name (required)")
	f.StringVar(&countFlags.plan, "plan", "", "Staffing plan name")
	f.StringVar(&countFlags.role, "role", "", "Role (required)")
	f.StringVar(&countFlags.stage, "stage", "", "Stage name (required for active counts)")
	f.StringVar(&countFlags.countType, "type", "active", "active, rejected or exited")
	f.BoolVar(&countFlags.cumulative, "cumulative", true, "Count candidates at this stage or later")
	f.DurationVar(&countFlags.timeout, "timeout", 5*time.Second, "Query deadline")

	_ = countCmd.MarkFlagRequired("client")
	_ = countCmd.MarkFlagRequired("role")
}

func runCount(cmd *cobra.Command, _ []string) error {
	countType, err := matcher.ParseCountType(countFlags.countType)
	if err != nil {
		return err
	}
	conn, err := db.InitDB(countFlags.dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), countFlags.timeout)
	defer cancel()

	var stage *string
	if countFlags.stage != "" {
		stage = &countFlags.stage
	}
	res, err := matcher.New(db.NewCandidateSource(conn)).
		CountForStage(ctx, countFlags.client, countFlags.plan, countFlags.role, stage, countFlags.cumulative, countType)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Count:        %d\n", res.Count)
	fmt.Fprintf(out, "Match level:  %s\n", res.MatchLevel)
	if res.Unrecognized > 0 {
		fmt.Fprintf(out, "Unrecognized: %d\n", res.Unrecognized)
	}
	if len(res.Breakdown) > 0 {
		statuses := make([]string, 0, len(res.Breakdown))
		for s := range res.Breakdown {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\nSTATUS\tCOUNT")
		for _, s := range statuses {
			fmt.Fprintf(w, "%s\t%d\n", s, res.Breakdown[s])
		}
		return w.Flush()
	}
	return nil
}
