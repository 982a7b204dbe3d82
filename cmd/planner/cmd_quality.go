package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tadeyemo32/vanguard-staffing/db"
	"github.com/tadeyemo32/vanguard-staffing/matcher"
)

var qualityFlags struct {
	dbPath string
}

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Report candidate records the matcher cannot count correctly",
	RunE:  runQuality,
}

func init() {
	qualityCmd.Flags().StringVar(&qualityFlags.dbPath, "db", defaultDBPath, "Planner SQLite database")
}

func runQuality(cmd *cobra.Command, _ []string) error {
	conn, err := db.InitDB(qualityFlags.dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	rep, err := matcher.DataQuality(context.Background(), db.NewCandidateSource(conn), nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Unrecognized statuses:     %d\n", rep.UnrecognizedStatuses)
	statuses := make([]string, 0, len(rep.UnrecognizedByStatus))
	for s := range rep.UnrecognizedByStatus {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(out, "  %q: %d\n", s, rep.UnrecognizedByStatus[s])
	}
	fmt.Fprintf(out, "Missing client or role:    %d\n", rep.MissingClientRole)
	fmt.Fprintf(out, "Unmatched staffing plans:  %d\n", rep.UnmatchedPlans)
	fmt.Fprintf(out, "Mapped statuses:           %d\n", rep.TotalStatusMappings)
	return nil
}
