// planner is the offline companion to the server: it back-calculates
// funnels, classifies stages and queries a candidate database file.
//
// Usage:
//
//	planner calculate --template "Standard Engineering Hire" --target 4 --date 2026-01-30
//	planner calculate --pipeline pipeline.yaml --target 4 --date 2026-01-30
//	planner performance --template "Fast Track Sales" [--industry Sales]
//	planner classify --actual 4 --required 5 --needed-by 2026-02-01 [--today 2026-01-20]
//	planner count --db data/staffing.db --client Acme --plan "Q1 Hiring" --role QA --stage Staffed
//	planner quality --db data/staffing.db
//	planner token --owner dana
//	planner hash-key <key>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Hiring funnel planning and reconciliation tools",
	Long:  "planner turns a hiring target into per-stage candidate quotas and deadlines,\nand checks live candidate counts against them.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(performanceCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(qualityCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(hashKeyCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
