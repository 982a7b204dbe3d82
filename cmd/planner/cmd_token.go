package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tadeyemo32/vanguard-staffing/internal/config"
	"github.com/tadeyemo32/vanguard-staffing/services"
)

var tokenFlags struct {
	owner string
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a planner token for an owner (signed with JWT_SECRET)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		token, err := services.NewTokenAuth(cfg.JWTSecret).GenerateJWT(tokenFlags.owner)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key <key>",
	Short: "Print a bcrypt hash of a backend key for VANGUARD_API_KEY_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := services.HashKey(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenFlags.owner, "owner", "", "Owner name, as recruiters write it on candidate records (required)")
	_ = tokenCmd.MarkFlagRequired("owner")
}
