package main

import (
	"github.com/prizm-build/wheelhouse/internal/history"
	"github.com/prizm-build/wheelhouse/internal/report"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded release runs",
	Long:  "Show the most recent runs recorded with --history (or history.enabled in wheelhouse.toml).",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")

		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		runs, err := store.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		report.DrawRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 10, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
