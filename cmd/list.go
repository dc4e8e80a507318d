package main

import (
	"github.com/prizm-build/wheelhouse/internal/report"
	"github.com/prizm-build/wheelhouse/pkg/wheel"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the wheels in the shared wheel directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, workDir, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		dir := outputDir(cfg, workDir)
		entries, err := wheel.Inventory(dir)
		if err != nil {
			return err
		}

		report.DrawWheels(cmd.OutOrStdout(), dir, entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
