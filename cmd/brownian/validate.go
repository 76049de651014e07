package main

import (
	"fmt"

	"github.com/aretw0/brownian/pkg/model"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [model]",
	Short: "Check a model description",
	Long:  `Reports the errors and warnings found in a model description without loading it into a simulator.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		report, err := model.Check(cfg.ModelPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, msg := range report.Errors {
			fmt.Fprintf(out, "error:   %s\n", msg)
		}
		for _, msg := range report.Warnings {
			fmt.Fprintf(out, "warning: %s\n", msg)
		}

		switch {
		case len(report.Errors) > 0:
			return fmt.Errorf("%s: %d error(s), %d warning(s)", cfg.ModelPath, len(report.Errors), len(report.Warnings))
		case len(report.Warnings) > 0 && !cfg.AllowWarnings:
			return fmt.Errorf("%s: %d warning(s); pass --allow-warnings to accept them", cfg.ModelPath, len(report.Warnings))
		}
		fmt.Fprintf(out, "%s is valid\n", cfg.ModelPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
