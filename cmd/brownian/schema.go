package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [model]",
	Short: "Print the process schema and initial state",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		withState, _ := cmd.Flags().GetBool("initial-state")

		proc, _, err := openProcess(cmd, args)
		if err != nil {
			return err
		}
		defer proc.Close()

		desc, err := proc.Schema().Describe()
		if err != nil {
			return err
		}
		doc := map[string]any{"process": proc.Name(), "schema": desc}
		if withState {
			state, err := proc.InitialState()
			if err != nil {
				return err
			}
			doc["initial_state"] = state
		}

		out := cmd.OutOrStdout()
		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		case "yaml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(doc)
		}
		return fmt.Errorf("unknown format %q: use json or yaml", format)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
	schemaCmd.Flags().Bool("initial-state", false, "Include the initial state")
}
