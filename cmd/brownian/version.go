package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/brownian"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of brownian",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "brownian version %s\n", strings.TrimSpace(brownian.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
