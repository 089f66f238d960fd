package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the resume_optimizer version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("resume_optimizer %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
