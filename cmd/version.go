/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/apkpatch/pkg/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("apkpatch %s\n", buildinfo.BinaryVersion)
		if extended, _ := cmd.Flags().GetBool("extended"); extended {
			if mv := buildinfo.ModuleVersion(); mv != "" {
				cmd.Printf("module version: %s\n", mv)
			}
		}
	},
}

func init() {
	versionCmd.Flags().Bool("extended", false, "Show extended build information")
}
