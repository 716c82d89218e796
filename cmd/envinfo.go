/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/apkpatch/pkg/config"
	"github.com/fulmenhq/apkpatch/pkg/toolexec"
)

var envinfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Probe for the external tools the pipeline needs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		runner := toolexec.NewLocalRunner()
		for _, tool := range []string{cfg.Tools.Apktool, cfg.Tools.Java} {
			status := "missing"
			if runner.IsAvailable(tool) {
				status = "ok"
			}
			cmd.Printf("%-12s %s\n", tool, status)
		}
		return nil
	},
}

func init() {
	envinfoCmd.Flags().String("config", "", "Config file (default: .apkpatch.yaml in . or $HOME)")
}
