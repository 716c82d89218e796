/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/apkpatch/internal/manifest"
	"github.com/fulmenhq/apkpatch/internal/pipeline"
	"github.com/fulmenhq/apkpatch/internal/report"
	"github.com/fulmenhq/apkpatch/pkg/ascii"
	"github.com/fulmenhq/apkpatch/pkg/config"
	"github.com/fulmenhq/apkpatch/pkg/safeio"
)

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Run the full patch pipeline",
	Long: `Fetch the base package, split package, replacement library, and keystore,
then decompile, merge, patch the manifest, substitute the library, recompile,
sign, and rename the result to its canonical output name.

Intermediate trees are left on disk after a failure so the half-built state
can be inspected.`,
	RunE: runPatch,
}

func init() {
	patchCmd.Flags().String("base-apk", "", "URL of the base package (required)")
	patchCmd.Flags().String("split-apk", "", "URL of the split package (required)")
	patchCmd.Flags().String("lib", "", "URL of the replacement native library (required)")
	patchCmd.Flags().String("keystore", "", "URL of the signing keystore (required)")
	patchCmd.Flags().StringP("output", "o", "", "Name of the final package (default from config)")
	patchCmd.Flags().String("workdir", "", "Working directory for intermediate artifacts (default from config)")
	patchCmd.Flags().String("config", "", "Config file (default: .apkpatch.yaml in . or $HOME)")
	patchCmd.Flags().Bool("summary", false, "Print a markdown run summary on success")

	for _, f := range []string{"base-apk", "split-apk", "lib", "keystore"} {
		_ = patchCmd.MarkFlagRequired(f)
	}
}

func runPatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	opts, err := buildOptions(cmd, cfg)
	if err != nil {
		return err
	}

	result, err := pipeline.New(opts).Run(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Print(ascii.Box(report.BannerLines(result)))

	if summary, _ := cmd.Flags().GetBool("summary"); summary {
		rendered, err := report.Summary(result)
		if err != nil {
			return err
		}
		cmd.Println(rendered)
	}
	return nil
}

// buildOptions merges config values with command-line overrides.
func buildOptions(cmd *cobra.Command, cfg *config.Config) (pipeline.Options, error) {
	baseURL, _ := cmd.Flags().GetString("base-apk")
	splitURL, _ := cmd.Flags().GetString("split-apk")
	libURL, _ := cmd.Flags().GetString("lib")
	keystoreURL, _ := cmd.Flags().GetString("keystore")

	output := cfg.Output.Name
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		output = v
	}
	workDir := cfg.Output.WorkDir
	if v, _ := cmd.Flags().GetString("workdir"); v != "" {
		workDir = v
	}
	cleaned, err := safeio.CleanUserPath(workDir)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("invalid workdir: %w", err)
	}

	return pipeline.Options{
		BaseAPKURL:  baseURL,
		SplitAPKURL: splitURL,
		LibraryURL:  libURL,
		KeystoreURL: keystoreURL,
		WorkDir:     cleaned,
		OutputName:  output,
		Tools: pipeline.Tools{
			Apktool:   cfg.Tools.Apktool,
			Java:      cfg.Tools.Java,
			SignerJar: cfg.Tools.SignerJar,
		},
		Keystore: pipeline.Keystore{
			Alias:     cfg.Keystore.Alias,
			StorePass: cfg.Keystore.StorePass,
			KeyPass:   cfg.Keystore.KeyPass,
		},
		ABI:     cfg.Patch.ABI,
		Library: cfg.Patch.Library,
		Provider: manifest.Provider{
			Name:         cfg.Patch.Provider,
			Authorities:  manifest.FileProvider.Authorities,
			MetaDataName: manifest.FileProvider.MetaDataName,
			Resource:     "@xml/" + cfg.Patch.ResourceName,
		},
		ResourceName: cfg.Patch.ResourceName,
	}, nil
}
