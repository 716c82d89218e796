// Package config loads apkpatch configuration from defaults, an optional
// config file, and APKPATCH_* environment variables, then validates the
// result against the embedded schema.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/fulmenhq/apkpatch/internal/schema"
	"github.com/fulmenhq/apkpatch/pkg/logger"
)

const configSchemaName = "apkpatch-config-v1.0.0"

// Config holds all configuration for apkpatch
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	Tools    ToolsConfig    `mapstructure:"tools"`
	Keystore KeystoreConfig `mapstructure:"keystore"`
	Patch    PatchConfig    `mapstructure:"patch"`
}

// OutputConfig names the final artifact and the working directory.
type OutputConfig struct {
	Name    string `mapstructure:"name"`
	WorkDir string `mapstructure:"work_dir"`
}

// ToolsConfig names the external executables.
type ToolsConfig struct {
	Apktool   string `mapstructure:"apktool"`
	Java      string `mapstructure:"java"`
	SignerJar string `mapstructure:"signer_jar"`
}

// KeystoreConfig holds the signing credentials.
type KeystoreConfig struct {
	Alias     string `mapstructure:"alias"`
	StorePass string `mapstructure:"store_pass"`
	KeyPass   string `mapstructure:"key_pass"`
}

// PatchConfig holds the patch parameters.
type PatchConfig struct {
	ABI          string `mapstructure:"abi"`
	Library      string `mapstructure:"library"`
	Provider     string `mapstructure:"provider"`
	ResourceName string `mapstructure:"resource_name"`
}

var defaultConfig = Config{
	Output: OutputConfig{
		Name:    "umamusume.apk",
		WorkDir: ".",
	},
	Tools: ToolsConfig{
		Apktool:   "apktool",
		Java:      "java",
		SignerJar: "uber-apk-signer.jar",
	},
	Keystore: KeystoreConfig{
		Alias:     "androiddebugkey",
		StorePass: "android",
		KeyPass:   "android",
	},
	Patch: PatchConfig{
		ABI:          "arm64-v8a",
		Library:      "libmain.so",
		Provider:     "androidx.core.content.FileProvider",
		ResourceName: "provider_paths",
	},
}

// Load reads configuration from defaults, cfgFile (or a discovered
// .apkpatch.yaml), and the environment, in increasing precedence.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("output.name", defaultConfig.Output.Name)
	v.SetDefault("output.work_dir", defaultConfig.Output.WorkDir)
	v.SetDefault("tools.apktool", defaultConfig.Tools.Apktool)
	v.SetDefault("tools.java", defaultConfig.Tools.Java)
	v.SetDefault("tools.signer_jar", defaultConfig.Tools.SignerJar)
	v.SetDefault("keystore.alias", defaultConfig.Keystore.Alias)
	v.SetDefault("keystore.store_pass", defaultConfig.Keystore.StorePass)
	v.SetDefault("keystore.key_pass", defaultConfig.Keystore.KeyPass)
	v.SetDefault("patch.abi", defaultConfig.Patch.ABI)
	v.SetDefault("patch.library", defaultConfig.Patch.Library)
	v.SetDefault("patch.provider", defaultConfig.Patch.Provider)
	v.SetDefault("patch.resource_name", defaultConfig.Patch.ResourceName)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".apkpatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix("APKPATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		logger.Debug("loaded config file", logger.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks the assembled config against the embedded schema.
func validate(cfg *Config) error {
	data := map[string]interface{}{
		"output": map[string]interface{}{
			"name":     cfg.Output.Name,
			"work_dir": cfg.Output.WorkDir,
		},
		"tools": map[string]interface{}{
			"apktool":    cfg.Tools.Apktool,
			"java":       cfg.Tools.Java,
			"signer_jar": cfg.Tools.SignerJar,
		},
		"keystore": map[string]interface{}{
			"alias":      cfg.Keystore.Alias,
			"store_pass": cfg.Keystore.StorePass,
			"key_pass":   cfg.Keystore.KeyPass,
		},
		"patch": map[string]interface{}{
			"abi":           cfg.Patch.ABI,
			"library":       cfg.Patch.Library,
			"provider":      cfg.Patch.Provider,
			"resource_name": cfg.Patch.ResourceName,
		},
	}

	result, err := schema.Validate(data, configSchemaName)
	if err != nil {
		return err
	}
	if !result.Valid {
		msgs := make([]string, 0, len(result.Errors))
		for _, verr := range result.Errors {
			msgs = append(msgs, fmt.Sprintf("%s: %s", verr.Path, verr.Message))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}
