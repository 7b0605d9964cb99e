// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the format-engine CLI.
// Implements: prd001-conversion, prd002-queue, prd003-watch, and
// prd004-history (CLI surface).
// See docs/ARCHITECTURE § Command Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/format-engine/internal/secrets"
	"github.com/pdiddy/format-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, the secret value for key
// otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the format-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "format-engine",
	Short: "Convert text and files between formats with Claude",
	Long: `format-engine converts pasted text or files into a target format (JSON,
XML, CSV, Markdown, HTML, LaTeX, SQL, YAML, Word, plain text, Mermaid)
by delegating the transformation to the Claude API.

Batch conversions run through a queue with per-file status: one file
failing never stops the rest, and re-running a batch resumes only the
unfinished work.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./format-engine.yaml or ~/.config/format-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("format-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "format-engine"))
		}
	}

	viper.SetEnvPrefix("FORMAT_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// conversionConfig resolves the conversion settings from flags, config
// file, and secrets, in that precedence order.
func conversionConfig(cmd *cobra.Command) types.ConversionConfig {
	cfg := types.ConversionConfig{}

	cfg.Model, _ = cmd.Flags().GetString("model")
	if cfg.Model == "" {
		cfg.Model = viper.GetString("conversion.model")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5-20250929"
	}

	cfg.APIKey = secretDefault("anthropic-api-key", viper.GetString("conversion.api_key"))
	cfg.MaxTokens = viper.GetInt("conversion.max_tokens")

	target, _ := cmd.Flags().GetString("to")
	if target == "" {
		target = viper.GetString("conversion.target")
	}
	cfg.Target = types.ConversionTarget(target)

	cfg.Instructions, _ = cmd.Flags().GetString("instructions")
	if cfg.Instructions == "" {
		cfg.Instructions = viper.GetString("conversion.instructions")
	}

	cfg.OutputDir, _ = cmd.Flags().GetString("out")
	if cfg.OutputDir == "" {
		cfg.OutputDir = viper.GetString("conversion.output_dir")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "converted"
	}

	cfg.Timeout = viper.GetDuration("conversion.timeout")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	cfg.UserAgent = "format-engine/" + version

	return cfg
}

// historyConfig resolves the history store settings. An empty state dir
// disables history.
func historyConfig() types.HistoryConfig {
	return types.HistoryConfig{
		StateDir:   viper.GetString("history.state_dir"),
		MaxResults: viper.GetInt("history.max_results"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
