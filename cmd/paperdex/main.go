// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperdex CLI.
// Implements: prd014-search, prd010-identity, prd013-chunking,
//             prd019-ingest, prd021-retrieval (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/paperdex/internal/secrets"
	"github.com/meshintel/paperdex/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the paperdex CLI.
var rootCmd = &cobra.Command{
	Use:   "paperdex",
	Short: "Multi-provider paper metadata search and full-text indexing",
	Long: `paperdex resolves scholarly works across metadata providers (OpenAlex,
Crossref, DataCite, Semantic Scholar), merges duplicate records with field-level
provenance, and turns GROBID full text into bounded, citation-annotated chunks
stored in a local SQLite index.

Each pipeline stage is a subcommand: search, doi, ingest, chunk, query, and
export. Provider credentials load from .secrets/; everything else comes from
flags, paperdex.yaml, or PAPERDEX_* environment variables.`,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperdex.yaml or ~/.config/paperdex/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "base directory for the store (contains paperdex.db, index/, export.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperdex")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperdex"))
		}
	}

	viper.SetEnvPrefix("PAPERDEX")
	viper.AutomaticEnv()

	viper.SetDefault("providers.timeout", 30*time.Second)
	viper.SetDefault("grobid.base_url", "http://localhost:8070")
	viper.SetDefault("grobid.image", "grobid/grobid:0.8.2")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// providerConfig assembles provider client settings from config and secrets.
func providerConfig() types.ProviderConfig {
	return types.ProviderConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:           viper.GetDuration("providers.timeout"),
			UserAgent:         "paperdex/" + version,
			RequestsPerSecond: viper.GetFloat64("providers.requests_per_second"),
		},
		Mailto:                secretDefault("crossref-mailto", viper.GetString("providers.mailto")),
		SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", viper.GetString("providers.semantic_scholar_api_key")),
		UnpaywallEmail:        secretDefault("unpaywall-email", viper.GetString("providers.unpaywall_email")),
	}
}

// storeConfig reads the store location from the persistent data-dir flag.
func storeConfig(cmd *cobra.Command) types.StoreConfig {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = "data"
	}
	return types.StoreConfig{DataDir: dataDir}
}

// indexSnapshotPath is where ingest persists vectors for query to reuse.
func indexSnapshotPath(cfg types.StoreConfig) string {
	return filepath.Join(cfg.DataDir, "index", "vectors.json")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
