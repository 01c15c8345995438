// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citation-engine CLI.
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

	"github.com/pdiddy/citation-engine/internal/secrets"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, otherwise the secret value
// for key if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the citation-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "citation-engine",
	Short: "Citation discovery, normalization, and quality filtering",
	Long: `citation-engine finds real, verifiable references for research topics by
querying heterogeneous providers (bibliographic databases, web-search-grounded
models, generic web search) with per-provider rate limits and fallback chains.
Outcomes are cached durably so repeated runs never repeat expensive calls.

Each operation is a subcommand: research one topic, process a batch of topics,
deduplicate and validate a compiled citation set, inspect the cache, or manage
the citation library.`,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citation-engine.yaml or ~/.config/citation-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citation-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citation-engine"))
		}
	}

	viper.SetEnvPrefix("CITATION_ENGINE")
	viper.AutomaticEnv()

	setConfigDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setConfigDefaults() {
	viper.SetDefault("http.timeout", "30s")
	viper.SetDefault("http.user_agent", "citation-engine/"+version)

	viper.SetDefault("openalex.enabled", true)
	viper.SetDefault("openalex.requests_per_second", 10.0)
	viper.SetDefault("openalex.max_retries", 4)

	viper.SetDefault("semantic_scholar.enabled", true)
	viper.SetDefault("semantic_scholar.requests_per_second", 1.0)
	viper.SetDefault("semantic_scholar.max_retries", 4)

	viper.SetDefault("grounded.enabled", false)
	viper.SetDefault("grounded.requests_per_second", 0.5)
	viper.SetDefault("grounded.max_retries", 3)
	viper.SetDefault("grounded.endpoint", "")
	viper.SetDefault("grounded.model", "")

	viper.SetDefault("websearch.enabled", false)
	viper.SetDefault("websearch.requests_per_second", 1.0)
	viper.SetDefault("websearch.max_retries", 3)
	viper.SetDefault("websearch.endpoint", "")

	viper.SetDefault("recall.enabled", false)
	viper.SetDefault("recall.requests_per_second", 0.5)
	viper.SetDefault("recall.max_retries", 3)
	viper.SetDefault("recall.endpoint", "")
	viper.SetDefault("recall.model", "")

	viper.SetDefault("domains.verify_reachability", false)

	viper.SetDefault("validation.strict", false)
	viper.SetDefault("validation.allow_recalled", false)

	viper.SetDefault("cache.path", "cache/research.json")
	viper.SetDefault("store.path", "library/citations.db")
}

// engineConfig assembles the engine configuration from viper and loaded
// secrets. Explicit config values win over secrets.
func engineConfig() types.EngineConfig {
	cfg := types.EngineConfig{
		HTTP: types.HTTPConfig{
			Timeout:   viper.GetDuration("http.timeout"),
			UserAgent: viper.GetString("http.user_agent"),
		},
		OpenAlex: types.OpenAlexConfig{
			ProviderConfig: providerConfig("openalex"),
			Email:          secretDefault("openalex-email", viper.GetString("openalex.email")),
		},
		SemanticScholar: types.SemanticScholarConfig{
			ProviderConfig: providerConfig("semantic_scholar"),
		},
		Grounded: types.GroundedConfig{
			ProviderConfig: providerConfig("grounded"),
			Endpoint:       viper.GetString("grounded.endpoint"),
			Model:          viper.GetString("grounded.model"),
		},
		WebSearch: types.WebSearchConfig{
			ProviderConfig: providerConfig("websearch"),
			Endpoint:       viper.GetString("websearch.endpoint"),
		},
		Recall: types.RecallConfig{
			ProviderConfig: providerConfig("recall"),
			Endpoint:       viper.GetString("recall.endpoint"),
			Model:          viper.GetString("recall.model"),
		},
		Domains: types.DomainConfig{
			Allow:              viper.GetStringSlice("domains.allow"),
			Deny:               viper.GetStringSlice("domains.deny"),
			VerifyReachability: viper.GetBool("domains.verify_reachability"),
		},
		Validation: types.ValidationConfig{
			Strict:        viper.GetBool("validation.strict"),
			AllowRecalled: viper.GetBool("validation.allow_recalled"),
		},
		Cache: types.CacheConfig{Path: viper.GetString("cache.path")},
		Store: types.StoreConfig{Path: viper.GetString("store.path")},
	}

	cfg.SemanticScholar.APIKey = secretDefault("semantic-scholar-api-key", cfg.SemanticScholar.APIKey)
	cfg.Grounded.APIKey = secretDefault("grounded-api-key", cfg.Grounded.APIKey)
	cfg.WebSearch.APIKey = secretDefault("websearch-api-key", cfg.WebSearch.APIKey)
	cfg.Recall.APIKey = secretDefault("recall-api-key", cfg.Recall.APIKey)

	if cfg.HTTP.Timeout <= 0 {
		cfg.HTTP.Timeout = 30 * time.Second
	}
	return cfg
}

func providerConfig(key string) types.ProviderConfig {
	return types.ProviderConfig{
		Enabled:           viper.GetBool(key + ".enabled"),
		APIKey:            viper.GetString(key + ".api_key"),
		RequestsPerSecond: viper.GetFloat64(key + ".requests_per_second"),
		MaxRetries:        viper.GetInt(key + ".max_retries"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
