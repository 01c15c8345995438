// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citation-engine/internal/orchestrate"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or invalidate the research cache",
	Long: `Cache manages the durable query cache. Entries never expire on their own;
a stale entry (for example a negative outcome for a query a provider can now
answer) must be dropped explicitly before re-researching.`,
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List cached queries and their outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache := loadCache()
		queries := cache.Queries()
		sort.Strings(queries)

		for _, q := range queries {
			entry, _ := cache.Get(q)
			if entry.Citation == nil {
				fmt.Printf("  (none)      %q\n", q)
				continue
			}
			fmt.Printf("  %-10s  %q -> %s\n", entry.Provider, q, entry.Citation.Title)
		}
		fmt.Printf("%d cached queries\n", len(queries))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache := loadCache()
		n := cache.Len()
		if err := cache.Clear(); err != nil {
			return err
		}
		fmt.Printf("cleared %d entries\n", n)
		return nil
	},
}

var cacheDropCmd = &cobra.Command{
	Use:   "drop [query]",
	Short: "Remove one cached query outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cache := loadCache()
		if _, ok := cache.Get(args[0]); !ok {
			return fmt.Errorf("query not cached: %q", args[0])
		}
		if err := cache.Drop(args[0]); err != nil {
			return err
		}
		fmt.Printf("dropped %q\n", args[0])
		return nil
	},
}

func loadCache() *orchestrate.Cache {
	return orchestrate.LoadCache(viper.GetString("cache.path"), os.Stderr)
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheDropCmd)

	rootCmd.AddCommand(cacheCmd)
}
