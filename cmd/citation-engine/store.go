// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/store"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the citation library (import, list, search, export)",
	Long: `Store manages a local SQLite library of compiled citations with FTS5
full-text search over titles and abstracts. The drafting pipeline imports
validated citation databases here and exports CSL-YAML bibliographies.`,
}

var storeImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a citation database file into the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := readDatabase(args[0])
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		summary, err := s.Import(context.Background(), db.Citations)
		if err != nil {
			return err
		}
		fmt.Printf("added: %d, updated: %d, skipped: %d\n",
			summary.Added, summary.Updated, summary.Skipped)
		return nil
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all citations in the library",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		citations, err := s.List(context.Background())
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		return formatCitations(citations, jsonOutput)
	},
}

var storeSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over titles and abstracts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		citations, err := s.Search(context.Background(), args[0])
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		return formatCitations(citations, jsonOutput)
	},
}

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library as a CSL-YAML bibliography",
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		citations, err := s.List(context.Background())
		if err != nil {
			return err
		}

		out := os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			defer f.Close()
			out = f
		}
		return store.WriteCSL(citations, out)
	},
}

func openStore() (*store.Store, error) {
	return store.Open(engineConfig().Store)
}

func formatCitations(citations []types.Citation, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(citations)
	}

	if len(citations) == 0 {
		fmt.Println("No citations found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-54s  %-4s  %-10s  %s\n",
		"Key", "Title", "Year", "Type", "Provider")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, c := range citations {
		title := c.Title
		if len(title) > 54 {
			title = title[:51] + "..."
		}
		year := ""
		if c.Year > 0 {
			year = fmt.Sprintf("%d", c.Year)
		}
		fmt.Fprintf(os.Stdout, "%-24s  %-54s  %-4s  %-10s  %s\n",
			c.ID, title, year, c.SourceType, c.Provenance.Provider)
	}
	fmt.Fprintf(os.Stdout, "\n%d citations\n", len(citations))
	return nil
}

func init() {
	storeListCmd.Flags().Bool("json", false, "output as JSON")
	storeSearchCmd.Flags().Bool("json", false, "output as JSON")
	storeExportCmd.Flags().String("out", "", "output file (default: stdout)")

	storeCmd.AddCommand(storeImportCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeSearchCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
