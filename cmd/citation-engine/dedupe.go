// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/internal/orchestrate"
	"github.com/pdiddy/citation-engine/internal/quality"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Deduplicate and validate a compiled citation database",
	Long: `Dedupe loads a citation database, clusters near-duplicate records on
normalized (title, year), keeps the most complete representative of each
cluster, and filters survivors through the quality rubric. Use --strict to
reject records with missing optional fields instead of warning.`,
	RunE: runDedupe,
}

func init() {
	dedupeCmd.Flags().String("in", "", "input citation database file (required)")
	dedupeCmd.Flags().String("out", "", "output file (default: overwrite input)")
	dedupeCmd.Flags().Bool("strict", false, "strict validation mode")
	dedupeCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(dedupeCmd)
}

func runDedupe(cmd *cobra.Command, args []string) error {
	inPath, _ := cmd.Flags().GetString("in")
	outPath, _ := cmd.Flags().GetString("out")
	strict, _ := cmd.Flags().GetBool("strict")
	if outPath == "" {
		outPath = inPath
	}

	db, err := readDatabase(inPath)
	if err != nil {
		return err
	}

	cfg := engineConfig()
	cfg.Validation.Strict = strict
	engine := orchestrate.New(cfg, os.Stderr)

	kept, issues := engine.DedupeAndValidate(db.Citations)

	out := types.CitationDatabase{Citations: kept, Total: len(kept)}
	if err := writeDatabase(outPath, out); err != nil {
		return err
	}

	errors := 0
	for _, issue := range issues {
		if issue.Severity != quality.SeverityWarning {
			errors++
			fmt.Printf("  %s: %s: %s\n", issue.Severity, issue.Field, issue.Message)
		}
	}
	fmt.Printf("in: %d, kept: %d, dropped: %d, issues: %d\n",
		len(db.Citations), len(kept), len(db.Citations)-len(kept), errors)
	return nil
}

func readDatabase(path string) (types.CitationDatabase, error) {
	var db types.CitationDatabase
	data, err := os.ReadFile(path)
	if err != nil {
		return db, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &db); err != nil {
		return db, fmt.Errorf("parsing %s: %w", path, err)
	}
	return db, nil
}
