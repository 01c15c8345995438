// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/internal/orchestrate"
	"github.com/pdiddy/citation-engine/internal/quality"
	"github.com/pdiddy/citation-engine/internal/store"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Research a file of topics and compile a validated citation set",
	Long: `Batch reads one research topic per line, researches each through a bounded
worker pool, deduplicates the results, filters them through the quality
rubric, and writes a citation database. Topics are independent: the worker
pool parallelizes across topics while each provider's rate limiter still
serializes same-provider calls.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("topics", "", "file with one research topic per line (required)")
	batchCmd.Flags().String("out", "citations.yaml", "output citation database file")
	batchCmd.Flags().String("csl", "", "also write a CSL-YAML bibliography to this file")
	batchCmd.Flags().Int("workers", 4, "number of concurrent topics")
	batchCmd.MarkFlagRequired("topics")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	topicsPath, _ := cmd.Flags().GetString("topics")
	outPath, _ := cmd.Flags().GetString("out")
	cslPath, _ := cmd.Flags().GetString("csl")
	workers, _ := cmd.Flags().GetInt("workers")
	if workers < 1 {
		workers = 1
	}

	topics, err := readTopics(topicsPath)
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		return fmt.Errorf("no topics in %s", topicsPath)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := orchestrate.New(engineConfig(), os.Stderr)

	found, misses := researchAll(ctx, engine, topics, workers)
	if err := ctx.Err(); err != nil {
		return err
	}

	kept, issues := engine.DedupeAndValidate(found)

	db := types.CitationDatabase{Citations: kept, Total: len(kept)}
	if err := writeDatabase(outPath, db); err != nil {
		return err
	}

	fmt.Printf("topics: %d, found: %d, no citation: %d, kept after filtering: %d\n",
		len(topics), len(found), misses, len(kept))
	for _, issue := range issues {
		if issue.Severity != quality.SeverityWarning {
			fmt.Printf("  %s: %s: %s\n", issue.Severity, issue.Field, issue.Message)
		}
	}

	if cslPath != "" {
		f, err := os.Create(cslPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", cslPath, err)
		}
		defer f.Close()
		if err := store.WriteCSL(kept, f); err != nil {
			return fmt.Errorf("writing CSL bibliography: %w", err)
		}
	}
	return nil
}

// researchAll runs topics through a bounded worker pool. Results keep topic
// order so output is deterministic for a given input file.
func researchAll(ctx context.Context, engine *orchestrate.Engine, topics []string, workers int) ([]types.Citation, int) {
	results := make([]*types.Citation, len(topics))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				cit, err := engine.ResearchCitation(ctx, topics[i])
				if err != nil {
					return // cancelled
				}
				results[i] = cit
			}
		}()
	}

feed:
	for i := range topics {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	var found []types.Citation
	misses := 0
	for _, r := range results {
		if r == nil {
			misses++
			continue
		}
		found = append(found, *r)
	}
	return found, misses
}

func readTopics(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening topics file: %w", err)
	}
	defer f.Close()

	var topics []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		topics = append(topics, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading topics file: %w", err)
	}
	return topics, nil
}

func writeDatabase(path string, db types.CitationDatabase) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()
	if err := enc.Encode(db); err != nil {
		return fmt.Errorf("writing citation database: %w", err)
	}
	return nil
}
