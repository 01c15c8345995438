// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/orchestrate"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [topic]",
	Short: "Find one verifiable citation for a research topic",
	Long: `Research classifies the topic, tries providers in the resulting chain until
one returns a usable citation, and caches the outcome. A cached topic returns
instantly with zero network calls — including cached negative outcomes.`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().Bool("json", false, "output the citation as JSON")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	topic := strings.TrimSpace(args[0])
	if topic == "" {
		return fmt.Errorf("topic is empty")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := orchestrate.New(engineConfig(), os.Stderr)

	cit, err := engine.ResearchCitation(ctx, topic)
	if err != nil {
		return err
	}
	if cit == nil {
		fmt.Println("No citation found.")
		return nil
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cit)
	}

	printCitation(cit)
	return nil
}

func printCitation(c *types.Citation) {
	fmt.Printf("Title:    %s\n", c.Title)
	fmt.Printf("Authors:  %s\n", strings.Join(c.Authors, ", "))
	if c.Year > 0 {
		fmt.Printf("Year:     %d\n", c.Year)
	}
	fmt.Printf("Type:     %s\n", c.SourceType)
	if c.Venue != "" {
		fmt.Printf("Venue:    %s\n", c.Venue)
	}
	if c.DOI != "" {
		fmt.Printf("DOI:      %s\n", c.DOI)
	}
	if c.URL != "" {
		fmt.Printf("URL:      %s\n", c.URL)
	}
	note := ""
	if c.Provenance.Recalled {
		note = " (recalled, unverified)"
	}
	fmt.Printf("Source:   %s, confidence %.2f%s\n", c.Provenance.Provider, c.Provenance.Confidence, note)
}
