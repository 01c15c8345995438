// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality scores citations against a fixed rubric and admits or
// rejects them. Lenient mode tolerates the incomplete records that
// provider-extracted data often produces.
package quality

import (
	"fmt"
	"time"

	"github.com/pdiddy/citation-engine/internal/provider"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// MinScore is the rubric score below which a citation is never valid.
const MinScore = 4.0

// MinYear is the oldest publication year the engine accepts.
const MinYear = 1950

// Score rates a citation 0–7 on the completeness/credibility rubric:
// +2 DOI, +1 secondary identifier, +2 non-empty venue, +1 more than ten
// citations, +1 abstract.
func Score(c types.Citation) float64 {
	var s float64
	if c.DOI != "" {
		s += 2
	}
	if c.SecondaryID != "" {
		s++
	}
	if c.Venue != "" {
		s += 2
	}
	if c.CitationCount > 10 {
		s++
	}
	if c.Abstract != "" {
		s++
	}
	return s
}

// Severity distinguishes rejections from warnings and batch-level schema
// inconsistencies.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeveritySchema  Severity = "schema"
)

// Issue describes one problem found during validation.
type Issue struct {
	CitationID string   `json:"citation_id,omitempty" yaml:"citation_id,omitempty"`
	Title      string   `json:"title,omitempty" yaml:"title,omitempty"`
	Field      string   `json:"field" yaml:"field"`
	Message    string   `json:"message" yaml:"message"`
	Severity   Severity `json:"severity" yaml:"severity"`
}

// ValidateCitation reports whether a citation is admissible. Hard failures
// apply in both strict and lenient modes; lenient mode only downgrades
// missing optional fields to warnings.
func ValidateCitation(c types.Citation, cfg types.ValidationConfig) bool {
	ok, _ := Check(c, cfg)
	return ok
}

// Check validates one citation and returns the issues found. The boolean is
// false when any error-severity issue is present.
func Check(c types.Citation, cfg types.ValidationConfig) (bool, []Issue) {
	var issues []Issue
	fail := func(field, msg string) {
		issues = append(issues, Issue{CitationID: c.ID, Title: c.Title, Field: field, Message: msg, Severity: SeverityError})
	}
	warn := func(field, msg string) {
		sev := SeverityWarning
		if cfg.Strict {
			sev = SeverityError
		}
		issues = append(issues, Issue{CitationID: c.ID, Title: c.Title, Field: field, Message: msg, Severity: sev})
	}

	if provider.IsPlaceholderTitle(c.Title) {
		fail("title", "empty or placeholder title")
	}

	if len(c.Authors) == 0 {
		if c.SourceType != types.SourceWebsite {
			fail("authors", "no authors for non-website source")
		}
	} else if c.SourceType != types.SourceWebsite {
		for _, a := range c.Authors {
			if provider.IsBareDomain(a) {
				fail("authors", fmt.Sprintf("bare domain name %q as academic author", a))
				break
			}
		}
	}

	if c.Year < MinYear || c.Year > time.Now().Year()+1 {
		fail("year", fmt.Sprintf("year %d outside plausible range", c.Year))
	}

	if !c.HasIdentifier() {
		fail("identifier", "neither DOI nor URL present")
	}

	if s := Score(c); s < MinScore {
		fail("quality_score", fmt.Sprintf("quality score %.1f below minimum %.1f", s, MinScore))
	}

	if c.Provenance.Recalled && !cfg.AllowRecalled {
		fail("provenance", "recalled citation excluded (unverified)")
	}

	// Optional fields: warnings in lenient mode, errors in strict mode.
	if c.Venue == "" && c.SourceType != types.SourceWebsite {
		warn("venue", "missing venue")
	}
	if c.Abstract == "" {
		warn("abstract", "missing abstract")
	}
	if c.DOI == "" && c.SourceType == types.SourceJournal {
		warn("doi", "journal citation without DOI")
	}

	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return false, issues
		}
	}
	return true, issues
}

// FilterDatabase validates a whole citation database. It first checks batch
// self-consistency (declared total, duplicate identifiers), then filters
// records through Check. Kept citations preserve input order.
func FilterDatabase(db types.CitationDatabase, cfg types.ValidationConfig) ([]types.Citation, []Issue) {
	var issues []Issue

	if db.Total != len(db.Citations) {
		issues = append(issues, Issue{
			Field:    "total",
			Message:  fmt.Sprintf("declared total %d but %d citations present", db.Total, len(db.Citations)),
			Severity: SeveritySchema,
		})
	}

	seen := make(map[string]bool)
	for _, c := range db.Citations {
		if c.ID == "" {
			continue
		}
		if seen[c.ID] {
			issues = append(issues, Issue{
				CitationID: c.ID,
				Field:      "id",
				Message:    "duplicate citation identifier",
				Severity:   SeveritySchema,
			})
		}
		seen[c.ID] = true
	}

	var kept []types.Citation
	for _, c := range db.Citations {
		ok, recordIssues := Check(c, cfg)
		issues = append(issues, recordIssues...)
		if ok {
			kept = append(kept, c)
		}
	}
	return kept, issues
}
