// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citation-engine pipeline.
// See docs/ARCHITECTURE.md § Data Structures.
package types

import (
	"strconv"
	"strings"
	"unicode"
)

// SourceType classifies the kind of work a citation refers to.
type SourceType string

const (
	SourceJournal    SourceType = "journal"
	SourceConference SourceType = "conference"
	SourceBook       SourceType = "book"
	SourceReport     SourceType = "report"
	SourceArticle    SourceType = "article"
	SourceWebsite    SourceType = "website"
)

// Provenance records which provider produced a citation and how much the
// engine trusts it. Recalled marks citations produced by the last-resort
// generative fallback; those are never presented as API-sourced results.
type Provenance struct {
	// Provider is the name of the originating provider (e.g. "openalex").
	Provider string `json:"provider" yaml:"provider"`

	// Confidence is a value between 0.0 and 1.0 derived from the provider type.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Recalled is true when the citation was recalled from model memory
	// rather than found through a search API.
	Recalled bool `json:"recalled,omitempty" yaml:"recalled,omitempty"`
}

// Citation is the canonical normalized bibliographic record. Provider
// clients construct one from a raw API response; the deduplicator and
// quality filter may drop or merge it; the final set is owned by the caller.
type Citation struct {
	// ID is an assigned citation key (e.g. "smith2023climate"). Empty until
	// a batch assigns keys; must be unique within a citation database.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Title is the work title. Never empty or a placeholder in a valid citation.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order. May be empty only for
	// website sources, where a domain-derived author is permitted.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year.
	Year int `json:"year" yaml:"year"`

	// SourceType classifies the work.
	SourceType SourceType `json:"source_type" yaml:"source_type"`

	// Venue is the journal, conference, or publication the work appeared in.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Publisher is the publishing organization.
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`

	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue  string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages  string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// DOI is the bare DOI without resolver prefix (e.g. "10.1145/3292500").
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// URL is a resolvable link to the work.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// SecondaryID is an alternate identifier such as an arXiv ID.
	SecondaryID string `json:"secondary_id,omitempty" yaml:"secondary_id,omitempty"`

	// Abstract is the work abstract or summary, when available.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// CitationCount is a popularity signal from the provider, when known.
	CitationCount int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// Provenance records the originating provider and derived confidence.
	Provenance Provenance `json:"provenance" yaml:"provenance"`
}

// HasIdentifier reports whether the citation carries at least one of DOI or URL.
func (c Citation) HasIdentifier() bool {
	return c.DOI != "" || c.URL != ""
}

// CiteKey derives a citation key from the first author's family name, the
// year, and the first significant title word (e.g. "smith2023climate").
// Returns "" when the citation has no title.
func (c Citation) CiteKey() string {
	if c.Title == "" {
		return ""
	}

	family := "anon"
	if len(c.Authors) > 0 {
		fields := strings.Fields(c.Authors[0])
		if len(fields) > 0 {
			family = fields[len(fields)-1]
		}
	}

	word := firstSignificantWord(c.Title)

	var b strings.Builder
	for _, r := range strings.ToLower(family) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if c.Year > 0 {
		b.WriteString(strconv.Itoa(c.Year))
	}
	b.WriteString(word)
	return b.String()
}

// stopWords are skipped when choosing the title word for a citation key.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "on": true, "of": true, "in": true,
	"for": true, "and": true, "to": true, "with": true, "from": true,
}

func firstSignificantWord(title string) string {
	for _, f := range strings.Fields(strings.ToLower(title)) {
		var b strings.Builder
		for _, r := range f {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		w := b.String()
		if w != "" && !stopWords[w] {
			return w
		}
	}
	return ""
}

// CitationDatabase is the on-disk batch format exchanged with the drafting
// pipeline. Total is declared by the writer and verified against the actual
// list length by the quality filter.
type CitationDatabase struct {
	Citations []Citation `json:"citations" yaml:"citations"`
	Total     int        `json:"total" yaml:"total"`
}
