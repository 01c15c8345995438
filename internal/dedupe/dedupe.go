// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedupe clusters near-duplicate citations and keeps the most
// complete representative per cluster.
package dedupe

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Deduplicate collapses citations that share a case-insensitive normalized
// (title, year) pair, keeping the most complete record of each cluster.
// Survivors keep their original relative order, so the function is
// idempotent and stable. Empty input returns empty output.
func Deduplicate(citations []types.Citation) []types.Citation {
	if len(citations) == 0 {
		return citations
	}

	seen := make(map[string]int) // cluster key → index in out
	var out []types.Citation

	for _, c := range citations {
		key := clusterKey(c)
		idx, ok := seen[key]
		if !ok {
			seen[key] = len(out)
			out = append(out, c)
			continue
		}
		if completeness(c) > completeness(out[idx]) {
			// Better representative: replace in place to keep order.
			merged := c
			fillMissing(&merged, out[idx])
			out[idx] = merged
		} else {
			fillMissing(&out[idx], c)
		}
	}
	return out
}

// clusterKey is the normalized (title, year) pair.
func clusterKey(c types.Citation) string {
	return normalizeTitle(c.Title) + "|" + strconv.Itoa(c.Year)
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the
// title with collapsed whitespace.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// completeness counts populated optional fields, weighted toward the
// identifiers that matter most for citation quality.
func completeness(c types.Citation) int {
	score := 0
	if c.DOI != "" {
		score += 3
	}
	if c.Venue != "" {
		score += 2
	}
	for _, f := range []string{c.Volume, c.Issue, c.Pages, c.Abstract, c.URL, c.Publisher} {
		if f != "" {
			score++
		}
	}
	return score
}

// fillMissing copies fields the representative lacks from a duplicate.
func fillMissing(dst *types.Citation, src types.Citation) {
	if dst.DOI == "" {
		dst.DOI = src.DOI
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if dst.Venue == "" {
		dst.Venue = src.Venue
	}
	if dst.Publisher == "" {
		dst.Publisher = src.Publisher
	}
	if dst.Volume == "" {
		dst.Volume = src.Volume
	}
	if dst.Issue == "" {
		dst.Issue = src.Issue
	}
	if dst.Pages == "" {
		dst.Pages = src.Pages
	}
	if dst.Abstract == "" {
		dst.Abstract = src.Abstract
	}
	if dst.SecondaryID == "" {
		dst.SecondaryID = src.SecondaryID
	}
	if len(dst.Authors) == 0 {
		dst.Authors = src.Authors
	}
	if src.CitationCount > dst.CitationCount {
		dst.CitationCount = src.CitationCount
	}
}
