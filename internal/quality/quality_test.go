// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quality

import (
	"testing"
	"time"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// goodCitation is a record that passes validation in lenient mode.
func goodCitation() types.Citation {
	return types.Citation{
		ID:         "smith2023climate",
		Title:      "Climate Policy Effectiveness",
		Authors:    []string{"Jane Smith"},
		Year:       2023,
		SourceType: types.SourceJournal,
		Venue:      "Journal of Climate Economics",
		DOI:        "10.1234/cpe.2023",
		Abstract:   "We evaluate policy instruments.",
	}
}

var lenient = types.ValidationConfig{}

func TestScoreRubric(t *testing.T) {
	tests := []struct {
		name string
		c    types.Citation
		want float64
	}{
		{"empty", types.Citation{}, 0},
		{"doi only", types.Citation{DOI: "10.1/x"}, 2},
		{"secondary id only", types.Citation{SecondaryID: "W123"}, 1},
		{"venue only", types.Citation{Venue: "NeurIPS"}, 2},
		{"ten citations not enough", types.Citation{CitationCount: 10}, 0},
		{"eleven citations", types.Citation{CitationCount: 11}, 1},
		{"abstract only", types.Citation{Abstract: "..."}, 1},
		{"everything", types.Citation{
			DOI: "10.1/x", SecondaryID: "W123", Venue: "NeurIPS",
			CitationCount: 100, Abstract: "...",
		}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.c); got != tt.want {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateGoodCitation(t *testing.T) {
	if !ValidateCitation(goodCitation(), lenient) {
		t.Error("complete journal citation rejected")
	}
}

func TestValidateHardFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Citation)
	}{
		{"placeholder title", func(c *types.Citation) { c.Title = "Untitled" }},
		{"no authors on journal", func(c *types.Citation) { c.Authors = nil }},
		{"bare domain author", func(c *types.Citation) { c.Authors = []string{"example.com"} }},
		{"year too old", func(c *types.Citation) { c.Year = 1949 }},
		{"year in the future", func(c *types.Citation) { c.Year = time.Now().Year() + 2 }},
		{"no identifier", func(c *types.Citation) { c.DOI = ""; c.URL = "" }},
		{"recalled by default", func(c *types.Citation) { c.Provenance.Recalled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := goodCitation()
			tt.mutate(&c)
			ok, issues := Check(c, lenient)
			if ok {
				t.Errorf("citation accepted, want rejection (issues: %v)", issues)
			}
		})
	}
}

func TestValidateLowScoreRejected(t *testing.T) {
	c := goodCitation()
	c.DOI = ""
	c.Venue = ""
	c.URL = "https://example.org/paper"
	// Remaining score: abstract only = 1, below the minimum.
	if Score(c) >= MinScore {
		t.Fatalf("fixture broken: score %v", Score(c))
	}
	if ValidateCitation(c, lenient) {
		t.Error("low-score citation accepted")
	}
}

func TestValidateRecalledAllowedByConfig(t *testing.T) {
	c := goodCitation()
	c.Provenance.Recalled = true

	if ValidateCitation(c, lenient) {
		t.Error("recalled citation accepted without allow_recalled")
	}
	if !ValidateCitation(c, types.ValidationConfig{AllowRecalled: true}) {
		t.Error("recalled citation rejected despite allow_recalled")
	}
}

func TestValidateWebsiteWithoutAuthors(t *testing.T) {
	c := types.Citation{
		Title:      "OECD Climate Dashboard",
		Year:       2023,
		SourceType: types.SourceWebsite,
		Venue:      "oecd.org",
		URL:        "https://www.oecd.org/climate",
		DOI:        "10.1787/dashboard",
		Abstract:   "Interactive indicators.",
	}
	if !ValidateCitation(c, lenient) {
		t.Error("website citation without authors rejected; authors only required for non-website sources")
	}
}

func TestStrictModeEscalatesWarnings(t *testing.T) {
	c := goodCitation()
	c.Abstract = ""
	c.SecondaryID = "W123" // keep the score above the floor

	if !ValidateCitation(c, lenient) {
		t.Fatal("missing abstract should be a warning in lenient mode")
	}
	if ValidateCitation(c, types.ValidationConfig{Strict: true}) {
		t.Error("missing abstract should reject in strict mode")
	}

	ok, issues := Check(c, lenient)
	if !ok {
		t.Fatal("lenient check failed")
	}
	var found bool
	for _, issue := range issues {
		if issue.Field == "abstract" && issue.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("no abstract warning reported: %v", issues)
	}
}

func TestFilterDatabase(t *testing.T) {
	good := goodCitation()
	bad := goodCitation()
	bad.ID = "noauthors2023"
	bad.Authors = nil

	db := types.CitationDatabase{
		Citations: []types.Citation{good, bad},
		Total:     3, // deliberately wrong
	}

	kept, issues := FilterDatabase(db, lenient)
	if len(kept) != 1 || kept[0].ID != good.ID {
		t.Fatalf("kept = %+v, want only the good citation", kept)
	}

	var schemaTotal bool
	for _, issue := range issues {
		if issue.Field == "total" && issue.Severity == SeveritySchema {
			schemaTotal = true
		}
	}
	if !schemaTotal {
		t.Errorf("declared-total mismatch not reported: %v", issues)
	}
}

func TestFilterDatabaseDuplicateIDs(t *testing.T) {
	a := goodCitation()
	b := goodCitation() // same ID
	db := types.CitationDatabase{Citations: []types.Citation{a, b}, Total: 2}

	_, issues := FilterDatabase(db, lenient)
	var dup bool
	for _, issue := range issues {
		if issue.Field == "id" && issue.Severity == SeveritySchema {
			dup = true
		}
	}
	if !dup {
		t.Errorf("duplicate identifier not reported: %v", issues)
	}
}
