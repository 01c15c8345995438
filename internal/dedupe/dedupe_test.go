// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import (
	"reflect"
	"testing"

	"github.com/pdiddy/citation-engine/pkg/types"
)

func TestDeduplicateKeepsMostComplete(t *testing.T) {
	sparse := types.Citation{
		Title:   "Climate Policy Effectiveness",
		Authors: []string{"Jane Smith"},
		Year:    2023,
		URL:     "https://example.org/paper",
	}
	rich := types.Citation{
		Title:    "Climate Policy Effectiveness!",
		Authors:  []string{"Jane Smith", "Bob Lee"},
		Year:     2023,
		DOI:      "10.1234/cpe.2023",
		Venue:    "Journal of Climate Economics",
		Abstract: "We evaluate policy instruments.",
	}

	out := Deduplicate([]types.Citation{sparse, rich})
	if len(out) != 1 {
		t.Fatalf("got %d citations, want 1", len(out))
	}

	got := out[0]
	if got.DOI != "10.1234/cpe.2023" {
		t.Errorf("DOI = %q, want the richer record's DOI", got.DOI)
	}
	if got.URL != "https://example.org/paper" {
		t.Errorf("URL = %q, want backfilled from the sparse record", got.URL)
	}
	if got.Venue != "Journal of Climate Economics" {
		t.Errorf("Venue = %q", got.Venue)
	}
}

func TestDeduplicateTitleNormalization(t *testing.T) {
	a := types.Citation{Title: "Deep   Learning: A Survey", Year: 2020, DOI: "10.1/a"}
	b := types.Citation{Title: "deep learning a survey", Year: 2020, URL: "https://x.example/b"}

	out := Deduplicate([]types.Citation{a, b})
	if len(out) != 1 {
		t.Fatalf("got %d citations, want 1 (punctuation and case ignored)", len(out))
	}
}

func TestDeduplicateDifferentYearsStaySeparate(t *testing.T) {
	a := types.Citation{Title: "Annual Energy Outlook", Year: 2023, URL: "https://x.example/2023"}
	b := types.Citation{Title: "Annual Energy Outlook", Year: 2024, URL: "https://x.example/2024"}

	out := Deduplicate([]types.Citation{a, b})
	if len(out) != 2 {
		t.Fatalf("got %d citations, want 2 (same title, different years)", len(out))
	}
}

func TestDeduplicatePreservesOrder(t *testing.T) {
	in := []types.Citation{
		{Title: "First", Year: 2020, URL: "https://x.example/1"},
		{Title: "Second", Year: 2021, URL: "https://x.example/2"},
		{Title: "First", Year: 2020, DOI: "10.1/first", Venue: "V"},
		{Title: "Third", Year: 2022, URL: "https://x.example/3"},
	}

	out := Deduplicate(in)
	titles := make([]string, len(out))
	for i, c := range out {
		titles[i] = c.Title
	}
	want := []string{"First", "Second", "Third"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("order = %v, want %v", titles, want)
	}
	if out[0].DOI != "10.1/first" {
		t.Errorf("representative not upgraded in place: DOI = %q", out[0].DOI)
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	in := []types.Citation{
		{Title: "Alpha", Year: 2020, DOI: "10.1/alpha"},
		{Title: "Alpha!", Year: 2020, URL: "https://x.example/alpha"},
		{Title: "Beta", Year: 2021, URL: "https://x.example/beta"},
	}

	once := Deduplicate(in)
	twice := Deduplicate(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestDeduplicateEdgeCases(t *testing.T) {
	if out := Deduplicate(nil); len(out) != 0 {
		t.Errorf("nil input: got %v", out)
	}
	single := []types.Citation{{Title: "Only", Year: 2020}}
	if out := Deduplicate(single); !reflect.DeepEqual(out, single) {
		t.Errorf("single input changed: %+v", out)
	}
}

func TestCompletenessWeighting(t *testing.T) {
	withDOI := types.Citation{DOI: "10.1/x"}
	withExtras := types.Citation{Volume: "1", Issue: "2"}
	if completeness(withDOI) <= completeness(withExtras) {
		t.Errorf("DOI should outweigh volume+issue: %d vs %d",
			completeness(withDOI), completeness(withExtras))
	}
	withVenue := types.Citation{Venue: "V"}
	if completeness(withDOI) <= completeness(withVenue) {
		t.Errorf("DOI should outweigh venue: %d vs %d",
			completeness(withDOI), completeness(withVenue))
	}
}
