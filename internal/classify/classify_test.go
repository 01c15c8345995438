// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"reflect"
	"testing"

	"github.com/pdiddy/citation-engine/internal/provider"
)

// allEnabled turns every provider on, which yields the full chains.
var allEnabled = map[string]bool{
	provider.NameOpenAlex:        true,
	provider.NameSemanticScholar: true,
	provider.NameGrounded:        true,
	provider.NameWebSearch:       true,
}

func TestClassifyIndustryQuery(t *testing.T) {
	c := ClassifyAndRoute("McKinsey report on AI pricing 2024", allEnabled)

	if c.Type != TypeIndustry {
		t.Fatalf("Type = %q, want industry (matched %v)", c.Type, c.Matched)
	}
	want := []string{
		provider.NameGrounded,
		provider.NameSemanticScholar,
		provider.NameOpenAlex,
		provider.NameWebSearch,
	}
	if !reflect.DeepEqual(c.Chain, want) {
		t.Errorf("Chain = %v, want %v", c.Chain, want)
	}
	if c.Confidence <= 0 || c.Confidence > 1 {
		t.Errorf("Confidence = %f, want in (0, 1]", c.Confidence)
	}
}

func TestClassifyAcademicQuery(t *testing.T) {
	c := ClassifyAndRoute("systematic review of carbon pricing mechanisms", allEnabled)

	if c.Type != TypeAcademic {
		t.Fatalf("Type = %q, want academic (matched %v)", c.Type, c.Matched)
	}
	want := []string{
		provider.NameOpenAlex,
		provider.NameSemanticScholar,
		provider.NameGrounded,
		provider.NameWebSearch,
	}
	if !reflect.DeepEqual(c.Chain, want) {
		t.Errorf("Chain = %v, want %v", c.Chain, want)
	}
}

func TestClassifyMixedQuery(t *testing.T) {
	c := ClassifyAndRoute("effects of remote work on productivity", allEnabled)

	if c.Type != TypeMixed {
		t.Fatalf("Type = %q, want mixed (matched %v)", c.Type, c.Matched)
	}
	if c.Confidence != 0.5 {
		t.Errorf("Confidence = %f, want 0.5", c.Confidence)
	}
	if c.Chain[0] != provider.NameSemanticScholar {
		t.Errorf("Chain[0] = %q, want %q", c.Chain[0], provider.NameSemanticScholar)
	}
}

func TestClassifySearchOperators(t *testing.T) {
	c := ClassifyAndRoute(`author:vaswani title:"attention is all you need"`, allEnabled)
	if c.Type != TypeAcademic {
		t.Errorf("Type = %q, want academic for operator syntax", c.Type)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	first := ClassifyAndRoute("McKinsey report on AI pricing 2024", allEnabled)
	for i := 0; i < 10; i++ {
		again := ClassifyAndRoute("McKinsey report on AI pricing 2024", allEnabled)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestChainFiltersDisabledProviders(t *testing.T) {
	enabled := map[string]bool{
		provider.NameOpenAlex:        true,
		provider.NameSemanticScholar: true,
		// grounded and websearch off
	}
	c := ClassifyAndRoute("McKinsey report on AI pricing 2024", enabled)

	want := []string{provider.NameSemanticScholar, provider.NameOpenAlex}
	if !reflect.DeepEqual(c.Chain, want) {
		t.Errorf("Chain = %v, want %v (order preserved, disabled dropped)", c.Chain, want)
	}
}

func TestChainEmptyWhenAllDisabled(t *testing.T) {
	c := ClassifyAndRoute("anything", map[string]bool{})
	if len(c.Chain) != 0 {
		t.Errorf("Chain = %v, want empty", c.Chain)
	}
}

func TestWebSearchAlwaysLast(t *testing.T) {
	for _, query := range []string{
		"McKinsey report on AI pricing 2024",
		"systematic review of carbon pricing mechanisms",
		"effects of remote work on productivity",
	} {
		c := ClassifyAndRoute(query, allEnabled)
		if c.Chain[len(c.Chain)-1] != provider.NameWebSearch {
			t.Errorf("query %q: chain %v does not end with websearch", query, c.Chain)
		}
	}
}
