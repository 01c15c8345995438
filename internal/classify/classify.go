// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify routes a research topic to an ordered provider chain.
// Classification is a pure function: no I/O, and identical input always
// yields identical output.
package classify

import (
	"strings"

	"github.com/pdiddy/citation-engine/internal/provider"
)

// QueryType labels what kind of source a topic most likely needs.
type QueryType string

const (
	TypeAcademic QueryType = "academic"
	TypeIndustry QueryType = "industry"
	TypeMixed    QueryType = "mixed"
)

// Classification is the ephemeral routing decision for one query.
type Classification struct {
	Type       QueryType
	Confidence float64
	Matched    []string
	Chain      []string
}

// industrySignals mark topics best served by web-grounded search:
// consultancy and regulator names, report/guideline phrasing.
var industrySignals = []string{
	"mckinsey", "bcg", "boston consulting", "bain", "deloitte", "pwc",
	"kpmg", "ey ", "accenture", "gartner", "forrester", "statista",
	"oecd", "world bank", "imf", "world economic forum",
	"report", "white paper", "whitepaper", "guidelines", "regulation",
	"regulator", "market size", "market share", "industry", "benchmark",
	"survey", "forecast", "quarterly", "annual",
}

// academicSignals mark topics best served by bibliographic databases,
// including the author:/title: operator syntax.
var academicSignals = []string{
	"peer-reviewed", "peer reviewed", "systematic review", "meta-analysis",
	"meta analysis", "randomized", "randomised", "longitudinal",
	"empirical", "journal", "study of", "clinical trial", "cohort",
	"literature review", "theoretical", "hypothesis",
	"author:", "title:", "doi:",
}

// ClassifyAndRoute classifies a topic and produces the ordered provider
// chain to try. Providers reported disabled are removed from the chain,
// preserving relative order.
func ClassifyAndRoute(query string, enabled map[string]bool) Classification {
	q := strings.ToLower(query)

	var matched []string
	industry, academic := 0, 0
	for _, s := range industrySignals {
		if strings.Contains(q, s) {
			matched = append(matched, s)
			industry++
		}
	}
	for _, s := range academicSignals {
		if strings.Contains(q, s) {
			matched = append(matched, s)
			academic++
		}
	}

	c := Classification{Matched: matched}
	switch {
	case industry > academic:
		c.Type = TypeIndustry
		c.Confidence = float64(industry) / float64(industry+academic+1)
	case academic > industry:
		c.Type = TypeAcademic
		c.Confidence = float64(academic) / float64(industry+academic+1)
	default:
		c.Type = TypeMixed
		c.Confidence = 0.5
	}

	c.Chain = chainFor(c.Type, enabled)
	return c
}

// chainFor returns the provider order for a query type. The generic web
// search is always the last resort before the chain is exhausted.
func chainFor(qt QueryType, enabled map[string]bool) []string {
	var chain []string
	switch qt {
	case TypeIndustry:
		chain = []string{provider.NameGrounded, provider.NameSemanticScholar, provider.NameOpenAlex}
	case TypeAcademic:
		chain = []string{provider.NameOpenAlex, provider.NameSemanticScholar, provider.NameGrounded}
	default:
		chain = []string{provider.NameSemanticScholar, provider.NameGrounded, provider.NameOpenAlex}
	}
	chain = append(chain, provider.NameWebSearch)

	var out []string
	for _, name := range chain {
		if enabled[name] {
			out = append(out, name)
		}
	}
	return out
}
