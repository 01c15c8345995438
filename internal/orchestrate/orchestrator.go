// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrate drives one research query through its provider chain,
// short-circuiting on first success and persisting every outcome to a
// durable cache. See docs/ARCHITECTURE § Orchestration.
package orchestrate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/citation-engine/internal/classify"
	"github.com/pdiddy/citation-engine/internal/dedupe"
	"github.com/pdiddy/citation-engine/internal/provider"
	"github.com/pdiddy/citation-engine/internal/quality"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// providerConfidence maps provider names to the provenance confidence of
// their results. API-backed sources rank above generative ones; recall sits
// at the bottom and is additionally flagged.
var providerConfidence = map[string]float64{
	provider.NameOpenAlex:        0.9,
	provider.NameSemanticScholar: 0.85,
	provider.NameGrounded:        0.7,
	provider.NameWebSearch:       0.6,
	provider.NameRecall:          0.3,
}

// Engine owns the provider clients, the persistent cache, and the
// configuration. Construct one with New and share it; it is safe for
// concurrent ResearchCitation calls across different queries. Concurrent
// calls for the identical query may both do network work and race on the
// cache write; the last writer wins, which only costs duplicate effort.
type Engine struct {
	cfg     types.EngineConfig
	clients map[string]provider.Client
	recall  provider.Client
	cache   *Cache
	w       io.Writer
}

// New builds an Engine from config. Disabled providers get no client and
// drop out of every chain. Warnings and progress go to w.
func New(cfg types.EngineConfig, w io.Writer) *Engine {
	timeout := cfg.HTTP.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	filter := provider.NewDomainFilter(cfg.Domains, httpClient)

	clients := make(map[string]provider.Client)
	if cfg.OpenAlex.Enabled {
		clients[provider.NameOpenAlex] = provider.NewOpenAlexClient(cfg.OpenAlex, cfg.HTTP, httpClient)
	}
	if cfg.SemanticScholar.Enabled {
		clients[provider.NameSemanticScholar] = provider.NewSemanticScholarClient(cfg.SemanticScholar, cfg.HTTP, httpClient)
	}
	if cfg.Grounded.Enabled {
		clients[provider.NameGrounded] = provider.NewGroundedClient(cfg.Grounded, cfg.HTTP, httpClient, filter)
	}
	if cfg.WebSearch.Enabled {
		clients[provider.NameWebSearch] = provider.NewWebSearchClient(cfg.WebSearch, cfg.HTTP, httpClient, filter)
	}

	e := &Engine{
		cfg:     cfg,
		clients: clients,
		cache:   LoadCache(cfg.Cache.Path, w),
		w:       w,
	}
	if cfg.Recall.Enabled {
		e.recall = provider.NewRecallClient(cfg.Recall, cfg.HTTP, httpClient)
	}
	return e
}

// Cache exposes the engine's cache for the CLI cache subcommand.
func (e *Engine) Cache() *Cache { return e.cache }

// enabled reports which providers have configured clients, for chain routing.
func (e *Engine) enabled() map[string]bool {
	m := make(map[string]bool, len(e.clients))
	for name := range e.clients {
		m[name] = true
	}
	return m
}

// ResearchCitation finds one citation for a research topic, or nil when
// every configured provider comes up empty. Provider failures are
// classified and logged but never abort the chain; the only error returned
// is a cancelled context. Outcomes — including negative ones — are cached
// by exact query string, so a repeat call makes zero network calls.
func (e *Engine) ResearchCitation(ctx context.Context, topic string) (*types.Citation, error) {
	if entry, ok := e.cache.Get(topic); ok {
		if entry.Citation == nil {
			fmt.Fprintf(e.w, "cache hit (negative) %q\n", topic)
			return nil, nil
		}
		fmt.Fprintf(e.w, "cache hit (%s) %q\n", entry.Provider, topic)
		return entry.Citation, nil
	}

	classification := classify.ClassifyAndRoute(topic, e.enabled())
	fmt.Fprintf(e.w, "classified %q as %s (confidence %.2f), chain %v\n",
		topic, classification.Type, classification.Confidence, classification.Chain)

	for _, name := range classification.Chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cit, err := e.clients[name].SearchPaper(ctx, topic)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			fmt.Fprintf(e.w, "warning: provider %s failed for %q: %s: %v\n",
				name, topic, provider.ErrKind(err), err)
			continue
		}
		if cit == nil {
			fmt.Fprintf(e.w, "provider %s: no match for %q\n", name, topic)
			continue
		}

		e.stamp(cit, name)
		e.persist(topic, cit, name)
		return cit, nil
	}

	// Last-resort generative fallback, tagged so it can never pass for an
	// API-sourced result.
	if e.recall != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cit, err := e.recall.SearchPaper(ctx, topic)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			fmt.Fprintf(e.w, "warning: recall fallback failed for %q: %v\n", topic, err)
		} else if cit != nil {
			e.stamp(cit, provider.NameRecall)
			cit.Provenance.Recalled = true
			e.persist(topic, cit, provider.NameRecall)
			return cit, nil
		}
	}

	e.persist(topic, nil, "")
	return nil, nil
}

// stamp fills provenance from the producing provider.
func (e *Engine) stamp(cit *types.Citation, name string) {
	cit.Provenance = types.Provenance{
		Provider:   name,
		Confidence: providerConfidence[name],
	}
}

// persist records an outcome. A failed cache write costs idempotence, not
// correctness, so it is logged rather than returned.
func (e *Engine) persist(topic string, cit *types.Citation, name string) {
	if err := e.cache.Put(topic, cit, name); err != nil {
		fmt.Fprintf(e.w, "warning: cache write for %q failed: %v\n", topic, err)
	}
}

// DedupeAndValidate is the batch contract for the drafting pipeline: it
// deduplicates a compiled citation list, then filters it through the
// quality rubric. Citation keys are assigned before filtering so batch
// invariants can be checked.
func (e *Engine) DedupeAndValidate(citations []types.Citation) ([]types.Citation, []quality.Issue) {
	deduped := dedupe.Deduplicate(citations)

	used := make(map[string]int)
	for i := range deduped {
		if deduped[i].ID == "" {
			key := deduped[i].CiteKey()
			// Distinct works can share an author/year/title-word key;
			// suffix later ones (smith2023climate, smith2023climateb, ...).
			if n := used[key]; n > 0 {
				deduped[i].ID = fmt.Sprintf("%s%c", key, 'a'+rune(n))
			} else {
				deduped[i].ID = key
			}
			used[key]++
		} else {
			used[deduped[i].ID]++
		}
	}

	db := types.CitationDatabase{Citations: deduped, Total: len(deduped)}
	kept, issues := quality.FilterDatabase(db, e.cfg.Validation)

	for _, issue := range issues {
		if issue.Severity == quality.SeverityWarning {
			fmt.Fprintf(e.w, "warning: %s: %s (%s)\n", issue.Field, issue.Message, issue.Title)
		}
	}
	return kept, issues
}
