// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// recallAPIBase is the default recall-model chat endpoint. The configured
// endpoint overrides it; tests substitute an httptest server.
var recallAPIBase = "https://api.openai.com/v1/chat/completions"

const recallModel = "gpt-4o-mini"

// recallPrompt asks the model to recall a citation from memory. Results are
// unverified; the orchestrator tags them so they can never pass for
// API-sourced citations.
const recallPrompt = `From memory, recall one real published work relevant to the research topic below.
Respond with ONLY a JSON object, no prose:
{"title": "...", "authors": ["..."], "year": 2023, "venue": "...", "publisher": "...", "source_type": "journal|conference|book|report|article|website", "doi": "...", "url": "..."}
If you are not certain the work exists, respond with the single word NONE. Never invent a DOI.

Topic: %s`

// RecallClient is the last-resort generative fallback: an LLM asked to
// recall a citation without web search. It runs only after the whole
// provider chain has come up empty.
type RecallClient struct {
	Client *http.Client
	APIKey string

	endpoint string
	model    string
	http     types.HTTPConfig
	limiter  *rate.Limiter
	retries  int
}

// NewRecallClient builds a client with its own token-bucket limiter.
func NewRecallClient(cfg types.RecallConfig, httpCfg types.HTTPConfig, client *http.Client) *RecallClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = recallAPIBase
	}
	model := cfg.Model
	if model == "" {
		model = recallModel
	}
	return &RecallClient{
		Client:   client,
		APIKey:   cfg.APIKey,
		endpoint: endpoint,
		model:    model,
		http:     httpCfg,
		limiter:  newLimiter(cfg.RequestsPerSecond),
		retries:  cfg.MaxRetries,
	}
}

// Name returns the provider identifier.
func (c *RecallClient) Name() string { return NameRecall }

// SearchPaper asks the model to recall a citation. An uncertain or
// unparseable answer is a not-found outcome.
func (c *RecallClient) SearchPaper(ctx context.Context, query string) (*types.Citation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportErr(NameRecall, err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(recallPrompt, query)},
		},
	})
	if err != nil {
		return nil, &Error{Provider: NameRecall, Kind: KindClientError, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Provider: NameRecall, Kind: KindClientError, Err: err}
	}
	req.Header.Set("User-Agent", c.http.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.retries)
	if err != nil {
		return nil, transportErr(NameRecall, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(NameRecall, resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, &Error{Provider: NameRecall, Kind: KindClientError, Err: fmt.Errorf("parsing response: %w", err)}
	}
	if len(cr.Choices) == 0 {
		return nil, nil
	}

	meta, err := parseCitationJSON(cr.Choices[0].Message.Content)
	if err != nil {
		return nil, nil
	}
	cit := meta.toCitation()
	if cit == nil || !cit.HasIdentifier() {
		return nil, nil
	}
	return cit, nil
}
