// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// groundedAPIBase is the default grounded-search chat endpoint. The
// configured endpoint overrides it; tests substitute an httptest server.
var groundedAPIBase = "https://api.perplexity.ai/chat/completions"

const groundedModel = "sonar"

// groundedPrompt instructs the model to return one verifiable source as
// strict JSON. Keeping the schema flat makes the response easy to salvage
// even when the model wraps it in prose or code fences.
const groundedPrompt = `Find one real, verifiable source for the research topic below using web search.
Respond with ONLY a JSON object, no prose:
{"title": "...", "authors": ["..."], "year": 2023, "venue": "...", "publisher": "...", "source_type": "journal|conference|book|report|article|website", "doi": "...", "url": "..."}
Use null or omit fields you cannot verify. Never invent a DOI.

Topic: %s`

// GroundedClient asks a web-search-grounded LLM for a citation. Unlike the
// bibliographic clients it POSTs, authenticates with a bearer token, and
// runs every candidate URL through the domain filter.
type GroundedClient struct {
	Client *http.Client
	APIKey string
	Filter *DomainFilter

	endpoint string
	model    string
	http     types.HTTPConfig
	limiter  *rate.Limiter
	retries  int
}

// NewGroundedClient builds a client with its own token-bucket limiter.
func NewGroundedClient(cfg types.GroundedConfig, httpCfg types.HTTPConfig, client *http.Client, filter *DomainFilter) *GroundedClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = groundedAPIBase
	}
	model := cfg.Model
	if model == "" {
		model = groundedModel
	}
	return &GroundedClient{
		Client:   client,
		APIKey:   cfg.APIKey,
		Filter:   filter,
		endpoint: endpoint,
		model:    model,
		http:     httpCfg,
		limiter:  newLimiter(cfg.RequestsPerSecond),
		retries:  cfg.MaxRetries,
	}
}

// Name returns the provider identifier.
func (c *GroundedClient) Name() string { return NameGrounded }

// SearchPaper asks the grounded model for a source and normalizes its
// answer. A response that fails the domain filter or normalization is a
// not-found outcome, not an error: the chain should move on.
func (c *GroundedClient) SearchPaper(ctx context.Context, query string) (*types.Citation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportErr(NameGrounded, err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(groundedPrompt, query)},
		},
	})
	if err != nil {
		return nil, &Error{Provider: NameGrounded, Kind: KindClientError, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Provider: NameGrounded, Kind: KindClientError, Err: err}
	}
	req.Header.Set("User-Agent", c.http.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.retries)
	if err != nil {
		return nil, transportErr(NameGrounded, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(NameGrounded, resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, &Error{Provider: NameGrounded, Kind: KindClientError, Err: fmt.Errorf("parsing response: %w", err)}
	}
	if len(cr.Choices) == 0 {
		return nil, nil
	}

	meta, err := parseCitationJSON(cr.Choices[0].Message.Content)
	if err != nil {
		// The model answered but not in the requested shape.
		return nil, nil
	}

	cit := meta.toCitation()
	if cit == nil {
		return nil, nil
	}

	// Fall back to the first search citation URL the API surfaced.
	if cit.URL == "" && len(cr.Citations) > 0 {
		cit.URL = cr.Citations[0]
	}
	if cit.DOI == "" {
		cit.DOI = ExtractDOI(cr.Choices[0].Message.Content)
	}
	if !cit.HasIdentifier() {
		return nil, nil
	}
	if cit.URL != "" {
		if ok, _ := c.Filter.Admit(ctx, cit.URL, cit.DOI); !ok {
			return nil, nil
		}
	}
	return cit, nil
}

// citationJSON is the flat schema both LLM providers are prompted to emit.
type citationJSON struct {
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Year       int      `json:"year"`
	Venue      string   `json:"venue"`
	Publisher  string   `json:"publisher"`
	SourceType string   `json:"source_type"`
	DOI        string   `json:"doi"`
	URL        string   `json:"url"`
}

// toCitation validates and converts the parsed schema. Returns nil for
// unusable records (placeholder title, no authors for academic types).
func (m citationJSON) toCitation() *types.Citation {
	if IsPlaceholderTitle(m.Title) {
		return nil
	}
	sourceType := NormalizeSourceType(m.SourceType)
	authors := CleanAuthors(m.Authors, sourceType)
	if len(authors) == 0 {
		if sourceType != types.SourceWebsite {
			return nil
		}
		if a := DomainAuthor(m.URL); a != "" {
			authors = []string{a}
		} else {
			return nil
		}
	}
	return &types.Citation{
		Title:      strings.TrimSpace(m.Title),
		Authors:    authors,
		Year:       m.Year,
		SourceType: sourceType,
		Venue:      m.Venue,
		Publisher:  m.Publisher,
		DOI:        ExtractDOI(m.DOI),
		URL:        m.URL,
	}
}

// parseCitationJSON extracts the first JSON object from model output,
// tolerating code fences and surrounding prose.
func parseCitationJSON(content string) (citationJSON, error) {
	var meta citationJSON
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return meta, fmt.Errorf("no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &meta); err != nil {
		return meta, fmt.Errorf("parsing model output: %w", err)
	}
	return meta, nil
}

// Chat-completions wire structures shared by the grounded and recall clients.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices   []chatChoice `json:"choices"`
	Citations []string     `json:"citations"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}
