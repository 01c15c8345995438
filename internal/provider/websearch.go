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

// webSearchAPIBase is the default generic web-search endpoint. The
// configured endpoint overrides it; tests substitute an httptest server.
var webSearchAPIBase = "https://google.serper.dev/search"

// WebSearchClient queries a generic web-search API and turns the first
// admissible organic result into a website citation.
type WebSearchClient struct {
	Client *http.Client
	APIKey string
	Filter *DomainFilter

	endpoint string
	http     types.HTTPConfig
	limiter  *rate.Limiter
	retries  int
}

// NewWebSearchClient builds a client with its own token-bucket limiter.
func NewWebSearchClient(cfg types.WebSearchConfig, httpCfg types.HTTPConfig, client *http.Client, filter *DomainFilter) *WebSearchClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = webSearchAPIBase
	}
	return &WebSearchClient{
		Client:   client,
		APIKey:   cfg.APIKey,
		Filter:   filter,
		endpoint: endpoint,
		http:     httpCfg,
		limiter:  newLimiter(cfg.RequestsPerSecond),
		retries:  cfg.MaxRetries,
	}
}

// Name returns the provider identifier.
func (c *WebSearchClient) Name() string { return NameWebSearch }

// SearchPaper runs a web search and returns the first organic result that
// passes the domain filter, as a website citation with a domain-derived
// author. No admissible result is a not-found outcome.
func (c *WebSearchClient) SearchPaper(ctx context.Context, query string) (*types.Citation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportErr(NameWebSearch, err)
	}

	body, err := json.Marshal(webSearchRequest{Query: query})
	if err != nil {
		return nil, &Error{Provider: NameWebSearch, Kind: KindClientError, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Provider: NameWebSearch, Kind: KindClientError, Err: err}
	}
	req.Header.Set("User-Agent", c.http.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.APIKey)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.retries)
	if err != nil {
		return nil, transportErr(NameWebSearch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(NameWebSearch, resp.StatusCode)
	}

	var wr webSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, &Error{Provider: NameWebSearch, Kind: KindClientError, Err: fmt.Errorf("parsing response: %w", err)}
	}

	for _, organic := range wr.Organic {
		doi := ExtractDOI(organic.Link)
		if doi == "" {
			doi = ExtractDOI(organic.Snippet)
		}
		if ok, _ := c.Filter.Admit(ctx, organic.Link, doi); !ok {
			continue
		}
		if cit := normalizeOrganic(organic, doi); cit != nil {
			return cit, nil
		}
	}
	return nil, nil
}

// normalizeOrganic maps one organic search result onto a website citation.
func normalizeOrganic(organic webSearchOrganic, doi string) *types.Citation {
	if IsPlaceholderTitle(organic.Title) || organic.Link == "" {
		return nil
	}
	author := DomainAuthor(organic.Link)
	if author == "" {
		return nil
	}

	year := ExtractYear(organic.Date)
	if year == 0 {
		year = ExtractYear(organic.Snippet)
	}

	return &types.Citation{
		Title:      strings.TrimSpace(organic.Title),
		Authors:    []string{author},
		Year:       year,
		SourceType: types.SourceWebsite,
		Venue:      author,
		Abstract:   organic.Snippet,
		DOI:        doi,
		URL:        organic.Link,
	}
}

// Web-search wire structures (Serper-style).
type webSearchRequest struct {
	Query string `json:"q"`
}

type webSearchResponse struct {
	Organic []webSearchOrganic `json:"organic"`
}

type webSearchOrganic struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
}
