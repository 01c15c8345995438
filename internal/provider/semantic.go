// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,externalIds,year,venue,publicationTypes,citationCount,url"

// SemanticScholarClient queries the Semantic Scholar community index.
type SemanticScholarClient struct {
	Client *http.Client
	APIKey string

	http    types.HTTPConfig
	limiter *rate.Limiter
	retries int
}

// NewSemanticScholarClient builds a client with its own token-bucket limiter.
func NewSemanticScholarClient(cfg types.SemanticScholarConfig, httpCfg types.HTTPConfig, client *http.Client) *SemanticScholarClient {
	return &SemanticScholarClient{
		Client:  client,
		APIKey:  cfg.APIKey,
		http:    httpCfg,
		limiter: newLimiter(cfg.RequestsPerSecond),
		retries: cfg.MaxRetries,
	}
}

// Name returns the provider identifier.
func (c *SemanticScholarClient) Name() string { return NameSemanticScholar }

// SearchPaper queries Semantic Scholar and returns the most relevant usable
// paper, or nil when the result set is empty.
func (c *SemanticScholarClient) SearchPaper(ctx context.Context, query string) (*types.Citation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportErr(NameSemanticScholar, err)
	}

	params := url.Values{
		"query":  {query},
		"limit":  {"5"},
		"fields": {semanticFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Provider: NameSemanticScholar, Kind: KindClientError, Err: err}
	}
	req.Header.Set("User-Agent", c.http.UserAgent)
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.retries)
	if err != nil {
		return nil, transportErr(NameSemanticScholar, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(NameSemanticScholar, resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &Error{Provider: NameSemanticScholar, Kind: KindClientError, Err: fmt.Errorf("parsing response: %w", err)}
	}

	for _, paper := range sr.Data {
		if cit := normalizeSemanticPaper(paper); cit != nil {
			return cit, nil
		}
	}
	return nil, nil
}

// normalizeSemanticPaper maps a Semantic Scholar paper onto a Citation.
// Returns nil for papers without a usable title, authors, or identifier.
func normalizeSemanticPaper(paper semanticPaper) *types.Citation {
	if IsPlaceholderTitle(paper.Title) {
		return nil
	}

	sourceType := types.SourceJournal
	for _, pt := range paper.PublicationTypes {
		if st := NormalizeSourceType(pt); st != types.SourceArticle {
			sourceType = st
			break
		}
	}

	var authors []string
	for _, a := range paper.Authors {
		authors = append(authors, a.Name)
	}
	authors = CleanAuthors(authors, sourceType)
	if len(authors) == 0 {
		return nil
	}

	cit := &types.Citation{
		Title:         strings.TrimSpace(paper.Title),
		Authors:       authors,
		Year:          paper.Year,
		SourceType:    sourceType,
		Venue:         paper.Venue,
		Abstract:      paper.Abstract,
		CitationCount: paper.CitationCount,
		DOI:           paper.ExternalIDs.DOI,
		SecondaryID:   paper.ExternalIDs.ArXiv,
		URL:           paper.URL,
	}

	if cit.DOI == "" {
		cit.DOI = ExtractDOI(paper.URL)
	}
	if !cit.HasIdentifier() {
		return nil
	}
	return cit
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID          string              `json:"paperId"`
	Title            string              `json:"title"`
	Abstract         string              `json:"abstract"`
	Year             int                 `json:"year"`
	Venue            string              `json:"venue"`
	URL              string              `json:"url"`
	CitationCount    int                 `json:"citationCount"`
	PublicationTypes []string            `json:"publicationTypes"`
	Authors          []semanticAuthor    `json:"authors"`
	ExternalIDs      semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	CorpusID int    `json:"CorpusId"`
}
