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

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// OpenAlexClient queries the OpenAlex bibliographic database.
type OpenAlexClient struct {
	Client *http.Client
	// Email is sent as mailto parameter for polite pool access.
	Email string

	http    types.HTTPConfig
	limiter *rate.Limiter
	retries int
}

// NewOpenAlexClient builds a client with its own token-bucket limiter.
func NewOpenAlexClient(cfg types.OpenAlexConfig, httpCfg types.HTTPConfig, client *http.Client) *OpenAlexClient {
	return &OpenAlexClient{
		Client:  client,
		Email:   cfg.Email,
		http:    httpCfg,
		limiter: newLimiter(cfg.RequestsPerSecond),
		retries: cfg.MaxRetries,
	}
}

// Name returns the provider identifier.
func (c *OpenAlexClient) Name() string { return NameOpenAlex }

// SearchPaper queries OpenAlex and returns the most relevant usable work,
// or nil when the result set is empty.
func (c *OpenAlexClient) SearchPaper(ctx context.Context, query string) (*types.Citation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportErr(NameOpenAlex, err)
	}

	params := url.Values{
		"search":   {query},
		"per_page": {"5"},
		"page":     {"1"},
	}
	if c.Email != "" {
		params.Set("mailto", c.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Provider: NameOpenAlex, Kind: KindClientError, Err: err}
	}
	req.Header.Set("User-Agent", c.http.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.retries)
	if err != nil {
		return nil, transportErr(NameOpenAlex, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(NameOpenAlex, resp.StatusCode)
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, &Error{Provider: NameOpenAlex, Kind: KindClientError, Err: fmt.Errorf("parsing response: %w", err)}
	}

	for _, work := range oar.Results {
		if cit := c.normalize(work); cit != nil {
			return cit, nil
		}
	}
	return nil, nil
}

// normalize maps an OpenAlex work onto a Citation. Returns nil for works
// without a usable title or authors.
func (c *OpenAlexClient) normalize(work openAlexWork) *types.Citation {
	if IsPlaceholderTitle(work.Title) {
		return nil
	}

	sourceType := NormalizeSourceType(work.Type)

	var authors []string
	for _, authorship := range work.Authorships {
		if authorship.Author.DisplayName != "" {
			authors = append(authors, authorship.Author.DisplayName)
		}
	}
	authors = CleanAuthors(authors, sourceType)
	if len(authors) == 0 {
		return nil
	}

	cit := &types.Citation{
		Title:         strings.TrimSpace(work.Title),
		Authors:       authors,
		Year:          work.PublicationYear,
		SourceType:    sourceType,
		Venue:         work.PrimaryLocation.Source.DisplayName,
		Publisher:     work.PrimaryLocation.Source.Publisher,
		Volume:        work.Biblio.Volume,
		Issue:         work.Biblio.Issue,
		Abstract:      ReconstructAbstract(work.AbstractInvertedIndex),
		CitationCount: work.CitedByCount,
	}

	if work.Biblio.FirstPage != "" {
		cit.Pages = work.Biblio.FirstPage
		if work.Biblio.LastPage != "" && work.Biblio.LastPage != work.Biblio.FirstPage {
			cit.Pages += "-" + work.Biblio.LastPage
		}
	}

	// OpenAlex returns the DOI as a resolver URL; keep the bare form.
	if work.DOI != "" {
		cit.DOI = strings.TrimPrefix(work.DOI, "https://doi.org/")
		cit.URL = work.DOI
	}
	if cit.URL == "" {
		cit.URL = work.PrimaryLocation.LandingPageURL
	}
	if work.ID != "" {
		cit.SecondaryID = strings.TrimPrefix(work.ID, "https://openalex.org/")
	}

	if !cit.HasIdentifier() {
		return nil
	}
	return cit
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	Type                  string               `json:"type"`
	PublicationYear       int                  `json:"publication_year"`
	CitedByCount          int                  `json:"cited_by_count"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	Biblio                openAlexBiblio       `json:"biblio"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexBiblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}

type openAlexLocation struct {
	LandingPageURL string         `json:"landing_page_url"`
	Source         openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
	Publisher   string `json:"host_organization_name"`
}
