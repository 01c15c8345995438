// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

func newSemanticTestClient(t *testing.T, handler http.HandlerFunc) *SemanticScholarClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	saved := semanticAPIBase
	semanticAPIBase = server.URL
	t.Cleanup(func() { semanticAPIBase = saved })

	savedDelay := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	t.Cleanup(func() { httputil.RetryBaseDelay = savedDelay })

	cfg := types.SemanticScholarConfig{
		ProviderConfig: types.ProviderConfig{Enabled: true, APIKey: "ss_test", RequestsPerSecond: 1000, MaxRetries: 1},
	}
	return NewSemanticScholarClient(cfg, types.HTTPConfig{UserAgent: "citation-engine-test"}, server.Client())
}

func TestSemanticScholarSearchPaper(t *testing.T) {
	client := newSemanticTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "attention mechanisms", r.URL.Query().Get("query"))
		assert.Equal(t, "ss_test", r.Header.Get("x-api-key"))

		resp := semanticResponse{
			Total: 1,
			Data: []semanticPaper{{
				PaperID:          "abc123",
				Title:            "Attention Is All You Need",
				Abstract:         "The dominant sequence transduction models...",
				Year:             2017,
				Venue:            "NeurIPS",
				URL:              "https://www.semanticscholar.org/paper/abc123",
				CitationCount:    90000,
				PublicationTypes: []string{"Conference"},
				Authors:          []semanticAuthor{{Name: "Ashish Vaswani"}},
				ExternalIDs:      semanticExternalIDs{ArXiv: "1706.03762"},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	})

	cit, err := client.SearchPaper(context.Background(), "attention mechanisms")
	require.NoError(t, err)
	require.NotNil(t, cit)

	assert.Equal(t, "Attention Is All You Need", cit.Title)
	assert.Equal(t, types.SourceConference, cit.SourceType)
	assert.Equal(t, "1706.03762", cit.SecondaryID)
	assert.Equal(t, "NeurIPS", cit.Venue)
	assert.Equal(t, 2017, cit.Year)
	assert.Empty(t, cit.DOI)
}

func TestSemanticScholarDOIFromURL(t *testing.T) {
	client := newSemanticTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := semanticResponse{Data: []semanticPaper{{
			Title:   "Paper Without External IDs",
			Year:    2020,
			URL:     "https://doi.org/10.5555/fallback",
			Authors: []semanticAuthor{{Name: "Jane Smith"}},
		}}}
		json.NewEncoder(w).Encode(resp)
	})

	cit, err := client.SearchPaper(context.Background(), "anything")
	require.NoError(t, err)
	require.NotNil(t, cit)
	assert.Equal(t, "10.5555/fallback", cit.DOI, "DOI recovered from URL")
}

func TestSemanticScholarEmptyResults(t *testing.T) {
	client := newSemanticTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(semanticResponse{Total: 0})
	})

	cit, err := client.SearchPaper(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, cit)
}

func TestSemanticScholarSkipsRecordsWithoutIdentifier(t *testing.T) {
	client := newSemanticTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := semanticResponse{Data: []semanticPaper{{
			Title:   "No Identifier Here",
			Year:    2019,
			Authors: []semanticAuthor{{Name: "Jane Smith"}},
		}}}
		json.NewEncoder(w).Encode(resp)
	})

	cit, err := client.SearchPaper(context.Background(), "anything")
	require.NoError(t, err)
	assert.Nil(t, cit, "record with no DOI and no URL is unusable")
}

func TestSemanticScholarServerErrorAfterRetries(t *testing.T) {
	var calls int
	client := newSemanticTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.SearchPaper(context.Background(), "query")
	require.Error(t, err)
	assert.Equal(t, KindTransient, ErrKind(err))
	assert.Equal(t, 2, calls, "one retry configured")
}
