// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-engine/pkg/types"
)

func newWebSearchTestClient(t *testing.T, handler http.HandlerFunc) *WebSearchClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := types.WebSearchConfig{
		ProviderConfig: types.ProviderConfig{Enabled: true, APIKey: "ws_test", RequestsPerSecond: 1000, MaxRetries: 1},
		Endpoint:       server.URL,
	}
	filter := NewDomainFilter(types.DomainConfig{}, server.Client())
	return NewWebSearchClient(cfg, types.HTTPConfig{UserAgent: "citation-engine-test"}, server.Client(), filter)
}

func TestWebSearchFirstAdmissibleResult(t *testing.T) {
	client := newWebSearchTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "ws_test", r.Header.Get("X-API-KEY"))

		var wsr webSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&wsr))
		assert.Equal(t, "global chip shortage analysis", wsr.Query)

		resp := webSearchResponse{Organic: []webSearchOrganic{
			{Title: "My Chip Shortage Rant", Link: "https://medium.com/@x/rant", Snippet: "hot take"},
			{Title: "Semiconductor Supply Chains", Link: "https://www.mckinsey.com/semis",
				Snippet: "An analysis of global chip supply.", Date: "Jun 2, 2023"},
		}}
		json.NewEncoder(w).Encode(resp)
	})

	cit, err := client.SearchPaper(context.Background(), "global chip shortage analysis")
	require.NoError(t, err)
	require.NotNil(t, cit)

	assert.Equal(t, "Semiconductor Supply Chains", cit.Title, "deny-listed result skipped")
	assert.Equal(t, types.SourceWebsite, cit.SourceType)
	assert.Equal(t, []string{"mckinsey.com"}, cit.Authors)
	assert.Equal(t, "mckinsey.com", cit.Venue)
	assert.Equal(t, 2023, cit.Year, "year extracted from result date")
	assert.Equal(t, "An analysis of global chip supply.", cit.Abstract)
}

func TestWebSearchDOIRescuesUnknownDomain(t *testing.T) {
	client := newWebSearchTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := webSearchResponse{Organic: []webSearchOrganic{
			{Title: "Obscure Journal Paper", Link: "https://journal.example/paper",
				Snippet: "Full text at doi 10.9999/obscure.2021 (2021)."},
		}}
		json.NewEncoder(w).Encode(resp)
	})

	cit, err := client.SearchPaper(context.Background(), "obscure paper")
	require.NoError(t, err)
	require.NotNil(t, cit)
	assert.Equal(t, "10.9999/obscure.2021", cit.DOI)
	assert.Equal(t, 2021, cit.Year, "year extracted from snippet")
}

func TestWebSearchNoAdmissibleResults(t *testing.T) {
	client := newWebSearchTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := webSearchResponse{Organic: []webSearchOrganic{
			{Title: "Thread", Link: "https://reddit.com/r/topic/thread"},
			{Title: "Video", Link: "https://youtube.com/watch?v=abc"},
		}}
		json.NewEncoder(w).Encode(resp)
	})

	cit, err := client.SearchPaper(context.Background(), "anything")
	require.NoError(t, err, "exhausting the result list is a not-found outcome")
	assert.Nil(t, cit)
}

func TestWebSearchEmptyResponse(t *testing.T) {
	client := newWebSearchTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(webSearchResponse{})
	})

	cit, err := client.SearchPaper(context.Background(), "anything")
	require.NoError(t, err)
	assert.Nil(t, cit)
}
