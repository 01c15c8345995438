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

func newRecallTestClient(t *testing.T, handler http.HandlerFunc) *RecallClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := types.RecallConfig{
		ProviderConfig: types.ProviderConfig{Enabled: true, APIKey: "rc_test", RequestsPerSecond: 1000, MaxRetries: 1},
		Endpoint:       server.URL,
		Model:          "test-model",
	}
	return NewRecallClient(cfg, types.HTTPConfig{UserAgent: "citation-engine-test"}, server.Client())
}

func TestRecallSearchPaper(t *testing.T) {
	client := newRecallTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var cr chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cr))
		assert.Equal(t, "test-model", cr.Model)

		chatReply(t, w, `{"title": "Thinking, Fast and Slow", "authors": ["Daniel Kahneman"],
 "year": 2011, "publisher": "Farrar, Straus and Giroux", "source_type": "book",
 "url": "https://en.wikipedia.org/wiki/Thinking,_Fast_and_Slow"}`)
	})

	cit, err := client.SearchPaper(context.Background(), "dual process theory")
	require.NoError(t, err)
	require.NotNil(t, cit)

	assert.Equal(t, "Thinking, Fast and Slow", cit.Title)
	assert.Equal(t, types.SourceBook, cit.SourceType)
	assert.False(t, cit.Provenance.Recalled, "tagging is the orchestrator's job")
}

func TestRecallUncertainAnswerIsNotFound(t *testing.T) {
	client := newRecallTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "NONE")
	})

	cit, err := client.SearchPaper(context.Background(), "made-up topic")
	require.NoError(t, err)
	assert.Nil(t, cit)
}

func TestRecallNoIdentifierIsNotFound(t *testing.T) {
	client := newRecallTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{"title": "Half Remembered Paper", "authors": ["Someone"], "year": 1998}`)
	})

	cit, err := client.SearchPaper(context.Background(), "vague memory")
	require.NoError(t, err)
	assert.Nil(t, cit, "recalled record without DOI or URL is unusable")
}
