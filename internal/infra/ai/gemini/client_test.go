package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/playground/bountyhub/internal/domain/ai"
	"github.com/playground/bountyhub/internal/domain/bounty"
)

const analysisJSON = `{"completeness_score":70,"clarity_score":80,"scopability_score":65,` +
	`"verdict":"ready","summary":"Invoice OCR bot","strengths":["clear outcome"],` +
	`"missing_info":[],"suggestions":[]}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := newClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL + "/"},
	}, defaultModel)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func candidate(text string) map[string]any {
	return map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": text}},
			},
			"finishReason": "STOP",
		}},
	}
}

func TestAnalyzeBounty_Success(t *testing.T) {
	var got map[string]any
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, candidate(analysisJSON))
	})

	raw, err := c.AnalyzeBounty(context.Background(), bounty.Draft{Title: "Invoice bot"})
	require.NoError(t, err)
	assert.JSONEq(t, analysisJSON, string(raw))

	assert.True(t, strings.HasSuffix(path, "/models/"+defaultModel+":generateContent"), path)
	cfg, ok := got["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig missing")
	assert.Equal(t, "application/json", cfg["responseMimeType"])
	assert.NotNil(t, cfg["responseSchema"])
}

func TestAnalyzeBounty_StatusMapping(t *testing.T) {
	cases := map[string]struct {
		status int
		want   error
	}{
		"rate limited":    {http.StatusTooManyRequests, ai.ErrRateLimited},
		"quota exhausted": {http.StatusPaymentRequired, ai.ErrQuotaExhausted},
		"bad request":     {http.StatusBadRequest, ai.ErrUpstreamFailure},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, map[string]any{
					"error": map[string]any{"code": tc.status, "message": "nope", "status": "FAILED"},
				})
			})
			raw, err := c.AnalyzeBounty(context.Background(), bounty.Draft{})
			require.Error(t, err)
			assert.Nil(t, raw)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAnalyzeBounty_EmptyCandidateIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, candidate("   "))
	})
	_, err := c.AnalyzeBounty(context.Background(), bounty.Draft{})
	assert.ErrorIs(t, err, ai.ErrMalformedResponse)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "", 0)
	assert.Error(t, err)
}
