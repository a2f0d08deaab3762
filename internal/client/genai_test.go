package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kube-rca/alert-relay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), config.AnalysisConfig{GeminiModel: "gemini-2.0-flash"})
	require.Error(t, err)
}

func TestGeminiAnalyze(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"  etcd leader election storm  "}]}}]}`))
	}))
	defer srv.Close()

	cfg := config.AnalysisConfig{GeminiAPIKey: "test-key", GeminiModel: "gemini-2.0-flash", Timeout: time.Second}
	c, err := newGeminiClient(context.Background(), cfg, genai.HTTPOptions{BaseURL: srv.URL})
	require.NoError(t, err)

	text, err := c.Analyze(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "etcd leader election storm", text)
	assert.True(t, strings.HasSuffix(path, "gemini-2.0-flash:generateContent"), path)
}

func TestGeminiAnalyzeEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	cfg := config.AnalysisConfig{GeminiAPIKey: "test-key", GeminiModel: "gemini-2.0-flash", Timeout: time.Second}
	c, err := newGeminiClient(context.Background(), cfg, genai.HTTPOptions{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), "prompt")
	require.Error(t, err)
}
