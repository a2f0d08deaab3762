package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kube-rca/alert-relay/internal/config"
	"google.golang.org/genai"
)

// GeminiClient - ANALYSIS_PROVIDER=gemini 일 때 사용하는 분석 클라이언트
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiClient(ctx context.Context, cfg config.AnalysisConfig) (*GeminiClient, error) {
	return newGeminiClient(ctx, cfg, genai.HTTPOptions{})
}

func newGeminiClient(ctx context.Context, cfg config.AnalysisConfig, httpOptions genai.HTTPOptions) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.GeminiAPIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.GeminiModel, timeout: cfg.Timeout}, nil
}

func (c *GeminiClient) Analyze(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", fmt.Errorf("gemini generate content: empty response")
	}
	return text, nil
}
