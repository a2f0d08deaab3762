// Ollama generate API 와 HTTP 통신하는 분석 클라이언트
//
// 환경변수:
//   - OLLAMA_URL: Ollama 베이스 URL (예: http://ollama:11434)
//   - OLLAMA_MODEL: 사용할 모델 이름 (예: gemma2)
//   - ANALYSIS_TIMEOUT: 분석 요청 타임아웃 (기본 30s)
//
// 응답 형태가 모델/버전마다 달라서 후보 필드를 정해진 순서로 확인하고,
// 맞는 필드가 없으면 응답 JSON 전체를 분석 결과로 사용

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kube-rca/alert-relay/internal/config"
	"github.com/tidwall/gjson"
)

const generatePath = "/api/generate"

// 분석 텍스트 후보 필드 (우선순위 순)
var analysisTextFields = []string{"response", "text", "output_text", "message.content"}

// OllamaClient 구조체 정의
type OllamaClient struct {
	generateURL string
	model       string
	httpClient  *http.Client
}

// GenerateRequest - POST /api/generate 요청 본문
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// OllamaClient 객체 생성
func NewOllamaClient(cfg config.AnalysisConfig) *OllamaClient {
	return &OllamaClient{
		generateURL: generateURL(cfg.OllamaURL),
		model:       cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// 베이스 URL 과 전체 generate URL 둘 다 허용
func generateURL(base string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, generatePath) {
		return base
	}
	return base + generatePath
}

// Analyze - 프롬프트를 단일 non-streaming 요청으로 보내고 분석 텍스트 반환
func (c *OllamaClient) Analyze(ctx context.Context, prompt string) (string, error) {
	req := GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}

	body, err := postJSON(ctx, c.httpClient, c.generateURL, nil, req)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	text, err := extractAnalysisText(body)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return text, nil
}

// extractAnalysisText - 후보 필드 중 공백이 아닌 첫 문자열, 없으면 응답 JSON 전체
func extractAnalysisText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("failed to parse response: invalid JSON")
	}

	parsed := gjson.ParseBytes(body)
	for _, field := range analysisTextFields {
		v := parsed.Get(field)
		if v.Type != gjson.String {
			continue
		}
		if text := strings.TrimSpace(v.Str); text != "" {
			return text, nil
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return buf.String(), nil
}
