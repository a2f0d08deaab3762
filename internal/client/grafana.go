// Grafana annotation API 클라이언트
//
// 환경변수:
//   - GRAFANA_URL: Grafana 베이스 URL (예: http://grafana:3000)
//   - GRAFANA_API_KEY: service account token. "Bearer "/"Basic " 접두어가 없으면 Bearer 로 전송

package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kube-rca/alert-relay/internal/config"
	"github.com/kube-rca/alert-relay/internal/model"
)

// GrafanaClient 구조체 정의
type GrafanaClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// GrafanaClient 객체 생성
func NewGrafanaClient(cfg config.GrafanaConfig) *GrafanaClient {
	return &GrafanaClient{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// PostAnnotation - POST /api/annotations
func (c *GrafanaClient) PostAnnotation(ctx context.Context, ann model.Annotation) error {
	headers := map[string]string{"Authorization": authorizationHeader(c.apiKey)}
	if _, err := postJSON(ctx, c.httpClient, c.baseURL+"/api/annotations", headers, ann); err != nil {
		return fmt.Errorf("grafana annotation: %w", err)
	}
	return nil
}

func authorizationHeader(key string) string {
	key = strings.TrimSpace(key)
	lower := strings.ToLower(key)
	if strings.HasPrefix(lower, "bearer ") || strings.HasPrefix(lower, "basic ") {
		return key
	}
	return "Bearer " + key
}
