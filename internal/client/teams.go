// Microsoft Teams incoming webhook 클라이언트
//
// 환경변수:
//   - TEAMS_WEBHOOK_URL: Teams 채널 incoming webhook URL

package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kube-rca/alert-relay/internal/config"
	"github.com/kube-rca/alert-relay/internal/model"
	prommodel "github.com/prometheus/common/model"
)

// MessageCard - Teams connector 카드 형식 (필드 구성 고정)
type MessageCard struct {
	Type       string `json:"@type"`
	Context    string `json:"@context"`
	Summary    string `json:"summary"`
	ThemeColor string `json:"themeColor"`
	Title      string `json:"title"`
	Text       string `json:"text"`
}

// TeamsClient 구조체 정의
type TeamsClient struct {
	webhookURL string
	httpClient *http.Client
}

// TeamsClient 객체 생성
func NewTeamsClient(cfg config.NotifyConfig) *TeamsClient {
	return &TeamsClient{
		webhookURL: cfg.TeamsWebhookURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Notify - MessageCard 로 포맷팅해서 webhook 으로 전송
func (c *TeamsClient) Notify(ctx context.Context, n model.Notification) error {
	card := MessageCard{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		Summary:    n.Title,
		ThemeColor: teamsColorByStatus(n.Status),
		Title:      n.Title,
		Text:       n.Body,
	}
	if _, err := postJSON(ctx, c.httpClient, c.webhookURL, nil, card); err != nil {
		return fmt.Errorf("teams notification: %w", err)
	}
	return nil
}

// Status 에 따른 카드 색상 반환
func teamsColorByStatus(status string) string {
	switch prommodel.AlertStatus(status) {
	case prommodel.AlertResolved:
		return "36A64F" // green
	case prommodel.AlertFiring:
		return "DC3545" // red
	default:
		return "0076D7" // blue
	}
}
