// Slack incoming webhook 클라이언트 (NOTIFY_KIND=slack)
//
// 환경변수:
//   - SLACK_WEBHOOK_URL: Slack incoming webhook URL (https://hooks.slack.com/services/...)
//
// 분석 결과는 LLM 이 생성한 Markdown 이라서 Slack mrkdwn 으로 변환 후 전송

package client

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/kube-rca/alert-relay/internal/config"
	"github.com/kube-rca/alert-relay/internal/model"
	prommodel "github.com/prometheus/common/model"
)

// SlackClient 구조체 정의
type SlackClient struct {
	webhookURL string
	httpClient *http.Client
}

// SlackMessage(메시지 내용) 구조체 정의
type SlackMessage struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SlackAttachment(메시지 포맷) 구조체 정의
type SlackAttachment struct {
	// - firing: #dc3545 (빨강)
	// - resolved: #36a64f (초록)
	Color    string   `json:"color"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Footer   string   `json:"footer,omitempty"`
	Ts       int64    `json:"ts,omitempty"`
	MrkdwnIn []string `json:"mrkdwn_in,omitempty"`
}

// SlackClient 객체 생성
func NewSlackClient(cfg config.NotifyConfig) *SlackClient {
	return &SlackClient{
		webhookURL: cfg.SlackWebhookURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Notify - attachment 하나짜리 메시지로 전송
func (c *SlackClient) Notify(ctx context.Context, n model.Notification) error {
	msg := SlackMessage{
		Text: fmt.Sprintf("%s %s", slackEmojiByStatus(n.Status), n.Title),
		Attachments: []SlackAttachment{
			{
				Color:    slackColorByStatus(n.Status),
				Title:    n.Title,
				Text:     toSlackMarkdown(n.Body),
				Footer:   "alert-relay",
				Ts:       time.Now().Unix(),
				MrkdwnIn: []string{"text"},
			},
		},
	}
	if _, err := postJSON(ctx, c.httpClient, c.webhookURL, nil, msg); err != nil {
		return fmt.Errorf("slack notification: %w", err)
	}
	return nil
}

// Status 에 따른 적절한 메시지 색상 반환
func slackColorByStatus(status string) string {
	switch prommodel.AlertStatus(status) {
	case prommodel.AlertResolved:
		return "#36a64f" // green
	case prommodel.AlertFiring:
		return "#dc3545" // red
	default:
		return "#6f42c1" // purple
	}
}

// Status 에 따른 적절한 메시지 이모지 반환
func slackEmojiByStatus(status string) string {
	if prommodel.AlertStatus(status) == prommodel.AlertResolved {
		return "✅"
	}
	return "🔥"
}

var (
	markdownBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	markdownHeading = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.*?)\s*#*\s*$`)
)

// toSlackMarkdown - Markdown 을 Slack mrkdwn 으로 변환
//   - **bold** -> *bold*
//   - ### heading -> *heading*
//   - 코드 블록(```)과 인라인 코드(`)는 변환하지 않음
func toSlackMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	inCodeBlock := false

	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCodeBlock = !inCodeBlock
			continue
		}
		if inCodeBlock {
			continue
		}
		if m := markdownHeading.FindStringSubmatch(line); m != nil {
			lines[i] = "*" + strings.ReplaceAll(m[1], "**", "") + "*"
			continue
		}
		lines[i] = convertInlineBold(line)
	}
	return strings.Join(lines, "\n")
}

// 백틱 바깥 구간만 bold 변환
func convertInlineBold(line string) string {
	segments := strings.Split(line, "`")
	for i := 0; i < len(segments); i += 2 {
		segments[i] = markdownBold.ReplaceAllString(segments[i], "*$1*")
	}
	return strings.Join(segments, "`")
}
