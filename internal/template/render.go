// Package template renders the analysis prompt and the sink message bodies.
//
// 지원하는 변수 형식:
//
//	{{alert.summary}}, {{alert.status}}, {{alert.alertname}}, {{alert.severity}},
//	{{alert.labels}}, {{alert.annotations}}, {{alert.message}},
//	{{alert.started_at}}, {{alert.ended_at}}
//
//	{{payload}}, {{analysis}}
package template

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/kube-rca/alert-relay/internal/model"
)

const (
	DefaultPrompt = "Status: {{alert.status}}\n" +
		"Labels: {{alert.labels}}\n" +
		"Annotations: {{alert.annotations}}\n" +
		"Full payload:\n{{payload}}"

	DefaultAnnotation = "Alert: {{alert.summary}}\n\nAnalysis:\n{{analysis}}"

	DefaultNotification = "Status: {{alert.status}}\n\nAnalysis:\n{{analysis}}"
)

// AlertData - 템플릿 렌더링에 사용할 Alert 데이터
type AlertData struct {
	Summary     string
	Status      string
	AlertName   string
	Severity    string
	Labels      string
	Annotations string
	Message     string
	StartedAt   string
	EndedAt     string
	Payload     string
}

// AlertDataFromModel - model.Alert 에서 AlertData 생성
func AlertDataFromModel(alert model.Alert) AlertData {
	return AlertData{
		Summary:     alert.Summary,
		Status:      alert.Status,
		AlertName:   alert.AlertName(),
		Severity:    alert.Labels["severity"],
		Labels:      compactJSON(alert.Labels),
		Annotations: compactJSON(alert.Annotations),
		Message:     alert.Message,
		StartedAt:   formatMs(alert.StartsAtMs),
		EndedAt:     formatMs(alert.EndsAtMs),
		Payload:     indentJSON(alert.RawPayload),
	}
}

// Renderer - 설정된 템플릿 3종을 보관 (빈 값이면 기본 템플릿)
type Renderer struct {
	prompt       string
	annotation   string
	notification string
}

func NewRenderer(prompt, annotation, notification string) *Renderer {
	return &Renderer{
		prompt:       orDefault(prompt, DefaultPrompt),
		annotation:   orDefault(annotation, DefaultAnnotation),
		notification: orDefault(notification, DefaultNotification),
	}
}

// Prompt - 분석 백엔드로 보낼 프롬프트
// legacy message 필드가 있으면 프롬프트 앞에 붙임
func (r *Renderer) Prompt(alert model.Alert) string {
	data := AlertDataFromModel(alert)
	prompt := RenderBody(r.prompt, data, "")
	if alert.Message != "" && !strings.Contains(r.prompt, "{{alert.message}}") {
		prompt = "Message: " + alert.Message + "\n" + prompt
	}
	return prompt
}

func (r *Renderer) Annotation(alert model.Alert, analysis string) string {
	data := AlertDataFromModel(alert)
	return RenderBody(r.annotation, data, analysis)
}

func (r *Renderer) Notification(alert model.Alert, analysis string) string {
	data := AlertDataFromModel(alert)
	return RenderBody(r.notification, data, analysis)
}

// RenderBody - 템플릿의 변수를 실제 값으로 치환
// 알 수 없는 변수는 그대로 남김
func RenderBody(body string, alert AlertData, analysis string) string {
	return strings.NewReplacer(
		"{{alert.summary}}", alert.Summary,
		"{{alert.status}}", alert.Status,
		"{{alert.alertname}}", alert.AlertName,
		"{{alert.severity}}", alert.Severity,
		"{{alert.labels}}", alert.Labels,
		"{{alert.annotations}}", alert.Annotations,
		"{{alert.message}}", alert.Message,
		"{{alert.started_at}}", alert.StartedAt,
		"{{alert.ended_at}}", alert.EndedAt,
		"{{payload}}", alert.Payload,
		"{{analysis}}", analysis,
	).Replace(body)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func compactJSON(m map[string]string) string {
	if m == nil {
		m = map[string]string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func indentJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func formatMs(ms *int64) string {
	if ms == nil {
		return ""
	}
	return time.UnixMilli(*ms).UTC().Format(time.RFC3339)
}
