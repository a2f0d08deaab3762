// 웹훅으로 들어온 알림을 정규화한 Alert 구조체와 sink 전송용 구조체를 정의
// handler, service, client 레이어에서 공통으로 사용하기 때문에 model 레이어에 별도로 정의

package model

import (
	"encoding/json"

	prommodel "github.com/prometheus/common/model"
)

// PayloadShape - 인바운드 페이로드 형태
// 모니터링 시스템은 여러 알림을 묶어서 보내거나(batched) 단일 알림을 평탄화해서(flattened) 보냄
type PayloadShape string

const (
	ShapeBatched   PayloadShape = "batched"
	ShapeFlattened PayloadShape = "flattened"
)

// DefaultSummary - annotations.summary, labels.alertname 모두 없을 때 사용하는 요약
const DefaultSummary = "Grafana Alert"

// Alert - 요청마다 새로 만들어지는 정규화된 알림
type Alert struct {
	// firing, resolved 등. 입력 어디에도 없으면 "firing"
	Status string `json:"status"`

	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`

	// annotations.summary -> labels.alertname -> DefaultSummary 순서로 결정 (빈 값 불가)
	Summary string `json:"summary"`

	// epoch milliseconds. 값이 없거나 파싱 불가하면 nil
	StartsAtMs *int64 `json:"startsAtMs,omitempty"`
	EndsAtMs   *int64 `json:"endsAtMs,omitempty"`

	// Grafana legacy 알림의 message 필드 (프롬프트에 포함)
	Message string `json:"message,omitempty"`

	// Grafana legacy 알림의 대시보드/패널 ID (annotation 범위 지정용)
	DashboardID *int64 `json:"dashboardId,omitempty"`
	PanelID     *int64 `json:"panelId,omitempty"`

	Shape PayloadShape `json:"shape"`

	// 원본 페이로드 (분석 프롬프트에 그대로 포함)
	RawPayload json.RawMessage `json:"-"`
}

// AlertName - labels.alertname
func (a Alert) AlertName() string {
	return a.Labels[string(prommodel.AlertNameLabel)]
}

// Fingerprint - 라벨 집합의 Alertmanager 방식 해시 (로그 상관관계용)
func (a Alert) Fingerprint() string {
	set := make(prommodel.LabelSet, len(a.Labels))
	for k, v := range a.Labels {
		set[prommodel.LabelName(k)] = prommodel.LabelValue(v)
	}
	return set.Fingerprint().String()
}

// Annotation - Grafana annotation API 요청 본문
type Annotation struct {
	Text        string   `json:"text"`
	Time        int64    `json:"time"`
	TimeEnd     *int64   `json:"timeEnd,omitempty"`
	Tags        []string `json:"tags"`
	DashboardID *int64   `json:"dashboardId,omitempty"`
	PanelID     *int64   `json:"panelId,omitempty"`
}

// Notification - 채팅 채널로 보낼 알림 카드 내용
type Notification struct {
	Title  string
	Body   string
	Status string
}
