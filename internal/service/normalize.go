// 인바운드 웹훅 페이로드를 model.Alert 로 정규화
//
// 모니터링 시스템은 두 가지 형태로 알림을 보냄:
//   - batched: {"alerts": [{labels, annotations, status, startsAt, endsAt}, ...], "status": ..., ...}
//   - flattened: 단일 알림 필드가 최상위에 있는 객체
//
// 형태는 resolveShape 에서 한 번만 결정하고, 이후 필드 조회는
// source(개별 알림) -> envelope(전체 페이로드) 순서로만 fallback 함

package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/kube-rca/alert-relay/internal/model"
	prommodel "github.com/prometheus/common/model"
	"github.com/tidwall/gjson"
)

// ErrInvalidPayload - 본문이 없거나 JSON 객체로 파싱할 수 없음
var ErrInvalidPayload = errors.New("invalid payload")

// payloadShape - batchedAlert | flattenedAlert
type payloadShape interface {
	kind() model.PayloadShape
	// 개별 알림 필드를 읽는 대상
	source() gjson.Result
	// source 에 없을 때 fallback 하는 대상
	envelope() gjson.Result
}

type batchedAlert struct {
	alert   gjson.Result
	payload gjson.Result
}

func (b batchedAlert) kind() model.PayloadShape { return model.ShapeBatched }
func (b batchedAlert) source() gjson.Result     { return b.alert }
func (b batchedAlert) envelope() gjson.Result   { return b.payload }

type flattenedAlert struct {
	payload gjson.Result
}

func (f flattenedAlert) kind() model.PayloadShape { return model.ShapeFlattened }
func (f flattenedAlert) source() gjson.Result     { return f.payload }
func (f flattenedAlert) envelope() gjson.Result   { return f.payload }

// resolveShape - alerts 가 비어있지 않은 배열이고 첫 원소가 비어있지 않은 객체일 때만 batched
// 나머지 원소는 무시
func resolveShape(root gjson.Result) payloadShape {
	if alerts := root.Get("alerts"); alerts.IsArray() {
		if items := alerts.Array(); len(items) > 0 && isNonEmptyObject(items[0]) {
			return batchedAlert{alert: items[0], payload: root}
		}
	}
	return flattenedAlert{payload: root}
}

// NormalizeAlert - 어떤 형태의 JSON 객체든 Alert 로 변환
// 에러는 ErrInvalidPayload 뿐이며, 나머지 누락 필드는 기본값으로 채움
func NormalizeAlert(body []byte) (model.Alert, error) {
	if len(bytes.TrimSpace(body)) == 0 || !gjson.ValidBytes(body) {
		return model.Alert{}, ErrInvalidPayload
	}
	root := gjson.ParseBytes(body)
	if !isNonEmptyObject(root) {
		return model.Alert{}, ErrInvalidPayload
	}

	shape := resolveShape(root)
	src, env := shape.source(), shape.envelope()

	labels := stringMap(src.Get("labels"))
	annotations := stringMap(src.Get("annotations"))

	alert := model.Alert{
		Status:      firstString(string(prommodel.AlertFiring), src.Get("status"), env.Get("status")),
		Labels:      labels,
		Annotations: annotations,
		Summary:     deriveSummary(labels, annotations),
		Message:     firstString("", src.Get("message"), env.Get("message")),
		DashboardID: firstInt(src.Get("dashboardId"), env.Get("dashboardId")),
		PanelID:     firstInt(src.Get("panelId"), env.Get("panelId")),
		Shape:       shape.kind(),
		RawPayload:  json.RawMessage(bytes.Clone(body)),
	}

	// startsAt 은 source 에 키가 없을 때만 envelope 로 fallback, endsAt 은 source 에서만 읽음
	if ms, ok := ParseTimestamp(firstString("", presentOr(src, env, "startsAt"))); ok {
		alert.StartsAtMs = &ms
	}
	if ms, ok := ParseTimestamp(firstString("", src.Get("endsAt"))); ok {
		alert.EndsAtMs = &ms
	}

	return alert, nil
}

// deriveSummary - annotations.summary -> labels.alertname -> DefaultSummary
func deriveSummary(labels, annotations map[string]string) string {
	for _, candidate := range []string{annotations["summary"], labels[string(prommodel.AlertNameLabel)]} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return model.DefaultSummary
}

func isNonEmptyObject(r gjson.Result) bool {
	return r.IsObject() && len(r.Map()) > 0
}

// stringMap - JSON 객체를 map[string]string 으로 변환
// 문자열이 아닌 값은 JSON 원문 그대로, null 은 제외. 객체가 아니면 빈 map
func stringMap(r gjson.Result) map[string]string {
	out := map[string]string{}
	if !r.IsObject() {
		return out
	}
	r.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Null:
		case gjson.String:
			out[key.String()] = value.Str
		default:
			out[key.String()] = value.Raw
		}
		return true
	})
	return out
}

// firstString - 공백이 아닌 첫 문자열 값, 없으면 fallback
func firstString(fallback string, values ...gjson.Result) string {
	for _, v := range values {
		if v.Type != gjson.String {
			continue
		}
		if trimmed := strings.TrimSpace(v.Str); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

// presentOr - source 에 키가 있으면 값이 비어있거나 null 이어도 그대로 사용
func presentOr(src, env gjson.Result, key string) gjson.Result {
	if v := src.Get(key); v.Exists() {
		return v
	}
	return env.Get(key)
}

func firstInt(values ...gjson.Result) *int64 {
	for _, v := range values {
		if v.Type == gjson.Number {
			n := v.Int()
			return &n
		}
	}
	return nil
}
