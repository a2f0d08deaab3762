package service

import (
	"strings"
	"time"
)

// 허용하는 ISO-8601 형식. offset 이 없는 값은 UTC 로 해석
// 소수점 이하 초는 Go 파서가 레이아웃에 없어도 허용함
var timestampLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp - ISO-8601 문자열을 epoch milliseconds 로 변환
//
// 파싱할 수 없거나(월 13 등 범위 초과 포함) epoch 이전 시각이면 ok=false.
// Alertmanager 는 종료되지 않은 알림의 endsAt 을 "0001-01-01T00:00:00Z" 로 보내므로
// 이 값도 "시각 없음" 으로 취급됨
func ParseTimestamp(text string) (ms int64, ok bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "+00:00"
	}

	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Before(time.Unix(0, 0)) {
			return 0, false
		}
		return t.UnixMilli(), true
	}
	return 0, false
}
