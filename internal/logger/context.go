package logger

import (
	"context"

	"github.com/sirupsen/logrus"
)

type requestIDKey struct{}

// WithRequestID - 요청 id 를 context 에 저장
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID - context 에 저장된 요청 id, 없으면 빈 문자열
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext - 요청 id 필드가 붙은 로거
func FromContext(ctx context.Context, log logrus.FieldLogger) logrus.FieldLogger {
	if id := RequestID(ctx); id != "" {
		return log.WithField("request_id", id)
	}
	return log
}
