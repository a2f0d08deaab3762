// Alert 처리 비즈니스 로직 정의
// handler 에서 정규화한 알림을 분석하고 Grafana annotation / 채팅 알림으로 전달
//
// 처리 흐름:
//  1. 템플릿으로 프롬프트 생성 후 분석 백엔드 호출
//     - 실패하면 에러 문자열을 분석 결과로 사용
//  2. annotation, notification 을 동시에 전송 (각각 독립된 panic 경계)
//     - startsAt 이 없으면 annotation 은 건너뜀
//  3. sink 결과와 관계없이 {status: processed, analysis} 반환

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kube-rca/alert-relay/internal/logger"
	"github.com/kube-rca/alert-relay/internal/model"
	"github.com/kube-rca/alert-relay/internal/template"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// AnnotationTag - 모든 annotation 에 붙는 고정 태그
const AnnotationTag = "alert-analysis"

const statusProcessed = "processed"

var errEmptyAnalysis = errors.New("empty analysis")

// Analyzer - 프롬프트를 분석 텍스트로 변환 (Ollama, Gemini)
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// AnnotationSink - Grafana annotation 전송
type AnnotationSink interface {
	PostAnnotation(ctx context.Context, ann model.Annotation) error
}

// Notifier - 채팅 채널 알림 전송 (Teams, Slack)
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// SinkOutcome - sink 별 전송 결과
type SinkOutcome string

const (
	OutcomeOK      SinkOutcome = "ok"
	OutcomeSkipped SinkOutcome = "skipped"
	OutcomeFailed  SinkOutcome = "failed"
)

// ProcessReport - Process 결과. Response 만 호출자에게 반환되고 나머지는 로그용
type ProcessReport struct {
	Response       model.WebhookResponse
	AnalysisFailed bool
	Annotation     SinkOutcome
	Notification   SinkOutcome
}

// AlertService 구조체 정의
type AlertService struct {
	analyzer    Analyzer
	annotations AnnotationSink
	notifier    Notifier
	renderer    *template.Renderer
	log         logrus.FieldLogger
}

// AlertService 객체 생성
func NewAlertService(analyzer Analyzer, annotations AnnotationSink, notifier Notifier, renderer *template.Renderer, log logrus.FieldLogger) *AlertService {
	if renderer == nil {
		renderer = template.NewRenderer("", "", "")
	}
	return &AlertService{
		analyzer:    analyzer,
		annotations: annotations,
		notifier:    notifier,
		renderer:    renderer,
		log:         log,
	}
}

// Process - 알림 하나를 끝까지 처리. 실패하지 않음
func (s *AlertService) Process(ctx context.Context, alert model.Alert) ProcessReport {
	log := logger.FromContext(ctx, s.log).WithFields(logrus.Fields{
		"alertname":   alert.AlertName(),
		"fingerprint": alert.Fingerprint(),
		"status":      alert.Status,
		"shape":       alert.Shape,
	})

	analysis, err := s.analyze(ctx, alert)
	report := ProcessReport{
		Response:       model.WebhookResponse{Status: statusProcessed, Analysis: analysis},
		AnalysisFailed: err != nil,
	}
	if err != nil {
		log.WithError(err).Warn("Analysis failed, forwarding error text")
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		report.Annotation = s.runSink(log.WithField("sink", "annotation"), func() (SinkOutcome, error) {
			return s.postAnnotation(ctx, log, alert, analysis)
		})
	})
	wg.Go(func() {
		report.Notification = s.runSink(log.WithField("sink", "notification"), func() (SinkOutcome, error) {
			return OutcomeOK, s.notifier.Notify(ctx, model.Notification{
				Title:  alert.Summary,
				Body:   s.renderer.Notification(alert, analysis),
				Status: alert.Status,
			})
		})
	})
	wg.Wait()

	log.WithFields(logrus.Fields{
		"analysis_failed": report.AnalysisFailed,
		"annotation":      report.Annotation,
		"notification":    report.Notification,
	}).Info("Processed alert")
	return report
}

// analyze - 실패(패닉 포함)하면 "Error analyzing alert: ..." 문자열과 에러 반환
func (s *AlertService) analyze(ctx context.Context, alert model.Alert) (string, error) {
	prompt := s.renderer.Prompt(alert)

	var (
		text string
		err  error
		pc   panics.Catcher
	)
	pc.Try(func() {
		text, err = s.analyzer.Analyze(ctx, prompt)
	})
	if r := pc.Recovered(); r != nil {
		err = fmt.Errorf("panic: %v", r.Value)
	}
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyAnalysis
	}
	if err != nil {
		return fmt.Sprintf("Error analyzing alert: %v", err), err
	}
	return text, nil
}

func (s *AlertService) postAnnotation(ctx context.Context, log logrus.FieldLogger, alert model.Alert, analysis string) (SinkOutcome, error) {
	if alert.StartsAtMs == nil {
		return OutcomeSkipped, nil
	}

	ann := model.Annotation{
		Text:        s.renderer.Annotation(alert, analysis),
		Time:        *alert.StartsAtMs,
		Tags:        []string{AnnotationTag, alert.Status},
		DashboardID: alert.DashboardID,
		PanelID:     alert.PanelID,
	}
	if end := alert.EndsAtMs; end != nil {
		if *end >= *alert.StartsAtMs {
			ann.TimeEnd = end
		} else {
			log.WithFields(logrus.Fields{
				"starts_at_ms": *alert.StartsAtMs,
				"ends_at_ms":   *end,
			}).Warn("endsAt is before startsAt, posting point annotation")
		}
	}
	return OutcomeOK, s.annotations.PostAnnotation(ctx, ann)
}

// runSink - sink 하나의 실패/패닉을 로그로만 남김
func (s *AlertService) runSink(log logrus.FieldLogger, send func() (SinkOutcome, error)) SinkOutcome {
	var (
		outcome SinkOutcome
		err     error
		pc      panics.Catcher
	)
	pc.Try(func() {
		outcome, err = send()
	})
	if r := pc.Recovered(); r != nil {
		log.WithField("panic", r.Value).Error("Sink panicked")
		return OutcomeFailed
	}
	if err != nil {
		log.WithError(err).Error("Sink delivery failed")
		return OutcomeFailed
	}
	if outcome == OutcomeSkipped {
		log.Info("Sink skipped")
	}
	return outcome
}
