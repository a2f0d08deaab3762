// 알림 웹훅 요청을 처리하는 핸들러
//
// 요청 흐름:
//  1. 모니터링 시스템이 POST /webhook 으로 알림 전송
//  2. 원본 바디를 service.NormalizeAlert 로 정규화 (크기 초과 / 실패하면 400)
//  3. 분석 / annotation / 알림 처리는 service 레이어에 위임

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/alert-relay/internal/logger"
	"github.com/kube-rca/alert-relay/internal/model"
	"github.com/kube-rca/alert-relay/internal/service"
	"github.com/sirupsen/logrus"
)

type alertProcessor interface {
	Process(ctx context.Context, alert model.Alert) service.ProcessReport
}

// Alert 핸들러 구조체 정의
type AlertHandler struct {
	alertService alertProcessor
	maxBodyBytes int64
	log          logrus.FieldLogger
}

// Alert 핸들러 객체 생성
func NewAlertHandler(alertService alertProcessor, maxBodyBytes int64, log logrus.FieldLogger) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
		maxBodyBytes: maxBodyBytes,
		log:          log,
	}
}

// Webhook godoc
// @Summary Receive an alert webhook
// @Description Normalizes a batched or flattened alert payload, analyzes it and forwards the result to Grafana and the chat channel.
// @Tags alerts
// @Accept json
// @Produce json
// @Param payload body object true "Alert payload"
// @Success 200 {object} model.WebhookResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /webhook [post]
func (h *AlertHandler) Webhook(c *gin.Context) {
	log := logger.FromContext(c.Request.Context(), h.log)

	// 본문 전체가 프롬프트에 들어가므로 크기 제한
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.WithField("limit_bytes", tooLarge.Limit).Warn("Rejected oversized webhook body")
		} else {
			log.WithError(err).Warn("Failed to read webhook body")
		}
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid payload"})
		return
	}

	alert, err := service.NormalizeAlert(body)
	if err != nil {
		log.WithError(err).WithField("body_bytes", len(body)).Warn("Rejected webhook payload")
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid payload"})
		return
	}

	log.WithFields(logrus.Fields{
		"alertname": alert.AlertName(),
		"status":    alert.Status,
		"shape":     alert.Shape,
		"summary":   alert.Summary,
	}).Info("Received alert webhook")

	// 클라이언트가 연결을 끊어도 수락한 요청은 끝까지 처리
	report := h.alertService.Process(context.WithoutCancel(c.Request.Context()), alert)
	c.JSON(http.StatusOK, report.Response)
}
