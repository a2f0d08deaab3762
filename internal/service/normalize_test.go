package service

import (
	"testing"

	"github.com/kube-rca/alert-relay/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batchedPayload = `{
  "receiver": "ai-relay",
  "status": "firing",
  "alerts": [
    {
      "status": "firing",
      "labels": {"alertname": "HighCPU", "severity": "critical", "namespace": "prod"},
      "annotations": {"summary": "CPU above 90%", "description": "node-1 saturated"},
      "startsAt": "2025-08-09T07:00:00Z",
      "endsAt": "0001-01-01T00:00:00Z"
    },
    {
      "status": "resolved",
      "labels": {"alertname": "DiskFull"},
      "annotations": {"summary": "disk full"},
      "startsAt": "2025-08-09T08:00:00Z"
    }
  ]
}`

func TestNormalizeBatchedUsesFirstAlertOnly(t *testing.T) {
	alert, err := NormalizeAlert([]byte(batchedPayload))
	require.NoError(t, err)

	assert.Equal(t, model.ShapeBatched, alert.Shape)
	assert.Equal(t, "firing", alert.Status)
	assert.Equal(t, "HighCPU", alert.AlertName())
	assert.Equal(t, "CPU above 90%", alert.Summary)
	assert.Equal(t, "node-1 saturated", alert.Annotations["description"])
	require.NotNil(t, alert.StartsAtMs)
	assert.Equal(t, int64(1754722800000), *alert.StartsAtMs)
	assert.Nil(t, alert.EndsAtMs, "zero-time endsAt must degrade to absent")
	assert.JSONEq(t, batchedPayload, string(alert.RawPayload))
}

func TestNormalizeFlattened(t *testing.T) {
	body := `{"status": "resolved", "labels": {"alertname": "Latency"}, "startsAt": "2025-08-09T07:00:00+00:00", "endsAt": "2025-08-09T07:30:00Z"}`

	alert, err := NormalizeAlert([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, model.ShapeFlattened, alert.Shape)
	assert.Equal(t, "resolved", alert.Status)
	assert.Equal(t, "Latency", alert.Summary)
	require.NotNil(t, alert.StartsAtMs)
	require.NotNil(t, alert.EndsAtMs)
	assert.Equal(t, int64(1754722800000), *alert.StartsAtMs)
	assert.Equal(t, int64(1754724600000), *alert.EndsAtMs)
}

func TestNormalizeStatusDefaultsToFiring(t *testing.T) {
	bodies := []string{
		`{"labels": {"alertname": "cpu"}}`,
		`{"alerts": [{"labels": {"alertname": "cpu"}}]}`,
		`{"status": "", "alerts": [{"status": 3}]}`,
	}
	for _, body := range bodies {
		alert, err := NormalizeAlert([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, "firing", alert.Status, body)
	}
}

func TestNormalizeEnvelopeFallbacks(t *testing.T) {
	body := `{
	  "status": "resolved",
	  "startsAt": "2025-08-09T07:00:00Z",
	  "endsAt": "2025-08-09T09:00:00Z",
	  "message": "legacy grafana message",
	  "dashboardId": 12,
	  "panelId": 4,
	  "alerts": [{"labels": {"alertname": "cpu"}}]
	}`

	alert, err := NormalizeAlert([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "resolved", alert.Status)
	require.NotNil(t, alert.StartsAtMs)
	assert.Equal(t, int64(1754722800000), *alert.StartsAtMs)
	assert.Nil(t, alert.EndsAtMs, "endsAt has no envelope fallback")
	assert.Equal(t, "legacy grafana message", alert.Message)
	require.NotNil(t, alert.DashboardID)
	require.NotNil(t, alert.PanelID)
	assert.Equal(t, int64(12), *alert.DashboardID)
	assert.Equal(t, int64(4), *alert.PanelID)
}

func TestNormalizeSummaryPrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"annotation-summary-wins", `{"annotations": {"summary": "CPU high"}, "labels": {"alertname": "cpu"}}`, "CPU high"},
		{"alertname-fallback", `{"annotations": {"summary": "  "}, "labels": {"alertname": "cpu"}}`, "cpu"},
		{"literal-fallback", `{"status": "firing"}`, model.DefaultSummary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert, err := NormalizeAlert([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, alert.Summary)
		})
	}
}

func TestNormalizeFallsBackToFlattened(t *testing.T) {
	bodies := []string{
		`{"alerts": [], "labels": {"alertname": "top"}}`,
		`{"alerts": [null], "labels": {"alertname": "top"}}`,
		`{"alerts": [{}], "labels": {"alertname": "top"}}`,
		`{"alerts": {"labels": {"alertname": "nested"}}, "labels": {"alertname": "top"}}`,
	}
	for _, body := range bodies {
		alert, err := NormalizeAlert([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, model.ShapeFlattened, alert.Shape, body)
		assert.Equal(t, "top", alert.Summary, body)
	}
}

func TestNormalizeLabelValueTolerance(t *testing.T) {
	body := `{"labels": {"alertname": "cpu", "replicas": 3, "critical": true, "owner": null}, "annotations": "not-an-object"}`

	alert, err := NormalizeAlert([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"alertname": "cpu", "replicas": "3", "critical": "true"}, alert.Labels)
	assert.NotNil(t, alert.Annotations)
	assert.Empty(t, alert.Annotations)
}

func TestNormalizeUnparsableTimestamps(t *testing.T) {
	body := `{"startsAt": "not-a-date", "endsAt": "2025-13-01T00:00:00Z"}`

	alert, err := NormalizeAlert([]byte(body))
	require.NoError(t, err)
	assert.Nil(t, alert.StartsAtMs)
	assert.Nil(t, alert.EndsAtMs)
}

func TestNormalizeStartsAtEnvelopeFallback(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantMs *int64
	}{
		{
			name:   "missing on alert uses envelope",
			body:   `{"startsAt": "2025-08-09T07:00:00Z", "alerts": [{"labels": {"alertname": "A"}}]}`,
			wantMs: ms(1754722800000),
		},
		{
			name:   "blank on alert does not fall back",
			body:   `{"startsAt": "2025-08-09T07:00:00Z", "alerts": [{"labels": {"alertname": "A"}, "startsAt": ""}]}`,
			wantMs: nil,
		},
		{
			name:   "null on alert does not fall back",
			body:   `{"startsAt": "2025-08-09T07:00:00Z", "alerts": [{"labels": {"alertname": "A"}, "startsAt": null}]}`,
			wantMs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert, err := NormalizeAlert([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, model.ShapeBatched, alert.Shape)
			assert.Equal(t, tt.wantMs, alert.StartsAtMs)
		})
	}
}

func TestNormalizeInvalidPayload(t *testing.T) {
	bodies := []string{
		``,
		`   `,
		`{"alerts": [`,
		`not json`,
		`{}`,
		`null`,
		`[{"labels": {}}]`,
		`"firing"`,
	}
	for _, body := range bodies {
		_, err := NormalizeAlert([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidPayload, "body=%q", body)
	}
}
