package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kube-rca/alert-relay/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevelAndFormat(t *testing.T) {
	log, err := New(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	log, err := New(config.LogConfig{Level: "loud", Format: "text"})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewUnsupportedFormat(t *testing.T) {
	_, err := New(config.LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.log")
	log, err := New(config.LogConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	log.WithField("request_id", "abc").Info("annotation posted")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"request_id":"abc"`)
	assert.Contains(t, string(data), "annotation posted")
}
