package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/neexbeast/weather-widget/internal/logging"
)

func TestNewWithSink_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.NewWithSink("weather-widget", "info", zapcore.AddSync(&buf))
	require.NoError(t, err)

	log.Info("search completed", zap.String("city", "Paris"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "search completed", entry["msg"])
	assert.Equal(t, "weather-widget", entry["logName"])
	assert.Equal(t, "Paris", entry["city"])
	assert.Equal(t, "info", entry["level"])
	assert.NotEmpty(t, entry["@timestamp"])
	assert.Contains(t, entry["logger_name"], "zap_test.go")
}

func TestNewWithSink_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.NewWithSink("app", "warn", zapcore.AddSync(&buf))
	require.NoError(t, err)

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
}

func TestNew_BadLevel(t *testing.T) {
	_, err := logging.New("app", "loud")
	require.Error(t, err)
}
