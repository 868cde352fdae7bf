package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, DebugLevel)

	log.Debug("Debug message", map[string]interface{}{
		"key1": "value1",
	})

	entry := decode(t, &buf)
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "Debug message", entry["message"])
	assert.Equal(t, "value1", entry["key1"])
	assert.Contains(t, entry, "timestamp")
	assert.Contains(t, entry["file"], "logger_test.go")
	assert.Contains(t, entry, "line")

	t.Run("WithField", func(t *testing.T) {
		buf.Reset()
		log.WithField("component", "store").Info("With field", nil)

		entry := decode(t, &buf)
		assert.Equal(t, "store", entry["component"])
		assert.Equal(t, "INFO", entry["level"])
	})

	t.Run("WithFields", func(t *testing.T) {
		buf.Reset()
		log.WithFields(map[string]interface{}{
			"app":     "finance-tracker",
			"backend": "badger",
		}).Warn("With fields", map[string]interface{}{"attempt": 2})

		entry := decode(t, &buf)
		assert.Equal(t, "finance-tracker", entry["app"])
		assert.Equal(t, "badger", entry["backend"])
		assert.Equal(t, float64(2), entry["attempt"])
		assert.Equal(t, "WARN", entry["level"])
	})
}

func TestJSONLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	warnLogger := NewJSONLogger(&buf, WarnLevel)

	warnLogger.Debug("Should not appear", nil)
	warnLogger.Info("Should not appear", nil)
	assert.Equal(t, "", buf.String())

	warnLogger.Warn("Warning message", nil)
	assert.Contains(t, buf.String(), "Warning message")

	buf.Reset()
	warnLogger.Error("Error message", nil)
	assert.Contains(t, buf.String(), "ERROR")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
}

func TestDefaultLogger(t *testing.T) {
	original := GetDefaultLogger()
	defer SetDefaultLogger(original)

	var buf bytes.Buffer
	SetDefaultLogger(NewJSONLogger(&buf, DebugLevel))

	GetDefaultLogger().Info("Through default", map[string]interface{}{"k": "v"})
	assert.Contains(t, buf.String(), "Through default")

	SetDefaultLogger(nil)
	assert.NotNil(t, GetDefaultLogger())
}
