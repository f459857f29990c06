package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(WARN, &buf)

	log.Info("hidden %d", 1)
	log.Warn("visible %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "visible 2")
	assert.Contains(t, out, "logger/logger_test.go")
}

func TestLogger_KeyValueVariants(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(DEBUG, &buf)

	log.Infow("payment updated", "paymentID", "pi_1", "rows", 2)
	log.Debugw("odd fields", "lonely")

	out := buf.String()
	assert.Contains(t, out, "payment updated paymentID=pi_1 rows=2")
	assert.Contains(t, out, "odd fields lonely=<missing>")
}

func TestLogger_FatalCallsExit(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(DEBUG, &buf)
	code := -1
	log.exitFunc = func(c int) { code = c }

	log.Fatalw("boom", "reason", "test")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "[FATAL]")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, ERROR, ParseLevel(" error "))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}
