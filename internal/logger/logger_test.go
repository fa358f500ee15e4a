package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerboseGating(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	SetVerbose(false)
	Debug("hidden %d", 1)
	Info("hidden too")
	Section("Hidden")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	defer SetVerbose(false)
	Debug("shown %d", 2)
	Info("also shown")
	Section("Query")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] shown 2")
	assert.Contains(t, out, "[INFO] also shown")
	assert.Contains(t, out, "=== Query ===")
	assert.True(t, IsVerbose())
}

func TestWarnAlwaysPrints(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	SetVerbose(false)
	Warn("degraded: %s", "remote down")
	assert.Contains(t, buf.String(), "[WARN] degraded: remote down")
}
