package logutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("run saved", "id", "sinc90_1234abcd")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message logged at info level")
	}
	if !strings.Contains(out, "id=sinc90_1234abcd") {
		t.Errorf("missing attribute in %q", out)
	}
	if strings.Contains(out, "source=") {
		t.Errorf("source should be omitted at info level: %q", out)
	}
}

func TestNewLoggerDebugTrimsSource(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, Level(true))
	logger.Debug("step")

	out := buf.String()
	if !strings.Contains(out, "source=logutil_test.go:") {
		t.Errorf("expected trimmed source in %q", out)
	}
}

func TestLevel(t *testing.T) {
	if Level(false) != slog.LevelInfo || Level(true) != slog.LevelDebug {
		t.Error("unexpected level mapping")
	}
}
