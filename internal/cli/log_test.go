package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("loaded table") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("cache miss") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("cache miss") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("cache disabled") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug output at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("aggregating", "rows", 10)
	if !strings.Contains(buf.String(), "aggregating") {
		t.Errorf("debug output missing after SetLogLevel: %q", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Aggregated 3 rows")

	out := buf.String()
	if !strings.Contains(out, "Aggregated 3 rows") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "ms)") && !strings.Contains(out, "s)") {
		t.Errorf("output missing elapsed time: %q", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		if loggerFromContext(context.Background()) != log.Default() {
			t.Error("expected log.Default() without an attached logger")
		}
	})

	t.Run("attached", func(t *testing.T) {
		var buf bytes.Buffer
		custom := newLogger(&buf, log.InfoLevel)
		got := loggerFromContext(withLogger(context.Background(), custom))
		if got != custom {
			t.Fatal("loggerFromContext did not return the attached logger")
		}
		got.Info("rendered", "format", "svg")
		if !strings.Contains(buf.String(), "format=svg") {
			t.Errorf("custom logger output = %q", buf.String())
		}
	})
}
