package betafeatures

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultLogger(t *testing.T) {
	// Redirect log output to a buffer for testing
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: levelVar,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time for consistent test output
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})

	logger := &defaultSlogLogger{
		slogger:  slog.New(handler),
		levelVar: levelVar,
	}

	logger.Debug("Debug message", "arg1", 123)
	logger.Info("Info message")
	logger.Warn("Warn message", "key_warn", "val_warn")
	logger.Error("Error message", "key_err", "val_err")

	logOutput := buf.String()

	for _, expected := range []string{
		`level=DEBUG msg="Debug message" arg1=123`,
		`level=INFO msg="Info message"`,
		`level=WARN msg="Warn message" key_warn=val_warn`,
		`level=ERROR msg="Error message" key_err=val_err`,
	} {
		if !strings.Contains(logOutput, expected) {
			t.Errorf("Message not logged correctly.\nExpected to contain: %s\nGot: %s", expected, logOutput)
		}
	}
}

func TestDefaultLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	logger := &defaultSlogLogger{
		slogger:  slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: levelVar})),
		levelVar: levelVar,
	}

	logger.Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Debug message logged below the configured level")
	}

	logger.SetLevel(LogLevelDebug)
	logger.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("Debug message missing after lowering the level")
	}
}

func TestNewDefaultLogger(t *testing.T) {
	// Ensure the stderr-backed constructor can be used without panicking.
	logger := NewDefaultLogger()
	logger.SetLevel(LogLevelError)
	logger.Info("suppressed at error level")
}
