package loggertest_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/schmitthub/composefixture/internal/logger"
	"github.com/schmitthub/composefixture/internal/logger/loggertest"
)

func TestCapture_CapturesOutput(t *testing.T) {
	buf := loggertest.Capture(t)

	logger.Info().Str("service", "httpbin").Msg("hello world")

	if !buf.Contains("hello world") {
		t.Errorf("Output() should contain logged message, got %q", buf.Output())
	}
	if !buf.Contains(`"service":"httpbin"`) {
		t.Errorf("Output() should contain fields, got %q", buf.Output())
	}
}

func TestCapture_Reset(t *testing.T) {
	buf := loggertest.Capture(t)

	logger.Info().Msg("first message")
	buf.Reset()
	logger.Info().Msg("second message")

	if buf.Contains("first message") {
		t.Errorf("Reset() should clear output, got %q", buf.Output())
	}
	if !buf.Contains("second message") {
		t.Errorf("expected second message, got %q", buf.Output())
	}
}

func TestCapture_RestoresPrevious(t *testing.T) {
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })
	logger.Log = zerolog.Nop()

	t.Run("inner", func(t *testing.T) {
		loggertest.Capture(t)
		if logger.Log.GetLevel() != zerolog.DebugLevel {
			t.Errorf("captured level = %v, want debug", logger.Log.GetLevel())
		}
	})

	if logger.Log.GetLevel() != zerolog.Disabled {
		t.Error("Capture should restore the previous logger on cleanup")
	}
}
