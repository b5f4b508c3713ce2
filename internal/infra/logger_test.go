package infra

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		l := NewLogger(in)
		if !l.Enabled(context.Background(), want) {
			t.Errorf("%s: level %v should be enabled", in, want)
		}
		if want > slog.LevelDebug && l.Enabled(context.Background(), want-4) {
			t.Errorf("%s: level below %v should be disabled", in, want)
		}
	}
}
