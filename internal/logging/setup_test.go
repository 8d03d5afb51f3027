package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger, err := setup(&buf, "warn", "scoring-api")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	logger.Info("hidden")
	slog.Warn("leg won", "match_id", "m1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "service=scoring-api") || !strings.Contains(out, "match_id=m1") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
