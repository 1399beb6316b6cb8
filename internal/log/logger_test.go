package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestComponentTag(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentWorker,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	logger.Info("export cycle complete", "rows", 3)

	line := buf.String()
	if !strings.Contains(line, "component=worker") {
		t.Fatalf("record missing component tag: %s", line)
	}
	if strings.Count(line, "component=") != 1 {
		t.Fatalf("component should be attached exactly once: %s", line)
	}
	if logger.Component() != ComponentWorker {
		t.Fatalf("Component() = %q", logger.Component())
	}
}

func TestEmptyComponentDefaultsToApp(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Handler: slog.NewTextHandler(&buf, nil)})
	logger.Info("started")
	if !strings.Contains(buf.String(), "component=app") {
		t.Fatalf("expected app component, got: %s", buf.String())
	}
}

func TestWithKeepsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentNotify,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	logger.With(FieldOwnerID, "u1").Warn("reminder skipped")

	line := buf.String()
	if !strings.Contains(line, "component=notify") || !strings.Contains(line, "owner_id=u1") {
		t.Fatalf("unexpected record: %s", line)
	}
}

func TestLevelFromEnv(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for value, want := range cases {
		t.Setenv("LOG_LEVEL", value)
		if got := LevelFromEnv(); got != want {
			t.Errorf("LOG_LEVEL=%q: got %v, want %v", value, got, want)
		}
	}
}
