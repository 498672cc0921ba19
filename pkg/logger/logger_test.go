package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWith(FormatJSON, &buf); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer Discard()

	Named("cycle").Info(context.Background(), "published",
		Uint64("cycle", 7),
		Bool("ok", true),
		Duration("took", time.Millisecond),
		Error(errors.New("boom")),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("entry is not json: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "published" {
		t.Errorf("expected msg published, got %v", entry["msg"])
	}
	if entry["component"] != "cycle" {
		t.Errorf("expected component cycle, got %v", entry["component"])
	}
	if src, _ := entry["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("expected source to point at the test, got %q", src)
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWith(FormatText, &buf); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer Discard()
	defer func() { _ = SetLevelString("info") }()

	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Get().Info(context.Background(), "hidden")
	Get().Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output %q", out)
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoggerUnknownFormat(t *testing.T) {
	if err := InitWith("xml", nil); err == nil {
		t.Error("expected error for unknown format")
	}
}
