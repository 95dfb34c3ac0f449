package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestLogger(buf *bytes.Buffer, level Level) Logger {
	return NewLogger(&Config{
		Level:       level,
		ServiceName: "venda-test",
		JSONFormat:  true,
		Output:      buf,
	})
}

func TestJSONOutputIncludesServiceName(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, LevelInfo)

	log.Info("card moved", F("card_id", "1"), F("stage", "contato-feito"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["service_name"] != "venda-test" {
		t.Errorf("service_name = %v, want venda-test", entry["service_name"])
	}
	if entry["card_id"] != "1" {
		t.Errorf("card_id = %v, want 1", entry["card_id"])
	}
	if entry["message"] != "card moved" {
		t.Errorf("message = %v", entry["message"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, LevelWarn)

	log.Debug("debug line")
	log.Info("info line")
	if buf.Len() != 0 {
		t.Errorf("expected debug/info suppressed at warn level, got %q", buf.String())
	}

	log.Warn("warn line")
	if !strings.Contains(buf.String(), "warn line") {
		t.Error("expected warn line to be logged")
	}
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, LevelInfo)

	log.Error("move failed",
		Err(errors.New("boom")),
		F("attempt", 3),
		F("elapsed", 250*time.Millisecond),
		F("forward", true),
	)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["error"] != "boom" {
		t.Errorf("error field = %v", entry["error"])
	}
	if entry["attempt"] != float64(3) {
		t.Errorf("attempt field = %v", entry["attempt"])
	}
	if entry["forward"] != true {
		t.Errorf("forward field = %v", entry["forward"])
	}
}

func TestWithAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, LevelInfo).With(F("component", "engine"))

	log.Info("hello")

	if !strings.Contains(buf.String(), `"component":"engine"`) {
		t.Errorf("expected component field in output, got %q", buf.String())
	}
}

func TestWithContextExtractsTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, LevelInfo)

	ctx := context.WithValue(context.Background(), TraceIDKey, "abc123")
	log.WithContext(ctx).Info("traced")

	if !strings.Contains(buf.String(), `"trace_id":"abc123"`) {
		t.Errorf("expected trace_id in output, got %q", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	// Must not panic and must keep returning a usable logger.
	log.With(F("k", "v")).WithContext(context.Background()).Info("ignored")
}
