package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  attempt  ", Value: "  abc  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "attempt" || fields[0].String != "abc" {
		t.Fatalf("unexpected attempt field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestAttemptFields(t *testing.T) {
	fields := AttemptFields("  3f2a  ", "http://127.0.0.1:8000/match-resume/")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldAttempt || fields[0].String != "3f2a" {
		t.Fatalf("unexpected attempt field: %+v", fields[0])
	}

	if fields[1].Key != FieldEndpoint || fields[1].String != "http://127.0.0.1:8000/match-resume/" {
		t.Fatalf("unexpected endpoint field: %+v", fields[1])
	}

	empty := AttemptFields("", "")
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithAttemptFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithAttemptFields(logger, "attempt-1", "http://scorer")
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldAttempt] != "attempt-1" {
		t.Fatalf("expected attempt field to be attempt-1, got %q", ctx[FieldAttempt])
	}

	if ctx[FieldEndpoint] != "http://scorer" {
		t.Fatalf("expected endpoint field to be http://scorer, got %q", ctx[FieldEndpoint])
	}

	enriched = WithAttemptFields(nil, "attempt-1", "http://scorer")
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}
