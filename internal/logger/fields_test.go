package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNonEmpty(t *testing.T) {
	fields := nonEmpty("provider", "  Gemini  ", "ignored", "   ", "dangling")

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "Gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if empty := nonEmpty(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	WithFields(logger, zap.String("foo", "bar")).Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if ctx := entries[0].ContextMap(); ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	fallback := WithFields(nil, zap.String("baz", "qux"))
	if fallback == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
	fallback.Info("another log")
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "gemini", "model-x").Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" || ctx[FieldModel] != "model-x" {
		t.Fatalf("unexpected common fields: %v", ctx)
	}

	observed.TakeAll()
	WithCommonFields(zap.New(core), "", "").Info("bare log")
	if ctx := observed.All()[0].ContextMap(); len(ctx) != 0 {
		t.Fatalf("expected no fields, got %v", ctx)
	}
}

func TestRecordFields(t *testing.T) {
	fields := RecordFields("app-1", "", " job-42 ")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldApplication || fields[0].String != "app-1" {
		t.Fatalf("unexpected application field: %+v", fields[0])
	}

	if fields[1].Key != FieldJobOffer || fields[1].String != "job-42" {
		t.Fatalf("unexpected job offer field: %+v", fields[1])
	}
}

func TestNew(t *testing.T) {
	var hooked int
	l, err := New(true, true, zap.Hooks(func(zapcore.Entry) error {
		hooked++
		return nil
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.Debug("debug entry")
	if hooked != 1 {
		t.Fatalf("expected hook to observe debug entry, got %d", hooked)
	}
}
