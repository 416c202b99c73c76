package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env       string
		level     string
		wantDebug bool
		wantErr   bool
	}{
		{env: "local", wantDebug: true},
		{env: "prod", wantDebug: false},
		{env: "prod", level: "debug", wantDebug: true},
		{env: "dev", level: "warn", wantDebug: false},
		{env: "staging", wantErr: true},
		{env: "local", level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := l.Core().Enabled(zapcore.DebugLevel); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("missing logger must fall back to nop, not nil")
	}

	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("expected the stored logger")
	}
}

func TestFromContextOr(t *testing.T) {
	fallback := zap.NewExample()
	if FromContextOr(context.Background(), fallback) != fallback {
		t.Error("expected fallback for empty context")
	}
	stored := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), stored)
	if FromContextOr(ctx, fallback) != stored {
		t.Error("expected stored logger to win over fallback")
	}
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx, l := WithFields(context.Background(), base, zap.String("run_id", "r1"))
	if FromContext(ctx) != l {
		t.Fatal("derived logger not stored in context")
	}

	// A second derivation builds on the context logger, not on base.
	ctx, _ = WithFields(ctx, zap.NewNop(), zap.Int("tab", 2))
	FromContext(ctx).Info("listing page parsed")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["run_id"] != "r1" || fields["tab"] != int64(2) {
		t.Errorf("fields = %v", fields)
	}
}
