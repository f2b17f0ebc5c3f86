package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"prod", "staging", "local", "dev", "docker"} {
		t.Run(env, func(t *testing.T) {
			l, err := NewLogger(env, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestNewLogger_UnknownEnv(t *testing.T) {
	if _, err := NewLogger("moon", ""); err == nil {
		t.Fatal("expected error for unknown env")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info must be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn must be enabled")
	}

	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestFromContextOr(t *testing.T) {
	fallback := zap.NewExample()
	scoped := zap.NewExample().With(zap.String("request_id", "r1"))

	if got := FromContextOr(context.Background(), fallback); got != fallback {
		t.Error("expected fallback without scoped logger")
	}

	ctx := ContextWithLogger(context.Background(), scoped)
	if got := FromContextOr(ctx, fallback); got != scoped {
		t.Error("expected scoped logger from context")
	}

	if FromContextOr(context.Background(), nil) == nil {
		t.Error("expected nop logger when fallback is nil")
	}
	if FromContext(context.Background()) == nil {
		t.Error("expected nop logger")
	}
}
