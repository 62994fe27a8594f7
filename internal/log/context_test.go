package log_test

import (
	"context"
	"testing"

	"github.com/sdawka/ggit/internal/log"
	"github.com/stretchr/testify/require"
)

type stubLogger struct {
	lastMsg string
}

func (s *stubLogger) Debug(msg string, keysAndValues ...any) { s.lastMsg = msg }
func (s *stubLogger) Info(msg string, keysAndValues ...any)  { s.lastMsg = msg }
func (s *stubLogger) Warn(msg string, keysAndValues ...any)  { s.lastMsg = msg }
func (s *stubLogger) Error(msg string, keysAndValues ...any) { s.lastMsg = msg }

func TestContextLogger(t *testing.T) {
	t.Run("adds logger to context", func(t *testing.T) {
		custom := &stubLogger{}
		ctx := context.Background()
		newCtx := log.ToContext(ctx, custom)

		got := log.FromContext(newCtx)
		require.Equal(t, custom, got, "context should contain provided logger")

		original := log.FromContext(ctx)
		require.NotEqual(t, custom, original, "original context should not be modified")
	})

	t.Run("returns noop logger if none in context", func(t *testing.T) {
		ctx := context.Background()
		got := log.FromContext(ctx)
		require.Equal(t, log.Noop, got)
		got.Info("should not panic")
	})
}
