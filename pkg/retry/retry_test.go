package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient error")
var errFatal = errors.New("fatal error")

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, uint64(DefaultMaxRetries), cfg.MaxRetries)
	require.Equal(t, InitialBackoffInterval, cfg.InitialInterval)
	require.Equal(t, MaxBackoffInterval, cfg.MaxInterval)
}

func TestNewBackOffPolicy(t *testing.T) {
	bo := newBackOffPolicy(context.Background(), Config{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond})
	require.NotNil(t, bo)
}

func TestDo(t *testing.T) {
	testCfg := Config{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
	isTransient := func(err error) bool { return errors.Is(err, errTransient) }

	t.Run("success_first_attempt", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), testCfg, "analyze", func() error { calls++; return nil }, isTransient)
		require.NoError(t, err)
		require.Equal(t, 1, calls)
	})

	t.Run("transient_then_success", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), testCfg, "analyze", func() error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		}, isTransient)
		require.NoError(t, err)
		require.Equal(t, 3, calls)
	})

	t.Run("fatal_error_is_not_retried", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), testCfg, "analyze", func() error { calls++; return errFatal }, isTransient)
		require.ErrorIs(t, err, errFatal)
		require.Equal(t, 1, calls)
	})

	t.Run("max_retries_exceeded", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), testCfg, "analyze", func() error { calls++; return errTransient }, isTransient)
		require.ErrorIs(t, err, errTransient)
		require.Contains(t, err.Error(), "analyzeに失敗しました: 最大リトライ回数 (3回) に到達")
		require.Equal(t, 4, calls)
	})

	t.Run("context_canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Do(ctx, testCfg, "analyze", func() error { return errTransient }, isTransient)
		require.ErrorIs(t, err, context.Canceled)
		require.Contains(t, err.Error(), "コンテキストタイムアウト/キャンセル")
	})
}
