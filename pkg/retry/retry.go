package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultMaxRetries は、委譲アナライザー呼び出しの既定リトライ回数です。
	DefaultMaxRetries = 2

	InitialBackoffInterval = 300 * time.Millisecond
	MaxBackoffInterval     = 3 * time.Second
)

// Operation はリトライ対象の処理です。成功時は nil を返します。
type Operation func() error

// ShouldRetryFunc は、エラーが一時的 (リトライ可能) かどうかを判定します。
type ShouldRetryFunc func(error) bool

// Config はリトライ動作の設定です。
type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultConfig は既定の設定を返します。
func DefaultConfig() Config {
	return Config{
		MaxRetries:      DefaultMaxRetries,
		InitialInterval: InitialBackoffInterval,
		MaxInterval:     MaxBackoffInterval,
	}
}

// newBackOffPolicy は、設定とコンテキストを反映した指数バックオフを生成します。
func newBackOffPolicy(ctx context.Context, cfg Config) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval
	// 全体の打ち切りはコンテキストとリトライ回数に任せる
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, cfg.MaxRetries), ctx)
}

// Do は、shouldRetry が true を返すエラーの間だけ指数バックオフで op を再実行します。
// 一時的でないエラーは即座に返します。
func Do(ctx context.Context, cfg Config, operationName string, op Operation, shouldRetry ShouldRetryFunc) error {
	var lastErr error

	attempt := func() error {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if shouldRetry != nil && shouldRetry(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(attempt, newBackOffPolicy(ctx, cfg))
	if err == nil {
		return nil
	}

	// 1. コンテキストのキャンセル/タイムアウト
	if ctxErr := ctx.Err(); ctxErr != nil {
		if lastErr == nil {
			lastErr = ctxErr
		}
		return fmt.Errorf("%sに失敗しました: コンテキストタイムアウト/キャンセル: %w", operationName, errors.Join(ctxErr, lastErr))
	}

	// 2. 一時的でないエラー (Retry は Permanent を剥がした元のエラーを返す)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	if lastErr != nil && (shouldRetry == nil || !shouldRetry(lastErr)) {
		return lastErr
	}

	// 3. リトライ上限への到達
	return fmt.Errorf("%sに失敗しました: 最大リトライ回数 (%d回) に到達。最終エラー: %w", operationName, cfg.MaxRetries, lastErr)
}
