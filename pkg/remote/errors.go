package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Error は /analyze 呼び出しの失敗を、一時的 (リトライ対象) かどうかと共に表します。
type Error struct {
	StatusCode int
	Message    string
	Transient  bool
	Cause      error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := []string{"委譲アナライザーエラー"}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("ステータスコード %d", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsTransient は、エラーがリトライ対象かどうかを判定します。
// retry.ShouldRetryFunc のシグネチャを満たします。
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var remoteErr *Error
	if errors.As(err, &remoteErr) {
		return remoteErr.Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
