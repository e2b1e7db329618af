//go:build windows

package cmd

import (
	"context"

	"go.uber.org/zap"

	"github.com/shouni/go-cold-outreach/pkg/batch"
)

// watchPauseSignal は Windows では何もしません。一時停止されることがないため nil を返します。
func watchPauseSignal(_ context.Context, _ *batch.Processor, _ *zap.Logger) <-chan struct{} {
	return nil
}
