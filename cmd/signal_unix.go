//go:build !windows

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/shouni/go-cold-outreach/pkg/batch"
)

// watchPauseSignal は SIGUSR1 を受け取るたびにバッチの一時停止と再開を切り替えます。
// 再開した場合は戻り値のチャネルに通知します。
func watchPauseSignal(ctx context.Context, p *batch.Processor, logger *zap.Logger) <-chan struct{} {
	resumed := make(chan struct{}, 1)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGUSR1)

	go func() {
		defer signal.Stop(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				switch {
				case p.Pause():
				case p.Resume():
					select {
					case resumed <- struct{}{}:
					default:
					}
				default:
					continue
				}
				logPauseToggle(logger, p)
			}
		}
	}()
	return resumed
}
