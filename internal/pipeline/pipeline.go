package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shouni/go-cold-outreach/internal/config"
	"github.com/shouni/go-cold-outreach/pkg/analyzer"
	"github.com/shouni/go-cold-outreach/pkg/batch"
	"github.com/shouni/go-cold-outreach/pkg/csvexport"
	"github.com/shouni/go-cold-outreach/pkg/inspect"
	"github.com/shouni/go-cold-outreach/pkg/remote"
	"github.com/shouni/go-cold-outreach/pkg/report"
)

// Dependencies は、パイプラインに外部から注入するコンポーネントです。
type Dependencies struct {
	Fetcher     inspect.Fetcher // page モードでのみ必須
	Logger      *zap.Logger
	Recorder    batch.Recorder
	Progress    batch.ProgressSink
	HTTPTimeout time.Duration
	MaxRetries  int
}

// BuildAnalyzer は、設定されたモードに応じたアナライザーを生成します。
func BuildAnalyzer(cfg *config.Config, deps Dependencies) (analyzer.Analyzer, error) {
	switch cfg.Mode() {
	case config.ModeRemote:
		options := []remote.Option{remote.WithTimeout(deps.HTTPTimeout)}
		if deps.MaxRetries >= 0 {
			options = append(options, remote.WithMaxRetries(uint64(deps.MaxRetries)))
		}
		client, err := remote.New(cfg.AnalyzeURL, options...)
		if err != nil {
			return nil, fmt.Errorf("委譲アナライザーの初期化エラー: %w", err)
		}
		return remote.NewAnalyzer(client)

	case config.ModePage:
		if deps.Fetcher == nil {
			return nil, fmt.Errorf("ページインスペクターの初期化エラー: Fetcher が指定されていません")
		}
		inspector, err := inspect.NewInspector(deps.Fetcher, inspect.WithFeedDetection(cfg.FeedDetection))
		if err != nil {
			return nil, fmt.Errorf("ページインスペクターの初期化エラー: %w", err)
		}
		return inspect.NewAnalyzer(inspector)

	default:
		return analyzer.NewRules(), nil
	}
}

// NewProcessor は、設定とアナライザーからバッチプロセッサを生成します。
func NewProcessor(cfg *config.Config, deps Dependencies) (*batch.Processor, error) {
	a, err := BuildAnalyzer(cfg, deps)
	if err != nil {
		return nil, err
	}
	return batch.New(a,
		batch.WithLogger(deps.Logger),
		batch.WithRecorder(deps.Recorder),
		batch.WithProgress(deps.Progress),
		batch.WithPacing(cfg.Pacing()),
		batch.WithEntryTimeout(cfg.EntryTimeout()),
	)
}

// drive は Run を呼び出し、一時停止された場合は再開の通知を待って Run を繰り返します。
func drive(ctx context.Context, p *batch.Processor, resumed <-chan struct{}) error {
	for {
		if err := p.Run(ctx); err != nil {
			return err
		}

		switch p.Status() {
		case batch.StatusRunning:
			// Run が戻った直後に再開された
			continue
		case batch.StatusPaused:
			if resumed == nil {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-resumed:
			}
		default:
			return nil
		}
	}
}

// Outcome は1回の生成処理の結果です。
type Outcome struct {
	Snapshot    batch.Snapshot
	Stats       batch.Stats
	CSVWritten  bool
	Interrupted bool
}

// ErrNoValidURL は、1件も処理できなかった場合のエラーです。CSVは書き出されません。
var ErrNoValidURL = errors.New("no valid url was processed")

// Generate はバッチを開始して完了 (またはキャンセル) まで実行し、CSVとレポートを書き出します。
// コンテキストがキャンセルされた場合も、それまでに処理した分を書き出して Interrupted を返します。
// resumed が nil でない場合、一時停止中は resumed への通知を待ってから処理を再開します。
func Generate(ctx context.Context, p *batch.Processor, cfg *config.Config, raw string, resumed <-chan struct{}) (Outcome, error) {
	// 1. バッチの実行
	p.Start(raw)
	runErr := drive(ctx, p, resumed)
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return Outcome{}, fmt.Errorf("バッチ処理エラー: %w", runErr)
	}

	outcome := Outcome{
		Snapshot:    p.Snapshot(),
		Stats:       p.Stats(),
		Interrupted: runErr != nil,
	}

	// 2. レポートの書き出し (設定時のみ)
	if cfg.ReportPath != "" {
		r := report.New(p, string(cfg.Mode()), cfg.Output, time.Now())
		if err := r.WriteFile(cfg.ReportPath); err != nil {
			return outcome, err
		}
	}

	// 3. CSVの書き出し (処理済みが1件以上ある場合のみ)
	records := p.Processed()
	if len(records) == 0 {
		return outcome, ErrNoValidURL
	}
	if err := csvexport.WriteFile(cfg.Output, records); err != nil {
		return outcome, err
	}
	outcome.CSVWritten = true
	return outcome, nil
}
