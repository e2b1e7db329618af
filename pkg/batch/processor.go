package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shouni/go-cold-outreach/pkg/analyzer"
	"github.com/shouni/go-cold-outreach/pkg/identifier"
	"github.com/shouni/go-cold-outreach/pkg/message"
	"github.com/shouni/go-cold-outreach/pkg/types"
)

const (
	// DefaultPacing は、エントリ間で待機する既定の間隔です。
	DefaultPacing = 100 * time.Millisecond
	// DefaultEntryTimeout は、1エントリあたりのアナライザー呼び出しの既定タイムアウトです。
	DefaultEntryTimeout = 30 * time.Second
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// ProgressSink は、1エントリ処理するごとに (current, total) を受け取ります。
// 表示方法については関知しません。
type ProgressSink interface {
	OnProgress(current, total int)
}

// ProgressFunc は関数を ProgressSink として扱うためのアダプターです。
type ProgressFunc func(current, total int)

// OnProgress は ProgressSink インターフェースを満たします。
func (f ProgressFunc) OnProgress(current, total int) { f(current, total) }

// Recorder は、エントリ単位の結果をメトリクスとして記録します。
type Recorder interface {
	BatchStarted(total int)
	EntryProcessed(duration time.Duration)
	EntryRejected(kind types.FailureKind, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) BatchStarted(int)                               {}
func (nopRecorder) EntryProcessed(time.Duration)                   {}
func (nopRecorder) EntryRejected(types.FailureKind, time.Duration) {}

// ----------------------------------------------------------------------
// プロセッサ
// ----------------------------------------------------------------------

// Processor は、入力URLのリストを1件ずつ順番に処理するバッチプロセッサです。
// BatchState はこの構造体だけが所有し、外部からは Snapshot を通して読み取ります。
//
// 処理は Run (または Step) を呼ぶ1つのゴルーチンが駆動します。
// Pause/Resume/Start は別のゴルーチン (シグナルハンドラなど) から呼び出せます。
type Processor struct {
	analyzer     analyzer.Analyzer
	logger       *zap.Logger
	sink         ProgressSink
	recorder     Recorder
	limiter      *rate.Limiter
	entryTimeout time.Duration
	newRunID     func() string
	now          func() time.Time

	mu         sync.Mutex
	runID      string
	entries    []string
	cursor     int
	status     Status
	processed  []types.ProcessedRecord
	rejected   []types.RejectedEntry
	generation uint64
	inFlight   bool
	stepDone   chan struct{} // 処理中の Step の完了時に close される
}

// Option は Processor の設定を行うための関数型です。
type Option func(*Processor)

// WithLogger はロガーを設定します。nil の場合は無視されます。
func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProgress は進捗の通知先を設定します。
func WithProgress(sink ProgressSink) Option {
	return func(p *Processor) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithRecorder はメトリクスの記録先を設定します。
func WithRecorder(recorder Recorder) Option {
	return func(p *Processor) {
		if recorder != nil {
			p.recorder = recorder
		}
	}
}

// WithPacing は Run がエントリ間で待機する間隔を設定します。0 以下で待機しません。
func WithPacing(interval time.Duration) Option {
	return func(p *Processor) {
		if interval <= 0 {
			p.limiter = nil
			return
		}
		p.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithEntryTimeout は1エントリあたりのアナライザー呼び出しのタイムアウトを設定します。0 以下で無効です。
func WithEntryTimeout(timeout time.Duration) Option {
	return func(p *Processor) {
		p.entryTimeout = timeout
	}
}

// New は、新しい Processor を生成します。初期状態は Idle です。
func New(a analyzer.Analyzer, options ...Option) (*Processor, error) {
	if a == nil {
		return nil, fmt.Errorf("batch.New: Analyzer cannot be nil")
	}

	p := &Processor{
		analyzer:     a,
		logger:       zap.NewNop(),
		sink:         ProgressFunc(func(int, int) {}),
		recorder:     nopRecorder{},
		limiter:      rate.NewLimiter(rate.Every(DefaultPacing), 1),
		entryTimeout: DefaultEntryTimeout,
		newRunID:     uuid.NewString,
		now:          time.Now,
		status:       StatusIdle,
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

// SplitEntries は入力テキストを改行で分割し、各行をトリムして空行を取り除きます。
func SplitEntries(raw string) []string {
	lines := strings.Split(raw, "\n")
	entries := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	return entries
}

// Start は新しいバッチを開始し、Running に遷移します。エントリが0件の場合は即座に Completed になります。
// 前回の結果はクリアされます。Running 中に呼ばれた場合、前回の残りのエントリは除外扱いにせず破棄し、
// 処理中だったエントリの結果も記録しません。
func (p *Processor) Start(raw string) Snapshot {
	entries := SplitEntries(raw)

	p.mu.Lock()
	if p.status == StatusRunning {
		p.logger.Warn("実行中のバッチを破棄して新しいバッチを開始します",
			zap.String("run_id", p.runID),
			zap.Int("discarded", len(p.entries)-p.cursor),
		)
	}

	p.generation++
	p.runID = p.newRunID()
	p.entries = entries
	p.cursor = 0
	p.processed = nil
	p.rejected = nil
	p.status = StatusRunning
	if len(entries) == 0 {
		p.status = StatusCompleted
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.recorder.BatchStarted(len(entries))
	p.logger.Info("バッチを開始しました", zap.String("run_id", snap.RunID), zap.Int("total", snap.Total))
	return snap
}

// Step は Running の間に限り、カーソル位置のエントリを1件処理します。
// 結果に関わらずカーソルを1つ進め、進捗を通知します。
// 処理後もまだ Running であれば true を返します。
// Running 以外の状態、または別の Step が処理中の場合は何もせず false を返します。
func (p *Processor) Step(ctx context.Context) bool {
	// 1. 状態の確認とエントリの取り出し
	p.mu.Lock()
	if p.status != StatusRunning || p.inFlight {
		p.mu.Unlock()
		return false
	}
	if p.cursor >= len(p.entries) {
		p.status = StatusCompleted
		p.mu.Unlock()
		return false
	}
	index := p.cursor
	entry := p.entries[index]
	generation := p.generation
	runID := p.runID
	p.inFlight = true
	p.stepDone = make(chan struct{})
	p.mu.Unlock()

	// 2. ロックの外で処理 (アナライザーは遅延する可能性がある)
	started := p.now()
	record, rejection := p.processEntry(ctx, entry)
	elapsed := p.now().Sub(started)

	// 3. 結果の反映
	p.mu.Lock()
	p.inFlight = false
	close(p.stepDone)
	if generation != p.generation {
		running := p.status == StatusRunning
		p.mu.Unlock()
		p.logger.Debug("破棄されたバッチの処理結果を無視します", zap.String("run_id", runID), zap.Int("index", index))
		return running
	}
	if rejection != nil && ctx.Err() != nil {
		// 呼び出し元のキャンセルで失敗した場合はカーソルを進めず一時停止する
		if p.status == StatusRunning {
			p.status = StatusPaused
		}
		p.mu.Unlock()
		p.logger.Info("キャンセルされたため一時停止しました", zap.String("run_id", runID), zap.Int("cursor", index))
		return false
	}

	if rejection != nil {
		p.rejected = append(p.rejected, *rejection)
	} else {
		p.processed = append(p.processed, *record)
	}
	p.cursor++
	current, total := p.cursor, len(p.entries)
	if p.cursor >= total {
		p.status = StatusCompleted
	}
	p.mu.Unlock()

	// 4. ログ・メトリクス・進捗の通知
	if rejection != nil {
		p.recorder.EntryRejected(rejection.Kind, elapsed)
		p.logger.Warn("エントリを除外しました",
			zap.String("run_id", runID),
			zap.Int("index", index),
			zap.String("url", entry),
			zap.String("kind", rejection.Kind.String()),
			zap.String("reason", rejection.Reason),
		)
	} else {
		p.recorder.EntryProcessed(elapsed)
		p.logger.Debug("エントリを処理しました", zap.String("run_id", runID), zap.Int("index", index), zap.String("url", entry))
	}

	p.sink.OnProgress(current, total)
	if current >= total {
		p.logger.Info("バッチが完了しました", zap.String("run_id", runID), zap.Int("total", total))
	}

	return p.Status() == StatusRunning
}

// Run は Running でなくなるまで、ペース配分しながら Step を繰り返します。
// 別のゴルーチンの Step が処理中の場合は、その完了を待ってから続行します。
// Pause や完了で停止した場合は nil を返します。
// コンテキストがキャンセルされた場合はバッチを一時停止し、ctx.Err() を返します。
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			p.pauseOnCancel()
			return err
		}
		if p.Status() != StatusRunning {
			return nil
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				p.pauseOnCancel()
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return fmt.Errorf("エントリ間の待機に失敗しました: %w", err)
			}
		}

		if !p.Step(ctx) {
			if err := ctx.Err(); err != nil {
				p.pauseOnCancel()
				return err
			}
			// 別のゴルーチンの Step が処理中の場合は、その完了を待ってから状態を確認し直す
			if done := p.inFlightDone(); done != nil {
				select {
				case <-ctx.Done():
					p.pauseOnCancel()
					return ctx.Err()
				case <-done:
				}
			}
		}
	}
}

// inFlightDone は、処理中の Step があればその完了を通知するチャネルを返します。なければ nil です。
func (p *Processor) inFlightDone() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.inFlight {
		return nil
	}
	return p.stepDone
}

func (p *Processor) pauseOnCancel() {
	if p.Pause() {
		p.logger.Info("キャンセルされたため一時停止しました", zap.String("run_id", p.Snapshot().RunID))
	}
}

// Pause は Running から Paused に遷移します。処理中のエントリは完了まで続きます。
// Running 以外では何もせず false を返します。
func (p *Processor) Pause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != StatusRunning {
		return false
	}
	p.status = StatusPaused
	return true
}

// Resume は Paused から Running に遷移します。処理の再開は呼び出し元が Run を呼んで行います。
// Paused 以外では何もせず false を返します。
func (p *Processor) Resume() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != StatusPaused {
		return false
	}
	p.status = StatusRunning
	return true
}

// Status は現在の状態を返します。
func (p *Processor) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Snapshot は現在の BatchState の読み取り専用コピーを返します。
func (p *Processor) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Processor) snapshotLocked() Snapshot {
	return Snapshot{
		RunID:     p.runID,
		Status:    p.status,
		Cursor:    p.cursor,
		Total:     len(p.entries),
		Processed: len(p.processed),
		Rejected:  len(p.rejected),
	}
}

// Processed は処理済みレコードのコピーを処理順に返します。
func (p *Processor) Processed() []types.ProcessedRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.ProcessedRecord(nil), p.processed...)
}

// Rejected は除外されたエントリのコピーを処理順に返します。
func (p *Processor) Rejected() []types.RejectedEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.RejectedEntry(nil), p.rejected...)
}

// Stats は集計値を返します。Total は結果が出たエントリ数 (processed + ignored) です。
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Processed: len(p.processed),
		Ignored:   len(p.rejected),
		Total:     len(p.processed) + len(p.rejected),
	}
}

// ----------------------------------------------------------------------
// エントリ単位の処理
// ----------------------------------------------------------------------

// processEntry は1件のエントリを検証・識別・解析し、レコードまたは除外のどちらか一方を返します。
// 予期しない panic もここで捕捉し、このエントリだけの除外に変換します。
func (p *Processor) processEntry(ctx context.Context, entry string) (record *types.ProcessedRecord, rejection *types.RejectedEntry) {
	defer func() {
		if r := recover(); r != nil {
			record = nil
			rejection = p.internalFailure(entry, r)
		}
	}()

	// 1. URLの検証
	if strings.TrimSpace(entry) == "" || !identifier.IsValidURL(entry) {
		return nil, reject(entry, types.FailureValidation, "URLとして不正です")
	}

	// 2. 識別子の抽出
	id, ok := identifier.Extract(entry)
	if !ok {
		return nil, reject(entry, types.FailureExtraction, "店舗の識別子を抽出できません")
	}

	// 3. 解析
	result, panicked := p.analyze(ctx, analyzer.Target{URL: entry, Identifier: id})
	if panicked != nil {
		return nil, p.internalFailure(entry, panicked)
	}
	analysis, ok := result.Analysis()
	if !ok {
		return nil, reject(entry, types.FailureAnalysis, result.Err().Error())
	}

	// 4. メッセージの生成
	return &types.ProcessedRecord{
		SourceURL:       entry,
		StoreIdentifier: id,
		ContactLabel:    analysis.ContactLabel,
		StrengthNote:    analysis.StrengthNote,
		OpportunityNote: analysis.OpportunityNote,
		Message:         message.Compose(id, analysis),
	}, nil
}

type analyzeOutcome struct {
	result   analyzer.Result
	panicked any
}

// analyze はタイムアウト付きでアナライザーを呼び出します。
// コンテキストを無視して停止したアナライザーも、タイムアウトで解析失敗として扱います。
func (p *Processor) analyze(ctx context.Context, target analyzer.Target) (analyzer.Result, any) {
	actx, cancel := ctx, context.CancelFunc(func() {})
	if p.entryTimeout > 0 {
		actx, cancel = context.WithTimeout(ctx, p.entryTimeout)
	}
	defer cancel()

	done := make(chan analyzeOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- analyzeOutcome{panicked: r}
			}
		}()
		done <- analyzeOutcome{result: p.analyzer.Analyze(actx, target)}
	}()

	select {
	case out := <-done:
		return out.result, out.panicked
	case <-actx.Done():
		if errors.Is(actx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return analyzer.Fail(fmt.Errorf("解析がタイムアウトしました (%s): %w", p.entryTimeout, actx.Err())), nil
		}
		return analyzer.Fail(fmt.Errorf("解析がキャンセルされました: %w", actx.Err())), nil
	}
}

func (p *Processor) internalFailure(entry string, recovered any) *types.RejectedEntry {
	p.logger.Error("エントリの処理中に予期しないエラーが発生しました",
		zap.String("url", entry),
		zap.Any("panic", recovered),
	)
	return reject(entry, types.FailureInternal, fmt.Sprintf("予期しないエラー: %v", recovered))
}

func reject(entry string, kind types.FailureKind, reason string) *types.RejectedEntry {
	return &types.RejectedEntry{SourceURL: entry, Kind: kind, Reason: reason}
}
