package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shouni/go-cold-outreach/internal/config"
	"github.com/shouni/go-cold-outreach/internal/observability"
	"github.com/shouni/go-cold-outreach/internal/pipeline"
	"github.com/shouni/go-cold-outreach/pkg/batch"
)

// errEmptyInput は、入力にURLが1件も含まれない場合のエラーです。
var errEmptyInput = errors.New("no urls in input")

// 利用者向けのメッセージ
const (
	msgEmptyInput = "Por favor, insira pelo menos uma URL."
	msgNoValidURL = "Nenhuma URL válida foi encontrada."
)

// generateFlags は generate コマンドのフラグを保持します。
type generateFlags struct {
	input        string
	output       string
	analyzer     string
	endpoint     string
	paceMillis   int
	entryTimeout int
	report       string
	metricsFile  string
}

var genFlags generateFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "URLリストを解析してアウトリーチメッセージのCSVを生成します",
	Long: `改行区切りのURLリストを1件ずつ解析し、メッセージをCSVに書き出します。
入力はファイル (--input) または標準入力から読み込みます。
Ctrl-C で中断した場合も、それまでに処理したメッセージを書き出します。
Unix系OSでは SIGUSR1 を送ることで一時停止と再開を切り替えられます。`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genFlags.input, "input", "i", "", "URLリストのファイル (省略時は標準入力)")
	generateCmd.Flags().StringVarP(&genFlags.output, "output", "o", "", "出力CSVのパス (OUTREACH_OUTPUT)")
	generateCmd.Flags().StringVarP(&genFlags.analyzer, "analyzer", "a", "", "アナライザー: rules, remote, page (OUTREACH_ANALYZER)")
	generateCmd.Flags().StringVar(&genFlags.endpoint, "endpoint", "", "remote アナライザーのエンドポイント (OUTREACH_ANALYZE_URL)")
	generateCmd.Flags().IntVar(&genFlags.paceMillis, "pace", 0, "エントリ間の待機時間（ミリ秒） (OUTREACH_PACE_MS)")
	generateCmd.Flags().IntVar(&genFlags.entryTimeout, "entry-timeout", 0, "1エントリあたりのタイムアウト（秒）、0で無効 (OUTREACH_ENTRY_TIMEOUT_SEC)")
	generateCmd.Flags().StringVar(&genFlags.report, "report", "", "実行レポート (YAML) の出力パス (OUTREACH_REPORT)")
	generateCmd.Flags().StringVar(&genFlags.metricsFile, "metrics-file", "", "Prometheus テキスト形式のメトリクス出力パス (OUTREACH_METRICS_FILE)")
}

// loadGenerateConfig は環境変数の設定を読み込み、明示的に指定されたフラグで上書きします。
func loadGenerateConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = genFlags.output
	}
	if flags.Changed("analyzer") {
		cfg.Analyzer = genFlags.analyzer
	}
	if flags.Changed("endpoint") {
		cfg.AnalyzeURL = genFlags.endpoint
	}
	if flags.Changed("pace") {
		cfg.PaceMillis = genFlags.paceMillis
	}
	if flags.Changed("entry-timeout") {
		cfg.EntryTimeoutSec = genFlags.entryTimeout
	}
	if flags.Changed("report") {
		cfg.ReportPath = genFlags.report
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = genFlags.metricsFile
	}
	if clibase.Flags.Verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readInput は --input のファイル、または標準入力からURLリストを読み込みます。
func readInput(cmd *cobra.Command) (string, error) {
	if genFlags.input != "" {
		data, err := os.ReadFile(genFlags.input)
		if err != nil {
			return "", fmt.Errorf("入力ファイルの読み込みに失敗しました: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("標準入力の読み取りエラー: %w", err)
	}
	return string(data), nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// 1. 設定とロガーの初期化
	cfg, err := loadGenerateConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	metrics := observability.NewMetrics()

	// 2. 入力の読み込み
	raw, err := readInput(cmd)
	if err != nil {
		return err
	}
	if len(batch.SplitEntries(raw)) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), msgEmptyInput)
		return errEmptyInput
	}

	// 3. パイプラインの構築
	stderr := cmd.ErrOrStderr()
	processor, err := pipeline.NewProcessor(cfg, pipeline.Dependencies{
		Fetcher:  GetGlobalFetcher(),
		Logger:   logger,
		Recorder: metrics,
		Progress: batch.ProgressFunc(func(current, total int) {
			fmt.Fprintf(stderr, "\rProcessando %d de %d...", current, total)
			if current == total {
				fmt.Fprintln(stderr)
			}
		}),
		HTTPTimeout: httpTimeout(),
		MaxRetries:  Flags.MaxRetries,
	})
	if err != nil {
		return err
	}

	// 4. シグナルの設定 (中断と一時停止/再開)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	resumed := watchPauseSignal(ctx, processor, logger)

	// 5. 実行
	logger.Info("バッチ処理を開始します",
		zap.String("analyzer", string(cfg.Mode())),
		zap.String("output", cfg.Output),
	)
	started := time.Now()
	outcome, genErr := pipeline.Generate(ctx, processor, cfg, raw, resumed)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("メトリクスの書き出しに失敗しました", zap.Error(err))
		}
	}

	if genErr != nil {
		if errors.Is(genErr, pipeline.ErrNoValidURL) {
			fmt.Fprintln(cmd.OutOrStdout(), msgNoValidURL)
			return nil
		}
		return genErr
	}

	// 6. 結果の出力
	logger.Debug("バッチ処理が終了しました",
		zap.String("run_id", outcome.Snapshot.RunID),
		zap.Duration("elapsed", time.Since(started)),
	)
	printSummary(cmd.OutOrStdout(), cfg, outcome, processor)
	return nil
}

// printSummary は、処理結果の集計とメッセージのプレビューを出力します。
func printSummary(w io.Writer, cfg *config.Config, outcome pipeline.Outcome, p *batch.Processor) {
	if outcome.Interrupted {
		fmt.Fprintf(w, "⚠️ Interrompido em %d de %d. Mensagens processadas até aqui foram salvas.\n",
			outcome.Snapshot.Cursor, outcome.Snapshot.Total)
	}
	fmt.Fprintf(w, "✅ Pronto! %d mensagens processadas, %d ignoradas. CSV: %s\n",
		outcome.Stats.Processed, outcome.Stats.Ignored, cfg.Output)

	items, remaining := pipeline.Preview(p.Processed())
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for _, item := range items {
		fmt.Fprintf(w, "%s (%s)\n  %s\n", item.URL, item.Contact, item.Excerpt)
	}
	if line := pipeline.FormatRemaining(remaining); line != "" {
		fmt.Fprintln(w, line)
	}
}

// logPauseToggle は一時停止/再開の切り替えをログに記録します。
func logPauseToggle(logger *zap.Logger, p *batch.Processor) {
	snapshot := p.Snapshot()
	logger.Info("バッチの状態を切り替えました",
		zap.String("run_id", snapshot.RunID),
		zap.Stringer("status", snapshot.Status),
		zap.Int("cursor", snapshot.Cursor),
		zap.Int("total", snapshot.Total),
	)
	if clibase.Flags.Verbose {
		log.Printf("状態: %s (%d/%d)", snapshot.Status, snapshot.Cursor, snapshot.Total)
	}
}
