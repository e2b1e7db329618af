package cmd

import (
	"log"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/spf13/cobra"

	"github.com/shouni/go-cold-outreach/pkg/inspect"
)

// --- グローバル定数 ---

const (
	appName           = "cold-outreach"
	defaultTimeoutSec = 10 // 秒
	defaultMaxRetries = 2  // デフォルトのリトライ回数

	// DefaultOverallTimeout は単発コマンド (inspect) の全体タイムアウトです。
	DefaultOverallTimeout = 20 * time.Second
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	TimeoutSec int // --timeout タイムアウト
	MaxRetries int // --max-retries リトライ回数
}

var Flags AppFlags                // アプリケーション固有フラグにアクセスするためのグローバル変数
var globalFetcher inspect.Fetcher // ページ取得用の共有フェッチャー

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().IntVar(
		&Flags.TimeoutSec,
		"timeout",
		defaultTimeoutSec,
		"HTTPリクエストのタイムアウト時間（秒）",
	)
	rootCmd.PersistentFlags().IntVar(
		&Flags.MaxRetries,
		"max-retries",
		defaultMaxRetries,
		"HTTPリクエストのリトライ最大回数",
	)
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	timeout := httpTimeout()

	if clibase.Flags.Verbose {
		log.Printf("HTTPクライアントのタイムアウトを設定しました (Timeout: %s)。", timeout)
		log.Printf("HTTPクライアントのリトライ回数を設定しました (MaxRetries: %d)。", Flags.MaxRetries)
	}

	globalFetcher = httpkit.New(
		timeout,
		httpkit.WithMaxRetries(uint64(Flags.MaxRetries)),
	)
	return nil
}

// GetGlobalFetcher は、初期化されたフェッチャーを返します。
func GetGlobalFetcher() inspect.Fetcher {
	return globalFetcher
}

func httpTimeout() time.Duration {
	return time.Duration(Flags.TimeoutSec) * time.Second
}

// overallTimeout は、クライアントタイムアウトの2倍を単発処理全体のタイムアウトとします。
func overallTimeout() time.Duration {
	if Flags.TimeoutSec <= 0 {
		return DefaultOverallTimeout
	}
	return httpTimeout() * 2
}

// --- エントリポイント ---

// Execute は、clibase を使ってルートコマンドとサブコマンドを実行します。
func Execute() {
	clibase.Execute(
		appName,
		addAppPersistentFlags,
		initAppPreRunE,
		generateCmd,
		inspectCmd,
		identifyCmd,
	)
}
