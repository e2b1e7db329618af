package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shouni/go-cold-outreach/internal/config"
	"github.com/shouni/go-cold-outreach/pkg/inspect"
	"github.com/shouni/go-cold-outreach/pkg/remote"
	"github.com/shouni/go-cold-outreach/pkg/types"
)

var inspectFlags struct {
	remote   bool
	endpoint string
	noFeed   bool
}

// runInspection は、1件のURLを解析して SiteProfile を返します。
func runInspection(ctx context.Context, targetURL string) (*types.SiteProfile, error) {
	if inspectFlags.remote {
		endpoint := inspectFlags.endpoint
		if endpoint == "" {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			endpoint = cfg.AnalyzeURL
		}
		client, err := remote.New(endpoint,
			remote.WithTimeout(httpTimeout()),
			remote.WithMaxRetries(uint64(Flags.MaxRetries)),
		)
		if err != nil {
			return nil, fmt.Errorf("委譲アナライザーの初期化エラー: %w", err)
		}
		return client.Analyze(ctx, targetURL)
	}

	inspector, err := inspect.NewInspector(GetGlobalFetcher(), inspect.WithFeedDetection(!inspectFlags.noFeed))
	if err != nil {
		return nil, fmt.Errorf("Inspectorの初期化エラー: %w", err)
	}
	return inspector.Inspect(ctx, targetURL)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [URL]",
	Short: "店舗ページを解析し、プロフィールをJSONで出力します",
	Long: `指定されたURL (省略時は標準入力の1行目) のページを取得し、SNSリンク、メタ情報、評価ポイントを含むプロフィールをJSONで出力します。
--remote を指定すると、ローカルで解析せず /analyze エンドポイントに委譲します。`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 処理対象URLの決定 (引数優先)
		var rawURL string
		if len(args) > 0 {
			rawURL = args[0]
		} else {
			log.Println("URLが指定されていないため、標準入力からURLを読み込みます...")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("標準入力の読み取りエラー: %w", err)
				}
				return fmt.Errorf("URLが入力されていません")
			}
			rawURL = strings.TrimSpace(scanner.Text())
		}

		// 2. URLのバリデーションとスキーム補完
		targetURL, err := ensureScheme(rawURL)
		if err != nil {
			return err
		}

		// 3. 解析の実行
		ctx, cancel := context.WithTimeout(cmd.Context(), overallTimeout())
		defer cancel()

		profile, err := runInspection(ctx, targetURL)
		if err != nil {
			return fmt.Errorf("解析エラー (URL: %s): %w", targetURL, err)
		}

		// 4. 結果の出力
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(profile)
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectFlags.remote, "remote", false, "/analyze エンドポイントに解析を委譲します")
	inspectCmd.Flags().StringVar(&inspectFlags.endpoint, "endpoint", "", "委譲先エンドポイント (省略時は OUTREACH_ANALYZE_URL)")
	inspectCmd.Flags().BoolVar(&inspectFlags.noFeed, "no-feed", false, "RSS/Atomフィードによるブログ検出を無効にします")
}
