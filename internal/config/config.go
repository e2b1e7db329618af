package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// AnalyzerMode は、エントリの解析に使うアナライザーの種類です。
type AnalyzerMode string

const (
	ModeRules  AnalyzerMode = "rules"  // ローカルのルールベース
	ModeRemote AnalyzerMode = "remote" // /analyze への委譲
	ModePage   AnalyzerMode = "page"   // ページを取得してローカルで解析
)

// ParseAnalyzerMode は文字列を AnalyzerMode に変換します。大文字小文字は区別しません。
func ParseAnalyzerMode(s string) (AnalyzerMode, error) {
	mode := AnalyzerMode(strings.ToLower(strings.TrimSpace(s)))
	switch mode {
	case ModeRules, ModeRemote, ModePage:
		return mode, nil
	default:
		return "", fmt.Errorf("不明なアナライザーです: %q (rules, remote, page のいずれかを指定してください)", s)
	}
}

type Config struct {
	Analyzer        string `env:"OUTREACH_ANALYZER,default=rules"`
	AnalyzeURL      string `env:"OUTREACH_ANALYZE_URL,default=http://localhost:5000/analyze"`
	Output          string `env:"OUTREACH_OUTPUT,default=mensagens_prospeccao.csv"`
	PaceMillis      int    `env:"OUTREACH_PACE_MS,default=100"`
	EntryTimeoutSec int    `env:"OUTREACH_ENTRY_TIMEOUT_SEC,default=30"`
	FeedDetection   bool   `env:"OUTREACH_FEED_DETECTION,default=true"`
	LogLevel        string `env:"OUTREACH_LOG_LEVEL,default=info"`
	ReportPath      string `env:"OUTREACH_REPORT"`
	MetricsFile     string `env:"OUTREACH_METRICS_FILE"`
}

// Load は .env (存在する場合) を読み込んだ後、環境変数から設定を組み立てます。
// 既に設定されている環境変数は .env で上書きされません。
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は設定値の整合性を確認します。
func (c *Config) Validate() error {
	if _, err := ParseAnalyzerMode(c.Analyzer); err != nil {
		return err
	}
	if c.PaceMillis < 0 {
		return fmt.Errorf("OUTREACH_PACE_MS は0以上である必要があります: %d", c.PaceMillis)
	}
	if c.EntryTimeoutSec < 0 {
		return fmt.Errorf("OUTREACH_ENTRY_TIMEOUT_SEC は0以上である必要があります: %d", c.EntryTimeoutSec)
	}
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("OUTREACH_OUTPUT が空です")
	}
	return nil
}

// Mode は検証済みのアナライザー種別を返します。
func (c *Config) Mode() AnalyzerMode {
	mode, err := ParseAnalyzerMode(c.Analyzer)
	if err != nil {
		return ModeRules
	}
	return mode
}

// Pacing はエントリ間の待機時間を返します。
func (c *Config) Pacing() time.Duration {
	return time.Duration(c.PaceMillis) * time.Millisecond
}

// EntryTimeout は1エントリあたりのタイムアウトを返します。0 は無効を表します。
func (c *Config) EntryTimeout() time.Duration {
	return time.Duration(c.EntryTimeoutSec) * time.Second
}
