package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shouni/go-cold-outreach/pkg/analyzer"
	"github.com/shouni/go-cold-outreach/pkg/retry"
	"github.com/shouni/go-cold-outreach/pkg/types"
)

const (
	// DefaultEndpoint は、委譲アナライザーの既定エンドポイントです。
	DefaultEndpoint = "http://localhost:5000/analyze"
	// DefaultTimeout は、1リクエストあたりの既定タイムアウトです。
	DefaultTimeout = 20 * time.Second

	maxErrorBodyLen = 512
)

type analyzeRequest struct {
	URL string `json:"url"`
}

// ----------------------------------------------------------------------
// クライアント
// ----------------------------------------------------------------------

// Client は、/analyze エンドポイントに店舗URLを送信し SiteProfile を受け取ります。
// 応答の解釈以外の分析ロジックは持ちません。
type Client struct {
	http        *resty.Client
	endpoint    string
	retryConfig retry.Config
}

// Option は Client の設定を行うための関数型です。
type Option func(*Client)

// WithRetryConfig はリトライ設定を上書きします。
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) {
		c.retryConfig = cfg
	}
}

// WithMaxRetries は最大リトライ回数を設定します。
func WithMaxRetries(max uint64) Option {
	return func(c *Client) {
		c.retryConfig.MaxRetries = max
	}
}

// WithTimeout は1リクエストあたりのタイムアウトを設定します。
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.SetTimeout(timeout)
		}
	}
}

// New は、新しい Client を生成します。
func New(endpoint string, options ...Option) (*Client, error) {
	client := resty.New()
	client.SetTimeout(DefaultTimeout)
	return NewWithClient(endpoint, client, options...)
}

// NewWithClient は、既存の resty.Client を使って Client を生成します。
// リトライは resty ではなく retry パッケージが担当します。
func NewWithClient(endpoint string, client *resty.Client, options ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("remote.New: エンドポイントが指定されていません")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("remote.New: 無効なエンドポイントです: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("remote.New: resty client cannot be nil")
	}
	client.SetRetryCount(0)

	c := &Client{
		http:        client,
		endpoint:    trimmed,
		retryConfig: retry.DefaultConfig(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Endpoint は送信先のURLを返します。
func (c *Client) Endpoint() string { return c.endpoint }

// Analyze は店舗URLを /analyze に送信し、検証済みの SiteProfile を返します。
// 通信エラー、2xx 以外のステータス、不正なペイロードはすべてエラーになります。
func (c *Client) Analyze(ctx context.Context, storeURL string) (*types.SiteProfile, error) {
	var profile *types.SiteProfile

	op := func() error {
		var err error
		profile, err = c.doAnalyze(ctx, storeURL)
		return err
	}

	err := retry.Do(ctx, c.retryConfig, fmt.Sprintf("URL(%s)の解析リクエスト", storeURL), op, IsTransient)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// doAnalyze は1回分のPOSTリクエストと応答の検証を行います。
func (c *Client) doAnalyze(ctx context.Context, storeURL string) (*types.SiteProfile, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(analyzeRequest{URL: storeURL}).
		Post(c.endpoint)
	if err != nil {
		return nil, &Error{
			Message:   "HTTPリクエストに失敗しました (ネットワーク/接続エラー)",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, &Error{
			StatusCode: status,
			Message:    truncate(strings.TrimSpace(resp.String()), maxErrorBodyLen),
			Transient:  isTransientStatus(status),
		}
	}

	return DecodeProfile(resp.Body())
}

// DecodeProfile は /analyze の応答ボディを SiteProfile に変換し、必須フィールドを検証します。
func DecodeProfile(body []byte) (*types.SiteProfile, error) {
	var profile types.SiteProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, &Error{Message: "応答JSONの解析に失敗しました", Cause: err}
	}

	var missing []string
	if strings.TrimSpace(profile.ContactPerson) == "" {
		missing = append(missing, "contact_person")
	}
	if strings.TrimSpace(profile.Conquista) == "" {
		missing = append(missing, "conquista")
	}
	if strings.TrimSpace(profile.Oportunidade) == "" {
		missing = append(missing, "oportunidade")
	}
	if len(missing) > 0 {
		return nil, &Error{Message: "応答に必須フィールドがありません: " + strings.Join(missing, ", ")}
	}
	return &profile, nil
}

func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || (status >= http.StatusInternalServerError && status <= 599)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ----------------------------------------------------------------------
// Analyzer アダプター
// ----------------------------------------------------------------------

// Analyzer は Client を analyzer.Analyzer として扱うアダプターです。
type Analyzer struct {
	client *Client
}

// NewAnalyzer は Analyzer を生成します。
func NewAnalyzer(client *Client) (*Analyzer, error) {
	if client == nil {
		return nil, fmt.Errorf("remote.NewAnalyzer: Client cannot be nil")
	}
	return &Analyzer{client: client}, nil
}

// Analyze は analyzer.Analyzer インターフェースを満たします。
func (a *Analyzer) Analyze(ctx context.Context, target analyzer.Target) analyzer.Result {
	profile, err := a.client.Analyze(ctx, target.URL)
	if err != nil {
		return analyzer.Fail(err)
	}
	return analyzer.Ok(analyzer.FromProfile(profile))
}
