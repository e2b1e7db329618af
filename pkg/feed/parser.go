package feed

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"
)

// Fetcher は、URLから生のバイト配列を取得する機能のインターフェースです。
// *httpkit.Client はこのインターフェースを満たしているため、そのまま渡せます。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Parser は RSS/Atom フィードを取得してパースします。
type Parser struct {
	client Fetcher
}

// NewParser は新しい Parser を生成します。
func NewParser(client Fetcher) (*Parser, error) {
	if client == nil {
		return nil, fmt.Errorf("feed.NewParser: Fetcher cannot be nil")
	}
	return &Parser{client: client}, nil
}

// FetchAndParse は指定されたURLからフィードを取得し、パースします。
func (p *Parser) FetchAndParse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	body, err := p.client.FetchBytes(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得失敗 (URL: %s): %w", feedURL, err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("RSSフィードのパース失敗 (URL: %s): %w", feedURL, err)
	}
	return feed, nil
}
