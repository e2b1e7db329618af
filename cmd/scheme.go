package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shouni/go-cold-outreach/pkg/identifier"
)

// ensureScheme は、URLのスキームが存在しない場合に https:// を補完し、http/https 以外を拒否します。
func ensureScheme(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if !identifier.IsValidURL(trimmed) {
		return "", fmt.Errorf("URLとして不正です: %q", rawURL)
	}

	withScheme := identifier.WithScheme(trimmed)
	parsedURL, err := url.Parse(withScheme)
	if err != nil {
		return "", fmt.Errorf("URLのパースエラー: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("無効なURLスキームです。httpまたはhttpsを指定してください: %s", rawURL)
	}
	return withScheme, nil
}
