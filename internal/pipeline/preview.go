package pipeline

import (
	"fmt"
	"strings"

	"github.com/shouni/go-cold-outreach/pkg/types"
)

const (
	// PreviewCount はプレビューに表示するメッセージ数です。
	PreviewCount = 3
	// PreviewLength はプレビューで表示するメッセージの最大文字数です。
	PreviewLength = 200
)

// PreviewItem はプレビュー1件分です。
type PreviewItem struct {
	URL     string
	Contact string
	Excerpt string
}

// Preview は先頭 PreviewCount 件のメッセージ抜粋と、表示しきれなかった件数を返します。
func Preview(records []types.ProcessedRecord) (items []PreviewItem, remaining int) {
	n := len(records)
	if n > PreviewCount {
		remaining = n - PreviewCount
		n = PreviewCount
	}

	items = make([]PreviewItem, 0, n)
	for _, r := range records[:n] {
		items = append(items, PreviewItem{
			URL:     r.SourceURL,
			Contact: r.ContactLabel,
			Excerpt: excerpt(r.Message, PreviewLength) + "...",
		})
	}
	return items, remaining
}

// FormatRemaining は、プレビューに表示しきれなかった件数の表示文言です。
func FormatRemaining(remaining int) string {
	if remaining <= 0 {
		return ""
	}
	return fmt.Sprintf("+ %d mensagens no CSV", remaining)
}

// excerpt は改行を空白に置き換え、先頭から最大 limit 文字 (rune) を返します。
func excerpt(s string, limit int) string {
	flat := strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", " ")
	runes := []rune(flat)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes)
}
