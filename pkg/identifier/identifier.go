package identifier

import (
	"net/url"
	"strings"
)

// ----------------------------------------------------------------------
// 定数定義
// ----------------------------------------------------------------------

// SocialDomains は、パスの先頭セグメントをハンドルとして扱うSNSドメインです。
var SocialDomains = []string{
	"instagram.com",
	"facebook.com",
	"tiktok.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"youtube.com",
}

const defaultScheme = "https://"

// ----------------------------------------------------------------------
// 識別子の抽出
// ----------------------------------------------------------------------

// Extract は、URL文字列から店舗の識別子 (ドメインラベルまたはSNSハンドル) を導出します。
// 導出できない場合は ok=false を返し、エラーやpanicを呼び出し元へ伝播させません。
func Extract(rawURL string) (id string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			id, ok = "", false
		}
	}()

	// 1. スキームと先頭の www. を除去
	rest := normalize(rawURL)
	if rest == "" {
		return "", false
	}

	// 2. ホスト部分とパス部分に分割
	host, path, _ := strings.Cut(rest, "/")

	// 3. SNSドメインの場合はパスの最初のセグメントをハンドルとする
	if isSocialHost(host) {
		return nonEmpty(firstSegment(path))
	}

	// 4. それ以外はホストの最初の "." より前 (ドメインラベル)
	label, _, _ := strings.Cut(host, ".")
	return nonEmpty(label)
}

// normalize はスキーム (http/https) と先頭の "www." を除去します。
func normalize(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "https://"):
		s = s[len("https://"):]
	case strings.HasPrefix(lower, "http://"):
		s = s[len("http://"):]
	}
	if strings.HasPrefix(strings.ToLower(s), "www.") {
		s = s[len("www."):]
	}
	return s
}

// isSocialHost は、ホストがSNSドメインそのもの、またはそのサブドメインであるかを判定します。
func isSocialHost(host string) bool {
	host = strings.ToLower(host)
	if i := strings.IndexAny(host, "?#"); i >= 0 {
		host = host[:i]
	}
	for _, domain := range SocialDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// firstSegment はパスの最初のセグメントを返します。クエリとフラグメントは除去します。
func firstSegment(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segment, _, _ := strings.Cut(path, "/")
	return segment
}

func nonEmpty(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	return s, true
}

// ----------------------------------------------------------------------
// URL バリデーション
// ----------------------------------------------------------------------

// IsValidURL は、文字列がURLとして構文的に妥当かどうかを判定します。
// スキームがない場合は https:// を補完してからパースします。到達可能性は確認しません。
func IsValidURL(s string) (valid bool) {
	defer func() {
		if r := recover(); r != nil {
			valid = false
		}
	}()

	if strings.TrimSpace(s) == "" {
		return false
	}

	parsed, err := url.Parse(WithScheme(s))
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// WithScheme は、スキームがない場合に https:// を補完した文字列を返します。
func WithScheme(s string) string {
	if hasScheme(s) {
		return s
	}
	return defaultScheme + s
}

// hasScheme は、文字列が "scheme://" で始まっているかを判定します (RFC 3986 のスキーム文字のみ)。
func hasScheme(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for j, c := range s[:i] {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case j > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
