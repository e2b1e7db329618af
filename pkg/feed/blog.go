package feed

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// feedLinkSelector は、ページ内で宣言された RSS/Atom フィードへのリンクです。
const feedLinkSelector = `link[rel="alternate"][type="application/rss+xml"], link[rel="alternate"][type="application/atom+xml"]`

// maxRecentPosts は BlogInfo に保持する最新記事リンクの上限です。
const maxRecentPosts = 3

// BlogInfo は、フィードから判定したブログの情報です。
type BlogInfo struct {
	FeedURL     string
	Title       string
	PostCount   int
	RecentPosts []string
}

// Active は、記事が1件以上あるフィードを持っているかを返します。
func (b BlogInfo) Active() bool {
	return b.FeedURL != "" && b.PostCount > 0
}

// DiscoverFeedURLs は、ページの <link rel="alternate"> からフィードのURLを宣言順に返します。
// 相対パスはページURLを基準に解決し、重複は取り除きます。
func DiscoverFeedURLs(doc *goquery.Document, base *url.URL) []string {
	var urls []string
	seen := make(map[string]bool)

	doc.Find(feedLinkSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := ref.String()
		if base != nil {
			resolved = base.ResolveReference(ref).String()
		}
		if !seen[resolved] {
			seen[resolved] = true
			urls = append(urls, resolved)
		}
	})
	return urls
}

// DetectBlog は、宣言されたフィードを順に取得し、最初にパースできたフィードからブログ情報を作ります。
// フィードが宣言されていない、またはどれも取得できない場合はゼロ値を返します。
// フィードの失敗はページ全体の解析を失敗させません。
func (p *Parser) DetectBlog(ctx context.Context, doc *goquery.Document, base *url.URL) BlogInfo {
	for _, feedURL := range DiscoverFeedURLs(doc, base) {
		if ctx.Err() != nil {
			return BlogInfo{}
		}

		parsed, err := p.FetchAndParse(ctx, feedURL)
		if err != nil {
			continue
		}
		return newBlogInfo(feedURL, parsed)
	}
	return BlogInfo{}
}

func newBlogInfo(feedURL string, parsed *gofeed.Feed) BlogInfo {
	links := GetAllLinks(NewFeedAdapter(parsed))
	if len(links) > maxRecentPosts {
		links = links[:maxRecentPosts]
	}

	info := BlogInfo{FeedURL: feedURL, RecentPosts: links}
	if parsed != nil {
		info.Title = strings.TrimSpace(parsed.Title)
		info.PostCount = len(parsed.Items)
	}
	return info
}

// ----------------------------------------------------------------------
// リンク抽出のためのインターフェースとアダプター
// ----------------------------------------------------------------------

// LinkSource は、リンクのリストを提供できる任意の型を表します。
type LinkSource interface {
	GetLinks() []string
}

// FeedAdapter は gofeed.Feed を LinkSource に適合させるためのアダプターです。
type FeedAdapter struct {
	*gofeed.Feed
}

// NewFeedAdapter は gofeed.Feed から新しいアダプターを作成します。
func NewFeedAdapter(feed *gofeed.Feed) *FeedAdapter {
	return &FeedAdapter{Feed: feed}
}

// GetLinks は、空でない記事リンクをフィード内の順序で返します。
func (a *FeedAdapter) GetLinks() []string {
	if a.Feed == nil || len(a.Items) == 0 {
		return []string{}
	}

	urls := make([]string, 0, len(a.Items))
	for _, item := range a.Items {
		if item != nil && item.Link != "" {
			urls = append(urls, item.Link)
		}
	}
	return urls
}

// GetAllLinks は LinkSource からリンクを抽出します。nil の場合は空のスライスを返します。
func GetAllLinks(source LinkSource) []string {
	if source == nil {
		return []string{}
	}
	return source.GetLinks()
}
