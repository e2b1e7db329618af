package inspect

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"

	"github.com/shouni/go-cold-outreach/pkg/analyzer"
	"github.com/shouni/go-cold-outreach/pkg/feed"
	"github.com/shouni/go-cold-outreach/pkg/identifier"
	"github.com/shouni/go-cold-outreach/pkg/types"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Fetcher は、HTMLドキュメントの生バイト配列を取得する機能のインターフェースです。
// *httpkit.Client はこのインターフェースを満たします。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// ----------------------------------------------------------------------
// 定数定義
// ----------------------------------------------------------------------

const (
	// ContactPerson は、ページから担当者を特定できないため常に使う宛名です。
	ContactPerson = "Time de Marketing"

	// 外部APIを使わない簡易的な可視性データ
	simulatedTraffic  = "5000-10000"
	simulatedSEOScore = "B+"

	hasBlogYes = "Sim"
	hasBlogNo  = "Não"
)

// Inspector は店舗ページを取得し、/analyze と同じ形の SiteProfile をローカルで組み立てます。
type Inspector struct {
	fetcher Fetcher
	feeds   *feed.Parser
}

// Option は Inspector の設定を行うための関数型です。
type Option func(*Inspector)

// WithFeedDetection は、ページが宣言する RSS/Atom フィードを取得してブログの有無を判定します。
func WithFeedDetection(enabled bool) Option {
	return func(i *Inspector) {
		if !enabled {
			i.feeds = nil
			return
		}
		if p, err := feed.NewParser(i.fetcher); err == nil {
			i.feeds = p
		}
	}
}

// NewInspector は、新しい Inspector を生成します。
func NewInspector(fetcher Fetcher, options ...Option) (*Inspector, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("inspect.NewInspector: Fetcher cannot be nil")
	}
	i := &Inspector{fetcher: fetcher}
	for _, opt := range options {
		opt(i)
	}
	return i, nil
}

// Inspect は指定されたURLのページを取得し、メタデータ・SNSリンク・ブログの有無から SiteProfile を作成します。
// ページの取得やHTML解析に失敗した場合はエラーを返します。
func (i *Inspector) Inspect(ctx context.Context, rawURL string) (*types.SiteProfile, error) {
	// 1. URLの正規化
	pageURL := identifier.WithScheme(strings.TrimSpace(rawURL))
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("無効なURLです: %s", rawURL)
	}

	// 2. ページの取得 (通信の責務)
	htmlBytes, err := i.fetcher.FetchBytes(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("ページの取得に失敗しました (URL: %s): %w", pageURL, err)
	}

	// 3. goquery.Document に変換 (解析の責務)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	meta := extractMetadata(doc, base)
	social := extractSocialLinks(doc, base)

	// 4. ブログの判定 (URLに "blog" を含むか、記事のあるフィードを持つ)
	hasBlog := strings.Contains(strings.ToLower(pageURL), "blog")
	var blog feed.BlogInfo
	if i.feeds != nil {
		blog = i.feeds.DetectBlog(ctx, doc, base)
		hasBlog = hasBlog || blog.Active()
	}

	// 5. プロフィールの組み立て
	profile := &types.SiteProfile{
		URL:              rawURL,
		StoreName:        meta.title,
		ContactPerson:    ContactPerson,
		Title:            meta.title,
		Description:      meta.description,
		Keywords:         meta.keywords,
		OGImage:          meta.ogImage,
		InstagramLink:    social[Instagram],
		FacebookLink:     social[Facebook],
		TwitterLink:      social[Twitter],
		LinkedInLink:     social[LinkedIn],
		YouTubeLink:      social[YouTube],
		TikTokLink:       social[TikTok],
		EstimatedTraffic: simulatedTraffic,
		SEOScore:         simulatedSEOScore,
		HasBlog:          hasBlogNo,
	}
	if profile.StoreName == "" {
		profile.StoreName = base.Host
	}
	if hasBlog {
		profile.HasBlog = hasBlogYes
	}
	if blog.Active() {
		profile.BlogFeed = blog.FeedURL
		profile.BlogTitle = blog.Title
		profile.BlogPostCount = blog.PostCount
		profile.RecentPosts = blog.RecentPosts
	}

	profile.Conquista, profile.Oportunidade = Assess(profile)
	profile.Message = ComposeOutreach(profile.ContactPerson, profile.StoreName, profile.Conquista, profile.Oportunidade)

	return profile, nil
}

// ----------------------------------------------------------------------
// メタデータ抽出
// ----------------------------------------------------------------------

type metadata struct {
	title       string
	description string
	keywords    string
	ogImage     string
}

// extractMetadata は <title> と meta タグ (description, keywords, og:image) を取得します。
// 同じ meta が複数ある場合は後に出現したものを採用します。
func extractMetadata(doc *goquery.Document, base *url.URL) metadata {
	var m metadata
	m.title = textUtils.NormalizeText(doc.Find("title").First().Text())

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content := strings.TrimSpace(s.AttrOr("content", ""))
		name, _ := s.Attr("name")
		property, _ := s.Attr("property")

		switch {
		case name == "description":
			m.description = textUtils.NormalizeText(content)
		case name == "keywords":
			m.keywords = content
		case property == "og:image":
			m.ogImage = resolve(base, content)
		}
	})
	return m
}

// resolve は相対URLをページURLを基準に解決します。解決できない場合は元の値を返します。
func resolve(base *url.URL, ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil || base == nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}

// ----------------------------------------------------------------------
// Analyzer アダプター
// ----------------------------------------------------------------------

// Analyzer は Inspector を analyzer.Analyzer として扱うアダプターです。
type Analyzer struct {
	inspector *Inspector
}

// NewAnalyzer は Analyzer を生成します。
func NewAnalyzer(inspector *Inspector) (*Analyzer, error) {
	if inspector == nil {
		return nil, fmt.Errorf("inspect.NewAnalyzer: Inspector cannot be nil")
	}
	return &Analyzer{inspector: inspector}, nil
}

// Analyze は analyzer.Analyzer インターフェースを満たします。
func (a *Analyzer) Analyze(ctx context.Context, target analyzer.Target) analyzer.Result {
	profile, err := a.inspector.Inspect(ctx, target.URL)
	if err != nil {
		return analyzer.Fail(err)
	}
	return analyzer.Ok(analyzer.FromProfile(profile))
}
