package inspect

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"
)

// Network は SNS の種類です。
type Network string

const (
	Instagram Network = "instagram"
	Facebook  Network = "facebook"
	Twitter   Network = "twitter"
	LinkedIn  Network = "linkedin"
	YouTube   Network = "youtube"
	TikTok    Network = "tiktok"
)

// networkDomains は登録可能ドメイン (eTLD+1) から SNS への対応表です。
var networkDomains = map[string]Network{
	"instagram.com": Instagram,
	"facebook.com":  Facebook,
	"fb.com":        Facebook,
	"twitter.com":   Twitter,
	"x.com":         Twitter,
	"linkedin.com":  LinkedIn,
	"youtube.com":   YouTube,
	"youtu.be":      YouTube,
	"tiktok.com":    TikTok,
}

// extractSocialLinks は <a href> を出現順に走査し、SNSごとに最初のリンクを返します。
// ホストの登録可能ドメインで判定するため、"instagram.com.evil.io" のようなURLは一致しません。
func extractSocialLinks(doc *goquery.Document, base *url.URL) map[Network]string {
	links := make(map[Network]string)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		network, ok := classifyLink(href, base)
		if !ok {
			return
		}
		if _, exists := links[network]; !exists {
			links[network] = href
		}
	})
	return links
}

// classifyLink は、リンク先のホストがどの SNS に属するかを判定します。
func classifyLink(href string, base *url.URL) (Network, bool) {
	if href == "" {
		return "", false
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", false
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", false
	}
	network, ok := networkDomains[domain]
	return network, ok
}
