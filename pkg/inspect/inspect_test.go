package inspect_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-cold-outreach/pkg/analyzer"
	"github.com/shouni/go-cold-outreach/pkg/inspect"
	"github.com/shouni/go-cold-outreach/pkg/types"
)

// ======================================================================
// モック (Mock) の定義
// ======================================================================

// MockFetcher は URL ごとに応答を返す inspect.Fetcher の実装です。
type MockFetcher struct {
	pages     map[string]string
	fetchErr  error
	requested []string
}

func (m *MockFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.requested = append(m.requested, url)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	body, ok := m.pages[url]
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return []byte(body), nil
}

const richPage = `<html><head>
<title>Loja Praia Azul - Moda Praia</title>
<meta name="description" content="Biquínis, saídas de praia e acessórios com entrega para todo o Brasil desde 2015.">
<meta name="keywords" content="biquini, moda praia">
<meta property="og:image" content="/img/capa.jpg">
<link rel="alternate" type="application/rss+xml" href="/feed">
</head><body>
<a href="https://www.instagram.com/lojapraiaazul">Instagram</a>
<a href="https://instagram.com/outra">Outra</a>
<a href="https://instagram.com.evil.io/fake">Fake</a>
<a href="https://m.facebook.com/lojapraiaazul">Facebook</a>
<a href="https://www.tiktok.com/@lojapraiaazul">TikTok</a>
<a href="/contato">Contato</a>
</body></html>`

const feedXML = `<?xml version="1.0"?><rss version="2.0"><channel><title>Blog</title>
<item><title>1</title><link>https://lojapraiaazul.com.br/blog/1</link></item>
</channel></rss>`

// ======================================================================
// テスト関数
// ======================================================================

func TestNewInspector(t *testing.T) {
	i, err := inspect.NewInspector(nil)
	assert.Nil(t, i)
	assert.ErrorContains(t, err, "Fetcher cannot be nil")

	a, err := inspect.NewAnalyzer(nil)
	assert.Nil(t, a)
	assert.ErrorContains(t, err, "Inspector cannot be nil")
}

func TestInspect_RichPage(t *testing.T) {
	fetcher := &MockFetcher{pages: map[string]string{
		"https://lojapraiaazul.com.br":      richPage,
		"https://lojapraiaazul.com.br/feed": feedXML,
	}}
	inspector, err := inspect.NewInspector(fetcher, inspect.WithFeedDetection(true))
	require.NoError(t, err)

	profile, err := inspector.Inspect(context.Background(), "lojapraiaazul.com.br")
	require.NoError(t, err)

	// スキームのない入力は https:// を補完して取得する
	assert.Equal(t, []string{"https://lojapraiaazul.com.br", "https://lojapraiaazul.com.br/feed"}, fetcher.requested)

	assert.Equal(t, "lojapraiaazul.com.br", profile.URL)
	assert.Equal(t, "Loja Praia Azul - Moda Praia", profile.StoreName)
	assert.Equal(t, "Loja Praia Azul - Moda Praia", profile.Title)
	assert.Equal(t, inspect.ContactPerson, profile.ContactPerson)
	assert.Equal(t, "biquini, moda praia", profile.Keywords)
	assert.Equal(t, "https://lojapraiaazul.com.br/img/capa.jpg", profile.OGImage)

	// SNSごとに最初のリンク。登録可能ドメインが異なるホストは一致しない
	assert.Equal(t, "https://www.instagram.com/lojapraiaazul", profile.InstagramLink)
	assert.Equal(t, "https://m.facebook.com/lojapraiaazul", profile.FacebookLink)
	assert.Equal(t, "https://www.tiktok.com/@lojapraiaazul", profile.TikTokLink)
	assert.Empty(t, profile.TwitterLink)
	assert.Empty(t, profile.LinkedInLink)
	assert.Empty(t, profile.YouTubeLink)

	assert.Equal(t, "5000-10000", profile.EstimatedTraffic)
	assert.Equal(t, "B+", profile.SEOScore)
	assert.Equal(t, "Sim", profile.HasBlog, "記事のあるフィードがあればブログありと判定します")

	assert.True(t, strings.HasPrefix(profile.Conquista, "Presença ativa no Instagram.. Presença no Facebook.. Presença no TikTok."))
	assert.Contains(t, profile.Conquista, "Possui um blog ativo.")
	assert.NotContains(t, profile.Oportunidade, "criação de uma presença no Instagram")

	// フィードから取得したブログ情報
	assert.Equal(t, "https://lojapraiaazul.com.br/feed", profile.BlogFeed)
	assert.Equal(t, "Blog", profile.BlogTitle)
	assert.Equal(t, 1, profile.BlogPostCount)
	assert.Equal(t, []string{"https://lojapraiaazul.com.br/blog/1"}, profile.RecentPosts)

	assert.True(t, strings.HasPrefix(profile.Message, "\nOlá, Time de Marketing,\n\n"))
	assert.Contains(t, profile.Message, "Nós da DataFashion Marketing notamos o trabalho de vocês em Loja Praia Azul - Moda Praia. Identificamos as seguintes conquistas: "+profile.Conquista+"\n")
	assert.Contains(t, profile.Message, "E vimos que há uma grande oportunidade para: "+profile.Oportunidade+" Podemos ajudar a destravar esse potencial.")
}

func TestInspect_BarePage(t *testing.T) {
	fetcher := &MockFetcher{pages: map[string]string{
		"https://minhaloja.com": `<html><head><title>Loja</title></head><body><p>Olá</p></body></html>`,
	}}
	inspector, err := inspect.NewInspector(fetcher)
	require.NoError(t, err)

	profile, err := inspector.Inspect(context.Background(), "https://minhaloja.com")
	require.NoError(t, err)

	assert.Equal(t, "Loja", profile.StoreName)
	assert.Equal(t, "Não", profile.HasBlog)
	assert.Empty(t, profile.BlogFeed)
	assert.Nil(t, profile.RecentPosts)
	// conquista が空でも "." になる
	assert.Equal(t, ".", profile.Conquista)
	assert.Equal(t, strings.Join([]string{
		"Grande potencial de crescimento com a criação de uma presença no Instagram.",
		"Considerar a criação de uma página no Facebook para alcançar um público mais amplo.",
		"Explorar o TikTok para alcançar um público jovem e engajado.",
		"Otimizar o título do site para melhorar o SEO e a atratividade nos resultados de busca.",
		"Melhorar a meta descrição para aumentar a taxa de cliques nos motores de busca.",
		"Adicionar palavras-chave relevantes para melhorar a indexação e o SEO.",
		"Configurar uma imagem Open Graph para melhorar a apresentação em redes sociais.",
		"Considerar a criação de um blog para melhorar o SEO, gerar conteúdo e autoridade.",
	}, ". ")+".", profile.Oportunidade)
}

func TestInspect_StoreNameFallsBackToHost(t *testing.T) {
	fetcher := &MockFetcher{pages: map[string]string{
		"https://blog.minhaloja.com/": `<html><head></head><body></body></html>`,
	}}
	inspector, err := inspect.NewInspector(fetcher)
	require.NoError(t, err)

	profile, err := inspector.Inspect(context.Background(), "https://blog.minhaloja.com/")
	require.NoError(t, err)

	assert.Equal(t, "blog.minhaloja.com", profile.StoreName)
	assert.Equal(t, "Sim", profile.HasBlog, "URLに blog を含む場合はブログありと判定します")
}

func TestInspect_Errors(t *testing.T) {
	t.Run("fetch_error", func(t *testing.T) {
		inspector, err := inspect.NewInspector(&MockFetcher{fetchErr: errors.New("network timeout")})
		require.NoError(t, err)

		_, err = inspector.Inspect(context.Background(), "https://loja.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ページの取得に失敗しました")
		assert.Contains(t, err.Error(), "network timeout")
	})
	t.Run("invalid_url", func(t *testing.T) {
		inspector, err := inspect.NewInspector(&MockFetcher{})
		require.NoError(t, err)

		_, err = inspector.Inspect(context.Background(), "https://")
		assert.ErrorContains(t, err, "無効なURLです")
	})
}

func TestAnalyzer(t *testing.T) {
	fetcher := &MockFetcher{pages: map[string]string{"https://loja.com": richPage}}
	inspector, err := inspect.NewInspector(fetcher)
	require.NoError(t, err)
	a, err := inspect.NewAnalyzer(inspector)
	require.NoError(t, err)

	var _ analyzer.Analyzer = a

	res := a.Analyze(context.Background(), analyzer.Target{URL: "https://loja.com", Identifier: "loja"})
	analysis, ok := res.Analysis()
	require.True(t, ok)
	assert.Equal(t, inspect.ContactPerson, analysis.ContactLabel)
	assert.NotEmpty(t, analysis.StrengthNote)
	assert.NotEmpty(t, analysis.OpportunityNote)

	res = a.Analyze(context.Background(), analyzer.Target{URL: "https://missing.com"})
	assert.False(t, res.IsOk())
	assert.ErrorContains(t, res.Err(), "404 Not Found")
}

func TestAssess_AllSignals(t *testing.T) {
	p := &types.SiteProfile{
		Title:         "Uma loja bem descrita",
		Description:   strings.Repeat("d", 51),
		Keywords:      "k",
		OGImage:       "https://loja.com/og.png",
		InstagramLink: "i", FacebookLink: "f", TwitterLink: "t",
		LinkedInLink: "l", YouTubeLink: "y", TikTokLink: "tt",
		HasBlog: "Sim",
	}

	conquista, oportunidade := inspect.Assess(p)
	assert.Equal(t, 11, strings.Count(conquista, ". ")+1)
	assert.True(t, strings.HasSuffix(conquista, "Possui um blog ativo.."))
	assert.Contains(t, oportunidade, "Explorar mais Reels e Stories")
	assert.NotContains(t, oportunidade, "Otimizar o título")
}

func TestComposeOutreach(t *testing.T) {
	msg := inspect.ComposeOutreach("Time de Marketing", "Loja", "Presença no TikTok.", "Explorar o Instagram.")

	assert.Equal(t, strings.Join([]string{
		"",
		"Olá, Time de Marketing,",
		"",
		"Nós da DataFashion Marketing notamos o trabalho de vocês em Loja. Identificamos as seguintes conquistas: Presença no TikTok.",
		"",
		"E vimos que há uma grande oportunidade para: Explorar o Instagram. Podemos ajudar a destravar esse potencial.",
		"",
		"Que tal conversarmos por 15 minutos para mostrar como podemos impulsionar suas vendas online?",
		"",
		"Agende aqui: calendly.com/datafashion/15min",
		"",
		"Atenciosamente,",
		"Equipe DataFashion Marketing",
		"",
	}, "\n"), msg)
}
