package inspect

import (
	"strings"
	"unicode/utf8"

	"github.com/shouni/go-cold-outreach/pkg/types"
)

const (
	minTitleLength       = 10
	minDescriptionLength = 50
)

// Assess は、SiteProfile のSNS・メタデータ・ブログの有無から
// 評価できる点 (conquista) と改善の余地 (oportunidade) の文章を組み立てます。
// それぞれ ". " で連結し、末尾に "." を付けます。
func Assess(p *types.SiteProfile) (conquista, oportunidade string) {
	var strengths, opportunities []string

	// 1. SNS
	if p.InstagramLink != "" {
		strengths = append(strengths, "Presença ativa no Instagram.")
		opportunities = append(opportunities, "Explorar mais Reels e Stories para aumentar o engajamento e alcance.")
	} else {
		opportunities = append(opportunities, "Grande potencial de crescimento com a criação de uma presença no Instagram.")
	}

	if p.FacebookLink != "" {
		strengths = append(strengths, "Presença no Facebook.")
		opportunities = append(opportunities, "Otimizar campanhas de Facebook Ads para segmentação de público.")
	} else {
		opportunities = append(opportunities, "Considerar a criação de uma página no Facebook para alcançar um público mais amplo.")
	}

	if p.TwitterLink != "" {
		strengths = append(strengths, "Presença no Twitter.")
		opportunities = append(opportunities, "Utilizar o Twitter para notícias rápidas, promoções e promoções em tempo real.")
	}

	if p.LinkedInLink != "" {
		strengths = append(strengths, "Presença no LinkedIn.")
		opportunities = append(opportunities, "Aproveitar o LinkedIn para networking B2B ou branding corporativo.")
	}

	if p.YouTubeLink != "" {
		strengths = append(strengths, "Presença no YouTube.")
		opportunities = append(opportunities, "Desenvolver conteúdo em vídeo (tutoriais, reviews) para SEO e engajamento.")
	}

	if p.TikTokLink != "" {
		strengths = append(strengths, "Presença no TikTok.")
		opportunities = append(opportunities, "Criar vídeos curtos e virais para atrair a geração Z.")
	} else {
		opportunities = append(opportunities, "Explorar o TikTok para alcançar um público jovem e engajado.")
	}

	// 2. メタデータ
	if utf8.RuneCountInString(p.Title) > minTitleLength {
		strengths = append(strengths, "Título do site claro e descritivo.")
	} else {
		opportunities = append(opportunities, "Otimizar o título do site para melhorar o SEO e a atratividade nos resultados de busca.")
	}

	if utf8.RuneCountInString(p.Description) > minDescriptionLength {
		strengths = append(strengths, "Meta descrição otimizada e informativa.")
	} else {
		opportunities = append(opportunities, "Melhorar a meta descrição para aumentar a taxa de cliques nos motores de busca.")
	}

	if p.Keywords != "" {
		strengths = append(strengths, "Palavras-chave relevantes configuradas.")
	} else {
		opportunities = append(opportunities, "Adicionar palavras-chave relevantes para melhorar a indexação e o SEO.")
	}

	if p.OGImage != "" {
		strengths = append(strengths, "Imagem Open Graph configurada para compartilhamento social.")
	} else {
		opportunities = append(opportunities, "Configurar uma imagem Open Graph para melhorar a apresentação em redes sociais.")
	}

	// 3. ブログ
	if p.HasBlog == hasBlogYes {
		strengths = append(strengths, "Possui um blog ativo.")
		opportunities = append(opportunities, "Publicar conteúdo regularmente no blog para atrair tráfego orgânico e educar o público.")
	} else {
		opportunities = append(opportunities, "Considerar a criação de um blog para melhorar o SEO, gerar conteúdo e autoridade.")
	}

	return joinNotes(strengths), joinNotes(opportunities)
}

func joinNotes(notes []string) string {
	return strings.Join(notes, ". ") + "."
}
