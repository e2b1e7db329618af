package analyzer

import (
	"context"
	"strings"
)

// ----------------------------------------------------------------------
// ルールベースのアナライザー (ローカル)
// ----------------------------------------------------------------------

// 判定キーワードと固定文言
const (
	keywordVest  = "vest"
	keywordPraia = "praia"
	keywordBeach = "beach"

	contactVest  = "Mariana"
	contactBeach = "Carolina"

	// GenericContactPrefix は、どのルールにも一致しない場合の宛名の接頭辞です。
	GenericContactPrefix = "Team of "
)

var (
	vestAnalysis = Analysis{
		ContactLabel:    contactVest,
		StrengthNote:    "Coleção nova com storytelling emocional e ótimo feedback de clientes",
		OpportunityNote: "Reels com menos de 500 visualizações — potencial não explorado",
	}
	beachAnalysis = Analysis{
		ContactLabel:    contactBeach,
		StrengthNote:    "Fotos em cenários tropicais com alto engajamento visual",
		OpportunityNote: "Ausência de TikTok e poucas respostas a DMs",
	}
)

const (
	genericStrength    = "Lançamento recente com bom engajamento nos comentários"
	genericOpportunity = "Baixo uso de Reels e ausência de link otimizado na bio"
)

// Rules は識別子の部分一致で宛名と文言を決定する、決定的なアナライザーです。
// 失敗することはありません。
type Rules struct{}

// NewRules は Rules を生成します。
func NewRules() *Rules {
	return &Rules{}
}

// Analyze は Analyzer インターフェースを満たします。
func (r *Rules) Analyze(_ context.Context, target Target) Result {
	return Ok(Classify(target.Identifier))
}

// Classify は小文字化した識別子への部分一致 (単語単位ではない) で分類します。最初に一致したルールを採用します。
func Classify(identifier string) Analysis {
	lower := strings.ToLower(identifier)

	switch {
	case strings.Contains(lower, keywordVest):
		return vestAnalysis
	case strings.Contains(lower, keywordPraia), strings.Contains(lower, keywordBeach):
		return beachAnalysis
	default:
		return Analysis{
			ContactLabel:    GenericContactPrefix + identifier,
			StrengthNote:    genericStrength,
			OpportunityNote: genericOpportunity,
		}
	}
}
