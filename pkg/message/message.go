package message

import (
	"strings"

	"github.com/shouni/go-cold-outreach/pkg/analyzer"
)

// プレースホルダー (テンプレート内でのみ使用)
const (
	placeholderContact     = "{contato}"
	placeholderStore       = "{loja}"
	placeholderStrength    = "{conquista}"
	placeholderOpportunity = "{oportunidade}"
)

// Template は、すべてのメッセージに共通する固定テンプレートです。
// 空白と改行もCSVおよびプレビューにそのまま出力されます。
const Template = `Oi, {contato},

Adorei o que vocês estão fazendo com {loja} — especialmente {conquista}. Isso gera conexão genuína.

Percebi, porém, que {oportunidade}. É comum — mas é oportunidade escondida para aumentar conversões.

Na DataFashion Marketing, ajudamos marcas como a sua a aumentar vendas online e ROI de anúncios.

Em 15 min, mostro onde está travando e como destravar.

Agende aqui: calendly.com/seunome/15min

Para uma análise ainda mais precisa e personalizada do seu negócio, que tal preencher nosso formulário rápido? Assim, podemos entender melhor seu estado atual e como podemos te ajudar a crescer ainda mais: [LINK_PARA_SEU_FORMULARIO_ONLINE_AQUI]

Com carinho e dados,
[Seu_Nome]
Especialista em Tráfego & SEO para Moda`

// Compose は、識別子と解析結果をテンプレートに埋め込みます。
// 置換は1パスで行われ、埋め込んだ値に含まれるプレースホルダーは再展開されません。
func Compose(identifier string, a analyzer.Analysis) string {
	r := strings.NewReplacer(
		placeholderContact, a.ContactLabel,
		placeholderStore, identifier,
		placeholderStrength, a.StrengthNote,
		placeholderOpportunity, a.OpportunityNote,
	)
	return r.Replace(Template)
}
