package message

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/go-cold-outreach/pkg/analyzer"
)

func TestCompose(t *testing.T) {
	a := analyzer.Analysis{
		ContactLabel:    "Carolina",
		StrengthNote:    "Fotos em cenários tropicais com alto engajamento visual",
		OpportunityNote: "Ausência de TikTok e poucas respostas a DMs",
	}

	msg := Compose("lojapraiaazul", a)

	lines := strings.Split(msg, "\n")
	assert.Equal(t, "Oi, Carolina,", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "Adorei o que vocês estão fazendo com lojapraiaazul — especialmente Fotos em cenários tropicais com alto engajamento visual. Isso gera conexão genuína.", lines[2])
	assert.Equal(t, "Percebi, porém, que Ausência de TikTok e poucas respostas a DMs. É comum — mas é oportunidade escondida para aumentar conversões.", lines[4])
	assert.Equal(t, "Especialista em Tráfego & SEO para Moda", lines[len(lines)-1])
	assert.Equal(t, strings.Count(Template, "\n"), strings.Count(msg, "\n"), "改行数がテンプレートと一致しません")
	assert.NotContains(t, msg, "{")
}

func TestCompose_LiteralLinesPreserved(t *testing.T) {
	msg := Compose("trendy", analyzer.Classify("trendy"))

	for _, line := range []string{
		"Na DataFashion Marketing, ajudamos marcas como a sua a aumentar vendas online e ROI de anúncios.",
		"Em 15 min, mostro onde está travando e como destravar.",
		"Agende aqui: calendly.com/seunome/15min",
		"Com carinho e dados,\n[Seu_Nome]\n",
	} {
		assert.Contains(t, msg, line)
	}
}

func TestCompose_NoReexpansion(t *testing.T) {
	a := analyzer.Analysis{
		ContactLabel:    "{loja}",
		StrengthNote:    "{oportunidade}",
		OpportunityNote: "x",
	}
	msg := Compose("store", a)

	assert.True(t, strings.HasPrefix(msg, "Oi, {loja},"))
	assert.Contains(t, msg, "especialmente {oportunidade}.")
}
