package inspect

import "strings"

const (
	senderName  = "DataFashion Marketing"
	bookingLink = "calendly.com/datafashion/15min"
)

// ComposeOutreach は、/analyze の cold_outreach_message と同じ文面を組み立てます。
// 先頭と末尾は改行です。
func ComposeOutreach(contact, storeName, conquista, oportunidade string) string {
	var b strings.Builder

	b.WriteString("\nOlá, " + contact + ",\n\n")
	b.WriteString("Nós da " + senderName + " notamos o trabalho de vocês em " + storeName +
		". Identificamos as seguintes conquistas: " + conquista + "\n\n")
	b.WriteString("E vimos que há uma grande oportunidade para: " + oportunidade +
		" Podemos ajudar a destravar esse potencial.\n\n")
	b.WriteString("Que tal conversarmos por 15 minutos para mostrar como podemos impulsionar suas vendas online?\n\n")
	b.WriteString("Agende aqui: " + bookingLink + "\n\n")
	b.WriteString("Atenciosamente,\nEquipe " + senderName + "\n")
	return b.String()
}
