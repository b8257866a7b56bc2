package session

import (
	"strings"

	"docchat/internal/domain"
)

// historyWindow is how many prior messages are replayed into each prompt.
const historyWindow = 4

const grounding = `Answer the question using only the context below.
If the answer is not present in the context, say you don't know.`

// buildPrompt assembles the completion prompt: grounding instruction, a
// bounded window of prior conversation, the retrieved segments, and the
// question itself.
func buildPrompt(window []domain.Message, sources []domain.Segment, question string) string {
	var b strings.Builder
	b.WriteString(grounding)
	b.WriteString("\n\n")

	if len(window) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, m := range window {
			b.WriteString(string(m.Role))
			b.WriteString(": ")
			b.WriteString(m.Content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Context:\n")
	for i, seg := range sources {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(seg.Text)
	}
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	return b.String()
}
