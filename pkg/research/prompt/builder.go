package prompt

import (
	"fmt"
	"strings"

	"ai-research-be/pkg/research/history"
	"ai-research-be/pkg/research/sources"
)

// SystemInstruction is the fixed citation contract. The bracketed ids in the
// answer must line up with the source ids the client receives, so the wording
// around [1], [2] notation is load-bearing.
const SystemInstruction = `You are a persistent and intelligent research assistant.
Your goal is to provide a comprehensive, well-cited answer to the user's query, utilizing the provided web sources and maintaining continuity with the previous conversation.

INSTRUCTIONS:
1. Synthesize information from the provided WEB SOURCES.
2. Use the MEMORY CONTEXT to answer follow-up questions or refer back to previous topics.
3. Cite your sources using [1], [2] notation corresponding to the Source IDs.
4. If the user asks a question not covered by the sources, use your general knowledge but mention that it is not from the provided sources.
5. Use clear structure (headings, lists) where it helps readability.
6. Be concise but thorough.`

// Builder merges the memory packet and the assembled sources into one bounded
// instruction for the model.
type Builder struct {
	packet   *history.ContextPacket
	records  []sources.Record
	query    string
	replyCap int // chars of a past response rendered per turn
}

func NewBuilder(packet *history.ContextPacket, records []sources.Record, query string, replyCap int) *Builder {
	return &Builder{
		packet:   packet,
		records:  records,
		query:    query,
		replyCap: replyCap,
	}
}

// Build returns the system instruction and the composed user message.
func (b *Builder) Build() (string, string) {
	var user strings.Builder

	user.WriteString("MEMORY CONTEXT:\n")
	b.writeMemoryContext(&user)

	user.WriteString("\nCURRENT WEB SOURCES:\n")
	b.writeWebContext(&user)

	user.WriteString("\nUSER QUERY:\n")
	user.WriteString(b.query)
	user.WriteString("\n")

	return SystemInstruction, user.String()
}

func (b *Builder) writeWebContext(out *strings.Builder) {
	for _, s := range b.records {
		fmt.Fprintf(out, "SOURCE [%d] %s\nURL: %s\nCONTENT: %s\n\n", s.Id, s.Title, s.URL, s.Content)
	}
}

func (b *Builder) writeMemoryContext(out *strings.Builder) {
	if b.packet == nil {
		return
	}

	if b.packet.SessionSummary != nil && *b.packet.SessionSummary != "" {
		fmt.Fprintf(out, "PREVIOUS SUMMARY:\n%s\n\n", *b.packet.SessionSummary)
	}

	if len(b.packet.SimilarEntries) > 0 {
		out.WriteString("RELATED PAST RESEARCH:\n")
		for _, scored := range b.packet.SimilarEntries {
			fmt.Fprintf(out, " User: %s\n Assistant: %s\n", scored.Entry.Query, b.truncateReply(scored.Entry.Response))
		}
		out.WriteString("\n")
	}

	if len(b.packet.RecentEntries) > 0 {
		out.WriteString("RECENT CONVERSATION:\n")
		// Storage hands entries back newest-first; the model reads them in
		// chronological order.
		for i := len(b.packet.RecentEntries) - 1; i >= 0; i-- {
			entry := b.packet.RecentEntries[i]
			fmt.Fprintf(out, " User: %s\n Assistant: %s\n", entry.Query, b.truncateReply(entry.Response))
		}
	}
}

func (b *Builder) truncateReply(text string) string {
	if len(text) <= b.replyCap {
		return text
	}
	return text[:b.replyCap] + "..."
}
