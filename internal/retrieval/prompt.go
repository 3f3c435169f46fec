package retrieval

import (
	"strings"
)

// NoHistorySentinel is the placeholder summary stored before any exchange
// has been folded into conversation memory. Assemble treats it the same as
// an empty summary.
const NoHistorySentinel = "No conversation history yet."

// DefaultSimilarityThreshold filters retrieved units out of the prompt when
// their similarity does not clear it.
const DefaultSimilarityThreshold = 0.5

// Assemble composes the prompt sent to the language model: system
// instructions first, then the rolling conversation summary (when there is
// one), then the knowledge block listing every retrieved unit whose
// similarity is strictly above threshold. Blocks are joined with blank
// lines; the knowledge block is omitted entirely when nothing survives the
// filter.
//
// Assemble is pure: no I/O, no randomness; identical inputs produce an
// identical string.
func Assemble(instructions, summary string, units []RetrievedUnit, threshold float32) string {
	parts := []string{instructions}

	if summary != "" && summary != NoHistorySentinel {
		parts = append(parts, "\n**Previous Conversation Summary:**\n"+summary)
	}

	var knowledge strings.Builder
	for _, u := range units {
		if u.Similarity > threshold {
			knowledge.WriteString("\n[From " + u.SourceLabel + "]\n" + u.Text + "\n")
		}
	}
	if knowledge.Len() > 0 {
		parts = append(parts, "\n**Relevant Knowledge:**\n"+knowledge.String())
	}

	return strings.Join(parts, "\n\n")
}
