// Package synthesizer produces answers grounded in retrieved official content.
package synthesizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/dtnitsch/cbsl-assistant/pkg/llm"
)

// SystemInstruction restricts the model to the supplied content.
const SystemInstruction = `You are an assistant for the Central Bank of Sri Lanka (CBSL).
Answer the user's question using ONLY the official CBSL content provided in the message.
Do not use outside knowledge and do not guess figures, dates or rates.
If the content does not answer the question, say politely that the information was not found on the official CBSL website and suggest visiting https://www.cbsl.gov.lk.
Answer in clear, concise English.`

// DefaultMaxContentChars bounds how much content is sent to the model.
const DefaultMaxContentChars = 12000

type Synthesizer struct {
	llm             llm.Completer
	maxContentChars int
}

// New returns a Synthesizer. maxContentChars <= 0 selects DefaultMaxContentChars.
func New(completer llm.Completer, maxContentChars int) *Synthesizer {
	if maxContentChars <= 0 {
		maxContentChars = DefaultMaxContentChars
	}
	return &Synthesizer{llm: completer, maxContentChars: maxContentChars}
}

// Synthesize asks the model to answer query from content. Errors from the
// generative service are returned to the caller unchanged in kind.
func (s *Synthesizer) Synthesize(ctx context.Context, query, content string) (string, error) {
	answer, err := s.llm.Complete(ctx, SystemInstruction, s.buildMessage(query, content))
	if err != nil {
		return "", fmt.Errorf("failed to synthesize answer: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("failed to synthesize answer: %w", llm.ErrEmptyCompletion)
	}
	return answer, nil
}

func (s *Synthesizer) buildMessage(query, content string) string {
	var sb strings.Builder
	sb.WriteString("Official CBSL content:\n")
	sb.WriteString(truncateRunes(content, s.maxContentChars))
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(strings.TrimSpace(query))
	return sb.String()
}

func truncateRunes(s string, max int) string {
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
