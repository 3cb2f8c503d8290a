// Package translator turns English answers into the asker's language.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dtnitsch/cbsl-assistant/models"
	"github.com/dtnitsch/cbsl-assistant/pkg/llm"
)

// ErrUnsupportedLanguage is returned for targets other than en, si and ta.
var ErrUnsupportedLanguage = errors.New("unsupported target language")

type Translator struct {
	llm llm.Completer
}

func New(completer llm.Completer) *Translator {
	return &Translator{llm: completer}
}

// Instruction returns the system instruction used to translate into target.
func Instruction(target models.Language) string {
	return fmt.Sprintf("You are a professional translator. Translate the user's text from English into %s. "+
		"Keep numbers, dates, percentages, URLs and proper names accurate. "+
		"Reply with the translation only, without notes or quotation marks.", target.Name())
}

// Translate returns text unchanged for English without calling the service.
// Other targets take exactly one completion, returned trimmed.
func (t *Translator) Translate(ctx context.Context, text string, target models.Language) (string, error) {
	if target == models.LanguageEnglish {
		return text, nil
	}
	if !target.IsSupported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, target)
	}

	out, err := t.llm.Complete(ctx, Instruction(target), text)
	if err != nil {
		return "", fmt.Errorf("failed to translate into %s: %w", target.Name(), err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("failed to translate into %s: %w", target.Name(), llm.ErrEmptyCompletion)
	}
	return out, nil
}
