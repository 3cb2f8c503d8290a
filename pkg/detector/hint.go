package detector

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pemistahl/lingua-go"
)

// minHintLength skips statistical guessing on very short inputs, where it is noise.
const minHintLength = 12

// hintLanguages are Latin-script languages a visitor is likely to type in
// instead of English. The hint never changes what Detect returns.
var hintLanguages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Dutch,
	lingua.Indonesian,
	lingua.Malay,
}

// Hinter guesses the language of script-free text so operators can see how
// often questions arrive in languages the assistant does not support.
// Language models load in the background; until they are ready Hint declines.
type Hinter struct {
	started  atomic.Bool
	once     sync.Once
	ready    chan struct{}
	detector lingua.LanguageDetector
}

func NewHinter() *Hinter {
	return &Hinter{ready: make(chan struct{})}
}

// Warm starts loading the language models without blocking.
func (h *Hinter) Warm() {
	if h.started.CompareAndSwap(false, true) {
		go h.load()
	}
}

// Wait blocks until the models are loaded or ctx is done.
func (h *Hinter) Wait(ctx context.Context) error {
	h.Warm()
	select {
	case <-h.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hinter) load() {
	h.once.Do(func() {
		h.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(hintLanguages...).
			WithMinimumRelativeDistance(0.1).
			Build()
		close(h.ready)
	})
}

// Hint returns the lower-case ISO-639-1 code lingua assigns to text, and false
// when the text is too short, the models are still loading or lingua cannot
// decide. It never waits for the models.
func (h *Hinter) Hint(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if len(text) < minHintLength {
		return "", false
	}

	select {
	case <-h.ready:
	default:
		h.Warm()
		return "", false
	}

	lang, ok := h.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
