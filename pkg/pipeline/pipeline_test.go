package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dtnitsch/cbsl-assistant/models"
	"github.com/dtnitsch/cbsl-assistant/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

const (
	tamilQuery   = "வட்டி விகிதம் என்ன?"
	sinhalaQuery = "පොලී අනුපාතය කුමක්ද?"
	sourceURL    = "https://www.cbsl.gov.lk/en/search/node?keys=rate"
)

type fakeRetriever struct {
	mu     sync.Mutex
	calls  int
	result models.Retrieval
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string) models.Retrieval {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result
}

type fakeSynthesizer struct {
	mu      sync.Mutex
	calls   int
	query   string
	content string
	answer  string
	err     error
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, query, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.query, f.content = query, content
	return f.answer, f.err
}

type fakeTranslator struct {
	mu     sync.Mutex
	calls  int
	text   string
	target models.Language
	output string
	err    error
}

func (f *fakeTranslator) Translate(ctx context.Context, text string, target models.Language) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.text, f.target = text, target
	return f.output, f.err
}

type fakeStore struct {
	mu      sync.Mutex
	calls   int
	fail    int // number of leading calls that fail; -1 fails forever
	entries []models.LogEntry
	ctxErrs []error
}

func (f *fakeStore) AppendInteraction(ctx context.Context, entry models.LogEntry) (models.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.fail < 0 || f.calls <= f.fail {
		return models.LogEntry{}, errors.New("disk I/O error")
	}
	entry.ID = int64(len(f.entries) + 1)
	entry.Timestamp = time.Now()
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeStore) RecentInteractions(ctx context.Context, limit int) ([]models.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.LogEntry, 0, len(f.entries))
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

type fakeHinter struct {
	code string
	ok   bool
}

func (f fakeHinter) Hint(string) (string, bool) { return f.code, f.ok }

type fixture struct {
	retriever   *fakeRetriever
	synthesizer *fakeSynthesizer
	translator  *fakeTranslator
	store       *fakeStore
}

func newFixture(status models.RetrievalStatus, content string) *fixture {
	return &fixture{
		retriever: &fakeRetriever{result: models.Retrieval{
			Status:    status,
			Content:   content,
			SourceURL: sourceURL,
		}},
		synthesizer: &fakeSynthesizer{answer: "X"},
		translator:  &fakeTranslator{output: "Y"},
		store:       &fakeStore{},
	}
}

func (f *fixture) pipeline(t *testing.T, opts Options) *Pipeline {
	return New(f.retriever, f.synthesizer, f.translator, f.store, zaptest.NewLogger(t), opts)
}

func TestAsk_EmptyQuery(t *testing.T) {
	for _, query := range []string{"", "   ", "\n\t "} {
		f := newFixture(models.RetrievalSufficient, strings.Repeat("a", 500))
		out := f.pipeline(t, Options{}).Ask(context.Background(), query)

		assert.Equal(t, models.OutcomeDegraded, out.Kind)
		assert.Equal(t, models.ReasonInputEmpty, out.Reason)
		assert.Equal(t, models.EmptyQueryPrompt, out.Answer)
		assert.Equal(t, models.LanguageEnglish, out.Language)
		assert.False(t, out.Logged)

		assert.Zero(t, f.retriever.calls, "retriever called for %q", query)
		assert.Zero(t, f.synthesizer.calls)
		assert.Zero(t, f.translator.calls)
		assert.Zero(t, f.store.calls, "no entry may be logged for a blank question")
	}
}

func TestAsk_InsufficientContent(t *testing.T) {
	f := newFixture(models.RetrievalInsufficient, "short")
	out := f.pipeline(t, Options{}).Ask(context.Background(), "What is the policy rate?")

	assert.Equal(t, models.OutcomeDegraded, out.Kind)
	assert.Equal(t, models.ReasonInsufficient, out.Reason)
	assert.Equal(t, models.CannedAnswer(models.ReasonInsufficient, models.LanguageEnglish), out.Answer)
	assert.Equal(t, sourceURL, out.Source)
	assert.True(t, out.Logged)

	assert.Equal(t, 1, f.retriever.calls)
	assert.Zero(t, f.synthesizer.calls)
	assert.Zero(t, f.translator.calls)
	require.Len(t, f.store.entries, 1)
	assert.Equal(t, out.Answer, f.store.entries[0].Answer)
}

func TestAsk_SourceUnreachable(t *testing.T) {
	f := newFixture(models.RetrievalUnreachable, "")
	f.retriever.result.Err = errors.New("context deadline exceeded")
	out := f.pipeline(t, Options{}).Ask(context.Background(), "What is the policy rate?")

	assert.Equal(t, models.OutcomeDegraded, out.Kind)
	assert.Equal(t, models.ReasonUnreachable, out.Reason)
	assert.Equal(t, models.CannedAnswer(models.ReasonUnreachable, models.LanguageEnglish), out.Answer)
	assert.Error(t, out.Err)
	assert.False(t, out.Fatal())

	assert.Zero(t, f.synthesizer.calls)
	assert.Zero(t, f.translator.calls)
	require.Len(t, f.store.entries, 1)
}

func TestAsk_DegradedAnswerUsesDetectedLanguage(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status models.RetrievalStatus
		reason models.Reason
		lang   models.Language
	}{
		{"sinhala insufficient", sinhalaQuery, models.RetrievalInsufficient, models.ReasonInsufficient, models.LanguageSinhala},
		{"tamil unreachable", tamilQuery, models.RetrievalUnreachable, models.ReasonUnreachable, models.LanguageTamil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.status, "")
			out := f.pipeline(t, Options{}).Ask(context.Background(), tt.query)

			assert.Equal(t, tt.lang, out.Language)
			assert.Equal(t, models.CannedAnswer(tt.reason, tt.lang), out.Answer)
			assert.Zero(t, f.translator.calls, "canned answers are already localized")

			require.Len(t, f.store.entries, 1)
			assert.Equal(t, tt.lang, f.store.entries[0].Language)
			assert.Equal(t, out.Answer, f.store.entries[0].Answer)
		})
	}
}

func TestAsk_EnglishSkipsTranslation(t *testing.T) {
	content := strings.Repeat("The Monetary Board decided to maintain policy rates. ", 10)
	f := newFixture(models.RetrievalSufficient, content)
	out := f.pipeline(t, Options{}).Ask(context.Background(), "What is the policy rate?")

	assert.Equal(t, models.OutcomeOK, out.Kind)
	assert.Equal(t, models.ReasonNone, out.Reason)
	assert.Equal(t, "X", out.Answer)
	assert.Equal(t, models.LanguageEnglish, out.Language)

	assert.Equal(t, 1, f.synthesizer.calls)
	assert.Equal(t, "What is the policy rate?", f.synthesizer.query)
	assert.Equal(t, content, f.synthesizer.content)
	assert.Zero(t, f.translator.calls)

	require.Len(t, f.store.entries, 1)
	assert.Equal(t, "X", f.store.entries[0].Answer)
	assert.Equal(t, models.LanguageEnglish, f.store.entries[0].Language)
}

func TestAsk_TamilEndToEnd(t *testing.T) {
	f := newFixture(models.RetrievalSufficient, strings.Repeat("c", 500))
	out := f.pipeline(t, Options{}).Ask(context.Background(), tamilQuery)

	assert.Equal(t, models.OutcomeOK, out.Kind)
	assert.Equal(t, models.LanguageTamil, out.Language)

	assert.Equal(t, 1, f.synthesizer.calls)
	assert.Equal(t, 1, f.translator.calls)
	assert.Equal(t, "X", f.translator.text)
	assert.Equal(t, models.LanguageTamil, f.translator.target)
	assert.Equal(t, "Y", out.Answer)

	require.Len(t, f.store.entries, 1)
	assert.Equal(t, models.LanguageTamil, f.store.entries[0].Language)
	assert.Equal(t, "Y", f.store.entries[0].Answer)
	assert.Equal(t, tamilQuery, f.store.entries[0].Question)
	assert.True(t, out.Logged)
}

func TestAsk_SynthesisFailure(t *testing.T) {
	f := newFixture(models.RetrievalSufficient, strings.Repeat("c", 500))
	f.synthesizer.err = errors.New("429 quota exceeded")
	out := f.pipeline(t, Options{}).Ask(context.Background(), sinhalaQuery)

	assert.True(t, out.Fatal())
	assert.Equal(t, models.ReasonSynthesisFailed, out.Reason)
	assert.Equal(t, models.CannedAnswer(models.ReasonSynthesisFailed, models.LanguageSinhala), out.Answer)
	assert.NotContains(t, out.Answer, "quota")
	assert.ErrorContains(t, out.Err, "quota")

	assert.Zero(t, f.translator.calls)
	assert.Zero(t, f.store.calls, "fatal outcomes are not logged")
}

func TestAsk_TranslationFailure(t *testing.T) {
	f := newFixture(models.RetrievalSufficient, strings.Repeat("c", 500))
	f.translator.err = errors.New("connection reset")
	out := f.pipeline(t, Options{}).Ask(context.Background(), tamilQuery)

	assert.True(t, out.Fatal())
	assert.Equal(t, models.ReasonTranslationFailed, out.Reason)
	assert.Equal(t, models.CannedAnswer(models.ReasonTranslationFailed, models.LanguageTamil), out.Answer)
	assert.Equal(t, models.LanguageTamil, out.Language)
	assert.Zero(t, f.store.calls)
}

func TestAsk_LogFailureKeepsAnswer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	f := newFixture(models.RetrievalSufficient, strings.Repeat("c", 500))
	f.store.fail = -1
	p := New(f.retriever, f.synthesizer, f.translator, f.store, zap.New(core), Options{})

	out := p.Ask(context.Background(), "What is the policy rate?")

	assert.Equal(t, models.OutcomeOK, out.Kind)
	assert.Equal(t, "X", out.Answer)
	assert.False(t, out.Logged)
	assert.Error(t, out.LogErr)
	assert.Equal(t, 1, f.store.calls, "single attempt by default")
	assert.Equal(t, 1, logs.FilterMessage("failed to log interaction").Len())
}

func TestAsk_LogRetries(t *testing.T) {
	t.Run("recovers", func(t *testing.T) {
		f := newFixture(models.RetrievalInsufficient, "")
		f.store.fail = 2
		out := f.pipeline(t, Options{AppendRetries: 3, RetryInterval: time.Millisecond}).
			Ask(context.Background(), "rates")

		assert.True(t, out.Logged)
		assert.NoError(t, out.LogErr)
		assert.Equal(t, 3, f.store.calls)
		assert.Len(t, f.store.entries, 1)
	})

	t.Run("gives up", func(t *testing.T) {
		f := newFixture(models.RetrievalInsufficient, "")
		f.store.fail = -1
		out := f.pipeline(t, Options{AppendRetries: 2, RetryInterval: time.Millisecond}).
			Ask(context.Background(), "rates")

		assert.False(t, out.Logged)
		assert.Error(t, out.LogErr)
		assert.Equal(t, 3, f.store.calls)
	})
}

func TestAsk_LogsAfterCallerCancels(t *testing.T) {
	f := newFixture(models.RetrievalInsufficient, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := f.pipeline(t, Options{}).Ask(ctx, "rates")

	assert.True(t, out.Logged)
	require.Len(t, f.store.ctxErrs, 1)
	assert.NoError(t, f.store.ctxErrs[0])
}

func TestAsk_HintForScriptFreeText(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newFixture(models.RetrievalInsufficient, "")
	p := New(f.retriever, f.synthesizer, f.translator, f.store, zap.New(core), Options{
		Hinter: fakeHinter{code: "fr", ok: true},
	})

	out := p.Ask(context.Background(), "Quel est le taux directeur de la banque centrale?")

	assert.Equal(t, models.LanguageEnglish, out.Language)
	entries := logs.FilterMessageSnippet("unsupported language").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "fr", entries[0].ContextMap()["hint"])
}

func TestRecent(t *testing.T) {
	f := newFixture(models.RetrievalInsufficient, "")
	p := f.pipeline(t, Options{})
	for i := 0; i < 3; i++ {
		p.Ask(context.Background(), fmt.Sprintf("question %d", i))
	}

	entries, err := p.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "question 2", entries[0].Question)
	assert.Equal(t, "question 1", entries[1].Question)
}

func TestAsk_ConcurrentWithSQLite(t *testing.T) {
	store, err := db.Open(filepath.Join(t.TempDir(), "chatlogs.db"))
	require.NoError(t, err)
	defer store.Close()

	f := newFixture(models.RetrievalSufficient, strings.Repeat("c", 500))
	p := New(f.retriever, f.synthesizer, f.translator, store, zaptest.NewLogger(t), Options{})

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			query := fmt.Sprintf("question %d", i)
			if i%2 == 1 {
				query = tamilQuery
			}
			out := p.Ask(context.Background(), query)
			assert.True(t, out.Logged)
		}(i)
	}
	wg.Wait()

	entries, err := p.Recent(context.Background(), n)
	require.NoError(t, err)
	require.Len(t, entries, n)
	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i-1].ID, entries[i].ID, "newest first")
	}
	for _, e := range entries {
		if e.Language == models.LanguageTamil {
			assert.Equal(t, "Y", e.Answer)
		} else {
			assert.Equal(t, "X", e.Answer)
		}
	}
}
