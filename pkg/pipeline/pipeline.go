// Package pipeline answers one question end to end: detect the language,
// retrieve official content, synthesize a grounded answer, translate it back
// and record the exchange.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dtnitsch/cbsl-assistant/models"
	"github.com/dtnitsch/cbsl-assistant/pkg/detector"
	"go.uber.org/zap"
)

// ContentRetriever fetches and cleans official content for a question.
type ContentRetriever interface {
	Retrieve(ctx context.Context, query string) models.Retrieval
}

// AnswerSynthesizer produces an English answer grounded in content.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, query, content string) (string, error)
}

// AnswerTranslator renders an English answer in target.
type AnswerTranslator interface {
	Translate(ctx context.Context, text string, target models.Language) (string, error)
}

// InteractionStore is the append-only interaction log.
type InteractionStore interface {
	AppendInteraction(ctx context.Context, entry models.LogEntry) (models.LogEntry, error)
	RecentInteractions(ctx context.Context, limit int) ([]models.LogEntry, error)
}

// LanguageHinter guesses the language of script-free text. It only feeds the
// operational log; answers for such text are always English.
type LanguageHinter interface {
	Hint(text string) (string, bool)
}

const (
	defaultRetryInterval = 200 * time.Millisecond
	// maxRetryElapsed keeps append retries inside models.ResponseMargin.
	maxRetryElapsed = 5 * time.Second
)

type Options struct {
	// AppendRetries is how many extra append attempts follow a failure. Zero
	// means a single attempt.
	AppendRetries int
	// RetryInterval is the first backoff delay between append attempts.
	RetryInterval time.Duration
	Hinter        LanguageHinter
}

type Pipeline struct {
	retriever   ContentRetriever
	synthesizer AnswerSynthesizer
	translator  AnswerTranslator
	store       InteractionStore
	logger      *zap.Logger
	opts        Options
}

func New(retriever ContentRetriever, synthesizer AnswerSynthesizer, translator AnswerTranslator, store InteractionStore, logger *zap.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}
	return &Pipeline{
		retriever:   retriever,
		synthesizer: synthesizer,
		translator:  translator,
		store:       store,
		logger:      logger,
		opts:        opts,
	}
}

// Ask runs one question through the pipeline. It always returns a non-empty
// answer; failures are reported through the outcome's Kind, Reason and errors.
func (p *Pipeline) Ask(ctx context.Context, query string) models.Outcome {
	if strings.TrimSpace(query) == "" {
		return models.Outcome{
			Kind:     models.OutcomeDegraded,
			Reason:   models.ReasonInputEmpty,
			Answer:   models.EmptyQueryPrompt,
			Language: models.LanguageEnglish,
		}
	}

	lang := detector.Detect(query)
	if lang == models.LanguageEnglish {
		p.hint(query)
	}

	retrieval := p.retriever.Retrieve(ctx, query)
	out := models.Outcome{
		Language: lang,
		Source:   retrieval.SourceURL,
	}

	switch retrieval.Status {
	case models.RetrievalUnreachable:
		out.Kind = models.OutcomeDegraded
		out.Reason = models.ReasonUnreachable
		out.Answer = models.CannedAnswer(models.ReasonUnreachable, lang)
		out.Err = retrieval.Err
	case models.RetrievalInsufficient:
		out.Kind = models.OutcomeDegraded
		out.Reason = models.ReasonInsufficient
		out.Answer = models.CannedAnswer(models.ReasonInsufficient, lang)
	default:
		answer, reason, err := p.answer(ctx, query, retrieval.Content, lang)
		if err != nil {
			p.logger.Error("failed to answer question",
				zap.String("reason", string(reason)),
				zap.String("lang", string(lang)),
				zap.Error(err),
			)
			out.Kind = models.OutcomeFatal
			out.Reason = reason
			out.Answer = models.CannedAnswer(reason, lang)
			out.Err = err
			return out
		}
		out.Kind = models.OutcomeOK
		out.Answer = answer
	}

	p.record(ctx, query, &out)
	return out
}

// answer synthesizes from content and translates when lang is not English.
func (p *Pipeline) answer(ctx context.Context, query, content string, lang models.Language) (string, models.Reason, error) {
	answer, err := p.synthesizer.Synthesize(ctx, query, content)
	if err != nil {
		return "", models.ReasonSynthesisFailed, err
	}
	if lang == models.LanguageEnglish {
		return answer, models.ReasonNone, nil
	}

	translated, err := p.translator.Translate(ctx, answer, lang)
	if err != nil {
		return "", models.ReasonTranslationFailed, err
	}
	return translated, models.ReasonNone, nil
}

// record appends the finished exchange. It runs detached from the caller's
// cancellation and never alters the answer.
func (p *Pipeline) record(ctx context.Context, query string, out *models.Outcome) {
	ctx = context.WithoutCancel(ctx)
	entry := models.LogEntry{
		Question: query,
		Answer:   out.Answer,
		Language: out.Language,
	}

	var saved models.LogEntry
	op := func() error {
		var err error
		saved, err = p.store.AppendInteraction(ctx, entry)
		return err
	}

	var err error
	if p.opts.AppendRetries > 0 {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = p.opts.RetryInterval
		b.MaxElapsedTime = maxRetryElapsed
		policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.opts.AppendRetries)), ctx)
		err = backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
			p.logger.Warn("retrying interaction log append", zap.Error(err), zap.Duration("wait", wait))
		})
	} else {
		err = op()
	}

	if err != nil {
		out.LogErr = err
		p.logger.Error("failed to log interaction",
			zap.String("lang", string(out.Language)),
			zap.String("kind", out.Kind.String()),
			zap.Error(err),
		)
		return
	}
	out.Logged = true
	p.logger.Debug("interaction logged", zap.Int64("id", saved.ID), zap.String("lang", string(saved.Language)))
}

func (p *Pipeline) hint(query string) {
	if p.opts.Hinter == nil {
		return
	}
	code, ok := p.opts.Hinter.Hint(query)
	if ok && code != string(models.LanguageEnglish) {
		p.logger.Warn("question may be in an unsupported language; answering in English",
			zap.String("hint", code),
		)
	}
}

// Recent returns up to limit logged interactions, newest first.
func (p *Pipeline) Recent(ctx context.Context, limit int) ([]models.LogEntry, error) {
	return p.store.RecentInteractions(ctx, limit)
}
