// Package retriever fetches official content for a question and decides
// whether it is enough to ground an answer.
package retriever

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dtnitsch/cbsl-assistant/models"
	"github.com/dtnitsch/cbsl-assistant/pkg/fetcher"
	"github.com/dtnitsch/cbsl-assistant/pkg/parser"
	"go.uber.org/zap"
)

type Retriever struct {
	fetcher   *fetcher.Fetcher
	parser    *parser.Parser
	cleaner   *Cleaner
	searchURL string
	mode      models.ExtractMode
	minLength int
	logger    *zap.Logger
}

// New builds a Retriever for the configured source.
func New(cfg models.SourceConfig, logger *zap.Logger) *Retriever {
	phrases := cfg.Boilerplate
	if len(phrases) == 0 {
		phrases = DefaultBoilerplate
	}
	return &Retriever{
		fetcher:   fetcher.NewFetcher(cfg.Timeout, cfg.UserAgent),
		parser:    &parser.Parser{},
		cleaner:   NewCleaner(phrases),
		searchURL: cfg.SearchURL,
		mode:      cfg.ExtractMode,
		minLength: cfg.MinContentLength,
		logger:    logger,
	}
}

// SearchURL returns the source URL consulted for query.
func (r *Retriever) SearchURL(query string) string {
	return strings.ReplaceAll(r.searchURL, models.QueryPlaceholder, url.QueryEscape(query))
}

// Retrieve makes one request to the source. Failures and thin pages are
// reported through the returned status, never as errors.
func (r *Retriever) Retrieve(ctx context.Context, query string) models.Retrieval {
	target := r.SearchURL(query)
	result := models.Retrieval{SourceURL: target}

	body, err := r.fetcher.GetHtmlBytes(ctx, target)
	if err != nil {
		var statusErr *fetcher.StatusError
		if errors.As(err, &statusErr) {
			result.StatusCode = statusErr.StatusCode
		}
		r.logger.Warn("source unreachable", zap.String("url", target), zap.Int("status_code", result.StatusCode), zap.Error(err))
		result.Status = models.RetrievalUnreachable
		result.Err = err
		return result
	}
	result.StatusCode = http.StatusOK

	text, err := r.parser.Parse(models.ParseRequest{URL: target, HTML: string(body), Mode: r.mode})
	if err != nil {
		r.logger.Warn("source page could not be parsed", zap.String("url", target), zap.Error(err))
		result.Status = models.RetrievalInsufficient
		result.Err = err
		return result
	}

	result.Content = r.cleaner.Clean(text)
	length := utf8.RuneCountInString(result.Content)
	if length < r.minLength {
		r.logger.Info("source content insufficient", zap.String("url", target), zap.Int("chars", length), zap.Int("min_chars", r.minLength))
		result.Status = models.RetrievalInsufficient
		return result
	}

	r.logger.Debug("source content retrieved", zap.String("url", target), zap.Int("chars", length))
	result.Status = models.RetrievalSufficient
	return result
}
