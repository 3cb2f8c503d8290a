package retriever

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/cbsl-assistant/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const article = "The Monetary Board of the Central Bank of Sri Lanka decided to maintain the Standing Deposit " +
	"Facility Rate and the Standing Lending Facility Rate at their current levels. The Board arrived at this " +
	"decision following a careful analysis of current and expected developments in the domestic economy."

func pageWith(body string) string {
	return `<html><head><title>Search</title></head><body>
<nav>Skip to main content Home Sitemap සිංහල தமிழ்</nav>
<main>` + body + `</main>
<footer>About the Bank Central Bank of Sri Lanka, 30, Janadhipathi Mawatha, Colombo 01. All rights reserved</footer>
</body></html>`
}

func newTestRetriever(t *testing.T, srvURL string, timeout time.Duration) *Retriever {
	t.Helper()
	cfg := models.DefaultConfig().Source
	cfg.SearchURL = srvURL + "/search?keys=" + models.QueryPlaceholder
	cfg.Timeout = timeout
	return New(cfg, zaptest.NewLogger(t))
}

func TestRetrieve_Sufficient(t *testing.T) {
	var gotKeys string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKeys = r.URL.Query().Get("keys")
		w.Write([]byte(pageWith("<p>" + article + "</p>")))
	}))
	defer srv.Close()

	r := newTestRetriever(t, srv.URL, time.Second)
	res := r.Retrieve(context.Background(), "policy rates & SDFR?")

	require.Equal(t, models.RetrievalSufficient, res.Status)
	assert.Equal(t, "policy rates & SDFR?", gotKeys)
	assert.Equal(t, article, res.Content)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.SourceURL, "keys=policy+rates+%26+SDFR%3F")
	assert.NoError(t, res.Err)
}

func TestRetrieve_InsufficientAfterCleaning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// plenty of raw markup, almost all of it boilerplate
		w.Write([]byte(pageWith("<p>No results.</p>")))
	}))
	defer srv.Close()

	res := newTestRetriever(t, srv.URL, time.Second).Retrieve(context.Background(), "unknown topic")

	assert.Equal(t, models.RetrievalInsufficient, res.Status)
	assert.Equal(t, "No results.", res.Content)
	assert.NoError(t, res.Err)
}

func TestRetrieve_ThresholdIsInCharacters(t *testing.T) {
	// 199 Sinhala runes are far more than 200 bytes but still below the threshold
	short := strings.Repeat("ල", 199)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<p>" + short + "</p>"))
	}))
	defer srv.Close()

	res := newTestRetriever(t, srv.URL, time.Second).Retrieve(context.Background(), "q")
	assert.Equal(t, models.RetrievalInsufficient, res.Status)
}

func TestRetrieve_NonOKStatusIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	res := newTestRetriever(t, srv.URL, time.Second).Retrieve(context.Background(), "rates")

	assert.Equal(t, models.RetrievalUnreachable, res.Status)
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Empty(t, res.Content)
	assert.Error(t, res.Err)
}

func TestRetrieve_TimeoutIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	res := newTestRetriever(t, srv.URL, 50*time.Millisecond).Retrieve(context.Background(), "rates")

	assert.Equal(t, models.RetrievalUnreachable, res.Status)
	assert.Error(t, res.Err)
}

func TestRetrieve_ConnectionRefusedIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := newTestRetriever(t, url, time.Second).Retrieve(context.Background(), "rates")
	assert.Equal(t, models.RetrievalUnreachable, res.Status)
}

func TestSearchURL(t *testing.T) {
	r := New(models.SourceConfig{SearchURL: "https://example.lk/search?keys={query}&lang=en"}, zaptest.NewLogger(t))
	assert.Equal(t, "https://example.lk/search?keys=%E0%B6%BD+a%2Fb&lang=en", r.SearchURL("ල a/b"))
}
