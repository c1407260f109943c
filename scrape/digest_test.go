package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDigestServer(t *testing.T, html string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, html)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestDigestSource(t *testing.T, srv *httptest.Server) *DigestSource {
	t.Helper()

	return NewDigestSource(DigestConfig{
		Name:    "test-digest",
		PageURL: srv.URL,
	}, srv.Client(), zerolog.Nop())
}

func TestDigestSourceHeadings(t *testing.T) {
	page := `<html><body>
<h2><a href="https://example.com/roundup">Weekly AI agent roundup</a></h2>
<p>Agents did many things this week.</p>
<p>Here are the highlights we picked.</p>
<h2>Cooking recipes corner</h2>
<p>Nothing relevant in this section.</p>
<h3>New LLM evaluation results</h3>
<p>` + strings.Repeat("Benchmarks keep moving. ", 20) + `</p>
</body></html>`
	srv := newDigestServer(t, page)
	src := newTestDigestSource(t, srv)

	articles, err := src.Fetch(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "Weekly AI agent roundup", articles[0].Title)
	assert.Equal(t, "https://example.com/roundup", articles[0].Link)
	assert.Equal(t, "Agents did many things this week. Here are the highlights we picked.", articles[0].Summary)

	assert.Equal(t, "New LLM evaluation results", articles[1].Title)
	assert.Equal(t, srv.URL, articles[1].Link, "heading without an absolute anchor falls back to the page URL")
	assert.LessOrEqual(t, len([]rune(articles[1].Summary)), summaryLimit)
}

func TestDigestSourceMaxCount(t *testing.T) {
	page := `<html><body>
<h2>First AI agent headline worth reading</h2>
<p>One.</p>
<h2>Second AI agent headline worth reading</h2>
<p>Two.</p>
<h2>Third AI agent headline worth reading</h2>
<p>Three.</p>
</body></html>`
	srv := newDigestServer(t, page)
	src := newTestDigestSource(t, srv)

	articles, err := src.Fetch(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestDigestSourceMultibyteSummary(t *testing.T) {
	// Accented paragraphs are three bytes per rune; the summary must still
	// accumulate up to the full character limit before truncating.
	page := `<html><body>
<h2>Große Modelle im Überblick</h2>
<p>` + strings.Repeat("ü", 150) + `</p>
<p>` + strings.Repeat("é", 100) + `</p>
</body></html>`
	srv := newDigestServer(t, page)
	src := newTestDigestSource(t, srv)

	articles, err := src.Fetch(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	assert.Equal(t, summaryLimit, len([]rune(articles[0].Summary)))
}

func TestDigestSourceEmphasizedFallback(t *testing.T) {
	page := `<html><body>
<p>Some intro text without any headings.</p>
<p><strong>Big AI agent platform announcement</strong> changed everything.</p>
</body></html>`
	srv := newDigestServer(t, page)
	src := newTestDigestSource(t, srv)

	articles, err := src.Fetch(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	assert.Equal(t, "Big AI agent platform announcement", articles[0].Title)
	assert.Equal(t, srv.URL, articles[0].Link)
}

func TestDigestSourceNoMatches(t *testing.T) {
	page := `<html><body><h2>Gardening tips</h2><p>Water the plants.</p></body></html>`
	srv := newDigestServer(t, page)
	src := newTestDigestSource(t, srv)

	articles, err := src.Fetch(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, articles)
}
