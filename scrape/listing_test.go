package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<!DOCTYPE html>
<html><body>
<a href="/blog/first-story">First story about AI agents</a>
<a href="/blog/first-story">First story about AI agents</a>
<a href="/blog/short">Short</a>
<a href="mailto:hi@example.com">Contact us about the newsletter</a>
<a href="https://other.example.com/blog/external-guide">External guide to agent tooling</a>
<a href="/blog/second-story">Second story about LLM tooling</a>
<a href="/blog/third-story">Third story about autonomous agents</a>
</body></html>`

const emptyListingPage = `<!DOCTYPE html>
<html><body><p>Nothing to see on this page.</p></body></html>`

func newListingServer(t *testing.T, blogHTML, homeHTML string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/blog":
			fmt.Fprint(w, blogHTML)
		default:
			fmt.Fprint(w, homeHTML)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestListingSource(t *testing.T, srv *httptest.Server) *ListingSource {
	t.Helper()

	src, err := NewListingSource(ListingConfig{
		Name:       "test-site",
		BaseURL:    srv.URL,
		ListingURL: srv.URL + "/blog",
	}, srv.Client(), zerolog.Nop())
	require.NoError(t, err)

	return src
}

func TestListingSourceFetch(t *testing.T) {
	srv := newListingServer(t, listingPage, emptyListingPage)
	src := newTestListingSource(t, srv)

	articles, err := src.Fetch(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, articles, 3)

	// Duplicate links, short titles and non-http(s) candidates are
	// filtered; relative links resolve against the base URL.
	assert.Equal(t, "First story about AI agents", articles[0].Title)
	assert.Equal(t, srv.URL+"/blog/first-story", articles[0].Link)
	assert.Equal(t, "External guide to agent tooling", articles[1].Title)
	assert.Equal(t, "https://other.example.com/blog/external-guide", articles[1].Link)
	assert.Equal(t, "Second story about LLM tooling", articles[2].Title)

	// Summary defaults to the title at this stage.
	assert.Equal(t, articles[0].Title, articles[0].Summary)
}

func TestListingSourceMaxCount(t *testing.T) {
	srv := newListingServer(t, listingPage, emptyListingPage)
	src := newTestListingSource(t, srv)

	articles, err := src.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestListingSourceFallbackPage(t *testing.T) {
	// No selector matches on the listing page; the source re-applies the
	// generic pattern against the fallback page.
	srv := newListingServer(t, emptyListingPage, listingPage)
	src := newTestListingSource(t, srv)

	articles, err := src.Fetch(context.Background(), 3)
	require.NoError(t, err)
	require.NotEmpty(t, articles)
	assert.Equal(t, "First story about AI agents", articles[0].Title)
}

func TestListingSourceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	src := newTestListingSource(t, srv)

	_, err := src.Fetch(context.Background(), 3)
	assert.Error(t, err)
}

func TestListingSourceSelectorPriority(t *testing.T) {
	page := `<html><body>
<a class="article-link" href="/blog/by-class">Found via the class selector</a>
</body></html>`
	srv := newListingServer(t, page, emptyListingPage)

	src, err := NewListingSource(ListingConfig{
		Name:       "test-site",
		BaseURL:    srv.URL,
		ListingURL: srv.URL + "/blog",
		Selectors:  []string{"[data-article]", ".article-link"},
	}, srv.Client(), zerolog.Nop())
	require.NoError(t, err)

	articles, err := src.Fetch(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Found via the class selector", articles[0].Title)
}
