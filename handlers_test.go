package pubsite_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/views"
)

var testClock = pubsite.FixedClock(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))

func testPosts() []pubsite.Post {
	return []pubsite.Post{
		{ID: "id-1", Title: "First", Slug: "/first/", Order: 1, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Description: "one", HTML: "<p>first body</p>", Source: "first.md"},
		{ID: "id-2", Title: "Second", Slug: "/second/", Order: 2, Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Excerpt: "two", HTML: "<p>second body</p>", Source: "second.md"},
		{ID: "id-3", Title: "Third", Slug: "/third/", Order: 3, HTML: "<p>third body</p>", Source: "third.md"},
	}
}

func newTestApp(t *testing.T, prefix string, opts ...pubsite.Option) *pubsite.App {
	t.Helper()
	store, err := pubsite.NewStore(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.ReplacePosts(context.Background(), testPosts()))

	cfg := pubsite.SiteConfig{
		Name:          "Overreacted",
		URL:           "https://example.com",
		Description:   "A test blog",
		PathPrefix:    prefix,
		SessionSecret: "test-secret-test-secret-test-sec",
	}
	opts = append([]pubsite.Option{pubsite.WithStore(store), pubsite.WithClock(testClock)}, opts...)
	app := pubsite.New(cfg, views.Funcs(), opts...)
	require.NoError(t, app.Setup())
	return app
}

func do(app *pubsite.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, app *pubsite.App, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	rec := do(app, httptest.NewRequest(http.MethodGet, target, nil))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return rec, doc
}

func TestHomePage(t *testing.T) {
	app := newTestApp(t, "")
	rec, doc := get(t, app, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Overreacted", doc.Find("header h1.title a").Text())
	assert.Equal(t, 0, doc.Find("header h3").Length())
	assert.Equal(t, 3, doc.Find("ol.post-list > li").Length())
	assert.Equal(t, "© 2026", doc.Find("footer").Last().Text())
	assert.Equal(t, "private, max-age=0, must-revalidate", rec.Header().Get("Cache-Control"))
}

func TestPostPageNeighbors(t *testing.T) {
	app := newTestApp(t, "")
	rec, doc := get(t, app, "/second/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Overreacted", doc.Find("header h3.subtitle a").Text())
	assert.Equal(t, 0, doc.Find("header h1.title").Length())
	assert.Equal(t, "second body", doc.Find(`section[itemprop="articleBody"]`).Text())
	assert.Equal(t, "/first/", doc.Find(`a[rel="prev"]`).AttrOr("href", ""))
	assert.Equal(t, "/third/", doc.Find(`a[rel="next"]`).AttrOr("href", ""))
}

func TestPostPageEnds(t *testing.T) {
	app := newTestApp(t, "")

	_, first := get(t, app, "/first/")
	assert.Equal(t, 0, first.Find(`a[rel="prev"]`).Length())
	assert.Equal(t, "/second/", first.Find(`a[rel="next"]`).AttrOr("href", ""))

	_, last := get(t, app, "/third/")
	assert.Equal(t, "/second/", last.Find(`a[rel="prev"]`).AttrOr("href", ""))
	assert.Equal(t, 0, last.Find(`a[rel="next"]`).Length())
}

func TestPostTrailingSlashRedirect(t *testing.T) {
	app := newTestApp(t, "")
	rec := do(app, httptest.NewRequest(http.MethodGet, "/second", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/second/", rec.Header().Get("Location"))
}

func TestUnknownPostIsNotFound(t *testing.T) {
	app := newTestApp(t, "")
	rec, doc := get(t, app, "/missing/")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "404: Not Found", doc.Find("main h1").Text())
	assert.Equal(t, 1, doc.Find("header h3.subtitle").Length())
}

func TestPathPrefix(t *testing.T) {
	app := newTestApp(t, "/blog")

	rec, doc := get(t, app, "/blog/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/blog/", doc.Find("header h1.title a").AttrOr("href", ""))
	assert.Equal(t, "/blog/first/", doc.Find("ol.post-list h2 a").First().AttrOr("href", ""))

	rec, doc = get(t, app, "/blog/first/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, doc.Find("header h3.subtitle").Length())
	assert.Equal(t, "/blog/second/", doc.Find(`a[rel="next"]`).AttrOr("href", ""))

	rec = do(app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog/", rec.Header().Get("Location"))
}

func TestFeeds(t *testing.T) {
	app := newTestApp(t, "")

	rss, _ := get(t, app, "/rss.xml")
	require.Equal(t, http.StatusOK, rss.Code)
	assert.Contains(t, rss.Header().Get("Content-Type"), "application/rss+xml")
	assert.Contains(t, rss.Body.String(), "<link>https://example.com/second/</link>")
	assert.Contains(t, rss.Body.String(), "<lastBuildDate>Mon, 19 Oct 2026 09:00:00 +0000</lastBuildDate>")
	assert.Equal(t, "public, max-age=86400", rss.Header().Get("Cache-Control"))

	sitemap, _ := get(t, app, "/sitemap.xml")
	require.Equal(t, http.StatusOK, sitemap.Code)
	body := sitemap.Body.String()
	assert.Contains(t, body, "<loc>https://example.com/</loc>")
	assert.Contains(t, body, "<loc>https://example.com/first/</loc><lastmod>2024-01-01</lastmod>")

	robots, _ := get(t, app, "/robots.txt")
	assert.Contains(t, robots.Body.String(), "Sitemap: https://example.com/sitemap.xml")
}

func TestStylesheet(t *testing.T) {
	app := newTestApp(t, "/blog")
	rec := do(app, httptest.NewRequest(http.MethodGet, "/blog/public/style.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".global-wrapper")
	assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
}

func TestThemeToggle(t *testing.T) {
	app := newTestApp(t, "")

	rec, doc := get(t, app, "/second/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "light", doc.Find("body").AttrOr("class", ""))
	form := doc.Find("form.theme-toggle")
	require.Equal(t, 1, form.Length())
	token := form.Find(`input[name="_csrf"]`).AttrOr("value", "")
	require.NotEmpty(t, token)

	values := url.Values{"_csrf": {token}, "return": {"/second/"}}
	req := httptest.NewRequest(http.MethodPost, "/theme/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	post := do(app, req)
	require.Equal(t, http.StatusSeeOther, post.Code)
	assert.Equal(t, "/second/", post.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range post.Result().Cookies() {
		if c.Name == "visitor_session" {
			session = c
		}
	}
	require.NotNil(t, session)

	req = httptest.NewRequest(http.MethodGet, "/second/", nil)
	req.AddCookie(session)
	rec = do(app, req)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "dark", doc.Find("body").AttrOr("class", ""))
	assert.Equal(t, "Switch to light theme", doc.Find("form.theme-toggle button").AttrOr("aria-label", ""))
}

func TestThemeToggleRequiresCSRF(t *testing.T) {
	app := newTestApp(t, "")
	req := httptest.NewRequest(http.MethodPost, "/theme/", strings.NewReader("return=%2F"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(app, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// orphanSource finds every post by slug but leaves "/orphan/" out of the
// sequence it lists.
type orphanSource struct{}

func (orphanSource) ListPosts(context.Context) ([]pubsite.Post, error) {
	return testPosts(), nil
}

func (orphanSource) GetPost(_ context.Context, slug string) (pubsite.Post, error) {
	if slug == "/orphan/" {
		return pubsite.Post{ID: "orphan", Title: "Orphan", Slug: slug, HTML: "<p>lost</p>"}, nil
	}
	for _, p := range testPosts() {
		if p.Slug == slug {
			return p, nil
		}
	}
	return pubsite.Post{}, pubsite.ErrNotFound
}

func TestMissingFromSequenceIsServerError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	app := newTestApp(t, "",
		pubsite.WithLogger(zap.New(core)),
		pubsite.WithPostSource(orphanSource{}),
	)

	rec, doc := get(t, app, "/orphan/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Something went wrong", doc.Find("main h1").Text())
	assert.Equal(t, 0, doc.Find(`a[rel="prev"], a[rel="next"]`).Length())
	entries := logs.FilterMessage("server error").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "render /orphan/")

	rec, _ = get(t, app, "/second/")
	assert.Equal(t, http.StatusOK, rec.Code, "posts in the sequence still render")
}

func TestThemeToggleRejectsOffsiteReturn(t *testing.T) {
	app := newTestApp(t, "")
	for _, target := range []string{"/\t/evil.com", "//evil.com", "https://evil.com/"} {
		rec, doc := get(t, app, "/second/")
		require.Equal(t, http.StatusOK, rec.Code)
		token := doc.Find(`form.theme-toggle input[name="_csrf"]`).AttrOr("value", "")
		require.NotEmpty(t, token)

		values := url.Values{"_csrf": {token}, "return": {target}}
		req := httptest.NewRequest(http.MethodPost, "/theme/", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for _, c := range rec.Result().Cookies() {
			req.AddCookie(c)
		}
		post := do(app, req)
		require.Equal(t, http.StatusSeeOther, post.Code, "return %q", target)
		assert.Equal(t, "/", post.Header().Get("Location"), "return %q", target)
	}
}
