package pubsite

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// page builds the per-request view context.
func (a *App) page(c echo.Context, meta PageMeta) Page {
	return Page{
		Site:      a.Config,
		RoutePath: c.Request().URL.Path,
		Clock:     a.Clock,
		Theme:     CurrentTheme(c),
		CSRFToken: CsrfToken(c),
		Meta:      meta,
	}
}

func (a *App) homeMeta() PageMeta {
	return PageMeta{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL, a.Config.PathPrefix),
		OGType:      "website",
	}
}

func (a *App) postMeta(p Post) PageMeta {
	return PageMeta{
		Title:       p.Title,
		Description: p.Summary(),
		URL:         BuildURL(a.Config.URL, a.Config.PostPath(p.Slug)),
		OGType:      "article",
	}
}

func (a *App) handleHome(c echo.Context) error {
	posts, err := a.Posts.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(a.page(c, a.homeMeta()), posts))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	slug := "/" + strings.Trim(c.Param("*"), "/") + "/"
	post, err := a.Posts.GetPost(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	posts, err := a.Posts.ListPosts(ctx)
	if err != nil {
		return err
	}
	nav, err := ResolveNeighbors(posts, post.ID)
	if err != nil {
		// The post exists but is missing from the sequence; refuse to render
		// links computed from a position we do not have.
		return fmt.Errorf("render %s: %w", slug, err)
	}
	return Render(c, a.Views.Post(a.page(c, a.postMeta(post)), post, nav))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Posts.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.writeSitemap(c.Response(), posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Posts.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.writeRSS(c.Response(), posts)
}

// handleRobots generates robots.txt from the configured URL.
func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, a.robotsTxt())
}

func (a *App) robotsTxt() string {
	return fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s\n",
		strings.TrimRight(BuildURL(a.Config.URL, a.Config.PathPrefix), "/")+"/sitemap.xml")
}

// handleTheme flips the visitor's theme and sends them back where they were.
func (a *App) handleTheme(c echo.Context) error {
	if !a.themeLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
	}
	next := ThemeDark
	if CurrentTheme(c) == ThemeDark {
		next = ThemeLight
	}
	if err := setTheme(c, next); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, a.safeReturn(c.FormValue("return")))
}

// safeReturn only allows redirects to paths inside the site. Control
// characters are rejected outright because browsers drop them, which can
// turn "/\t/host" into the protocol-relative "//host".
func (a *App) safeReturn(target string) string {
	root := a.Config.RootPath()
	if strings.IndexFunc(target, unicode.IsControl) >= 0 || strings.Contains(target, "\\") {
		return root
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil || u.Opaque != "" {
		return root
	}
	if strings.HasPrefix(target, "//") || !strings.HasPrefix(u.Path, root) {
		return root
	}
	return target
}

func (a *App) handlePrefixRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, a.Config.RootPath())
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c, PageMeta{Title: "Not Found"})))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error",
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError(a.page(c, PageMeta{Title: "Server Error"})))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
