package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
)

// ShellProps configures the page shell. RootPrefix is the site's path
// prefix without a trailing slash ("" when the site is at the domain root).
type ShellProps struct {
	RoutePath  string
	RootPrefix string
	Title      string
	Clock      pubsite.Clock
	Theme      string
	CSRFToken  string
}

// IsRootPath reports whether routePath is the site's home route.
func IsRootPath(routePath, rootPrefix string) bool {
	return routePath == rootPrefix+"/"
}

// HeaderVariant names the header style chosen for a route.
type HeaderVariant string

const (
	HeaderTitle    HeaderVariant = "title"    // <h1>, home page
	HeaderSubtitle HeaderVariant = "subtitle" // <h3>, every other page
)

// SelectHeader picks the header variant for a route.
func SelectHeader(routePath, rootPrefix string) HeaderVariant {
	if IsRootPath(routePath, rootPrefix) {
		return HeaderTitle
	}
	return HeaderSubtitle
}

// Tag is the heading element the variant renders as.
func (v HeaderVariant) Tag() string {
	if v == HeaderTitle {
		return "h1"
	}
	return "h3"
}

// Shell wraps children in the themed container: a header linking home, the
// children inside <main>, and a copyright footer dated by the clock.
func Shell(p ShellProps, children templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		clock := p.Clock
		if clock == nil {
			clock = pubsite.SystemClock{}
		}
		root := p.RootPrefix + "/"
		variant := SelectHeader(p.RoutePath, p.RootPrefix)
		tag := variant.Tag()

		h := newWriter(ctx, w)
		h.raw(`<div class="global-wrapper" data-is-root-path="` + strconv.FormatBool(variant == HeaderTitle) + `">`)
		h.raw(`<div class="container"><header class="site-header">`)
		h.raw(`<` + tag + ` class="` + string(variant) + `"><a href="`)
		h.text(root)
		h.raw(`">`)
		h.text(p.Title)
		h.raw(`</a></` + tag + `>`)
		if p.CSRFToken != "" {
			writeThemeToggle(h, p)
		}
		h.raw(`</header><main>`)
		h.component(children)
		h.raw(`</main><footer>© `)
		h.raw(strconv.Itoa(clock.Now().Year()))
		h.raw(`</footer></div></div>`)
		return h.err
	})
}

func writeThemeToggle(h *htmlWriter, p ShellProps) {
	label, icon := "Switch to dark theme", "☾"
	if p.Theme == pubsite.ThemeDark {
		label, icon = "Switch to light theme", "☀"
	}
	h.raw(`<form class="theme-toggle" method="post" action="`)
	h.text(p.RootPrefix + "/theme/")
	h.raw(`"><input type="hidden" name="_csrf" value="`)
	h.text(p.CSRFToken)
	h.raw(`"><input type="hidden" name="return" value="`)
	h.text(p.RoutePath)
	h.raw(`"><button type="submit" aria-label="`)
	h.text(label)
	h.raw(`">`)
	h.raw(icon)
	h.raw(`</button></form>`)
}

func shellProps(page pubsite.Page) ShellProps {
	return ShellProps{
		RoutePath:  page.RoutePath,
		RootPrefix: page.Site.PathPrefix,
		Title:      page.Site.Name,
		Clock:      page.Clock,
		Theme:      page.Theme,
		CSRFToken:  page.CSRFToken,
	}
}
