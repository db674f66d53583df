package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
)

const themeColor = "#282c35"

// Document renders the outer HTML document: <head> with SEO and OpenGraph
// tags, then body inside a <body> carrying the theme class.
func Document(page pubsite.Page, jsonLD string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		site := page.Site
		meta := page.Meta
		title := site.Name
		if meta.Title != "" && meta.Title != site.Name {
			title = meta.Title + " | " + site.Name
		}
		description := meta.Description
		if description == "" {
			description = site.Description
		}
		theme := page.Theme
		if theme != pubsite.ThemeDark {
			theme = pubsite.ThemeLight
		}

		h := newWriter(ctx, w)
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		writeMeta(h, "name", "description", description)
		writeMeta(h, "name", "theme-color", themeColor)
		if meta.URL != "" {
			h.raw(`<link rel="canonical" href="`)
			h.text(meta.URL)
			h.raw(`">`)
			writeMeta(h, "property", "og:url", meta.URL)
		}
		writeMeta(h, "property", "og:title", title)
		writeMeta(h, "property", "og:description", description)
		if meta.OGType != "" {
			writeMeta(h, "property", "og:type", meta.OGType)
		}
		writeMeta(h, "name", "twitter:card", "summary")
		if site.Author != "" {
			writeMeta(h, "name", "twitter:creator", site.Author)
		}
		h.raw(`<link rel="stylesheet" href="`)
		h.text(site.PathPrefix + "/public/style.css")
		h.raw(`"><link rel="alternate" type="application/rss+xml" title="`)
		h.text(site.Name)
		h.raw(`" href="`)
		h.text(site.PathPrefix + "/rss.xml")
		h.raw(`">`)
		if jsonLD != "" {
			// json.Marshal escapes <, > and &, so the payload cannot close the tag.
			h.raw(`<script type="application/ld+json">`)
			h.raw(jsonLD)
			h.raw(`</script>`)
		}
		h.raw(`</head><body class="`)
		h.text(theme)
		h.raw(`">`)
		h.component(body)
		h.raw(`</body></html>`)
		return h.err
	})
}

func writeMeta(h *htmlWriter, attr, key, content string) {
	h.raw(`<meta ` + attr + `="`)
	h.text(key)
	h.raw(`" content="`)
	h.text(content)
	h.raw(`">`)
}
