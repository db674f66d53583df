package pubsite

import "time"

// Post is a single blog entry as supplied by the content loader. HTML is
// already rendered and is never interpreted here.
type Post struct {
	ID          string
	Title       string
	Slug        string // route relative to the path prefix, e.g. "/hello-world/"
	Order       int
	Date        time.Time
	Description string
	Excerpt     string
	HTML        string
	Source      string
}

// Summary returns the description, or the excerpt when no description was written.
func (p Post) Summary() string {
	if p.Description != "" {
		return p.Description
	}
	return p.Excerpt
}

// Neighbors holds the posts positioned immediately before and after the
// current one. A nil field means there is no neighbor on that side.
type Neighbors struct {
	Previous *Post
	Next     *Post
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Page is the per-request context handed to every view.
type Page struct {
	Site      SiteConfig
	RoutePath string
	Clock     Clock
	Theme     string
	CSRFToken string
	Meta      PageMeta
}

// Theme values stored in the visitor session.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)
