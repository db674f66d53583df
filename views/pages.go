package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/markdown"
)

// DateLayout is the display format for post dates.
const DateLayout = "January 02, 2006"

// Funcs returns the default ViewFuncs.
func Funcs() pubsite.ViewFuncs {
	return pubsite.ViewFuncs{
		Home:        Home,
		Post:        Post,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

// Home lists every post in sequence order.
func Home(page pubsite.Page, posts []pubsite.Post) templ.Component {
	list := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		if len(posts) == 0 {
			h.raw(`<p>No blog posts found.</p>`)
			return h.err
		}
		h.raw(`<ol class="post-list">`)
		for _, p := range posts {
			h.raw(`<li><article class="post-list-item" itemscope itemtype="http://schema.org/Article"><header><h2><a href="`)
			h.text(page.Site.PostPath(p.Slug))
			h.raw(`" itemprop="url"><span itemprop="headline">`)
			h.text(p.Title)
			h.raw(`</span></a></h2>`)
			writeDate(h, p)
			h.raw(`</header><section><p itemprop="description">`)
			h.text(p.Summary())
			h.raw(`</p></section></article></li>`)
		}
		h.raw(`</ol>`)
		return h.err
	})
	return Document(page, WebsiteJsonLD(page.Site), Shell(shellProps(page), list))
}

// Post renders a single article followed by links to its neighbors.
func Post(page pubsite.Page, post pubsite.Post, nav pubsite.Neighbors) templ.Component {
	article := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<article class="blog-post" itemscope itemtype="http://schema.org/Article"><header><h1 itemprop="headline">`)
		h.text(post.Title)
		h.raw(`</h1>`)
		writeDate(h, post)
		h.raw(`</header><section itemprop="articleBody">`)
		h.component(markdown.HTML(post.HTML))
		h.raw(`</section><hr>`)
		if page.Site.Author != "" {
			h.raw(`<footer><p class="bio">Written by <strong>`)
			h.text(page.Site.Author)
			h.raw(`</strong>.</p></footer>`)
		}
		h.raw(`</article>`)
		h.component(PostNav(page.Site, nav))
		return h.err
	})
	return Document(page, BlogPostingJsonLD(page.Site, post), Shell(shellProps(page), article))
}

// PostNav renders the previous/next links. A missing neighbor leaves its
// list item empty so the remaining link keeps its side.
func PostNav(site pubsite.SiteConfig, nav pubsite.Neighbors) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<nav class="blog-post-nav"><ul><li>`)
		if p := nav.Previous; p != nil {
			h.raw(`<a href="`)
			h.text(site.PostPath(p.Slug))
			h.raw(`" rel="prev">← `)
			h.text(p.Title)
			h.raw(`</a>`)
		}
		h.raw(`</li><li>`)
		if p := nav.Next; p != nil {
			h.raw(`<a href="`)
			h.text(site.PostPath(p.Slug))
			h.raw(`" rel="next">`)
			h.text(p.Title)
			h.raw(` →</a>`)
		}
		h.raw(`</li></ul></nav>`)
		return h.err
	})
}

// NotFound is the 404 page.
func NotFound(page pubsite.Page) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<h1>404: Not Found</h1><p>You just hit a route that doesn&#39;t exist... the sadness.</p><p><a href="`)
		h.text(page.Site.RootPath())
		h.raw(`">Back to all posts</a></p>`)
		return h.err
	})
	return Document(page, "", Shell(shellProps(page), body))
}

// ServerError is the 500 page.
func ServerError(page pubsite.Page) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<h1>Something went wrong</h1><p>This page could not be rendered. Please try again later.</p>`)
		return h.err
	})
	return Document(page, "", Shell(shellProps(page), body))
}

func writeDate(h *htmlWriter, p pubsite.Post) {
	if p.Date.IsZero() {
		return
	}
	h.raw(`<p><time datetime="`)
	h.text(p.Date.Format("2006-01-02"))
	h.raw(`">`)
	h.text(p.Date.Format(DateLayout))
	h.raw(`</time></p>`)
}
