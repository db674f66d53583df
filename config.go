package pubsite

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// SiteConfig holds all configuration for a pubsite site.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name (default "Blog")
	URL         string `mapstructure:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `mapstructure:"description"` // Site description for RSS and meta tags
	Author      string `mapstructure:"author"`      // Author name for JSON-LD

	// PathPrefix mounts every route below it, e.g. "/blog". Empty means the
	// site lives at the domain root. Never ends with a slash.
	PathPrefix string `mapstructure:"pathPrefix"`

	Addr         string `mapstructure:"addr"`         // Listen address (default ":3000")
	DatabasePath string `mapstructure:"databasePath"` // SQLite path (default "data/blog.db")
	ContentDir   string `mapstructure:"contentDir"`   // Markdown source directory (default "content/blog")
	OutputDir    string `mapstructure:"outputDir"`    // Static export directory (default "public")

	SessionSecret string `mapstructure:"sessionSecret"` // Required when serving: session signing secret
	CookieSecure  bool   `mapstructure:"cookieSecure"`  // Set true for HTTPS

	PostCacheTTL time.Duration `mapstructure:"postCacheTTL"` // Post cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.PathPrefix = normalizePrefix(c.PathPrefix)
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content/blog"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
}

// RootPath is the route of the site's home page.
func (c SiteConfig) RootPath() string {
	return c.PathPrefix + "/"
}

// PostPath is the route of a post given its slug.
func (c SiteConfig) PostPath(slug string) string {
	return c.PathPrefix + "/" + strings.Trim(slug, "/") + "/"
}

func normalizePrefix(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the structured logger (default zap.NewNop()).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithClock replaces the wall clock used for footers and feed timestamps.
func WithClock(c Clock) Option {
	return func(a *App) {
		a.Clock = c
	}
}

// WithPostSource serves pages from src instead of the store-backed cache.
func WithPostSource(src PostSource) Option {
	return func(a *App) {
		a.Posts = src
	}
}

// WithStore uses an already opened store instead of opening DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
