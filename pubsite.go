// Package pubsite is a personal blog front-end built with Go, Echo, and templ.
// It serves ordered Markdown posts wrapped in a shared layout with
// previous/next navigation, and can export the same pages as a static site.
//
// Users provide their own templ components via the ViewFuncs struct,
// and pubsite handles routing, middleware, storage and navigation.
package pubsite

import (
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Home        func(page Page, posts []Post) templ.Component
	Post        func(page Page, post Post, nav Neighbors) templ.Component
	NotFound    func(page Page) templ.Component
	ServerError func(page Page) templ.Component
}

// themeToggleLimit is how many theme switches one IP may make per minute.
const themeToggleLimit = 30

// App is the central pubsite application. It wires together the store,
// cache, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Posts  PostSource
	Views  ViewFuncs
	Logger *zap.Logger
	Clock  Clock

	customRoutes []func(*App)
	themeLimiter *RateLimiter
	ownsStore    bool
	ready        bool
}

// New creates a new pubsite App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config: cfg,
		Echo:   e,
		Views:  views,
		Logger: zap.NewNop(),
		Clock:  SystemClock{},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the store, builds the cache, and registers middleware and
// routes. It is called by Start; tests and exporters call it directly.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("pubsite: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	if a.Posts == nil {
		a.Posts = a.Cache
	}
	a.themeLimiter = NewRateLimiter(themeToggleLimit, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start initializes the app and serves HTTP until the server stops.
func (a *App) Start() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("pubsite: SessionSecret is required")
	}
	if err := a.Setup(); err != nil {
		return err
	}
	a.Logger.Info("serving site",
		zap.String("addr", a.Config.Addr),
		zap.String("root", a.Config.RootPath()))
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	g := a.Echo.Group(a.Config.PathPrefix)

	g.GET("/public/*", echo.WrapHandler(http.StripPrefix(a.Config.PathPrefix+"/public/", assetHandler())))
	g.GET("/robots.txt", a.handleRobots)
	g.GET("/sitemap.xml", a.handleSitemap)
	g.GET("/rss.xml", a.handleFeed)
	g.POST("/theme/", a.handleTheme)
	g.GET("/", a.handleHome)
	g.GET("/*", a.handlePost)

	if a.Config.PathPrefix != "" {
		a.Echo.GET("/", a.handlePrefixRedirect)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil && a.ownsStore {
		return a.Store.Close()
	}
	return nil
}
