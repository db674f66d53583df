package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/views"
)

func newServeCmd(c *cli) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Imports content and serves the site",
		Long: `The serve command imports the content directory into the database and
serves the blog over HTTP. With --watch, edits to the content directory are
re-imported while the server runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), watch)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-import content when files change")
	return cmd
}

func (c *cli) runServe(ctx context.Context, watch bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := pubsite.NewStore(c.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := content.Import(ctx, c.cfg.ContentDir, store, c.logger); err != nil {
		return err
	}

	app := pubsite.New(c.cfg, views.Funcs(),
		pubsite.WithLogger(c.logger),
		pubsite.WithStore(store),
	)
	defer app.Close()
	if err := app.Setup(); err != nil {
		return err
	}

	if watch {
		w, err := newContentWatcher(c.cfg.ContentDir, c.logger)
		if err != nil {
			return err
		}
		defer w.Close()
		go w.run(ctx, func() {
			if _, err := content.Import(ctx, c.cfg.ContentDir, store, c.logger); err != nil {
				c.logger.Error("re-import failed", zap.Error(err))
				return
			}
			app.Cache.Invalidate()
			c.logger.Info("content re-imported")
		})
	}

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		c.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.Echo.Shutdown(shutdownCtx)
	}
}

// contentWatcher reports changes anywhere below a directory tree.
type contentWatcher struct {
	w        *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration
}

func newContentWatcher(root string, logger *zap.Logger) (*contentWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	cw := &contentWatcher{w: w, logger: logger, debounce: 200 * time.Millisecond}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		w.Close()
		return nil, err
	}
	logger.Info("watching content", zap.String("dir", root))
	return cw, nil
}

func (cw *contentWatcher) Close() error {
	return cw.w.Close()
}

// run calls onChange once per burst of filesystem events until ctx ends.
func (cw *contentWatcher) run(ctx context.Context, onChange func()) {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-cw.w.Events:
			if !ok {
				return
			}
			cw.logger.Debug("change detected", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := cw.w.Add(event.Name); err != nil {
						cw.logger.Warn("cannot watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
				}
			}
			if timer == nil {
				timer = time.NewTimer(cw.debounce)
			} else {
				timer.Reset(cw.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			if !errors.Is(err, fsnotify.ErrEventOverflow) {
				cw.logger.Error("watcher error", zap.Error(err))
			}
		}
	}
}
