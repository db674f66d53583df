package pubsite

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"
)

// ExportResult summarizes a static export.
type ExportResult struct {
	Pages []string // files written, relative to the output directory
}

// Export renders every page of the site into outDir as static files:
// index.html, one index.html per post, 404.html, rss.xml, sitemap.xml,
// robots.txt and the embedded assets under public/.
//
// Pages are rendered into a staging directory next to outDir, which replaces
// outDir only once everything has been written. A failed export leaves the
// previous site untouched. A post that cannot be placed in the sequence
// aborts the export.
func (a *App) Export(ctx context.Context, outDir string) (ExportResult, error) {
	var res ExportResult
	if err := a.Setup(); err != nil {
		return res, err
	}
	target, err := a.checkOutputDir(outDir)
	if err != nil {
		return res, err
	}
	stage, err := newStagingDir(target)
	if err != nil {
		return res, err
	}
	published := false
	defer func() {
		if !published {
			os.RemoveAll(stage)
		}
	}()

	posts, err := a.Store.ListPosts(ctx)
	if err != nil {
		return res, fmt.Errorf("export: list posts: %w", err)
	}

	write := func(rel string, fn func(io.Writer) error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		dst := filepath.Join(stage, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		f, err := os.Create(dst)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("export %s: %w", rel, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		res.Pages = append(res.Pages, rel)
		a.Logger.Debug("exported", zap.String("file", rel))
		return nil
	}
	component := func(cmp templ.Component) func(io.Writer) error {
		return func(w io.Writer) error { return cmp.Render(ctx, w) }
	}

	if err := write("index.html", component(a.Views.Home(a.staticPage(a.Config.RootPath(), a.homeMeta()), posts))); err != nil {
		return res, err
	}
	for _, p := range posts {
		nav, err := ResolveNeighbors(posts, p.ID)
		if err != nil {
			return res, fmt.Errorf("export %s: %w", p.Slug, err)
		}
		page := a.staticPage(a.Config.PostPath(p.Slug), a.postMeta(p))
		rel := strings.Trim(NormalizeSlug(p.Slug), "/") + "/index.html"
		if err := write(rel, component(a.Views.Post(page, p, nav))); err != nil {
			return res, err
		}
	}
	notFound := a.staticPage(a.Config.PathPrefix+"/404.html", PageMeta{Title: "Not Found"})
	if err := write("404.html", component(a.Views.NotFound(notFound))); err != nil {
		return res, err
	}
	if err := write("rss.xml", func(w io.Writer) error { return a.writeRSS(w, posts) }); err != nil {
		return res, err
	}
	if err := write("sitemap.xml", func(w io.Writer) error { return a.writeSitemap(w, posts) }); err != nil {
		return res, err
	}
	if err := write("robots.txt", func(w io.Writer) error {
		_, err := io.WriteString(w, a.robotsTxt())
		return err
	}); err != nil {
		return res, err
	}

	assets := assetFS()
	err = fs.WalkDir(assets, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		return write("public/"+path, func(w io.Writer) error {
			src, err := assets.Open(path)
			if err != nil {
				return err
			}
			defer src.Close()
			_, err = io.Copy(w, src)
			return err
		})
	})
	if err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := publish(stage, target); err != nil {
		return res, err
	}
	published = true

	a.Logger.Info("export complete",
		zap.String("dir", target),
		zap.Int("posts", len(posts)),
		zap.Int("files", len(res.Pages)))
	return res, nil
}

// staticPage is the view context for an exported page. There is no visitor
// session, so the theme is the default and no CSRF token exists.
func (a *App) staticPage(route string, meta PageMeta) Page {
	return Page{
		Site:      a.Config,
		RoutePath: route,
		Clock:     a.Clock,
		Theme:     ThemeLight,
		Meta:      meta,
	}
}

// checkOutputDir resolves dir to an absolute path and refuses targets whose
// replacement would destroy the working directory or the site's own sources.
func (a *App) checkOutputDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("export: output directory is empty")
	}
	target, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("export: resolve %q: %w", dir, err)
	}
	if target == filepath.Dir(target) {
		return "", fmt.Errorf("export: refusing to replace filesystem root %q", dir)
	}

	protected := map[string]string{}
	if wd, err := os.Getwd(); err == nil {
		protected["the working directory"] = wd
	}
	if a.Config.ContentDir != "" {
		protected["the content directory"] = a.Config.ContentDir
	}
	if a.Config.DatabasePath != "" {
		protected["the database"] = a.Config.DatabasePath
	}
	resolved := resolvePath(target)
	for what, p := range protected {
		if within(resolvePath(p), resolved) {
			return "", fmt.Errorf("export: refusing to replace %q, it contains %s", dir, what)
		}
	}
	return target, nil
}

// resolvePath makes p absolute and resolves symlinks in its existing part.
func resolvePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		return r
	}
	if r, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(r, filepath.Base(abs))
	}
	return abs
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func newStagingDir(target string) (string, error) {
	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	stage, err := os.MkdirTemp(parent, "."+filepath.Base(target)+"-export-*")
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if err := os.Chmod(stage, 0o755); err != nil {
		os.RemoveAll(stage)
		return "", fmt.Errorf("export: %w", err)
	}
	return stage, nil
}

// publish moves stage into place at target. An existing target is set aside
// first and restored if the move fails.
func publish(stage, target string) error {
	backup := ""
	if _, err := os.Lstat(target); err == nil {
		backup = stage + ".old"
		if err := os.Rename(target, backup); err != nil {
			return fmt.Errorf("export: set aside %s: %w", target, err)
		}
	}
	if err := os.Rename(stage, target); err != nil {
		if backup != "" {
			os.Rename(backup, target)
		}
		return fmt.Errorf("export: publish %s: %w", target, err)
	}
	if backup != "" {
		if err := os.RemoveAll(backup); err != nil {
			return fmt.Errorf("export: remove previous output: %w", err)
		}
	}
	return nil
}
