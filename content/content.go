// Package content loads Markdown posts with YAML front matter from a
// directory tree and turns them into the ordered post sequence.
package content

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/markdown"
)

// FrontMatter is the metadata block at the top of a post.
type FrontMatter struct {
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
	Order       int    `yaml:"order"`
	Slug        string `yaml:"slug"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// idNamespace scopes post IDs so they stay stable across imports.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/eringen/pubsite/post"))

// Loader reads posts from Dir.
type Loader struct {
	Dir    string
	Logger *zap.Logger
}

// NewLoader creates a Loader for dir. A nil logger discards output.
func NewLoader(dir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{Dir: dir, Logger: logger}
}

// Load walks the directory for *.md files and returns the posts sorted by
// order ascending, then slug.
func (l *Loader) Load(ctx context.Context) ([]pubsite.Post, error) {
	info, err := os.Stat(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content: %s is not a directory", l.Dir)
	}

	var posts []pubsite.Post
	err = filepath.WalkDir(l.Dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(l.Dir, p)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("content: read %s: %w", rel, err)
		}
		post, err := l.parse(filepath.ToSlash(rel), src)
		if err != nil {
			return err
		}
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortPosts(posts)
	if err := checkUniqueSlugs(posts); err != nil {
		return nil, err
	}
	for _, w := range ChronologyWarnings(posts) {
		l.Logger.Warn("post order disagrees with dates", zap.String("detail", w))
	}
	l.Logger.Info("content loaded", zap.String("dir", l.Dir), zap.Int("posts", len(posts)))
	return posts, nil
}

func (l *Loader) parse(rel string, src []byte) (pubsite.Post, error) {
	var fm FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(src), &fm)
	if err != nil {
		l.Logger.Warn("unreadable front matter, treating file as plain markdown",
			zap.String("file", rel), zap.Error(err))
		body = src
		fm = FrontMatter{}
	}

	html, err := markdown.Render(body)
	if err != nil {
		return pubsite.Post{}, fmt.Errorf("content: render %s: %w", rel, err)
	}

	slug := pubsite.NormalizeSlug(fm.Slug)
	if fm.Slug == "" {
		slug = slugFromPath(rel)
	}
	if slug == "/" {
		return pubsite.Post{}, fmt.Errorf("content: %s resolves to the site root; give it a slug", rel)
	}

	title := fm.Title
	if title == "" {
		title = titleFromPath(rel)
	}

	var date time.Time
	if fm.Date != "" {
		date, err = parseDate(fm.Date)
		if err != nil {
			return pubsite.Post{}, fmt.Errorf("content: %s: %w", rel, err)
		}
	}

	return pubsite.Post{
		ID:          uuid.NewSHA1(idNamespace, []byte(rel)).String(),
		Title:       title,
		Slug:        slug,
		Order:       fm.Order,
		Date:        date,
		Description: fm.Description,
		Excerpt:     markdown.Excerpt(body, markdown.ExcerptLength),
		HTML:        html,
		Source:      rel,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q, use YYYY-MM-DD or RFC 3339", s)
}

// slugFromPath derives a route from a file path relative to the content
// root: "hello/index.md" and "hello.md" both become "/hello/".
func slugFromPath(rel string) string {
	dir, file := path.Split(rel)
	name := strings.TrimSuffix(file, path.Ext(file))
	if strings.EqualFold(name, "index") {
		return pubsite.NormalizeSlug(dir)
	}
	return pubsite.NormalizeSlug(dir + name)
}

func titleFromPath(rel string) string {
	dir, file := path.Split(rel)
	name := strings.TrimSuffix(file, path.Ext(file))
	if strings.EqualFold(name, "index") && dir != "" {
		name = path.Base(dir)
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(name)
}

func sortPosts(posts []pubsite.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Order != posts[j].Order {
			return posts[i].Order < posts[j].Order
		}
		return posts[i].Slug < posts[j].Slug
	})
}

func checkUniqueSlugs(posts []pubsite.Post) error {
	seen := make(map[string]string, len(posts))
	for _, p := range posts {
		if other, ok := seen[p.Slug]; ok {
			return fmt.Errorf("content: %s and %s both use slug %s", other, p.Source, p.Slug)
		}
		seen[p.Slug] = p.Source
	}
	return nil
}

// ChronologyWarnings reports adjacent posts whose order contradicts their
// dates. Undated posts are ignored.
func ChronologyWarnings(posts []pubsite.Post) []string {
	var out []string
	for i := 1; i < len(posts); i++ {
		prev, cur := posts[i-1], posts[i]
		if prev.Date.IsZero() || cur.Date.IsZero() {
			continue
		}
		if cur.Date.Before(prev.Date) {
			out = append(out, fmt.Sprintf("%s (order %d, %s) comes after %s (order %d, %s)",
				cur.Source, cur.Order, cur.Date.Format("2006-01-02"),
				prev.Source, prev.Order, prev.Date.Format("2006-01-02")))
		}
	}
	return out
}

// Import loads dir and replaces the store's posts with the result.
func Import(ctx context.Context, dir string, store *pubsite.Store, logger *zap.Logger) ([]pubsite.Post, error) {
	posts, err := NewLoader(dir, logger).Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.ReplacePosts(ctx, posts); err != nil {
		return nil, fmt.Errorf("content: import: %w", err)
	}
	return posts, nil
}
