package pubsite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding the imported post sequence.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the preview server read while an import rewrites the table;
	// busy_timeout makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    ord INTEGER NOT NULL DEFAULT 0,
    date TEXT NOT NULL,
    description TEXT NOT NULL,
    excerpt TEXT NOT NULL,
    html TEXT NOT NULL,
    source TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS posts_ord ON posts (ord, slug);
`)
	return err
}

const postColumns = `id, slug, title, ord, date, description, excerpt, html, source`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (Post, error) {
	var p Post
	var date string
	if err := r.Scan(&p.ID, &p.Slug, &p.Title, &p.Order, &date, &p.Description, &p.Excerpt, &p.HTML, &p.Source); err != nil {
		return Post{}, err
	}
	if date != "" {
		t, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return Post{}, fmt.Errorf("post %s: parse date %q: %w", p.Slug, date, err)
		}
		p.Date = t
	}
	return p, nil
}

// ListPosts returns every post ordered by its order field ascending, then slug.
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY ord ASC, slug ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPost returns a single post by slug, or ErrNotFound.
func (s *Store) GetPost(ctx context.Context, slug string) (Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	return p, err
}

// SavePost inserts a post, or updates the post with the same ID.
func (s *Store) SavePost(ctx context.Context, p Post) error {
	return savePost(ctx, s.db, p)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func savePost(ctx context.Context, db execer, p Post) error {
	date := ""
	if !p.Date.IsZero() {
		// Keep the authored offset so the displayed day does not shift.
		date = p.Date.Format(time.RFC3339)
	}
	// Upsert on id only; a slug taken by another post is a constraint error.
	_, err := db.ExecContext(ctx, `INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET slug = excluded.slug, title = excluded.title, ord = excluded.ord,
    date = excluded.date, description = excluded.description, excerpt = excluded.excerpt,
    html = excluded.html, source = excluded.source`,
		p.ID, p.Slug, p.Title, p.Order, date, p.Description, p.Excerpt, p.HTML, p.Source)
	return err
}

// ReplacePosts atomically swaps the stored sequence for posts.
func (s *Store) ReplacePosts(ctx context.Context, posts []Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return err
	}
	for _, p := range posts {
		if err := savePost(ctx, tx, p); err != nil {
			return fmt.Errorf("save %s: %w", p.Source, err)
		}
	}
	return tx.Commit()
}
