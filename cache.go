package pubsite

import (
	"context"
	"sync"
	"time"
)

// PostSource supplies the post sequence to the HTTP handlers. *PostCache
// is the default implementation.
type PostSource interface {
	ListPosts(ctx context.Context) ([]Post, error)
	GetPost(ctx context.Context, slug string) (Post, error)
}

// PostCache is an in-memory cache of the post sequence with TTL.
type PostCache struct {
	mu      sync.RWMutex
	posts   []Post
	bySlug  map[string]int
	fetched time.Time
	ttl     time.Duration
	store   *Store
	now     func() time.Time
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl, now: time.Now}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.bySlug = nil
	c.mu.Unlock()
}

func (c *PostCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts(ctx)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []Post{}
	}
	bySlug := make(map[string]int, len(posts))
	for i, p := range posts {
		bySlug[p.Slug] = i
	}
	c.posts = posts
	c.bySlug = bySlug
	c.fetched = c.now()
	return nil
}

// ensureLoaded returns the cached sequence after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]Post, map[string]int, error) {
	c.mu.RLock()
	if c.valid() {
		posts, bySlug := c.posts, c.bySlug
		c.mu.RUnlock()
		return posts, bySlug, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, err
	}
	return c.posts, c.bySlug, nil
}

// ListPosts returns the ordered post sequence. Callers must not mutate it.
func (c *PostCache) ListPosts(ctx context.Context) ([]Post, error) {
	posts, _, err := c.ensureLoaded(ctx)
	return posts, err
}

// GetPost returns a single post by slug from the cache.
func (c *PostCache) GetPost(ctx context.Context, slug string) (Post, error) {
	posts, bySlug, err := c.ensureLoaded(ctx)
	if err != nil {
		return Post{}, err
	}
	i, ok := bySlug[slug]
	if !ok {
		return Post{}, ErrNotFound
	}
	return posts[i], nil
}
