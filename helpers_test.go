package pubsite

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"  Go & Echo!  ", "go-echo"},
		{"already-slugged", "already-slugged"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "/hello/"},
		{"/hello/", "/hello/"},
		{"2024/My Post", "/2024/my-post/"},
		{"a//b", "/a/b/"},
		{"", "/"},
		{"/", "/"},
	}
	for _, tt := range tests {
		if got := NormalizeSlug(tt.input); got != tt.expected {
			t.Errorf("NormalizeSlug(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		expected string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{""}, "https://example.com/"},
		{"https://example.com", []string{"/blog/hello/"}, "https://example.com/blog/hello/"},
		{"https://example.com/base", []string{"post"}, "https://example.com/base/post/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.expected {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.expected)
		}
	}
}

func TestSiteConfigPaths(t *testing.T) {
	tests := []struct {
		prefix   string
		root     string
		postPath string
	}{
		{"", "/", "/hello/"},
		{"/blog", "/blog/", "/blog/hello/"},
		{"blog/", "/blog/", "/blog/hello/"},
	}
	for _, tt := range tests {
		cfg := SiteConfig{PathPrefix: tt.prefix}
		cfg.setDefaults()
		if got := cfg.RootPath(); got != tt.root {
			t.Errorf("prefix %q: RootPath() = %q, want %q", tt.prefix, got, tt.root)
		}
		if got := cfg.PostPath("/hello/"); got != tt.postPath {
			t.Errorf("prefix %q: PostPath() = %q, want %q", tt.prefix, got, tt.postPath)
		}
	}
}

func TestSafeReturn(t *testing.T) {
	tests := []struct {
		prefix string
		target string
		want   string
	}{
		{"", "/second/", "/second/"},
		{"", "/second/?page=2", "/second/?page=2"},
		{"", "", "/"},
		{"", "//evil.com", "/"},
		{"", "/\t/evil.com", "/"},
		{"", "/\n/evil.com", "/"},
		{"", "\t//evil.com", "/"},
		{"", "/\\evil.com", "/"},
		{"", "https://evil.com/", "/"},
		{"", "javascript:alert(1)", "/"},
		{"", "mailto:a@b.c", "/"},
		{"/blog", "/blog/post/", "/blog/post/"},
		{"/blog", "/other/", "/blog/"},
		{"/blog", "/blog", "/blog/"},
		{"/blog", "/blog/\t/evil.com", "/blog/"},
	}
	for _, tt := range tests {
		a := New(SiteConfig{PathPrefix: tt.prefix}, ViewFuncs{})
		if got := a.safeReturn(tt.target); got != tt.want {
			t.Errorf("prefix %q: safeReturn(%q) = %q, want %q", tt.prefix, tt.target, got, tt.want)
		}
	}
}
