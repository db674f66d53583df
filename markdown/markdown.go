// Package markdown converts post sources to HTML with goldmark and exposes
// rendered HTML as templ components.
package markdown

import (
	"bytes"
	"context"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/a-h/templ"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// ExcerptLength is the default excerpt size in runes.
const ExcerptLength = 160

// HighlightStyle is the chroma style used for fenced code blocks.
const HighlightStyle = "dracula"

// New returns the goldmark converter used for posts: GitHub flavored
// Markdown, heading anchors, chroma highlighting, and raw HTML passthrough.
func New() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(HighlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithLineNumbers(false),
					chromahtml.TabWidth(2),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
}

var converter = New()

// Render converts Markdown source to HTML.
func Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert(src, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// HTML returns a templ.Component that writes already rendered HTML verbatim.
func HTML(rendered string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, rendered)
		return err
	})
}

// PlainText extracts the readable text of a Markdown document, skipping
// code blocks and raw HTML. Blocks are separated by a single space.
func PlainText(src []byte) string {
	doc := converter.Parser().Parse(text.NewReader(src))
	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock, ast.KindRawHTML:
			return ast.WalkSkipChildren, nil
		}
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// Excerpt returns at most n runes of the document's plain text, cut at a
// word boundary and suffixed with an ellipsis when truncated.
func Excerpt(src []byte, n int) string {
	return Prune(PlainText(src), n)
}

// Prune shortens s to at most n runes without splitting a word.
func Prune(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := n
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = n
	}
	return strings.TrimRightFunc(string(runes[:cut]), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) + "…"
}
