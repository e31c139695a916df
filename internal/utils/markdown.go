package utils

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
)

// SummaryLength is the number of runes kept when deriving a summary.
const SummaryLength = 200

// plaintextMarkdown renders Markdown to its bare text, dropping markup,
// links targets, images and code blocks.
var plaintextMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRenderer(plaintextRenderer{}),
)

type plaintextRenderer struct{}

var _ renderer.Renderer = plaintextRenderer{}

var backslashRegex = regexp.MustCompile("\\\\(?P<char>[\\\\\\x60!\"#$%&'()*+,-./:;<=>?@\\[\\]^_{|}~])")

func (r plaintextRenderer) Render(w io.Writer, source []byte, n ast.Node) error {
	return ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock, ast.KindRawHTML, ast.KindImage:
			return ast.WalkSkipChildren, nil
		case ast.KindText:
			n := n.(*ast.Text)
			if _, err := w.Write(backslashRegex.ReplaceAll(n.Segment.Value(source), []byte("$1"))); err != nil {
				return ast.WalkStop, err
			}
			if n.SoftLineBreak() || n.HardLineBreak() {
				if _, err := w.Write([]byte(" ")); err != nil {
					return ast.WalkStop, err
				}
			}
		case ast.KindString:
			if _, err := w.Write(n.(*ast.String).Value); err != nil {
				return ast.WalkStop, err
			}
		case ast.KindParagraph, ast.KindHeading, ast.KindListItem:
			if _, err := w.Write([]byte(" ")); err != nil {
				return ast.WalkStop, err
			}
		}

		return ast.WalkContinue, nil
	})
}

func (r plaintextRenderer) AddOptions(...renderer.Option) {}

// PlainText strips Markdown from src and collapses whitespace.
func PlainText(src string) string {
	var buf bytes.Buffer
	if err := plaintextMarkdown.Convert([]byte(src), &buf); err != nil {
		return strings.Join(strings.Fields(src), " ")
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

// Summarize returns the first SummaryLength runes of the plain text of a
// Markdown document.
func Summarize(content string) string {
	text := PlainText(content)
	runes := []rune(text)
	if len(runes) <= SummaryLength {
		return text
	}
	return strings.TrimSpace(string(runes[:SummaryLength]))
}
