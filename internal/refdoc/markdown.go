package refdoc

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles Markdown files using goldmark.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(r io.Reader, filename string) (*Sample, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	s := &Sample{Title: titleFromFilename(filename)}

	var walk func(n ast.Node, bullet bool)
	walk = func(n ast.Node, bullet bool) {
		switch node := n.(type) {
		case *ast.Heading:
			s.add(Block{Level: node.Level, Text: inlineText(node, src)})
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				for c := item.FirstChild(); c != nil; c = c.NextSibling() {
					walk(c, true)
				}
			}
		case *ast.Paragraph, *ast.TextBlock:
			for _, line := range strings.Split(inlineText(node, src), "\n") {
				s.add(Block{Bullet: bullet, Text: line})
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.ThematicBreak:
		default:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				walk(c, bullet)
			}
		}
	}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		walk(n, false)
	}
	return s, nil
}

// inlineText gets the text content of a goldmark block, keeping strong
// emphasis as ** so speaker labels survive.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.Emphasis:
			inner := inlineText(t, src)
			if t.Level == 2 {
				inner = "**" + inner + "**"
			}
			buf.WriteString(inner)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
