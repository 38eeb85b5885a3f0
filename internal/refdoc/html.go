package refdoc

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLExtractor handles HTML files, including Word documents saved as web
// pages.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Extract(r io.Reader, filename string) (*Sample, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	s := &Sample{Title: titleFromFilename(filename)}
	if title := findElement(doc, atom.Title); title != nil {
		if t := textContent(title); t != "" {
			s.Title = t
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.DataAtom); level > 0 {
				s.add(Block{Level: level, Text: textContent(n)})
				return
			}
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Nav, atom.Footer, atom.Head:
				return
			case atom.Li:
				s.add(Block{Bullet: true, Text: textContent(n)})
				return
			case atom.P, atom.Td, atom.Th, atom.Blockquote:
				s.add(Block{Text: textContent(n)})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findElement(doc, atom.Body); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return s, nil
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4, atom.H5, atom.H6:
		return 4
	}
	return 0
}

// textContent joins the text nodes under n, wrapping <b> and <strong> in **
// and collapsing whitespace.
func textContent(n *html.Node) string {
	var buf strings.Builder
	writeText(&buf, n, false)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// writeText appends the text under n to buf. Bold elements nested in bold
// are not wrapped again.
func writeText(buf *strings.Builder, n *html.Node, inBold bool) {
	switch {
	case n.Type == html.TextNode:
		buf.WriteString(n.Data)
		return
	case n.Type == html.ElementNode && n.DataAtom == atom.Br:
		buf.WriteByte(' ')
		return
	case !inBold && n.Type == html.ElementNode && (n.DataAtom == atom.B || n.DataAtom == atom.Strong):
		var inner strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeText(&inner, c, true)
		}
		raw := inner.String()
		s := strings.Join(strings.Fields(raw), " ")
		if s == "" {
			buf.WriteString(raw)
			return
		}
		// Blanks at the edges stay outside the markers.
		if strings.TrimLeftFunc(raw, unicode.IsSpace) != raw {
			buf.WriteByte(' ')
		}
		buf.WriteString("**" + s + "**")
		if strings.TrimRightFunc(raw, unicode.IsSpace) != raw {
			buf.WriteByte(' ')
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(buf, c, inBold)
	}
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
