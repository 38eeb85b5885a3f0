// Package refdoc reads an uploaded lesson plan and reduces it to the Markdown
// subset the lesson prompt uses as a style sample.
package refdoc

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Block is one paragraph of a sample. Level is the heading depth (1-4), or 0
// for body text.
type Block struct {
	Level  int
	Bullet bool
	Text   string
}

// Sample is the outline of an uploaded document.
type Sample struct {
	Title  string
	Blocks []Block
}

func (s *Sample) add(b Block) {
	b.Text = strings.TrimSpace(b.Text)
	if b.Text == "" {
		return
	}
	if b.Level > 4 {
		b.Level = 4
	}
	s.Blocks = append(s.Blocks, b)
}

// Markdown renders the sample with "#" headings and "- " bullets, one block
// per line and a blank line before each heading.
func (s *Sample) Markdown() string {
	var sb strings.Builder
	for i, b := range s.Blocks {
		if b.Level > 0 && i > 0 {
			sb.WriteByte('\n')
		}
		switch {
		case b.Level > 0:
			sb.WriteString(strings.Repeat("#", b.Level))
			sb.WriteByte(' ')
		case b.Bullet:
			sb.WriteString("- ")
		}
		sb.WriteString(b.Text)
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String())
}

// Extractor converts raw document bytes into a Sample.
type Extractor interface {
	Extract(r io.Reader, filename string) (*Sample, error)
}

// SupportedExtensions lists file extensions accepted as samples.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the extractor for a filename.
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Extract reads a sample file and returns its Markdown outline.
func Extract(r io.Reader, filename string) (string, error) {
	ex, err := ForFile(filename)
	if err != nil {
		return "", err
	}
	s, err := ex.Extract(r, filename)
	if err != nil {
		return "", err
	}
	return s.Markdown(), nil
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
