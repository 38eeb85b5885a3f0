package refdoc

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXExtractor handles .docx files. Heading styles become "#" headings and
// two-column activity tables become "####" steps with "Cô:" and "Trẻ:" lines,
// the same shape the exporter reads back.
type DOCXExtractor struct {
	// MaxBytes bounds the in-memory copy of the upload. Zero means 20MB.
	MaxBytes int64
}

func (e *DOCXExtractor) Extract(r io.Reader, filename string) (*Sample, error) {
	data, err := readLimited(r, e.MaxBytes)
	if err != nil {
		return nil, err
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	s := &Sample{Title: titleFromFilename(filename)}
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			text, allBold := docxParagraphText(it)
			if level := docxHeadingLevel(it); level > 0 {
				s.add(Block{Level: level, Text: stripBold(text)})
				continue
			}
			if allBold && text != "" {
				text = "**" + stripBold(text) + "**"
			}
			s.add(Block{Text: text})
		case *docx.Table:
			addActivityTable(s, it)
		}
	}
	return s, nil
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		max = 20 << 20
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("upload exceeds %d bytes", max)
	}
	return data, nil
}

// addActivityTable renders a teacher/child table. The first paragraph of the
// left cell is the step title. Tables of another shape are flattened to text.
func addActivityTable(s *Sample, tbl *docx.Table) {
	for i, row := range tbl.TableRows {
		if len(row.TableCells) != 2 {
			for _, c := range row.TableCells {
				for _, p := range cellParagraphs(c) {
					s.add(Block{Text: p})
				}
			}
			continue
		}
		left, right := cellParagraphs(row.TableCells[0]), cellParagraphs(row.TableCells[1])
		if i == 0 && len(left) == 1 && strings.Contains(strings.ToLower(left[0]), "của cô") {
			continue
		}
		if len(left) > 0 {
			s.add(Block{Level: 4, Text: stripBold(left[0])})
			left = left[1:]
		}
		for _, p := range left {
			s.add(Block{Bullet: true, Text: "**Cô**: " + p})
		}
		for _, p := range right {
			s.add(Block{Bullet: true, Text: "**Trẻ**: " + p})
		}
	}
}

func cellParagraphs(c *docx.WTableCell) []string {
	var out []string
	for _, p := range c.Paragraphs {
		if text, _ := docxParagraphText(p); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	if !strings.HasPrefix(style, "heading") || len(style) != len("heading")+1 {
		return 0
	}
	level := int(style[len(style)-1] - '0')
	if level < 1 || level > 9 {
		return 0
	}
	return min(level, 4)
}

// docxParagraphText returns the paragraph text with bold runs wrapped in **,
// and whether every non-blank run was bold.
func docxParagraphText(para *docx.Paragraph) (string, bool) {
	var buf strings.Builder
	allBold, seen := true, false
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var rt strings.Builder
		for _, rc := range run.Children {
			switch t := rc.(type) {
			case *docx.Text:
				rt.WriteString(t.Text)
			case *docx.Tab:
				rt.WriteByte(' ')
			}
		}
		text := rt.String()
		if strings.TrimSpace(text) == "" {
			buf.WriteString(text)
			continue
		}
		seen = true
		if run.RunProperties != nil && run.RunProperties.Bold != nil {
			buf.WriteString("**" + text + "**")
			continue
		}
		allBold = false
		buf.WriteString(text)
	}
	out := strings.TrimSpace(strings.ReplaceAll(buf.String(), "****", ""))
	return out, seen && allBold
}

func stripBold(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "**", ""))
}
