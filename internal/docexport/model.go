package docexport

import "strings"

// Alignment is a paragraph justification value.
type Alignment string

const (
	AlignLeft      Alignment = "left"
	AlignCenter    Alignment = "center"
	AlignJustified Alignment = "both"
)

// Page geometry and typography. Units are twips unless noted.
const (
	PageWidth    = 11906 // A4 portrait
	PageHeight   = 16838
	MarginTop    = 1134 // 2 cm
	MarginBottom = 1134
	MarginLeft   = 1701 // 3 cm
	MarginRight  = 1134

	FontFamily     = "Times New Roman"
	FontSize       = 28 // half-points, 14pt
	TitleFontSize  = 32 // half-points, 16pt
	LineSpacing    = 360
	HangingIndent  = 360
	ListIndentLeft = 720
)

// Page describes the section geometry of a document.
type Page struct {
	Width        int
	Height       int
	MarginTop    int
	MarginBottom int
	MarginLeft   int
	MarginRight  int
}

// DefaultPage is the fixed portrait A4 page used for every export.
func DefaultPage() Page {
	return Page{
		Width:        PageWidth,
		Height:       PageHeight,
		MarginTop:    MarginTop,
		MarginBottom: MarginBottom,
		MarginLeft:   MarginLeft,
		MarginRight:  MarginRight,
	}
}

// Run is a span of text with uniform styling.
type Run struct {
	Text string
	Bold bool
}

// Spacing holds paragraph spacing in twips. Zero means unset.
type Spacing struct {
	Before int
	After  int
	Line   int
}

// Indent holds paragraph indentation in twips. Zero means unset.
type Indent struct {
	Left    int
	Hanging int
}

// Paragraph is a styled block of runs.
type Paragraph struct {
	Align   Alignment
	Runs    []Run
	Spacing Spacing
	Indent  Indent
	// Size overrides FontSize when non-zero.
	Size int
}

// Text returns the concatenated run text.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Cell is one table cell. WidthPct is a percentage of the table width.
type Cell struct {
	WidthPct   int
	Paragraphs []*Paragraph
}

// Text returns the text of all paragraphs joined by newlines.
func (c *Cell) Text() string {
	var sb strings.Builder
	for i, p := range c.Paragraphs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p.Text())
	}
	return sb.String()
}

// Row is a table row.
type Row struct {
	Cells  []*Cell
	Header bool
}

// Table is a bordered grid spanning the full text width.
type Table struct {
	Rows    []*Row
	Borders bool
}

// Element is either a *Paragraph or a *Table.
type Element interface {
	element()
}

func (*Paragraph) element() {}
func (*Table) element()     {}

// Document is the output tree of a conversion, ready for encoding.
type Document struct {
	Page     Page
	Elements []Element
}

// Tables returns the tables of the document in order.
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, e := range d.Elements {
		if t, ok := e.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// Activity is one procedure step inside a table section.
type Activity struct {
	Title        string
	TeacherLines []string
	ChildLines   []string
}

// TableSection is the ordered set of activities rendered as one table.
type TableSection struct {
	Activities []Activity
}
