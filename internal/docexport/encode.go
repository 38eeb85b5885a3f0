package docexport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fumiama/go-docx"
)

// ErrEncode marks a failure to serialize a Document. Conversion itself never
// fails, so this is the only export error a caller needs to offer a retry for.
var ErrEncode = errors.New("docx encoding failed")

// pctUnit is the OOXML percentage unit (fiftieths of a percent).
const pctUnit = 50

// Encode writes doc as a DOCX package to w. Nothing is written to w unless
// the whole package was built.
func Encode(doc *Document, w io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEncode, r)
		}
	}()

	f := docx.New().WithDefaultTheme()
	for _, e := range doc.Elements {
		switch el := e.(type) {
		case *Paragraph:
			writeParagraph(f.AddParagraph(), el)
		case *Table:
			writeTable(f, el, doc.Page)
		}
	}
	f.Document.Body.Items = append(f.Document.Body.Items, sectionProperties(doc.Page))

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return fmt.Errorf("%w: pack: %w", ErrEncode, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w: write: %w", ErrEncode, err)
	}
	return nil
}

// Export renders source with the layout for meta.Kind, encodes it to w and
// returns the suggested file name.
func Export(w io.Writer, source string, meta Metadata) (string, error) {
	return defaultConverter.Export(w, source, meta)
}

// Export is the package-level Export with this converter's vocabulary.
func (c *Converter) Export(w io.Writer, source string, meta Metadata) (string, error) {
	if err := Encode(c.Render(source, meta), w); err != nil {
		return "", err
	}
	return FileName(meta, source), nil
}

func sectionProperties(pg Page) *docx.SectPr {
	if pg == (Page{}) {
		pg = DefaultPage()
	}
	return &docx.SectPr{
		PgSz: &docx.PgSz{W: pg.Width, H: pg.Height},
		PgMar: &docx.PgMar{
			Top:    pg.MarginTop,
			Bottom: pg.MarginBottom,
			Left:   pg.MarginLeft,
			Right:  pg.MarginRight,
			Header: 720,
			Footer: 720,
		},
	}
}

func writeParagraph(p *docx.Paragraph, src *Paragraph) {
	if src.Align != "" {
		p.Justification(string(src.Align))
	}
	// go-docx has no spacing-after attribute; Before and Line are carried.
	if sp := src.Spacing; sp.Before != 0 || sp.Line != 0 {
		paragraphProperties(p).Spacing = &docx.Spacing{Before: sp.Before, Line: sp.Line, LineRule: "auto"}
	}
	if src.Indent != (Indent{}) {
		paragraphProperties(p).Ind = &docx.Ind{Left: src.Indent.Left, Hanging: src.Indent.Hanging}
	}

	size := FontSize
	if src.Size > 0 {
		size = src.Size
	}
	sz := strconv.Itoa(size)
	for _, r := range src.Runs {
		run := p.AddText(r.Text).Size(sz).SizeCs(sz).Font(FontFamily, FontFamily, FontFamily, "")
		if r.Bold {
			run.Bold()
		}
		preserveSpace(run)
	}
}

func paragraphProperties(p *docx.Paragraph) *docx.ParagraphProperties {
	if p.Properties == nil {
		p.Properties = &docx.ParagraphProperties{}
	}
	return p.Properties
}

// preserveSpace keeps leading and trailing blanks of a run, which Word
// otherwise collapses ("**A** B" must keep the space before B).
func preserveSpace(run *docx.Run) {
	for _, c := range run.Children {
		if t, ok := c.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
}

func writeTable(f *docx.Docx, src *Table, pg Page) {
	if len(src.Rows) == 0 {
		return
	}
	if pg == (Page{}) {
		pg = DefaultPage()
	}
	textWidth := int64(pg.Width - pg.MarginLeft - pg.MarginRight)

	cols := 0
	for _, row := range src.Rows {
		cols = max(cols, len(row.Cells))
	}
	widths := make([]int64, cols)
	for i, c := range src.Rows[0].Cells {
		widths[i] = textWidth * int64(c.WidthPct) / 100
	}

	tbl := f.AddTableTwips(make([]int64, len(src.Rows)), widths, 0, nil)
	tbl.TableProperties.Width = &docx.WTableWidth{W: 100 * pctUnit, Type: "pct"}
	if !src.Borders {
		tbl.TableProperties.TableBorders = nil
	}

	for i, row := range src.Rows {
		wrow := tbl.TableRows[i]
		for j, wc := range wrow.TableCells {
			wc.TableCellProperties.VAlign = &docx.WVerticalAlignment{Val: "center"}
			if j >= len(row.Cells) {
				wc.AddParagraph()
				continue
			}
			cell := row.Cells[j]
			if cell.WidthPct > 0 {
				wc.TableCellProperties.TableCellWidth = &docx.WTableCellWidth{W: int64(cell.WidthPct * pctUnit), Type: "pct"}
			}
			for _, para := range cell.Paragraphs {
				writeParagraph(wc.AddParagraph(), para)
			}
			// A cell must hold at least one paragraph.
			if len(cell.Paragraphs) == 0 {
				wc.AddParagraph()
			}
		}
	}
}
