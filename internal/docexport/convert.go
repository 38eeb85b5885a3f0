package docexport

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind selects the layout used for a document.
type Kind string

const (
	KindLessonPlan Kind = "lesson_plan"
	KindInitiative Kind = "initiative"
)

// Metadata describes the document being exported. None of it is required to
// convert a lesson plan; it drives the file name and the initiative title.
type Metadata struct {
	Kind     Kind
	Title    string
	Topic    string
	AgeGroup string
	Theme    string
	Subject  string
}

// Header cells of a table section.
const (
	TeacherColumnTitle = "Hoạt động của cô"
	ChildColumnTitle   = "Hoạt động của trẻ"
	TeacherColumnPct   = 60
	ChildColumnPct     = 40
)

// Converter turns generated lesson-plan Markdown into a Document. The zero
// value is not usable; create one with NewConverter.
type Converter struct {
	speakers speakerMatcher
}

// NewConverter returns a converter recognizing the given speaker labels.
func NewConverter(vocab Vocabulary) *Converter {
	return &Converter{speakers: vocab.compile()}
}

var defaultConverter = NewConverter(DefaultVocabulary())

// Convert renders source with the default speaker vocabulary.
func Convert(source string, meta Metadata) *Document {
	return defaultConverter.Convert(source, meta)
}

type convState int

const (
	stateNormal convState = iota
	stateTableSection
)

// conversion holds the per-call state of one pass over the source.
type conversion struct {
	speakers speakerMatcher
	doc      *Document

	state   convState
	section TableSection
	current *Activity
	focus   Speaker
}

// Convert parses source line by line and returns the document tree. It never
// fails: malformed input degrades to plain paragraphs.
func (c *Converter) Convert(source string, _ Metadata) *Document {
	cv := &conversion{
		speakers: c.speakers,
		doc:      &Document{Page: DefaultPage()},
	}
	for _, raw := range strings.Split(norm.NFC.String(source), "\n") {
		cv.line(strings.TrimSpace(raw))
	}
	if cv.state == stateTableSection {
		cv.flush()
	}
	return cv.doc
}

func (cv *conversion) line(line string) {
	if isProcedureHeading(line) {
		if cv.state == stateTableSection {
			cv.flush()
		}
		text := StripDecorative(stripBoldMarkers(strings.TrimLeft(line, "#")))
		cv.emit(&Paragraph{
			Align:   AlignJustified,
			Runs:    boldRun(text),
			Spacing: Spacing{Before: 240, After: 120, Line: LineSpacing},
		})
		cv.state = stateTableSection
		return
	}

	if cv.state == stateTableSection {
		if !isSectionBoundary(line) {
			cv.tableLine(line)
			return
		}
		cv.flush()
	}
	cv.normalLine(line)
}

func (cv *conversion) tableLine(line string) {
	if line == "" {
		return
	}

	if raw, ok := activityTitle(line); ok {
		title := StripDecorative(raw)
		if title == "" {
			return
		}
		cv.closeActivity()
		cv.current = &Activity{Title: title}
		cv.focus = SpeakerTeacher
		return
	}

	if speaker, text := cv.speakers.match(line); speaker != SpeakerNone {
		cv.focus = speaker
		cv.appendLine(text)
		return
	}

	if cv.focus == SpeakerNone {
		cv.focus = SpeakerTeacher
	}
	cv.appendLine(StripDecorative(stripBullet(line)))
}

// appendLine adds text to the focused bucket of the open activity. Without an
// open activity the line is absorbed.
func (cv *conversion) appendLine(text string) {
	text = strings.TrimSpace(text)
	if cv.current == nil || text == "" {
		return
	}
	if cv.focus == SpeakerChild {
		cv.current.ChildLines = append(cv.current.ChildLines, text)
		return
	}
	cv.current.TeacherLines = append(cv.current.TeacherLines, text)
}

func (cv *conversion) closeActivity() {
	if cv.current != nil {
		cv.section.Activities = append(cv.section.Activities, *cv.current)
		cv.current = nil
	}
}

// flush closes the table section, emitting one table when it holds any
// activity, and returns the conversion to the normal state.
func (cv *conversion) flush() {
	cv.closeActivity()
	if len(cv.section.Activities) > 0 {
		cv.emit(buildTable(cv.section))
	}
	cv.section = TableSection{}
	cv.current = nil
	cv.focus = SpeakerNone
	cv.state = stateNormal
}

func buildTable(section TableSection) *Table {
	header := &Row{Header: true, Cells: []*Cell{
		{WidthPct: TeacherColumnPct, Paragraphs: []*Paragraph{{Align: AlignCenter, Runs: boldRun(TeacherColumnTitle)}}},
		{WidthPct: ChildColumnPct, Paragraphs: []*Paragraph{{Align: AlignCenter, Runs: boldRun(ChildColumnTitle)}}},
	}}
	tbl := &Table{Borders: true, Rows: []*Row{header}}

	for _, act := range section.Activities {
		left := &Cell{WidthPct: TeacherColumnPct}
		left.Paragraphs = append(left.Paragraphs, cellParagraph(StyledRuns(act.Title, true)))
		for _, l := range act.TeacherLines {
			left.Paragraphs = append(left.Paragraphs, cellParagraph(StyledRuns(l, false)))
		}

		right := &Cell{WidthPct: ChildColumnPct}
		for _, l := range act.ChildLines {
			right.Paragraphs = append(right.Paragraphs, cellParagraph(StyledRuns(l, false)))
		}
		if len(right.Paragraphs) == 0 {
			right.Paragraphs = []*Paragraph{{}}
		}

		tbl.Rows = append(tbl.Rows, &Row{Cells: []*Cell{left, right}})
	}
	return tbl
}

func cellParagraph(runs []Run) *Paragraph {
	return &Paragraph{Runs: runs, Spacing: Spacing{After: 120}}
}

func (cv *conversion) normalLine(line string) {
	b := Classify(line)
	p := &Paragraph{Align: AlignJustified, Spacing: Spacing{Line: LineSpacing}}

	switch b.Kind {
	case BlankLine:
		p = &Paragraph{Spacing: Spacing{After: 200}}
	case TitleHeading:
		p.Align = AlignCenter
		p.Runs = boldRun(strings.ToUpper(StripDecorative(b.Text)))
		p.Spacing = Spacing{Before: 240, After: 240, Line: LineSpacing}
	case SectionHeading:
		p.Runs = boldRun(strings.ToUpper(StripDecorative(b.Text)))
		p.Spacing = Spacing{Before: 240, After: 120, Line: LineSpacing}
	case SubsectionHeading, ActivityHeading, BoldLine:
		p.Runs = boldRun(StripDecorative(stripBoldMarkers(b.Text)))
	case BulletItem:
		if text := StripDecorative(b.Text); text != "" {
			p.Runs = []Run{{Text: "- " + text}}
		}
		p.Indent = Indent{Left: ListIndentLeft, Hanging: HangingIndent}
	case NumberedItem:
		p.Runs = StyledRuns(b.Text, false)
		p.Indent = Indent{Left: ListIndentLeft, Hanging: HangingIndent}
	default:
		p.Runs = StyledRuns(b.Text, false)
	}
	cv.emit(p)
}

func (cv *conversion) emit(e Element) {
	cv.doc.Elements = append(cv.doc.Elements, e)
}

func boldRun(text string) []Run {
	if text == "" {
		return nil
	}
	return []Run{{Text: text, Bold: true}}
}
