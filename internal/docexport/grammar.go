package docexport

import (
	"regexp"
	"strings"
)

// BlockKind classifies one source line.
type BlockKind int

const (
	BlankLine BlockKind = iota
	TableSectionMarker
	TitleHeading      // "# "
	SectionHeading    // "## "
	SubsectionHeading // "### "
	ActivityHeading   // "#### "
	BoldLine
	BulletItem
	NumberedItem
	PlainParagraph
)

var blockKindNames = [...]string{
	BlankLine:          "blank",
	TableSectionMarker: "table-section",
	TitleHeading:       "title",
	SectionHeading:     "section",
	SubsectionHeading:  "subsection",
	ActivityHeading:    "activity",
	BoldLine:           "bold-line",
	BulletItem:         "bullet",
	NumberedItem:       "numbered",
	PlainParagraph:     "paragraph",
}

func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return "unknown"
}

// Block is a classified line. Text is the line with its prefix removed but
// otherwise untouched.
type Block struct {
	Kind BlockKind
	Text string
}

// Matcher recognizes one block kind in a trimmed line.
type Matcher struct {
	Kind  BlockKind
	Match func(line string) (text string, ok bool)
}

// procedureKeyword marks the procedure heading that opens a table section.
const procedureKeyword = "tiến hành"

var numberedPrefix = regexp.MustCompile(`^\d+\.`)

func prefixMatcher(kind BlockKind, prefix string) Matcher {
	return Matcher{Kind: kind, Match: func(line string) (string, bool) {
		if strings.HasPrefix(line, prefix) {
			return line[len(prefix):], true
		}
		return "", false
	}}
}

// Grammar is the ordered list of line matchers used outside table sections.
// The first match wins: table marker beats headings, headings beat a bold
// line, a bold line beats a bullet, a bullet beats a numbered item.
var Grammar = []Matcher{
	{Kind: BlankLine, Match: func(line string) (string, bool) {
		return "", line == ""
	}},
	{Kind: TableSectionMarker, Match: func(line string) (string, bool) {
		if !isProcedureHeading(line) {
			return "", false
		}
		text := strings.TrimLeft(line, "#")
		return stripBoldMarkers(text), true
	}},
	prefixMatcher(TitleHeading, "# "),
	prefixMatcher(SectionHeading, "## "),
	prefixMatcher(SubsectionHeading, "### "),
	prefixMatcher(ActivityHeading, "#### "),
	{Kind: BoldLine, Match: func(line string) (string, bool) {
		if strings.HasPrefix(line, boldMarker) && strings.HasSuffix(line, boldMarker) {
			return stripBoldMarkers(line), true
		}
		return "", false
	}},
	{Kind: BulletItem, Match: func(line string) (string, bool) {
		if strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "- ") {
			return line[2:], true
		}
		return "", false
	}},
	{Kind: NumberedItem, Match: func(line string) (string, bool) {
		return line, numberedPrefix.MatchString(line)
	}},
	{Kind: PlainParagraph, Match: func(line string) (string, bool) {
		return line, true
	}},
}

// Classify runs the grammar over a trimmed line.
func Classify(line string) Block {
	for _, m := range Grammar {
		if text, ok := m.Match(line); ok {
			return Block{Kind: m.Kind, Text: text}
		}
	}
	return Block{Kind: PlainParagraph, Text: line}
}

// isProcedureHeading reports whether a trimmed line opens a table section:
// it names the procedure step and is a level-3 heading or a bold "3." line.
func isProcedureHeading(line string) bool {
	if !strings.Contains(strings.ToLower(line), procedureKeyword) {
		return false
	}
	level3 := strings.HasPrefix(line, "###") && !strings.HasPrefix(line, "####")
	return level3 || strings.HasPrefix(line, "**3.")
}

// activityTitle returns the heading text of a "### " or "#### " line inside a
// table section.
func activityTitle(line string) (string, bool) {
	for _, prefix := range []string{"#### ", "### "} {
		if strings.HasPrefix(line, prefix) {
			return line[len(prefix):], true
		}
	}
	return "", false
}

// isSectionBoundary reports whether a trimmed line ends a table section.
func isSectionBoundary(line string) bool {
	return strings.HasPrefix(line, "# ") || strings.HasPrefix(line, "## ")
}

var leadingBullet = regexp.MustCompile(`^[-*]\s+`)

func stripBullet(line string) string {
	return leadingBullet.ReplaceAllString(line, "")
}

// Speaker identifies the narration bucket of a table line.
type Speaker int

const (
	SpeakerNone Speaker = iota
	SpeakerTeacher
	SpeakerChild
)

// Vocabulary lists the role labels that mark speaker lines. Matching is
// case-insensitive and requires a colon after the label.
type Vocabulary struct {
	Teacher []string `yaml:"teacher"`
	Child   []string `yaml:"child"`
}

// DefaultVocabulary returns the labels used by generated lesson plans.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Teacher: []string{"Cô", "Cô giáo", "Giáo viên"},
		Child:   []string{"Trẻ", "Học sinh", "Cả lớp"},
	}
}

type speakerMatcher struct {
	teacher *regexp.Regexp
	child   *regexp.Regexp
}

func (v Vocabulary) compile() speakerMatcher {
	return speakerMatcher{
		teacher: speakerPattern(v.Teacher),
		child:   speakerPattern(v.Child),
	}
}

// speakerPattern accepts "- **Cô**: x", "* **Cô:** x" and "Cô: x".
func speakerPattern(labels []string) *regexp.Regexp {
	if len(labels) == 0 {
		return nil
	}
	sorted := append([]string(nil), labels...)
	// Longer labels first so "Cô giáo" wins over "Cô".
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && len([]rune(sorted[j])) > len([]rune(sorted[j-1])); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	quoted := make([]string, len(sorted))
	for i, l := range sorted {
		quoted[i] = regexp.QuoteMeta(l)
	}
	alt := "(?:" + strings.Join(quoted, "|") + ")"
	return regexp.MustCompile(`(?i)^[-*]?\s*(?:\*\*` + alt + `\s*:\*\*|\*\*` + alt + `\*\*\s*:|` + alt + `\s*:)\s*(.*)$`)
}

// match returns the speaker and trailing text of a speaker line.
func (m speakerMatcher) match(line string) (Speaker, string) {
	if m.teacher != nil {
		if sm := m.teacher.FindStringSubmatch(line); sm != nil {
			return SpeakerTeacher, sm[1]
		}
	}
	if m.child != nil {
		if sm := m.child.FindStringSubmatch(line); sm != nil {
			return SpeakerChild, sm[1]
		}
	}
	return SpeakerNone, ""
}
