package docexport

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var initiativeHeader = regexp.MustCompile(`^[IVX0-9]+\.`)

// ConvertInitiative renders an experience-initiative report: a title taken
// from meta.Title followed by one paragraph per non-blank line. Numbered
// lines and short all-caps lines are bold.
func ConvertInitiative(source string, meta Metadata) *Document {
	doc := &Document{Page: DefaultPage()}

	if title := StripDecorative(meta.Title); title != "" {
		doc.Elements = append(doc.Elements, &Paragraph{
			Align:   AlignCenter,
			Runs:    boldRun(strings.ToUpper(title)),
			Spacing: Spacing{After: 400},
			Size:    TitleFontSize,
		})
	}

	for _, raw := range strings.Split(norm.NFC.String(source), "\n") {
		line := StripDecorative(stripBoldMarkers(strings.TrimLeft(strings.TrimSpace(raw), "#")))
		if line == "" {
			continue
		}
		doc.Elements = append(doc.Elements, &Paragraph{
			Align:   AlignJustified,
			Runs:    []Run{{Text: line, Bold: isInitiativeHeader(line)}},
			Spacing: Spacing{After: 200, Line: LineSpacing},
		})
	}
	return doc
}

func isInitiativeHeader(line string) bool {
	if initiativeHeader.MatchString(line) {
		return true
	}
	n := utf8.RuneCountInString(line)
	return n > 5 && n < 100 && line == strings.ToUpper(line) && line != strings.ToLower(line)
}

// Render picks the layout for meta.Kind using the default vocabulary.
func Render(source string, meta Metadata) *Document {
	return defaultConverter.Render(source, meta)
}

// Render picks the layout for meta.Kind.
func (c *Converter) Render(source string, meta Metadata) *Document {
	if meta.Kind == KindInitiative {
		return ConvertInitiative(source, meta)
	}
	return c.Convert(source, meta)
}
