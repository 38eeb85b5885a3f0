package docexport

import (
	"regexp"
	"strings"
)

// decorativeRanges are the code point ranges removed by StripDecorative.
// General punctuation (U+2010–U+205F) is kept: dashes and quotes are text.
var decorativeRanges = [][2]rune{
	{0x200D, 0x200D},   // zero-width joiner
	{0x20E3, 0x20E3},   // combining enclosing keycap
	{0x2190, 0x26FF},   // arrows, technical, geometric shapes, misc symbols
	{0x2700, 0x27BF},   // dingbats
	{0xE000, 0xF8FF},   // private use
	{0xFE00, 0xFE0F},   // variation selectors
	{0x1F000, 0x1FAFF}, // tiles, cards, emoji, pictographs
}

func isDecorative(r rune) bool {
	for _, rg := range decorativeRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

// StripDecorative removes emoji and pictographic glyphs and trims the result.
func StripDecorative(text string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if isDecorative(r) {
			return -1
		}
		return r
	}, text))
}

const boldMarker = "**"

var boldSpan = regexp.MustCompile(`\*\*(.*?)\*\*`)

// StyledRuns splits text on paired ** delimiters. Text inside a pair is bold;
// text outside takes forceBold. An odd number of markers leaves the whole line
// as a single literal run.
func StyledRuns(text string, forceBold bool) []Run {
	cleaned := StripDecorative(text)
	if cleaned == "" {
		return nil
	}
	if strings.Count(cleaned, boldMarker)%2 != 0 {
		return []Run{{Text: cleaned, Bold: forceBold}}
	}

	var runs []Run
	emit := func(s string, bold bool) {
		if s != "" {
			runs = append(runs, Run{Text: s, Bold: bold})
		}
	}
	pos := 0
	for _, m := range boldSpan.FindAllStringSubmatchIndex(cleaned, -1) {
		emit(cleaned[pos:m[0]], forceBold)
		emit(cleaned[m[2]:m[3]], true)
		pos = m[1]
	}
	emit(cleaned[pos:], forceBold)
	return runs
}

// stripBoldMarkers removes every ** delimiter.
func stripBoldMarkers(s string) string {
	return strings.ReplaceAll(s, boldMarker, "")
}
