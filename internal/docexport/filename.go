package docexport

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultFileName is used when no metadata is known.
const DefaultFileName = "GIAO_AN_MAM_NON.docx"

var (
	ageRange   = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)
	themeLine  = regexp.MustCompile(`(?i)- \*\*Chủ đề\*\*:\s*(.*)`)
	nonAlnum   = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// FileName suggests a download name for a document. For lesson plans the
// theme is read from a "- **Chủ đề**: ..." line in content when present,
// falling back to the subject.
func FileName(meta Metadata, content string) string {
	if meta.Kind == KindInitiative {
		topic := []rune(strings.TrimSpace(norm.NFC.String(meta.Topic)))
		if len(topic) > 20 {
			topic = topic[:20]
		}
		if name := fileToken(string(topic)); name != "" {
			return "SKKN_" + name + ".docx"
		}
		return "SKKN.docx"
	}

	if meta.Topic == "" && meta.AgeGroup == "" && meta.Subject == "" && meta.Theme == "" {
		return DefaultFileName
	}

	age := fileToken(meta.AgeGroup)
	if m := ageRange.FindStringSubmatch(meta.AgeGroup); m != nil {
		age = m[1] + "-" + m[2]
	}

	theme := fileToken(meta.Theme)
	if m := themeLine.FindStringSubmatch(norm.NFC.String(content)); m != nil {
		if t := fileToken(m[1]); t != "" {
			theme = t
		}
	}
	if theme == "" {
		theme = fileToken(meta.Subject)
	}

	return "GIAO_AN_" + fileToken(meta.Topic) + "_" + age + "_" + theme + ".docx"
}

// fileToken folds Vietnamese text to an upper-case ASCII token:
// "Bé yêu đất nước" becomes "BE_YEU_DAT_NUOC".
func fileToken(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.NewReplacer("đ", "d", "Đ", "D").Replace(folded)
	folded = strings.TrimSpace(nonAlnum.ReplaceAllString(folded, ""))
	return strings.ToUpper(whitespace.ReplaceAllString(folded, "_"))
}
