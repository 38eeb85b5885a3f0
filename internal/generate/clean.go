package generate

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	codeFenceRe = regexp.MustCompile("(?s)^```(?:markdown|md)?[ \t]*\n?(.*?)\\s*```$")
	htmlTagRe   = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^<>]*)?/?>`)
)

// CleanOutput trims model text, unwraps a surrounding code fence and drops
// stray HTML markup while keeping its text. Line breaks survive as newlines.
func CleanOutput(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	if htmlTagRe.MatchString(s) {
		s = stripHTML(s)
	}
	return strings.TrimSpace(s)
}

func stripHTML(s string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Raw())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Br:
				sb.WriteByte('\n')
			case atom.P, atom.Div, atom.Li:
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
			case atom.Script, atom.Style:
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style:
				if skip > 0 {
					skip--
				}
			}
		}
	}
}
