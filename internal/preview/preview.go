// Package preview renders generated Markdown as a standalone HTML page.
package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="vi">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: "Times New Roman", serif; font-size: 14pt; line-height: 1.5; max-width: 21cm; margin: 2cm auto; }
h1 { text-align: center; text-transform: uppercase; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #000; padding: 4px 8px; vertical-align: top; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Fragment converts Markdown to an HTML fragment. Raw HTML in the source is
// not passed through.
func Fragment(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Render writes a full HTML page for source to w.
func Render(w io.Writer, title, source string) error {
	body, err := Fragment(source)
	if err != nil {
		return err
	}
	return page.Execute(w, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body)})
}
