package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dgallion1/lessonplan/internal/docexport"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// handleExport converts posted Markdown to DOCX without storing it.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePlanInput(w, r)
	if !ok {
		return
	}
	s.writeDocx(w, in.Content, metadataFor(in.Kind, in.Title, in.Request))
}

// writeDocx encodes content fully before writing headers so that an encode
// failure can still be reported as JSON.
func (s *Server) writeDocx(w http.ResponseWriter, content string, meta docexport.Metadata) {
	var buf bytes.Buffer
	name, err := s.converter.Export(&buf, content, meta)
	if err != nil {
		s.log.Error("export docx", "error", err, "kind", meta.Kind)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":     "Không thể tạo file Word. Vui lòng thử lại.",
			"retryable": true,
		})
		return
	}

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, name, url.PathEscape(name)))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	buf.WriteTo(w)
}
