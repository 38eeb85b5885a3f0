package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/lessonplan/internal/refdoc"
)

// handleSample extracts an uploaded plan and returns the excerpt to send as
// LessonRequest.Sample.
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !refdoc.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	text, err := refdoc.Extract(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("extract sample", "error", err, "filename", filename)
		jsonError(w, "could not read file: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if text == "" {
		jsonError(w, "file has no readable text", http.StatusUnprocessableEntity)
		return
	}

	excerpt := refdoc.Excerpt(text, s.cfg.SampleTokenBudget)
	writeJSON(w, http.StatusOK, map[string]any{
		"filename":  filename,
		"sample":    excerpt,
		"tokens":    refdoc.EstimateTokens(excerpt),
		"truncated": len(excerpt) < len(text),
	})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
