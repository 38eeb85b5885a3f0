package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/lessonplan/internal/generate"
	"github.com/dgallion1/lessonplan/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

const maxJSONBody = 1 << 20

func (s *Server) handleLesson(w http.ResponseWriter, r *http.Request) {
	var req generate.LessonRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	_, user := userContext(r)
	job := pipeline.NewLessonJob(user.ID, req, r.URL.Query().Get("save") == "true")
	s.submit(w, job, user.Token)
}

func (s *Server) handleInitiative(w http.ResponseWriter, r *http.Request) {
	var req generate.InitiativeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	_, user := userContext(r)
	job := pipeline.NewInitiativeJob(user.ID, req, r.URL.Query().Get("save") == "true")
	s.submit(w, job, user.Token)
}

// decodeRequest reads and validates a JSON request body, writing the error
// response itself when it returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := generate.Validate(req); err != nil {
		var verr *generate.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "invalid request",
				"fields": verr.Fields,
			})
			return false
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) submit(w http.ResponseWriter, job *pipeline.Job, token string) {
	job.SetToken(token)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"kind":     snap.Kind,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", snap.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	_, user := userContext(r)
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	if snap.UserID != user.ID {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
