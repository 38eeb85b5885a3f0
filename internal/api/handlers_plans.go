package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/lessonplan/internal/docexport"
	"github.com/dgallion1/lessonplan/internal/generate"
	"github.com/dgallion1/lessonplan/internal/preview"
	"github.com/dgallion1/lessonplan/internal/store"
	"github.com/go-chi/chi/v5"
)

// planInput is the body of POST /api/plans and POST /api/export.
type planInput struct {
	Title   string          `json:"title"`
	Kind    string          `json:"kind"`
	Content string          `json:"content"`
	Request json.RawMessage `json:"request,omitempty"`
}

func (in *planInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	switch in.Kind {
	case "":
		in.Kind = store.KindLessonPlan
	case store.KindLessonPlan, store.KindInitiative:
	default:
		return errors.New("kind must be lesson_plan or initiative")
	}
	if strings.TrimSpace(in.Content) == "" {
		return errors.New("content is required")
	}
	if len(in.Request) > 0 && !json.Valid(in.Request) {
		return errors.New("request must be a JSON object")
	}
	return nil
}

func decodePlanInput(w http.ResponseWriter, r *http.Request) (planInput, bool) {
	var in planInput
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return in, false
	}
	if err := in.normalize(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return in, false
	}
	return in, true
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	ctx, user := userContext(r)
	plans, err := s.plans.List(ctx, user.ID)
	if err != nil {
		s.log.Error("list plans", "error", err, "user_id", user.ID)
		jsonError(w, "failed to list plans", http.StatusInternalServerError)
		return
	}
	if plans == nil {
		plans = []store.Plan{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePlanInput(w, r)
	if !ok {
		return
	}
	ctx, user := userContext(r)
	p := &store.Plan{
		UserID:  user.ID,
		Title:   in.Title,
		Kind:    in.Kind,
		Content: in.Content,
		Request: []byte(in.Request),
	}
	if err := s.plans.Create(ctx, p); err != nil {
		s.log.Error("create plan", "error", err, "user_id", user.ID)
		jsonError(w, "failed to save plan", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// loadPlan fetches the plan named in the URL, writing the error response
// itself when it returns nil.
func (s *Server) loadPlan(w http.ResponseWriter, r *http.Request) *store.Plan {
	ctx, user := userContext(r)
	p, err := s.plans.Get(ctx, chi.URLParam(r, "planID"), user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "plan not found", http.StatusNotFound)
			return nil
		}
		s.log.Error("get plan", "error", err, "user_id", user.ID)
		jsonError(w, "failed to load plan", http.StatusInternalServerError)
		return nil
	}
	return p
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if p := s.loadPlan(w, r); p != nil {
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	ctx, user := userContext(r)
	err := s.plans.Delete(ctx, chi.URLParam(r, "planID"), user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "plan not found", http.StatusNotFound)
			return
		}
		s.log.Error("delete plan", "error", err, "user_id", user.ID)
		jsonError(w, "failed to delete plan", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportPlan(w http.ResponseWriter, r *http.Request) {
	p := s.loadPlan(w, r)
	if p == nil {
		return
	}
	s.writeDocx(w, p.Content, metadataFor(p.Kind, p.Title, p.Request))
}

func (s *Server) handlePreviewPlan(w http.ResponseWriter, r *http.Request) {
	p := s.loadPlan(w, r)
	if p == nil {
		return
	}
	var buf bytes.Buffer
	if err := preview.Render(&buf, p.Title, p.Content); err != nil {
		s.log.Error("render preview", "error", err, "plan_id", p.ID)
		jsonError(w, "failed to render preview", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// metadataFor builds export metadata from a stored plan. The form that
// produced a lesson plan supplies the topic, age group and theme used in the
// file name.
func metadataFor(kind, title string, request []byte) docexport.Metadata {
	meta := docexport.Metadata{Kind: docexport.KindLessonPlan, Title: title}
	if kind == store.KindInitiative {
		meta.Kind = docexport.KindInitiative
	}
	if len(request) == 0 {
		return meta
	}

	if meta.Kind == docexport.KindInitiative {
		var req generate.InitiativeRequest
		if json.Unmarshal(request, &req) == nil {
			meta.Topic = req.Topic
			meta.AgeGroup = req.AgeGroup
		}
		return meta
	}
	var req generate.LessonRequest
	if json.Unmarshal(request, &req) == nil {
		meta.Topic = req.Topic
		meta.AgeGroup = string(req.AgeGroup)
		meta.Theme = req.Theme
		meta.Subject = string(req.Subject)
	}
	return meta
}
