package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/lessonplan/internal/auth"
	"github.com/dgallion1/lessonplan/internal/config"
	"github.com/dgallion1/lessonplan/internal/generate"
	"github.com/dgallion1/lessonplan/internal/pipeline"
	"github.com/dgallion1/lessonplan/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testKey = "test-key"

const generatedPlan = `# Giáo án làm quen với toán
### 3. Tiến hành
#### Hoạt động 1: Ổn định
- **Cô**: Cho trẻ hát.
- **Trẻ**: Hát cùng cô.`

type fakeClient struct{}

func (fakeClient) Generate(context.Context, generate.Prompt) (string, error) {
	return "```markdown\n" + generatedPlan + "\n```", nil
}
func (fakeClient) Ping(context.Context) error { return nil }
func (fakeClient) Model() string              { return "fake-model" }

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Config{
		AIProvider:        generate.ProviderGemini,
		WorkerCount:       1,
		MaxQueueSize:      8,
		JobTTL:            time.Hour,
		MaxUploadBytes:    1 << 20,
		SampleTokenBudget: 3000,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:memdb_api_%d?mode=memory&cache=shared", time.Now().UnixNano())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	plans, err := store.NewSQLStore(db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	gen := generate.NewService(fakeClient{}, nil)
	orch := pipeline.NewOrchestrator(cfg, gen, plans, log)
	orch.Start(context.Background())
	t.Cleanup(func() {
		orch.Stop()
		plans.Close()
	})
	return NewServer(orch, gen, plans, auth.StaticVerifier{APIKey: testKey}, nil, log, cfg)
}

func do(t *testing.T, s *Server, method, path, user string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if user != "" {
		req.Header.Set(auth.UserIDHeader, user)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func doJSON(t *testing.T, s *Server, method, path, user string, v any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(b)
	}
	return do(t, s, method, path, user, body, "application/json")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func validLesson() generate.LessonRequest {
	return generate.LessonRequest{
		AgeGroup: generate.AgeSenior,
		Subject:  generate.SubjectMath,
		Topic:    "Đếm đến 5",
		Duration: "30 phút",
		Purpose:  generate.PurposeDaily,
	}
}

func waitForJob(t *testing.T, s *Server, id, user string) pipeline.JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		rec := doJSON(t, s, http.MethodGet, "/api/jobs/"+id, user, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("job status: %d %s", rec.Code, rec.Body.String())
		}
		snap := decode[pipeline.JobSnapshot](t, rec)
		if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusFailed {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s still %s", id, snap.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLessonJob_SaveExportPreview(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/lessons?save=true", "co-lan", validLesson())
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	accepted := decode[map[string]any](t, rec)
	jobID, _ := accepted["job_id"].(string)
	if jobID == "" {
		t.Fatalf("missing job_id: %v", accepted)
	}

	snap := waitForJob(t, s, jobID, "co-lan")
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("job failed: %+v", snap)
	}
	if snap.Content != generatedPlan {
		t.Errorf("content = %q", snap.Content)
	}
	if snap.PlanID == "" {
		t.Fatal("expected saved plan id")
	}

	rec = doJSON(t, s, http.MethodGet, "/api/plans", "co-lan", nil)
	list := decode[struct{ Plans []store.Plan }](t, rec)
	if len(list.Plans) != 1 || list.Plans[0].ID != snap.PlanID {
		t.Fatalf("plans = %+v", list.Plans)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/plans/"+snap.PlanID+"/export", "co-lan", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != docxContentType {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "GIAO_AN_DEM_DEN_5_5-6_LAM_QUEN_VOI_TOAN.docx") {
		t.Errorf("content disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("export is not a zip package")
	}

	rec = doJSON(t, s, http.MethodGet, "/api/plans/"+snap.PlanID+"/preview", "co-lan", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<strong>Cô</strong>") {
		t.Errorf("preview body = %s", rec.Body.String())
	}
}

func TestLessonJob_InvalidRequest(t *testing.T) {
	s := newTestServer(t)
	req := validLesson()
	req.Topic = ""
	req.Subject = "Không có"

	rec := doJSON(t, s, http.MethodPost, "/api/lessons", "", req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[struct{ Fields map[string]string }](t, rec)
	if body.Fields["topic"] != "required" || body.Fields["subject"] != "subject" {
		t.Errorf("fields = %v", body.Fields)
	}

	rec = do(t, s, http.MethodPost, "/api/lessons", "", strings.NewReader("{"), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed JSON: status = %d", rec.Code)
	}
}

func TestInitiativeJob(t *testing.T) {
	s := newTestServer(t)
	req := generate.InitiativeRequest{Topic: "Giúp trẻ tự tin", Field: "Giáo dục", AgeGroup: "5-6 tuổi", Measures: "Trò chơi"}

	rec := doJSON(t, s, http.MethodPost, "/api/initiatives", "", req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	id := decode[map[string]any](t, rec)["job_id"].(string)
	snap := waitForJob(t, s, id, "")
	if snap.Status != pipeline.StatusCompleted || snap.Kind != store.KindInitiative {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.PlanID != "" {
		t.Errorf("plan saved without save=true")
	}
}

func TestJobStatus_OtherUser(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/lessons", "owner", validLesson())
	id := decode[map[string]any](t, rec)["job_id"].(string)

	rec = doJSON(t, s, http.MethodGet, "/api/jobs/"+id, "intruder", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/jobs/nope", "owner", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing job: status = %d, want 404", rec.Code)
	}
}

func TestPlansCRUD(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/plans", "u1", map[string]any{
		"title":   "Lá cây",
		"content": "# Giáo án",
		"request": map[string]any{"topic": "Lá cây"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	created := decode[store.Plan](t, rec)
	if created.Kind != store.KindLessonPlan {
		t.Errorf("default kind = %q", created.Kind)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/plans/"+created.ID, "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/plans/"+created.ID, "u2", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign get: %d, want 404", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/plans/"+created.ID, "u1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodDelete, "/api/plans/"+created.ID, "u1", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: %d, want 404", rec.Code)
	}
}

func TestCreatePlan_Invalid(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body map[string]any
	}{
		{"empty content", map[string]any{"title": "x", "content": "  "}},
		{"bad kind", map[string]any{"content": "x", "kind": "poem"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/plans", "u1", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestExport_WithoutStorage(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/export", "", map[string]any{
		"kind":    "initiative",
		"title":   "Một số biện pháp",
		"content": "I. ĐẶT VẤN ĐỀ\nNội dung.",
		"request": map[string]any{"topic": "Một số biện pháp"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "SKKN_MOT_SO_BIEN_PHAP.docx") {
		t.Errorf("content disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("export is not a zip package")
	}
}

func TestSample_Upload(t *testing.T) {
	s := newTestServer(t)

	upload := func(name, content string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
		mw.Close()
		return do(t, s, http.MethodPost, "/api/samples", "", &buf, mw.FormDataContentType())
	}

	rec := upload("mau.md", "# Giáo án mẫu\n\n- **Cô**: hỏi trẻ\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	body := decode[map[string]any](t, rec)
	if body["sample"] != "# Giáo án mẫu\n- **Cô**: hỏi trẻ" {
		t.Errorf("sample = %q", body["sample"])
	}
	if body["truncated"] != false {
		t.Errorf("truncated = %v", body["truncated"])
	}

	if rec := upload("mau.exe", "x"); rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported type: %d, want 400", rec.Code)
	}
	if rec := upload("trong.txt", "   \n"); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty file: %d, want 422", rec.Code)
	}
}

func TestSettingsCheck(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"name":"models/gemini"}`))
	}))
	defer upstream.Close()

	s := newTestServer(t, func(c *config.Config) { c.AIBaseURL = upstream.URL })

	tests := []struct {
		name   string
		body   map[string]any
		status int
		ok     bool
	}{
		{"valid key", map[string]any{"provider": "gemini", "api_key": "good"}, http.StatusOK, true},
		{"invalid key", map[string]any{"provider": "gemini", "api_key": "bad"}, http.StatusOK, false},
		{"missing key", map[string]any{"provider": "gemini"}, http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/settings/check", "", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			body := decode[map[string]any](t, rec)
			if body["ok"] != tt.ok {
				t.Errorf("ok = %v, want %v (%v)", body["ok"], tt.ok, body)
			}
		})
	}
}

func TestLLMStats(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/stats/llm", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["model"] != "fake-model" {
		t.Errorf("model = %v", body["model"])
	}
}
