package pipeline

import (
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/lessonplan/internal/generate"
	"github.com/dgallion1/lessonplan/internal/store"
	"github.com/google/uuid"
)

// JobStatus represents the state of a generation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusGenerating JobStatus = "generating"
	StatusSaving     JobStatus = "saving"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks one generation request.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	Save   bool   `json:"save"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Attempts int       `json:"attempts"`
	PlanID   string    `json:"plan_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	lesson     *generate.LessonRequest
	initiative *generate.InitiativeRequest
	token      string
	content    string
	errors     []string
}

func newJob(userID, kind, title string, save bool) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Save:      save,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewLessonJob creates a queued lesson plan job. Save persists the result as
// a plan owned by userID.
func NewLessonJob(userID string, req generate.LessonRequest, save bool) *Job {
	j := newJob(userID, store.KindLessonPlan, lessonTitle(req), save)
	j.lesson = &req
	return j
}

// NewInitiativeJob creates a queued experience-initiative job.
func NewInitiativeJob(userID string, req generate.InitiativeRequest, save bool) *Job {
	j := newJob(userID, store.KindInitiative, strings.TrimSpace(req.Topic), save)
	j.initiative = &req
	return j
}

func lessonTitle(req generate.LessonRequest) string {
	topic := strings.TrimSpace(req.Topic)
	if req.Subject == "" {
		return topic
	}
	return string(req.Subject) + ": " + topic
}

// SetToken records the caller's access token for the save step.
func (j *Job) SetToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.token = token
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// IncrAttempts counts one call to the generator.
func (j *Job) IncrAttempts() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Attempts++
	j.UpdatedAt = time.Now()
}

// SetContent stores the generated Markdown.
func (j *Job) SetContent(content string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.content = content
	j.UpdatedAt = time.Now()
}

// Content returns the generated Markdown, empty until generation succeeds.
func (j *Job) Content() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.content
}

// SetPlanID records the id of the saved plan.
func (j *Job) SetPlanID(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.PlanID = id
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Attempts  int       `json:"attempts"`
	PlanID    string    `json:"plan_id,omitempty"`
	Content   string    `json:"content,omitempty"`
	Errors    []string  `json:"errors"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	return JobSnapshot{
		ID:        j.ID,
		UserID:    j.UserID,
		Kind:      j.Kind,
		Title:     j.Title,
		Status:    j.Status,
		Phase:     j.Phase,
		Attempts:  j.Attempts,
		PlanID:    j.PlanID,
		Content:   j.content,
		Errors:    errs,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
