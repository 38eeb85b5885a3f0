package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/lessonplan/internal/generate"
	"github.com/dgallion1/lessonplan/internal/store"
)

// Worker processes a single generation job.
type Worker struct {
	gen   Generator
	plans store.Store
	log   *slog.Logger

	backoff func(attempt int) time.Duration
}

func NewWorker(gen Generator, plans store.Store, log *slog.Logger) *Worker {
	return &Worker{
		gen:     gen,
		plans:   plans,
		log:     log,
		backoff: Backoff,
	}
}

// Process generates the job's content and, when requested, saves it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "user_id", job.UserID, "kind", job.Kind)
	start := time.Now()

	job.SetStatus(StatusGenerating, "generating")
	content, err := w.generate(ctx, log, job)
	if err != nil {
		log.Error("generation failed", "error", err, "attempts", job.Snapshot().Attempts)
		job.AddError(generate.UserMessage(err))
		job.SetStatus(StatusFailed, "generating")
		return
	}
	job.SetContent(content)

	if job.Save && w.plans != nil {
		job.SetStatus(StatusSaving, "saving")
		id, err := w.save(ctx, job, content)
		if err != nil {
			// The content stays available on the job.
			log.Error("save failed", "error", err)
			job.AddError(fmt.Sprintf("save: %s", err))
			job.SetStatus(StatusFailed, "saving")
			return
		}
		job.SetPlanID(id)
	}

	job.SetStatus(StatusCompleted, "done")
	log.Info("job completed",
		"chars", len(content),
		"plan_id", job.PlanID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (w *Worker) generate(ctx context.Context, log *slog.Logger, job *Job) (string, error) {
	var (
		content string
		lastErr error
	)
	for attempt := range MaxRetries {
		job.IncrAttempts()
		content, lastErr = w.call(ctx, job)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable generation error", "attempt", attempt, "error", lastErr)
		if attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return content, lastErr
}

func (w *Worker) call(ctx context.Context, job *Job) (string, error) {
	switch {
	case job.lesson != nil:
		return w.gen.Lesson(ctx, *job.lesson)
	case job.initiative != nil:
		return w.gen.Initiative(ctx, *job.initiative)
	}
	return "", errors.New("job has no request")
}

func (w *Worker) save(ctx context.Context, job *Job, content string) (string, error) {
	var req any = job.lesson
	if job.initiative != nil {
		req = job.initiative
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	job.mu.Lock()
	token := job.token
	job.mu.Unlock()

	p := &store.Plan{
		UserID:  job.UserID,
		Title:   job.Title,
		Kind:    job.Kind,
		Content: content,
		Request: raw,
	}
	if err := w.plans.Create(store.WithToken(ctx, token), p); err != nil {
		return "", err
	}
	return p.ID, nil
}
