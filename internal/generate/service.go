package generate

import (
	"context"
	"fmt"
	"time"
)

// Service runs lesson and initiative generation through a Client, recording
// latency and cleaning the model output.
type Service struct {
	client Client
	Stats  *LLMStats
}

func NewService(c Client, stats *LLMStats) *Service {
	if stats == nil {
		stats = NewLLMStats(time.Hour)
	}
	return &Service{client: c, Stats: stats}
}

// Lesson generates a lesson plan in Markdown.
func (s *Service) Lesson(ctx context.Context, req LessonRequest) (string, error) {
	return s.run(ctx, BuildLessonPrompt(req))
}

// Initiative generates an experience-initiative report.
func (s *Service) Initiative(ctx context.Context, req InitiativeRequest) (string, error) {
	return s.run(ctx, BuildInitiativePrompt(req))
}

func (s *Service) run(ctx context.Context, p Prompt) (string, error) {
	start := time.Now()
	raw, err := s.client.Generate(ctx, p)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		s.Stats.RecordFailure(elapsed)
		return "", fmt.Errorf("generate with %s: %w", s.client.Model(), err)
	}
	s.Stats.Record(elapsed)

	if text := CleanOutput(raw); text != "" {
		return text, nil
	}
	return p.Fallback, nil
}

func (s *Service) Model() string { return s.client.Model() }

func (s *Service) Ping(ctx context.Context) error { return s.client.Ping(ctx) }
