package runs

import (
	"context"
	"log/slog"

	"papyrus/apps/backend/internal/document"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save persists the terminal result of one processing run. It is the sink
// the result consumer drains into.
func (s *Service) Save(ctx context.Context, result document.ProcessingResult) error {
	run := fromResult(result)
	if err := s.repo.Save(ctx, run); err != nil {
		return err
	}
	slog.InfoContext(ctx, "processing run recorded", "job_id", run.JobID, "success", run.Success)
	return nil
}

func (s *Service) List(ctx context.Context, limit int) ([]Run, error) {
	return s.repo.List(ctx, limit)
}

func (s *Service) Get(ctx context.Context, jobID string) (*Run, error) {
	return s.repo.GetByJobID(ctx, jobID)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
