package ingest

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"papyrus/apps/backend/internal/document"
	"papyrus/apps/backend/internal/pipeline"
)

type Processor interface {
	ProcessDocument(ctx context.Context, req pipeline.ProcessRequest, onProgress pipeline.ProgressFunc) document.ProcessingResult
	ProcessMultipleDocuments(ctx context.Context, requests []pipeline.ProcessRequest, onBatch pipeline.BatchProgressFunc) []document.ProcessingResult
}

type ResultPublisher interface {
	PublishResult(ctx context.Context, result document.ProcessingResult)
}

// Service accepts uploaded files and hands them to the processing pipeline in
// the background. The HTTP request returns as soon as the file is on disk.
type Service struct {
	processor Processor
	publisher ResultPublisher

	// wg tracks in-flight background runs so shutdown can drain them.
	wg sync.WaitGroup
}

func NewService(p Processor, pub ResultPublisher) *Service {
	return &Service{processor: p, publisher: pub}
}

// Ingest schedules one stored file for processing and returns immediately.
func (s *Service) Ingest(ctx context.Context, req pipeline.ProcessRequest) *Receipt {
	receipt := &Receipt{
		UploadID:     uuid.New().String(),
		Filename:     req.Filename,
		OriginalName: req.OriginalName,
		Status:       statusAccepted,
	}

	// Detach from the request lifetime but keep correlation values.
	runCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		result := s.processor.ProcessDocument(runCtx, req, nil)
		s.publisher.PublishResult(runCtx, result)
	}()

	slog.InfoContext(ctx, "upload accepted", "upload_id", receipt.UploadID, "document", req.OriginalName)
	return receipt
}

// IngestBatch schedules several stored files as one batch run.
func (s *Service) IngestBatch(ctx context.Context, requests []pipeline.ProcessRequest) *BatchReceipt {
	batch := &BatchReceipt{
		UploadID: uuid.New().String(),
		Accepted: make([]Receipt, 0, len(requests)),
		Status:   statusAccepted,
	}
	for _, req := range requests {
		batch.Accepted = append(batch.Accepted, Receipt{
			UploadID:     batch.UploadID,
			Filename:     req.Filename,
			OriginalName: req.OriginalName,
			Status:       statusAccepted,
		})
	}

	runCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		results := s.processor.ProcessMultipleDocuments(runCtx, requests, func(message string, overall float64, completed, total int) {
			slog.InfoContext(runCtx, "batch progress",
				"upload_id", batch.UploadID, "message", message, "percent", overall, "completed", completed, "total", total)
		})
		for _, result := range results {
			s.publisher.PublishResult(runCtx, result)
		}
	}()

	slog.InfoContext(ctx, "batch upload accepted", "upload_id", batch.UploadID, "files", len(requests))
	return batch
}

// Wait blocks until all scheduled runs have finished. Used during shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}
