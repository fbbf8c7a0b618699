package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"papyrus/apps/backend/internal/config"
	"papyrus/apps/backend/internal/document"
	"papyrus/apps/backend/internal/middleware"
	"papyrus/apps/backend/internal/pipeline"
)

// ProgressPublisher pushes pipeline progress events and terminal results onto
// NSQ. Publish failures are logged and swallowed: a broken message bus must
// never fail a processing run.
type ProgressPublisher struct {
	publisher TaskPublisher
}

func NewProgressPublisher(p TaskPublisher) *ProgressPublisher {
	return &ProgressPublisher{publisher: p}
}

// Notify implements pipeline.Notifier.
func (p *ProgressPublisher) Notify(ctx context.Context, ev pipeline.ProgressEvent) {
	msg := ProgressMessage{ProgressEvent: ev}
	if id := middleware.GetCorrelationID(ctx); id != "unknown" {
		msg.CorrelationID = id
	}

	body, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal progress event", "error", err, "job_id", ev.JobID)
		return
	}
	if err := p.publisher.Publish(config.TopicIngestProgress, body); err != nil {
		slog.ErrorContext(ctx, "failed to publish progress event", "error", err, "job_id", ev.JobID, "stage", ev.Stage)
	}
}

// PublishResult emits the terminal result of one processing run.
func (p *ProgressPublisher) PublishResult(ctx context.Context, result document.ProcessingResult) {
	msg := ResultMessage{ProcessingResult: result}
	if id := middleware.GetCorrelationID(ctx); id != "unknown" {
		msg.CorrelationID = id
	}

	body, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal processing result", "error", err, "job_id", result.JobID)
		return
	}
	if err := p.publisher.Publish(config.TopicIngestResult, body); err != nil {
		slog.ErrorContext(ctx, "failed to publish processing result", "error", err, "job_id", result.JobID)
	}
}
