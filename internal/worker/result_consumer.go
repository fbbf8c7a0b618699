package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"papyrus/apps/backend/internal/middleware"
)

// ResultConsumer persists terminal processing results arriving on the result
// topic.
type ResultConsumer struct {
	saver ResultSaver
}

func NewResultConsumer(s ResultSaver) *ResultConsumer {
	return &ResultConsumer{saver: s}
}

func (h *ResultConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload ResultMessage
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison pill: invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	correlationID := payload.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	ctx := middleware.WithCorrelationID(context.Background(), correlationID)

	if payload.JobID == "" {
		slog.ErrorContext(ctx, "result without job_id, dropping")
		return nil
	}

	saveCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := h.saver.Save(saveCtx, payload.ProcessingResult); err != nil {
		slog.ErrorContext(ctx, "failed to save processing result", "error", err, "job_id", payload.JobID)
		return err // Retry
	}

	slog.InfoContext(ctx, "processing result saved",
		"job_id", payload.JobID, "document_id", payload.DocumentID, "success", payload.Success)
	return nil
}
