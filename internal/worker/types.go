// Package worker connects the processing pipeline to NSQ: progress events
// and terminal results go out as messages, and a consumer persists results.
package worker

import (
	"context"

	"papyrus/apps/backend/internal/document"
	"papyrus/apps/backend/internal/pipeline"
)

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

// ResultSaver persists terminal processing results.
type ResultSaver interface {
	Save(ctx context.Context, result document.ProcessingResult) error
}

// ProgressMessage is the wire form of one progress event.
type ProgressMessage struct {
	pipeline.ProgressEvent
	CorrelationID string `json:"correlation_id,omitempty"`
}

// ResultMessage is the wire form of one terminal processing result.
type ResultMessage struct {
	document.ProcessingResult
	CorrelationID string `json:"correlation_id,omitempty"`
}
