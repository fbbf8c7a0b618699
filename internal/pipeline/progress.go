package pipeline

import "context"

// Stage names one phase of a document run, in state-machine order.
type Stage string

const (
	StageStarted       Stage = "started"
	StageTextExtracted Stage = "text_extracted"
	StageChunked       Stage = "chunked"
	StageEmbedded      Stage = "embedded"
	StageVectorStored  Stage = "vector_stored"
	StageGraphStored   Stage = "graph_stored"
	StageCompleted     Stage = "completed"
	StageFailed        Stage = "failed"
)

// ProgressEvent is one structured progress update for a document run.
// Percent is in [0,100] and never decreases within a run.
type ProgressEvent struct {
	JobID      string  `json:"job_id"`
	DocumentID string  `json:"document_id,omitempty"`
	Stage      Stage   `json:"stage"`
	Message    string  `json:"message"`
	Percent    float64 `json:"percent"`
}

// ProgressFunc receives per-document progress events.
type ProgressFunc func(ev ProgressEvent)

// BatchProgressFunc receives blended progress across a multi-document batch.
type BatchProgressFunc func(message string, overallPercent float64, completed, total int)

// Notifier is a long-lived progress consumer (logging, message bus, metrics)
// registered on the pipeline itself, independent of per-call callbacks.
type Notifier interface {
	Notify(ctx context.Context, ev ProgressEvent)
}

// Stage checkpoint weights. Embedding interpolates inside its span using
// batch progress from the batcher.
const (
	pctStarted      = 0.0
	pctExtracting   = 10.0
	pctExtracted    = 20.0
	pctChunking     = 25.0
	pctChunked      = 40.0
	pctEmbedStart   = 45.0
	pctEmbedSpan    = 15.0
	pctEmbedded     = 60.0
	pctVectorWrite  = 65.0
	pctVectorStored = 70.0
	pctGraphWrite   = 75.0
	pctGraphStored  = 90.0
	pctFinalizing   = 95.0
	pctDone         = 100.0
)

// emitter returns a progress sink for one run which fans events out to the
// per-call callback and all registered notifiers, clamping Percent so two
// consecutive events never regress.
func (p *Pipeline) emitter(ctx context.Context, jobID string, onProgress ProgressFunc) func(stage Stage, docID, message string, percent float64) {
	last := 0.0
	return func(stage Stage, docID, message string, percent float64) {
		if percent < last {
			percent = last
		}
		last = percent

		ev := ProgressEvent{
			JobID:      jobID,
			DocumentID: docID,
			Stage:      stage,
			Message:    message,
			Percent:    percent,
		}
		if onProgress != nil {
			onProgress(ev)
		}
		for _, n := range p.notifiers {
			n.Notify(ctx, ev)
		}
	}
}
