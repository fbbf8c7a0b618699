package ingest

import (
	"context"
	"sync"

	"papyrus/apps/backend/internal/document"
	"papyrus/apps/backend/internal/pipeline"
)

// fakeProcessor records requests and replies with canned results. Safe for
// the background goroutines the service spawns.
type fakeProcessor struct {
	mu       sync.Mutex
	requests []pipeline.ProcessRequest
	result   document.ProcessingResult
}

func (f *fakeProcessor) ProcessDocument(ctx context.Context, req pipeline.ProcessRequest, onProgress pipeline.ProgressFunc) document.ProcessingResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	res := f.result
	res.DocumentID = req.OriginalName
	return res
}

func (f *fakeProcessor) ProcessMultipleDocuments(ctx context.Context, requests []pipeline.ProcessRequest, onBatch pipeline.BatchProgressFunc) []document.ProcessingResult {
	results := make([]document.ProcessingResult, 0, len(requests))
	for _, req := range requests {
		results = append(results, f.ProcessDocument(ctx, req, nil))
	}
	if onBatch != nil {
		onBatch("batch complete", 100, len(requests), len(requests))
	}
	return results
}

func (f *fakeProcessor) seen() []pipeline.ProcessRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pipeline.ProcessRequest(nil), f.requests...)
}

type fakePublisher struct {
	mu      sync.Mutex
	results []document.ProcessingResult
}

func (f *fakePublisher) PublishResult(ctx context.Context, result document.ProcessingResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
}

func (f *fakePublisher) published() []document.ProcessingResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]document.ProcessingResult(nil), f.results...)
}
