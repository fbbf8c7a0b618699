// Package pipeline drives a document through extraction, segmentation,
// embedding, and the vector and graph store writes, producing exactly one
// ProcessingResult per run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"papyrus/apps/backend/internal/document"
	"papyrus/apps/backend/internal/embedding"
	"papyrus/apps/backend/internal/extract"
)

type Extractor interface {
	Extract(ctx context.Context, path, originalName string) (*extract.Result, error)
}

type Segmenter interface {
	Segment(doc *document.Document) []document.Chunk
}

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string, progress embedding.ProgressFunc) [][]float32
}

type VectorStore interface {
	UpsertChunks(ctx context.Context, chunks []document.Chunk) error
	Ping(ctx context.Context) error
}

type GraphStore interface {
	AddEpisode(ctx context.Context, ep document.Episode) (*document.EpisodeReceipt, error)
	Ping(ctx context.Context) error
}

// ProcessRequest identifies one file to ingest. Metadata entries end up in
// the document's Extra fields.
type ProcessRequest struct {
	FilePath     string            `json:"file_path"`
	Filename     string            `json:"filename"`
	OriginalName string            `json:"original_name"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Pipeline owns no persistent state beyond the statistics accumulator; every
// collaborator is injected.
type Pipeline struct {
	extractor   Extractor
	segmenter   Segmenter
	embedder    Embedder
	vectorStore VectorStore
	graphStore  GraphStore
	notifiers   []Notifier
	stats       *Stats

	interDocumentPause time.Duration
}

func New(ex Extractor, seg Segmenter, emb Embedder, vs VectorStore, gs GraphStore, notifiers ...Notifier) *Pipeline {
	return &Pipeline{
		extractor:          ex,
		segmenter:          seg,
		embedder:           emb,
		vectorStore:        vs,
		graphStore:         gs,
		notifiers:          notifiers,
		stats:              &Stats{},
		interDocumentPause: 500 * time.Millisecond,
	}
}

// ProcessDocument runs one file through the full pipeline. It never returns
// an error: every failure is captured as a ProcessingResult with Success
// false and a human-readable message. Cancellation is honored cooperatively
// at stage boundaries, never mid-batch.
func (p *Pipeline) ProcessDocument(ctx context.Context, req ProcessRequest, onProgress ProgressFunc) document.ProcessingResult {
	start := time.Now()
	jobID := "job_" + uuid.New().String()
	emit := p.emitter(ctx, jobID, onProgress)

	fail := func(docID, message string) document.ProcessingResult {
		elapsed := msSince(start)
		slog.ErrorContext(ctx, "document processing failed",
			"job_id", jobID, "document", req.OriginalName, "error", message, "elapsed_ms", elapsed)
		p.stats.recordFailure()
		emit(StageFailed, docID, "processing failed: "+message, pctDone)
		return document.ProcessingResult{
			JobID:            jobID,
			DocumentID:       docID,
			ProcessingTimeMS: elapsed,
			Success:          false,
			ErrorMessage:     message,
		}
	}

	slog.InfoContext(ctx, "starting document processing", "job_id", jobID, "document", req.OriginalName)
	emit(StageStarted, "", "starting processing", pctStarted)

	// Stage 1: text extraction.
	if err := ctx.Err(); err != nil {
		return fail("", "run canceled before extraction: "+err.Error())
	}
	emit(StageStarted, "", "extracting text from PDF", pctExtracting)
	ext, err := p.extractor.Extract(ctx, req.FilePath, req.OriginalName)
	if err != nil {
		return fail("", "text extraction failed: "+err.Error())
	}

	doc := &document.Document{
		ID:                  uuid.New().String(),
		Filename:            req.Filename,
		OriginalName:        req.OriginalName,
		Status:              document.StatusProcessing,
		Metadata:            ext.Metadata,
		Text:                ext.Text,
		ProcessingStartedAt: &start,
	}
	if len(req.Metadata) > 0 {
		if doc.Metadata.Extra == nil {
			doc.Metadata.Extra = make(map[string]string, len(req.Metadata))
		}
		for k, v := range req.Metadata {
			doc.Metadata.Extra[k] = v
		}
	}
	emit(StageTextExtracted, doc.ID, "text extraction completed", pctExtracted)

	// Stage 2: segmentation. Zero chunks is fatal; everything downstream is
	// meaningless without at least one.
	if err := ctx.Err(); err != nil {
		return fail(doc.ID, "run canceled before segmentation: "+err.Error())
	}
	emit(StageTextExtracted, doc.ID, "creating chunks", pctChunking)
	chunks := p.segmenter.Segment(doc)
	if len(chunks) == 0 {
		doc.Status = document.StatusFailed
		return fail(doc.ID, "no chunks created from document")
	}
	doc.Chunks = chunks
	emit(StageChunked, doc.ID, fmt.Sprintf("created %d chunks", len(chunks)), pctChunked)

	// Stage 3: embedding. Batch failures degrade to zero vectors inside the
	// batcher; the run continues.
	if err := ctx.Err(); err != nil {
		return fail(doc.ID, "run canceled before embedding: "+err.Error())
	}
	emit(StageChunked, doc.ID, "generating embeddings", pctEmbedStart)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors := p.embedder.EmbedBatch(ctx, texts, func(batch, total int) {
		pct := pctEmbedStart + pctEmbedSpan*float64(batch)/float64(total)
		emit(StageChunked, doc.ID, fmt.Sprintf("generating embeddings (%d/%d)", batch, total), pct)
	})
	embedded := 0
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
		if !embedding.IsZeroVector(vectors[i]) {
			embedded++
		}
	}
	emit(StageEmbedded, doc.ID, "embeddings generated", pctEmbedded)

	// Stage 4: vector store write.
	if err := ctx.Err(); err != nil {
		return fail(doc.ID, "run canceled before vector store write: "+err.Error())
	}
	emit(StageEmbedded, doc.ID, "storing in vector database", pctVectorWrite)
	if err := p.vectorStore.UpsertChunks(ctx, chunks); err != nil {
		doc.Status = document.StatusFailed
		return fail(doc.ID, "vector store write failed: "+err.Error())
	}
	emit(StageVectorStored, doc.ID, "vector storage completed", pctVectorStored)

	// Stage 5: graph episode write.
	if err := ctx.Err(); err != nil {
		return fail(doc.ID, "run canceled before graph store write: "+err.Error())
	}
	emit(StageVectorStored, doc.ID, "building knowledge graph", pctGraphWrite)
	receipt, err := p.graphStore.AddEpisode(ctx, document.Episode{
		ID:      doc.ID,
		Content: doc.Text,
		Source:  doc.OriginalName,
		Metadata: map[string]string{
			"document_title": doc.Metadata.Title,
			"file_type":      doc.Metadata.FileType,
			"chunk_count":    fmt.Sprintf("%d", len(chunks)),
		},
	})
	if err != nil {
		doc.Status = document.StatusFailed
		return fail(doc.ID, "graph store write failed: "+err.Error())
	}
	emit(StageGraphStored, doc.ID, "knowledge graph completed", pctGraphStored)

	// Stage 6: finalize.
	emit(StageGraphStored, doc.ID, "finalizing processing", pctFinalizing)
	now := time.Now()
	doc.Status = document.StatusCompleted
	doc.ProcessingCompletedAt = &now
	elapsed := msSince(start)

	p.stats.recordSuccess(len(chunks), embedded, receipt.EntitiesExtracted, receipt.RelationshipsCreated, elapsed)

	result := document.ProcessingResult{
		JobID:                jobID,
		DocumentID:           doc.ID,
		ChunksCreated:        len(chunks),
		EntitiesExtracted:    receipt.EntitiesExtracted,
		RelationshipsCreated: receipt.RelationshipsCreated,
		ProcessingTimeMS:     elapsed,
		Success:              true,
	}
	emit(StageCompleted, doc.ID, "processing completed successfully", pctDone)
	slog.InfoContext(ctx, "document processing completed",
		"job_id", jobID, "document", req.OriginalName, "chunks", len(chunks), "elapsed_ms", elapsed)
	return result
}

// ProcessMultipleDocuments runs requests strictly in order with a short pause
// between documents. A failed document contributes its failed result and the
// batch continues. Overall progress blends per-document progress with the
// document index across the batch.
func (p *Pipeline) ProcessMultipleDocuments(ctx context.Context, requests []ProcessRequest, onBatch BatchProgressFunc) []document.ProcessingResult {
	total := len(requests)
	results := make([]document.ProcessingResult, 0, total)
	slog.InfoContext(ctx, "starting batch processing", "documents", total)

	for i, req := range requests {
		idx := i
		perDoc := func(ev ProgressEvent) {
			if onBatch == nil {
				return
			}
			overall := ((float64(idx) + ev.Percent/100.0) / float64(total)) * 100.0
			onBatch(fmt.Sprintf("Document %d/%d: %s", idx+1, total, ev.Message), overall, idx+1, total)
		}

		results = append(results, p.ProcessDocument(ctx, req, perDoc))

		if i < total-1 {
			select {
			case <-time.After(p.interDocumentPause):
			case <-ctx.Done():
			}
		}
	}

	slog.InfoContext(ctx, "batch processing completed", "results", len(results))
	return results
}

// Validate pings every external collaborator and reports per-component
// health. The embedding provider is exercised with a one-text probe.
func (p *Pipeline) Validate(ctx context.Context) map[string]bool {
	probe := p.embedder.EmbedBatch(ctx, []string{"ping"}, nil)
	status := map[string]bool{
		"embedding_service": len(probe) == 1 && !embedding.IsZeroVector(probe[0]),
		"vector_store":      p.vectorStore.Ping(ctx) == nil,
		"graph_store":       p.graphStore.Ping(ctx) == nil,
	}
	slog.InfoContext(ctx, "pipeline validation completed",
		"embedding_service", status["embedding_service"],
		"vector_store", status["vector_store"],
		"graph_store", status["graph_store"])
	return status
}

// Stats exposes the cumulative run statistics accumulator.
func (p *Pipeline) Stats() *Stats {
	return p.stats
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
