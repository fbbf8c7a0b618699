// Package embedding turns chunk texts into vectors through an external
// provider, batch by batch, without ever failing a whole run.
package embedding

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// maxTextChars is a conservative ceiling below the provider token limit.
const maxTextChars = 8000

// Provider is the external embedding service. Implementations must return one
// vector per input text, in input order.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ProgressFunc is called after each batch with the 1-based batch number and
// the total number of batches.
type ProgressFunc func(batch, total int)

type Batcher struct {
	provider   Provider
	batchSize  int
	dimensions int
	pause      time.Duration
}

// NewBatcher builds a Batcher. dimensions is the width of the zero vector
// assigned to empty or failed texts; batchSize must be at least 1.
func NewBatcher(provider Provider, batchSize, dimensions int) *Batcher {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Batcher{
		provider:   provider,
		batchSize:  batchSize,
		dimensions: dimensions,
		pause:      100 * time.Millisecond,
	}
}

// EmbedBatch embeds texts in fixed-size batches. The result always has
// exactly one vector per input, in input order. Texts that are empty after
// cleaning are never sent to the provider and get a zero vector; when a
// provider call fails, every text of that batch gets a zero vector and
// processing continues with the next batch. Callers must treat an all-zero
// vector as a soft failure, not as absence.
func (b *Batcher) EmbedBatch(ctx context.Context, texts []string, progress ProgressFunc) [][]float32 {
	out := make([][]float32, 0, len(texts))
	total := (len(texts) + b.batchSize - 1) / b.batchSize

	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]
		batchNum := start/b.batchSize + 1

		out = append(out, b.embedOne(ctx, batch, batchNum, total)...)

		if progress != nil {
			progress(batchNum, total)
		}
		if batchNum < total {
			// Fixed courtesy pause so the provider is not hammered.
			select {
			case <-time.After(b.pause):
			case <-ctx.Done():
			}
		}
	}
	return out
}

// embedOne handles a single batch: cleaning, empty-text exclusion, the
// provider call, and realignment of provider output with the original slots.
func (b *Batcher) embedOne(ctx context.Context, batch []string, batchNum, total int) [][]float32 {
	cleaned := make([]string, len(batch))
	nonEmpty := make([]string, 0, len(batch))
	for i, t := range batch {
		cleaned[i] = CleanText(t)
		if cleaned[i] != "" {
			nonEmpty = append(nonEmpty, cleaned[i])
		}
	}

	vectors := make([][]float32, len(batch))
	if len(nonEmpty) == 0 {
		for i := range vectors {
			vectors[i] = b.zeroVector()
		}
		return vectors
	}

	embedded, err := b.provider.EmbedBatch(ctx, nonEmpty)
	if err != nil || len(embedded) != len(nonEmpty) {
		slog.ErrorContext(ctx, "embedding batch failed, assigning zero vectors",
			"batch", batchNum, "total_batches", total, "size", len(batch), "error", err)
		for i := range vectors {
			vectors[i] = b.zeroVector()
		}
		return vectors
	}

	next := 0
	for i := range batch {
		if cleaned[i] == "" {
			vectors[i] = b.zeroVector()
			continue
		}
		vectors[i] = embedded[next]
		next++
	}
	slog.DebugContext(ctx, "embedding batch complete", "batch", batchNum, "total_batches", total)
	return vectors
}

func (b *Batcher) zeroVector() []float32 {
	return make([]float32, b.dimensions)
}

// CleanText collapses whitespace and truncates to a conservative limit below
// the provider's token ceiling.
func CleanText(text string) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	if len(cleaned) > maxTextChars {
		cleaned = cleaned[:maxTextChars]
	}
	return cleaned
}

// IsZeroVector reports whether v is the soft-failure sentinel assigned to
// empty or failed texts.
func IsZeroVector(v []float32) bool {
	if len(v) == 0 {
		return true
	}
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
