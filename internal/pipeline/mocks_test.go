package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"papyrus/apps/backend/internal/document"
	"papyrus/apps/backend/internal/embedding"
	"papyrus/apps/backend/internal/extract"
)

type fakeExtractor struct {
	failFor map[string]bool
	calls   int
}

func (f *fakeExtractor) Extract(_ context.Context, _, originalName string) (*extract.Result, error) {
	f.calls++
	if f.failFor[originalName] {
		return nil, errors.New("could not read PDF")
	}
	return &extract.Result{
		Text: "First sentence of the document. Second sentence of the document. Third sentence here.",
		Metadata: document.Metadata{
			Title:     strings.TrimSuffix(originalName, ".pdf"),
			FileType:  "pdf",
			PageCount: 2,
		},
	}, nil
}

type fakeSegmenter struct {
	empty bool
}

func (f *fakeSegmenter) Segment(doc *document.Document) []document.Chunk {
	if f.empty {
		return nil
	}
	sentences := strings.SplitAfter(doc.Text, ". ")
	chunks := make([]document.Chunk, 0, len(sentences))
	for i, s := range sentences {
		if strings.TrimSpace(s) == "" {
			continue
		}
		chunks = append(chunks, document.Chunk{
			ID:         fmt.Sprintf("%s-%d", doc.ID, i),
			DocumentID: doc.ID,
			Content:    s,
			Index:      len(chunks),
		})
	}
	return chunks
}

// fakeEmbedder emulates the batcher: batches of two, one progress call per
// batch, unit vectors per text.
type fakeEmbedder struct {
	zero bool
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string, progress embedding.ProgressFunc) [][]float32 {
	out := make([][]float32, len(texts))
	for i := range texts {
		if f.zero {
			out[i] = []float32{0, 0}
		} else {
			out[i] = []float32{1, float32(i + 1)}
		}
	}
	total := (len(texts) + 1) / 2
	if progress != nil {
		for b := 1; b <= total; b++ {
			progress(b, total)
		}
	}
	return out
}

type fakeVectorStore struct {
	err     error
	pingErr error
	upserts [][]document.Chunk
}

func (f *fakeVectorStore) UpsertChunks(_ context.Context, chunks []document.Chunk) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, chunks)
	return nil
}

func (f *fakeVectorStore) Ping(context.Context) error { return f.pingErr }

type fakeGraphStore struct {
	err      error
	pingErr  error
	episodes []document.Episode
	receipt  *document.EpisodeReceipt
}

func (f *fakeGraphStore) AddEpisode(_ context.Context, ep document.Episode) (*document.EpisodeReceipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.episodes = append(f.episodes, ep)
	if f.receipt != nil {
		return f.receipt, nil
	}
	return &document.EpisodeReceipt{EpisodeID: ep.ID, EntitiesExtracted: 1}, nil
}

func (f *fakeGraphStore) Ping(context.Context) error { return f.pingErr }

type recordingNotifier struct {
	events []ProgressEvent
}

func (r *recordingNotifier) Notify(_ context.Context, ev ProgressEvent) {
	r.events = append(r.events, ev)
}

func newTestPipeline(ex *fakeExtractor, seg *fakeSegmenter, emb *fakeEmbedder, vs *fakeVectorStore, gs *fakeGraphStore, notifiers ...Notifier) *Pipeline {
	p := New(ex, seg, emb, vs, gs, notifiers...)
	p.interDocumentPause = 0
	return p
}
