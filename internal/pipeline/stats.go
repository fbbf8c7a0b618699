package pipeline

import "sync"

// Stats accumulates run statistics across documents. Safe for concurrent use
// so batch runs can be parallelized by callers without extra locking.
type Stats struct {
	mu sync.Mutex

	documentsProcessed   int
	documentsFailed      int
	chunksCreated        int
	embeddingsGenerated  int
	entitiesExtracted    int
	relationshipsCreated int
	totalProcessingMS    float64
}

// StatsSnapshot is a point-in-time copy of the accumulator with derived
// averages, shaped for the stats endpoint.
type StatsSnapshot struct {
	DocumentsProcessed   int     `json:"documents_processed"`
	DocumentsFailed      int     `json:"documents_failed"`
	ChunksCreated        int     `json:"chunks_created"`
	EmbeddingsGenerated  int     `json:"embeddings_generated"`
	EntitiesExtracted    int     `json:"entities_extracted"`
	RelationshipsCreated int     `json:"relationships_created"`
	TotalProcessingMS    float64 `json:"total_processing_time_ms"`
	AvgProcessingMS      float64 `json:"avg_processing_time_ms"`
	AvgChunksPerDocument float64 `json:"avg_chunks_per_document"`
	EmbeddingSuccessRate float64 `json:"embedding_success_rate"`
}

func (s *Stats) recordSuccess(chunks, embedded, entities, relationships int, elapsedMS float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documentsProcessed++
	s.chunksCreated += chunks
	s.embeddingsGenerated += embedded
	s.entitiesExtracted += entities
	s.relationshipsCreated += relationships
	s.totalProcessingMS += elapsedMS
}

func (s *Stats) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documentsFailed++
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		DocumentsProcessed:   s.documentsProcessed,
		DocumentsFailed:      s.documentsFailed,
		ChunksCreated:        s.chunksCreated,
		EmbeddingsGenerated:  s.embeddingsGenerated,
		EntitiesExtracted:    s.entitiesExtracted,
		RelationshipsCreated: s.relationshipsCreated,
		TotalProcessingMS:    s.totalProcessingMS,
	}
	if s.documentsProcessed > 0 {
		snap.AvgProcessingMS = s.totalProcessingMS / float64(s.documentsProcessed)
		snap.AvgChunksPerDocument = float64(s.chunksCreated) / float64(s.documentsProcessed)
	}
	if s.chunksCreated > 0 {
		snap.EmbeddingSuccessRate = float64(s.embeddingsGenerated) / float64(s.chunksCreated)
	}
	return snap
}

func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documentsProcessed = 0
	s.documentsFailed = 0
	s.chunksCreated = 0
	s.embeddingsGenerated = 0
	s.entitiesExtracted = 0
	s.relationshipsCreated = 0
	s.totalProcessingMS = 0
}
