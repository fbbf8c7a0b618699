package document

// ChunkResult is one ranked hit returned by the search path. Score is whatever
// the producing store reported (scaled by fusion weights later); it is only
// bounded to [0,1] after explicit normalization.
type ChunkResult struct {
	ChunkID        string            `json:"chunk_id"`
	DocumentID     string            `json:"document_id"`
	Content        string            `json:"content"`
	Score          float64           `json:"score"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	DocumentTitle  string            `json:"document_title,omitempty"`
	DocumentSource string            `json:"document_source,omitempty"`
	ChunkIndex     *int              `json:"chunk_index,omitempty"`
}

// Relationship describes one edge attached to a graph entity.
type Relationship struct {
	Type   string `json:"type"`
	Target string `json:"target"`
	Fact   string `json:"fact,omitempty"`
}

// GraphResult is one entity hit returned by the knowledge graph. Score is nil
// when the graph engine did not rank the hit.
type GraphResult struct {
	EntityID      string            `json:"entity_id"`
	EntityName    string            `json:"entity_name"`
	EntityType    string            `json:"entity_type"`
	Relationships []Relationship    `json:"relationships,omitempty"`
	Properties    map[string]string `json:"properties,omitempty"`
	Score         *float64          `json:"score,omitempty"`
}

// ProcessingResult is the terminal record of one pipeline run. It is created
// once per run and never mutated afterwards.
type ProcessingResult struct {
	JobID                string  `json:"job_id"`
	DocumentID           string  `json:"document_id"`
	ChunksCreated        int     `json:"chunks_created"`
	EntitiesExtracted    int     `json:"entities_extracted"`
	RelationshipsCreated int     `json:"relationships_created"`
	ProcessingTimeMS     float64 `json:"processing_time_ms"`
	Success              bool    `json:"success"`
	ErrorMessage         string  `json:"error_message,omitempty"`
}

// Episode is one unit of content handed to the graph store for asynchronous
// entity and relationship extraction.
type Episode struct {
	ID       string            `json:"episode_id"`
	Content  string            `json:"content"`
	Source   string            `json:"source"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// EpisodeReceipt is the graph store's acknowledgement of one episode. Counts
// are whatever the graph engine reports; an engine that extracts
// asynchronously may only confirm the episode itself.
type EpisodeReceipt struct {
	EpisodeID            string `json:"episode_id"`
	EntitiesExtracted    int    `json:"entities_extracted"`
	RelationshipsCreated int    `json:"relationships_created"`
}
