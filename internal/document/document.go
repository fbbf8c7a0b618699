// Package document holds the core data model shared by the ingestion pipeline,
// the stores, and the search path.
package document

import (
	"time"
)

type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Metadata describes a document. Recognized fields are typed; anything
// provider-specific goes into Extra so a key typo cannot silently vanish.
type Metadata struct {
	Title        string            `json:"title"`
	Author       string            `json:"author,omitempty"`
	FileSize     int64             `json:"file_size"`
	FileType     string            `json:"file_type"`
	PageCount    int               `json:"page_count"`
	CreatedDate  *time.Time        `json:"created_date,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// Document is the unit of one pipeline run. It is created when a run starts,
// mutated only by the orchestrator, and discarded when the run ends; the
// vector and graph stores own all persistence.
type Document struct {
	ID                    string     `json:"id"`
	Filename              string     `json:"filename"`
	OriginalName          string     `json:"original_name"`
	Status                Status     `json:"status"`
	Metadata              Metadata   `json:"metadata"`
	Text                  string     `json:"-"`
	Chunks                []Chunk    `json:"chunks,omitempty"`
	ProcessingStartedAt   *time.Time `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at,omitempty"`
	ErrorMessage          string     `json:"error_message,omitempty"`
}

// ChunkMetadata carries chunk provenance into the vector store payload.
type ChunkMetadata struct {
	DocumentTitle  string            `json:"document_title"`
	DocumentSource string            `json:"document_source"`
	ChunkMethod    string            `json:"chunk_method"`
	FileType       string            `json:"file_type,omitempty"`
	PageCount      int               `json:"page_count,omitempty"`
	Heading        string            `json:"heading,omitempty"`
	ListItems      int               `json:"list_items,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// Chunk is a bounded segment of a document's text. Embedding is nil until the
// embedding stage has run; an all-zero vector marks a soft embedding failure.
type Chunk struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"document_id"`
	Content    string        `json:"content"`
	Index      int           `json:"chunk_index"`
	StartChar  int           `json:"start_char"`
	EndChar    int           `json:"end_char"`
	Embedding  []float32     `json:"embedding,omitempty"`
	Metadata   ChunkMetadata `json:"metadata"`
}
