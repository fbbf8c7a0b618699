// Package runs records the outcome of every document processing run and
// serves run history and aggregate statistics over HTTP.
package runs

import (
	"time"

	"papyrus/apps/backend/internal/document"
)

type Run struct {
	ID                   string    `json:"id"`
	JobID                string    `json:"job_id"`
	DocumentID           string    `json:"document_id"`
	ChunksCreated        int       `json:"chunks_created"`
	EntitiesExtracted    int       `json:"entities_extracted"`
	RelationshipsCreated int       `json:"relationships_created"`
	ProcessingTimeMS     float64   `json:"processing_time_ms"`
	Success              bool      `json:"success"`
	ErrorMessage         string    `json:"error_message,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

func fromResult(res document.ProcessingResult) *Run {
	return &Run{
		JobID:                res.JobID,
		DocumentID:           res.DocumentID,
		ChunksCreated:        res.ChunksCreated,
		EntitiesExtracted:    res.EntitiesExtracted,
		RelationshipsCreated: res.RelationshipsCreated,
		ProcessingTimeMS:     res.ProcessingTimeMS,
		Success:              res.Success,
		ErrorMessage:         res.ErrorMessage,
	}
}
