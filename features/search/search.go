// Package search serves hybrid retrieval over the vector store and the
// knowledge graph, fusing both result sets into one ranked list.
package search

import (
	"fmt"

	"papyrus/apps/backend/internal/document"
)

type Type string

const (
	TypeHybrid Type = "hybrid"
	TypeVector Type = "vector"
	TypeGraph  Type = "graph"
)

// Request carries one search call. Zero-valued optional fields fall back to
// the service defaults.
type Request struct {
	Query        string   `json:"query"`
	Type         Type     `json:"type,omitempty"`
	Limit        int      `json:"limit,omitempty"`
	VectorWeight *float64 `json:"vector_weight,omitempty"`
	GraphWeight  *float64 `json:"graph_weight,omitempty"`
	Normalize    bool     `json:"normalize,omitempty"`
}

func (r *Request) validate() error {
	if r.Query == "" {
		return fmt.Errorf("query is required")
	}
	switch r.Type {
	case "", TypeHybrid, TypeVector, TypeGraph:
	default:
		return fmt.Errorf("unknown search type %q", r.Type)
	}
	if r.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	return nil
}

// Response is one completed search. GraphResults carries the raw entity hits
// only for graph-type searches; hybrid searches fold them into Results.
type Response struct {
	Query        string                 `json:"query"`
	Type         Type                   `json:"type"`
	Results      []document.ChunkResult `json:"results"`
	GraphResults []document.GraphResult `json:"graph_results,omitempty"`
	LatencyMS    int64                  `json:"latency_ms"`
}
