package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"papyrus/apps/backend/internal/document"
	"papyrus/apps/backend/internal/fusion"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	Search(ctx context.Context, queryVector []float32, limit int) ([]document.ChunkResult, error)
}

type GraphStore interface {
	Search(ctx context.Context, query string, limit int) ([]document.GraphResult, error)
	EntityRelationships(ctx context.Context, entityName string) ([]document.Relationship, error)
}

// Defaults are applied when a request leaves weights or limit unset.
type Defaults struct {
	VectorWeight float64
	GraphWeight  float64
	Limit        int
}

type Service struct {
	embedder Embedder
	vector   VectorStore
	graph    GraphStore
	defaults Defaults
	logger   *QueryLogger
}

func NewService(e Embedder, v VectorStore, g GraphStore, defaults Defaults, l *QueryLogger) *Service {
	return &Service{embedder: e, vector: v, graph: g, defaults: defaults, logger: l}
}

// Search runs one retrieval request. Hybrid searches query both stores in
// parallel; a failing store degrades that side to zero results instead of
// failing the whole call.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if err := req.validate(); err != nil {
		return nil, err
	}

	searchType := req.Type
	if searchType == "" {
		searchType = TypeHybrid
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.defaults.Limit
	}

	resp := &Response{Query: req.Query, Type: searchType}

	switch searchType {
	case TypeVector:
		results, err := s.searchVector(ctx, req.Query, limit)
		if err != nil {
			return nil, err
		}
		resp.Results = results

	case TypeGraph:
		results, err := s.graph.Search(ctx, req.Query, limit)
		if err != nil {
			return nil, fmt.Errorf("graph search: %w", err)
		}
		resp.GraphResults = results

	case TypeHybrid:
		resp.Results = s.searchHybrid(ctx, req, limit)
	}

	if resp.Results == nil {
		resp.Results = []document.ChunkResult{}
	}
	resp.LatencyMS = time.Since(start).Milliseconds()

	if s.logger != nil {
		s.logger.Log(ctx, QueryLogEntry{
			Query:      req.Query,
			Type:       string(searchType),
			NumResults: len(resp.Results) + len(resp.GraphResults),
			Duration:   time.Since(start),
		})
	}
	return resp, nil
}

func (s *Service) searchVector(ctx context.Context, query string, limit int) ([]document.ChunkResult, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	results, err := s.vector.Search(ctx, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return results, nil
}

func (s *Service) searchHybrid(ctx context.Context, req Request, limit int) []document.ChunkResult {
	var (
		wg            sync.WaitGroup
		vectorResults []document.ChunkResult
		graphResults  []document.GraphResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		results, err := s.searchVector(ctx, req.Query, limit)
		if err != nil {
			slog.WarnContext(ctx, "vector side of hybrid search failed", "error", err)
			return
		}
		vectorResults = results
	}()
	go func() {
		defer wg.Done()
		results, err := s.graph.Search(ctx, req.Query, limit)
		if err != nil {
			slog.WarnContext(ctx, "graph side of hybrid search failed", "error", err)
			return
		}
		graphResults = results
	}()
	wg.Wait()

	engine := fusion.NewEngine(s.weights(req))
	fused := engine.Fuse(vectorResults, graphResults, limit)
	fused = fusion.Deduplicate(fused)
	if req.Normalize {
		fused = fusion.Normalize(fused)
	}
	return fused
}

func (s *Service) weights(req Request) (float64, float64) {
	vw := s.defaults.VectorWeight
	gw := s.defaults.GraphWeight
	if req.VectorWeight != nil {
		vw = *req.VectorWeight
	}
	if req.GraphWeight != nil {
		gw = *req.GraphWeight
	}
	return vw, gw
}

// EntityRelationships returns the graph edges attached to one entity.
func (s *Service) EntityRelationships(ctx context.Context, entityName string) ([]document.Relationship, error) {
	if entityName == "" {
		return nil, fmt.Errorf("entity name is required")
	}
	return s.graph.EntityRelationships(ctx, entityName)
}
