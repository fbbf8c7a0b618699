// Package fusion merges semantic-similarity and knowledge-graph result sets
// into a single ranked list.
package fusion

import (
	"fmt"
	"sort"
	"strings"

	"papyrus/apps/backend/internal/document"
)

// defaultGraphScore is the confidence assigned to graph hits that carry no
// native score. Graph membership alone is weaker evidence than a ranked
// similarity score.
const defaultGraphScore = 0.5

// graphDocumentID marks projected graph entities in the fused result list.
const graphDocumentID = "knowledge_graph"

// Engine fuses heterogeneous result sets. Weights scale each side's scores
// before the merge.
type Engine struct {
	VectorWeight float64
	GraphWeight  float64
}

func NewEngine(vectorWeight, graphWeight float64) *Engine {
	return &Engine{VectorWeight: vectorWeight, GraphWeight: graphWeight}
}

// Fuse scales, merges, rank-sorts, and truncates the two result sets. Nil or
// empty inputs are fine; fusing nothing yields an empty list. The sort is
// stable so pre-sorted inputs keep their relative order under ties.
func (e *Engine) Fuse(vectorResults []document.ChunkResult, graphResults []document.GraphResult, limit int) []document.ChunkResult {
	combined := make([]document.ChunkResult, 0, len(vectorResults)+len(graphResults))

	for _, r := range vectorResults {
		r.Score = r.Score * e.VectorWeight
		combined = append(combined, r)
	}
	for _, g := range graphResults {
		combined = append(combined, e.project(g))
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Score > combined[j].Score
	})

	if limit >= 0 && len(combined) > limit {
		combined = combined[:limit]
	}
	return combined
}

// project renders a graph entity as a synthetic chunk so both modalities share
// one result shape downstream.
func (e *Engine) project(g document.GraphResult) document.ChunkResult {
	score := defaultGraphScore
	if g.Score != nil {
		score = *g.Score
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Entity: %s (%s)\n", g.EntityName, g.EntityType)
	if len(g.Properties) > 0 {
		b.WriteString("Properties:\n")
		for _, k := range sortedKeys(g.Properties) {
			fmt.Fprintf(&b, "  %s: %s\n", k, g.Properties[k])
		}
	}
	if len(g.Relationships) > 0 {
		b.WriteString("Relationships:\n")
		for _, rel := range g.Relationships {
			fmt.Fprintf(&b, "  %s -> %s", rel.Type, rel.Target)
			if rel.Fact != "" {
				fmt.Fprintf(&b, " (%s)", rel.Fact)
			}
			b.WriteString("\n")
		}
	}

	return document.ChunkResult{
		ChunkID:    g.EntityID,
		DocumentID: graphDocumentID,
		Content:    strings.TrimRight(b.String(), "\n"),
		Score:      score * e.GraphWeight,
		Metadata: map[string]string{
			"source":      graphDocumentID,
			"entity_name": g.EntityName,
			"entity_type": g.EntityType,
		},
		DocumentTitle:  "Knowledge Graph: " + g.EntityName,
		DocumentSource: graphDocumentID,
	}
}

// Normalize rescales scores to [0,1] with min-max across the set. When every
// score is equal, all collapse to 1.0 rather than dividing by zero. The input
// slice is modified in place and returned.
func Normalize(results []document.ChunkResult) []document.ChunkResult {
	if len(results) == 0 {
		return results
	}

	minScore, maxScore := results[0].Score, results[0].Score
	for _, r := range results[1:] {
		if r.Score < minScore {
			minScore = r.Score
		}
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}

	if maxScore == minScore {
		for i := range results {
			results[i].Score = 1.0
		}
		return results
	}

	span := maxScore - minScore
	for i := range results {
		results[i].Score = (results[i].Score - minScore) / span
	}
	return results
}

// Deduplicate drops results whose first 100 characters of trimmed, lowercased
// content match an earlier result. Cheap and approximate: near-duplicates with
// divergent openings slip through.
func Deduplicate(results []document.ChunkResult) []document.ChunkResult {
	if len(results) == 0 {
		return results
	}

	seen := make(map[string]bool, len(results))
	out := make([]document.ChunkResult, 0, len(results))
	for _, r := range results {
		key := strings.ToLower(strings.TrimSpace(r.Content))
		if len(key) > 100 {
			key = key[:100]
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
