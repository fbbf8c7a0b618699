// Package weaviate stores chunk embeddings and serves vector search.
package weaviate

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"papyrus/apps/backend/internal/document"
	"papyrus/apps/backend/internal/vector"
)

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// EnsureSchema creates or migrates the chunk class.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(s.client))
}

// UpsertChunks writes all chunks in one batch. Chunk IDs are deterministic,
// so re-processing a document overwrites its previous objects instead of
// duplicating them.
func (s *Store) UpsertChunks(ctx context.Context, chunks []document.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	objects := make([]*models.Object, len(chunks))
	for i, c := range chunks {
		objects[i] = &models.Object{
			Class: vector.ClassName,
			ID:    strfmt.UUID(c.ID),
			Properties: map[string]interface{}{
				"content":     c.Content,
				"documentId":  c.DocumentID,
				"chunkIndex":  c.Index,
				"startChar":   c.StartChar,
				"endChar":     c.EndChar,
				"title":       c.Metadata.DocumentTitle,
				"source":      c.Metadata.DocumentSource,
				"fileType":    c.Metadata.FileType,
				"chunkMethod": c.Metadata.ChunkMethod,
				"heading":     c.Metadata.Heading,
				"listItems":   c.Metadata.ListItems,
			},
			Vector: c.Embedding,
		}
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}

	var failed []string
	for _, obj := range resp {
		if obj.Result == nil || obj.Result.Errors == nil {
			continue
		}
		for _, e := range obj.Result.Errors.Error {
			if e != nil {
				failed = append(failed, e.Message)
			}
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("batch write rejected %d objects: %s", len(failed), strings.Join(failed, "; "))
	}
	return nil
}

// Search runs a nearVector query and returns ranked chunk hits. Score is the
// certainty Weaviate reports, in [0,1].
func (s *Store) Search(ctx context.Context, queryVector []float32, limit int) ([]document.ChunkResult, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(queryVector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "documentId"},
		{Name: "chunkIndex"},
		{Name: "title"},
		{Name: "source"},
		{Name: "chunkMethod"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "certainty"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var results []document.ChunkResult
	if data, ok := res.Data["Get"].(map[string]interface{}); ok {
		if hits, ok := data[vector.ClassName].([]interface{}); ok {
			for _, h := range hits {
				props, ok := h.(map[string]interface{})
				if !ok {
					continue
				}
				result := document.ChunkResult{
					Metadata: make(map[string]string),
				}

				if content, ok := props["content"].(string); ok {
					result.Content = content
				}
				if docID, ok := props["documentId"].(string); ok {
					result.DocumentID = docID
				}
				if title, ok := props["title"].(string); ok {
					result.DocumentTitle = title
				}
				if source, ok := props["source"].(string); ok {
					result.DocumentSource = source
				}
				if method, ok := props["chunkMethod"].(string); ok && method != "" {
					result.Metadata["chunk_method"] = method
				}
				if idx, ok := props["chunkIndex"].(float64); ok {
					i := int(idx)
					result.ChunkIndex = &i
				}

				if additional, ok := props["_additional"].(map[string]interface{}); ok {
					if id, ok := additional["id"].(string); ok {
						result.ChunkID = id
					}
					// Certainty is numeric in current Weaviate versions but
					// has shipped as a string before.
					if certainty, ok := additional["certainty"].(float64); ok {
						result.Score = certainty
					} else if certainty, ok := additional["certainty"].(string); ok {
						fmt.Sscanf(certainty, "%f", &result.Score)
					}
				}

				results = append(results, result)
			}
		}
	}

	return results, nil
}

// DeleteByDocument removes every chunk object belonging to one document.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(vector.ClassName).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"documentId"}).
			WithOperator(filters.Equal).
			WithValueString(documentID)).
		Do(ctx)
	return err
}

// CountChunks returns the total number of stored chunk objects.
func (s *Store) CountChunks(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(vector.ClassName).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	if data, ok := res.Data["Aggregate"].(map[string]interface{}); ok {
		if groups, ok := data[vector.ClassName].([]interface{}); ok && len(groups) > 0 {
			if group, ok := groups[0].(map[string]interface{}); ok {
				if meta, ok := group["meta"].(map[string]interface{}); ok {
					if count, ok := meta["count"].(float64); ok {
						return int(count), nil
					}
				}
			}
		}
	}
	return 0, nil
}

// Ping reports whether the Weaviate instance accepts requests.
func (s *Store) Ping(ctx context.Context) error {
	ready, err := s.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return err
	}
	if !ready {
		return fmt.Errorf("weaviate not ready")
	}
	return nil
}
