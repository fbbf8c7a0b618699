package search_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"papyrus/apps/backend/internal/document"
)

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) Search(ctx context.Context, queryVector []float32, limit int) ([]document.ChunkResult, error) {
	args := m.Called(ctx, queryVector, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.ChunkResult), args.Error(1)
}

type MockGraphStore struct {
	mock.Mock
}

func (m *MockGraphStore) Search(ctx context.Context, query string, limit int) ([]document.GraphResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.GraphResult), args.Error(1)
}

func (m *MockGraphStore) EntityRelationships(ctx context.Context, entityName string) ([]document.Relationship, error) {
	args := m.Called(ctx, entityName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.Relationship), args.Error(1)
}
