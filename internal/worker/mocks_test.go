package worker_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"papyrus/apps/backend/internal/document"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic string, body []byte) error {
	return m.Called(topic, body).Error(0)
}

type MockResultSaver struct {
	mock.Mock
}

func (m *MockResultSaver) Save(ctx context.Context, result document.ProcessingResult) error {
	return m.Called(ctx, result).Error(0)
}
