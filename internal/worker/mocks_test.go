package worker_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sidkoko/discord-copilot/internal/worker"
)

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

type MockVectorStore struct{ mock.Mock }

func (m *MockVectorStore) StoreChunks(ctx context.Context, chunks []worker.Chunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockVectorStore) DeleteChunksByDocumentID(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

type MockStatusUpdater struct{ mock.Mock }

func (m *MockStatusUpdater) UpdateStatus(ctx context.Context, documentID, status string) error {
	args := m.Called(ctx, documentID, status)
	return args.Error(0)
}

type MockFailureRecorder struct{ mock.Mock }

func (m *MockFailureRecorder) RecordFailure(ctx context.Context, task worker.IngestTask, reason string) error {
	args := m.Called(ctx, task, reason)
	return args.Error(0)
}
