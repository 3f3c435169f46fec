package retrieval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sidkoko/discord-copilot/internal/retrieval"
)

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

type MockSearcher struct{ mock.Mock }

func (m *MockSearcher) Search(ctx context.Context, vector []float32, topK int) ([]retrieval.SearchRecord, error) {
	args := m.Called(ctx, vector, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]retrieval.SearchRecord), args.Error(1)
}

func TestService_Retrieve(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*MockEmbedder, *MockSearcher)
		wantLen int
		check   func(*testing.T, []retrieval.RetrievedUnit)
	}{
		{
			name: "Success",
			setup: func(e *MockEmbedder, s *MockSearcher) {
				e.On("Embed", mock.Anything, []string{"what is the refund policy"}).
					Return([][]float32{{0.1, 0.2}}, nil)
				s.On("Search", mock.Anything, []float32{0.1, 0.2}, 5).
					Return([]retrieval.SearchRecord{
						{ChunkText: "Refunds take 5 days.", PageNumber: 3, DocumentName: "handbook.pdf", Similarity: 0.82},
						{ChunkText: "Contact support.", PageNumber: 9, DocumentName: "handbook.pdf", Similarity: 0.61},
					}, nil)
			},
			wantLen: 2,
			check: func(t *testing.T, units []retrieval.RetrievedUnit) {
				assert.Equal(t, "handbook.pdf (page 3)", units[0].SourceLabel)
				assert.Equal(t, float32(0.82), units[0].Similarity)
				assert.Equal(t, "Refunds take 5 days.", units[0].Text)
			},
		},
		{
			name: "Embedding Failure Degrades To Empty",
			setup: func(e *MockEmbedder, s *MockSearcher) {
				e.On("Embed", mock.Anything, mock.Anything).
					Return(nil, errors.New("provider down"))
			},
			wantLen: 0,
		},
		{
			name: "Search Failure Degrades To Empty",
			setup: func(e *MockEmbedder, s *MockSearcher) {
				e.On("Embed", mock.Anything, mock.Anything).
					Return([][]float32{{0.5}}, nil)
				s.On("Search", mock.Anything, []float32{0.5}, 5).
					Return(nil, errors.New("search down"))
			},
			wantLen: 0,
		},
		{
			name: "No Results",
			setup: func(e *MockEmbedder, s *MockSearcher) {
				e.On("Embed", mock.Anything, mock.Anything).
					Return([][]float32{{0.5}}, nil)
				s.On("Search", mock.Anything, []float32{0.5}, 5).
					Return([]retrieval.SearchRecord{}, nil)
			},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := new(MockEmbedder)
			searcher := new(MockSearcher)
			tt.setup(embedder, searcher)

			svc := retrieval.NewService(embedder, searcher, nil)
			units := svc.Retrieve(context.Background(), "what is the refund policy", 5)

			assert.Len(t, units, tt.wantLen)
			if tt.check != nil {
				tt.check(t, units)
			}
			embedder.AssertExpectations(t)
			searcher.AssertExpectations(t)
		})
	}
}
