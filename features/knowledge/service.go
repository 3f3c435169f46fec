package knowledge

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sidkoko/discord-copilot/internal/config"
	"github.com/sidkoko/discord-copilot/internal/middleware"
	"github.com/sidkoko/discord-copilot/internal/worker"
)

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

// ChunkDeleter removes a document's chunks from the vector store when the
// document is deleted.
type ChunkDeleter interface {
	DeleteChunksByDocumentID(ctx context.Context, documentID string) error
}

type Service struct {
	repo   Repository
	pub    EventPublisher
	chunks ChunkDeleter
}

func NewService(repo Repository, pub EventPublisher, chunks ChunkDeleter) *Service {
	return &Service{repo: repo, pub: pub, chunks: chunks}
}

// Upload records the document as processing and hands ingestion off to the
// worker. The caller has already written the file to path.
func (s *Service) Upload(ctx context.Context, path, filename string, size int64) (*Document, error) {
	doc := &Document{
		Filename: filename,
		FilePath: path,
		FileSize: size,
		Status:   StatusProcessing,
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, err
	}

	task := worker.IngestTask{
		DocumentID:    doc.ID,
		Filename:      filename,
		Path:          path,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	body, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	if err := s.pub.Publish(config.TopicIngestDocument, body); err != nil {
		// Nothing will ever pick the task up, so don't leave the row
		// stuck in processing.
		if statusErr := s.repo.UpdateStatus(ctx, doc.ID, StatusFailed); statusErr != nil {
			slog.ErrorContext(ctx, "failed to mark document failed", "error", statusErr, "document_id", doc.ID)
		}
		return nil, err
	}

	return doc, nil
}

func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.repo.List(ctx)
}

// Delete removes the document row, its vector store chunks and the file on
// disk. Chunk deletion happens first so a failure leaves the document
// listed and retryable.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.chunks.DeleteChunksByDocumentID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			slog.WarnContext(ctx, "failed to remove uploaded file", "error", err, "path", filepath.Clean(doc.FilePath))
		}
	}

	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
