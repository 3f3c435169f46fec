package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nsqio/go-nsq"

	"github.com/sidkoko/discord-copilot/internal/extract"
	"github.com/sidkoko/discord-copilot/internal/middleware"
	"github.com/sidkoko/discord-copilot/internal/text"
)

const ingestTimeout = 60 * time.Second

// IngestConsumer turns an uploaded PDF into embedded chunks in the vector
// store. Failures mark the document failed and park the task in the failed
// jobs table; they are never requeued automatically.
type IngestConsumer struct {
	embedder     Embedder
	store        VectorStore
	statuses     DocumentStatusUpdater
	failures     FailureRecorder
	chunkSize    int
	chunkOverlap int

	// extractPages is swapped in tests.
	extractPages func(path string) ([]extract.Page, error)
}

func NewIngestConsumer(e Embedder, s VectorStore, statuses DocumentStatusUpdater, failures FailureRecorder, chunkSize, chunkOverlap int) *IngestConsumer {
	return &IngestConsumer{
		embedder:     e,
		store:        s,
		statuses:     statuses,
		failures:     failures,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		extractPages: extract.PDFPages,
	}
}

// SetPageExtractor overrides PDF extraction, for tests.
func (h *IngestConsumer) SetPageExtractor(fn func(path string) ([]extract.Page, error)) {
	h.extractPages = fn
}

func (h *IngestConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var task IngestTask
	if err := json.Unmarshal(m.Body, &task); err != nil {
		// Poison Pill: Invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	ctx := context.Background()
	if task.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, task.CorrelationID)
	}

	pages, err := h.extractPages(task.Path)
	if err != nil {
		h.fail(ctx, task, fmt.Sprintf("extract: %v", err))
		return nil
	}

	var chunks []Chunk
	var texts []string
	for _, page := range pages {
		for _, piece := range text.Chunk(page.Text, h.chunkSize, h.chunkOverlap) {
			chunks = append(chunks, Chunk{
				Text:       piece,
				DocumentID: task.DocumentID,
				Filename:   task.Filename,
				PageNumber: page.Number,
				ChunkIndex: len(chunks),
			})
			texts = append(texts, piece)
		}
	}
	if len(chunks) == 0 {
		h.fail(ctx, task, "no chunkable text in document")
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, ingestTimeout)
	defer cancel()

	vectors, err := h.embedder.Embed(opCtx, texts)
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "error", err, "document_id", task.DocumentID)
		h.fail(ctx, task, fmt.Sprintf("embed: %v", err))
		return nil
	}
	if len(vectors) != len(chunks) {
		h.fail(ctx, task, fmt.Sprintf("embed: got %d vectors for %d chunks", len(vectors), len(chunks)))
		return nil
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	// Re-ingestion replaces the previous chunks of the same document.
	if err := h.store.DeleteChunksByDocumentID(opCtx, task.DocumentID); err != nil {
		slog.ErrorContext(ctx, "delete stale chunks failed", "error", err, "document_id", task.DocumentID)
		h.fail(ctx, task, fmt.Sprintf("delete stale chunks: %v", err))
		return nil
	}
	if err := h.store.StoreChunks(opCtx, chunks); err != nil {
		slog.ErrorContext(ctx, "store chunks failed", "error", err, "document_id", task.DocumentID)
		h.fail(ctx, task, fmt.Sprintf("store chunks: %v", err))
		return nil
	}

	if err := h.statuses.UpdateStatus(ctx, task.DocumentID, "completed"); err != nil {
		slog.ErrorContext(ctx, "update status failed", "error", err, "document_id", task.DocumentID)
		return nil
	}

	slog.InfoContext(ctx, "document ingested", "document_id", task.DocumentID, "filename", task.Filename, "chunks", len(chunks))
	return nil
}

func (h *IngestConsumer) fail(ctx context.Context, task IngestTask, reason string) {
	slog.ErrorContext(ctx, "ingest failed", "document_id", task.DocumentID, "filename", task.Filename, "reason", reason)

	if err := h.statuses.UpdateStatus(ctx, task.DocumentID, "failed"); err != nil {
		slog.ErrorContext(ctx, "update status failed", "error", err, "document_id", task.DocumentID)
	}
	if h.failures != nil {
		if err := h.failures.RecordFailure(ctx, task, reason); err != nil {
			slog.ErrorContext(ctx, "record failure failed", "error", err, "document_id", task.DocumentID)
		}
	}
}
