package worker

import "context"

// Chunk is one embedded slice of an uploaded document, ready for the vector
// store.
type Chunk struct {
	Text       string
	Vector     []float32
	DocumentID string
	Filename   string
	PageNumber int
	ChunkIndex int
}

// IngestTask is the NSQ payload published when a document is uploaded and
// consumed by the ingest worker.
type IngestTask struct {
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	Path          string `json:"path"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type VectorStore interface {
	StoreChunks(ctx context.Context, chunks []Chunk) error
	DeleteChunksByDocumentID(ctx context.Context, documentID string) error
}

// DocumentStatusUpdater moves a document through processing -> completed or
// failed as ingestion progresses.
type DocumentStatusUpdater interface {
	UpdateStatus(ctx context.Context, documentID, status string) error
}

// FailureRecorder captures terminal ingestion failures so they can be
// inspected and retried through the jobs API.
type FailureRecorder interface {
	RecordFailure(ctx context.Context, task IngestTask, reason string) error
}
