package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/sidkoko/discord-copilot/internal/adapter/openai"
	"github.com/sidkoko/discord-copilot/internal/config"
	"github.com/sidkoko/discord-copilot/internal/retrieval"
	"github.com/sidkoko/discord-copilot/internal/worker"
)

type fakeVectorStore struct {
	chunkCount   int
	schemaErrors int
	schemaCalls  int
}

func (f *fakeVectorStore) StoreChunks(ctx context.Context, chunks []worker.Chunk) error { return nil }

func (f *fakeVectorStore) DeleteChunksByDocumentID(ctx context.Context, documentID string) error {
	return nil
}

func (f *fakeVectorStore) Search(ctx context.Context, vector []float32, topK int) ([]retrieval.SearchRecord, error) {
	return nil, nil
}

func (f *fakeVectorStore) CountChunks(ctx context.Context) (int, error) { return f.chunkCount, nil }

func (f *fakeVectorStore) EnsureSchema(ctx context.Context) error {
	f.schemaCalls++
	if f.schemaCalls <= f.schemaErrors {
		return errors.New("weaviate not ready")
	}
	return nil
}

type fakePublisher struct{}

func (f *fakePublisher) Publish(topic string, body []byte) error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		TopKRetrieval:       5,
		SimilarityThreshold: 0.5,
		ChunkSize:           600,
		ChunkOverlap:        100,
		MaxUploadSizeMB:     10,
		UploadDir:           t.TempDir(),
		QueryLogPath:        t.TempDir() + "/query.log",
		ServerPort:          8081,
	}
}

func newTestApp(t *testing.T, mockSetup func(sqlmock.Sqlmock)) (*App, *fakeVectorStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	if mockSetup != nil {
		mockSetup(mock)
	}

	vecStore := &fakeVectorStore{chunkCount: 42}
	llm := openai.NewClient("test-key", "http://localhost:0", "model", "embed-model", 4, time.Second)

	a, err := New(testConfig(t), db, vecStore, &fakePublisher{}, llm)
	assert.NoError(t, err)
	return a, vecStore
}

func TestApp_Health(t *testing.T) {
	a, _ := newTestApp(t, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestApp_StatsRoute(t *testing.T) {
	a, _ := newTestApp(t, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM allowed_channels`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM failed_jobs`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	})

	req := httptest.NewRequest("GET", "/api/stats", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"documents":3`)
	assert.Contains(t, rec.Body.String(), `"chunks":42`)
	assert.Contains(t, rec.Body.String(), `"allowed_channels":2`)
	assert.Contains(t, rec.Body.String(), `"failed_jobs":1`)
}

func TestApp_CorrelationIDOnResponses(t *testing.T) {
	a, _ := newTestApp(t, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery(`SELECT id, channel_id, name, created_at FROM allowed_channels`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "channel_id", "name", "created_at"}))
	})

	req := httptest.NewRequest("GET", "/api/channels", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestApp_UnknownRoute(t *testing.T) {
	a, _ := newTestApp(t, nil)

	req := httptest.NewRequest("GET", "/api/nope", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnsureSchemaWithRetry(t *testing.T) {
	store := &fakeVectorStore{schemaErrors: 2}

	err := EnsureSchemaWithRetry(context.Background(), store, 5, time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, 3, store.schemaCalls)
}

func TestEnsureSchemaWithRetry_Exhausted(t *testing.T) {
	store := &fakeVectorStore{schemaErrors: 10}

	err := EnsureSchemaWithRetry(context.Background(), store, 3, time.Millisecond)
	assert.Error(t, err)
	assert.Equal(t, 3, store.schemaCalls)
}
