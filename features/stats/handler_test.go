package stats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedCounter struct {
	count int
	err   error
}

func (f *fixedCounter) Count(ctx context.Context) (int, error) { return f.count, f.err }

type fixedChunkCounter struct {
	count int
	err   error
}

func (f *fixedChunkCounter) CountChunks(ctx context.Context) (int, error) { return f.count, f.err }

func TestHandler_GetStats(t *testing.T) {
	handler := NewHandler(
		&fixedCounter{count: 7},
		&fixedCounter{count: 2},
		&fixedCounter{count: 1},
		&fixedChunkCounter{count: 42},
	)

	req := httptest.NewRequest("GET", "/api/stats", nil)
	rec := httptest.NewRecorder()

	handler.GetStats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data StatsResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Data.Documents)
	assert.Equal(t, 42, resp.Data.Chunks)
	assert.Equal(t, 2, resp.Data.AllowedChannels)
	assert.Equal(t, 1, resp.Data.FailedJobs)
}

func TestHandler_GetStats_CountError(t *testing.T) {
	handler := NewHandler(
		&fixedCounter{err: errors.New("db down")},
		&fixedCounter{},
		&fixedCounter{},
		&fixedChunkCounter{},
	)

	req := httptest.NewRequest("GET", "/api/stats", nil)
	rec := httptest.NewRecorder()

	handler.GetStats(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}
