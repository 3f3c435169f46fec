package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetrievedUnit is one knowledge snippet ranked against a query. Units are
// ephemeral: produced fresh per query, never persisted.
type RetrievedUnit struct {
	Text        string  `json:"text"`
	SourceLabel string  `json:"source"`
	Similarity  float32 `json:"similarity"`
}

// SearchRecord is what the similarity-search collaborator returns for one
// stored chunk. The collaborator performs the ranking; this package does not
// re-rank.
type SearchRecord struct {
	ChunkText    string
	PageNumber   int
	DocumentName string
	Similarity   float32
}

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]SearchRecord, error)
}

type Service struct {
	embedder Embedder
	store    VectorSearcher
	logger   *QueryLogger
}

func NewService(e Embedder, s VectorSearcher, l *QueryLogger) *Service {
	return &Service{embedder: e, store: s, logger: l}
}

// Retrieve embeds the query and returns the topK nearest stored units, best
// first. Retrieval is best-effort: any failure (embedding, search) degrades
// to an empty result so the surrounding conversation never aborts on a
// knowledge lookup.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) []RetrievedUnit {
	start := time.Now()

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		slog.ErrorContext(ctx, "query embedding failed, returning no knowledge", "error", err)
		return nil
	}
	if len(vectors) != 1 {
		slog.ErrorContext(ctx, "query embedding returned unexpected vector count", "count", len(vectors))
		return nil
	}

	records, err := s.store.Search(ctx, vectors[0], topK)
	if err != nil {
		slog.ErrorContext(ctx, "similarity search failed, returning no knowledge", "error", err)
		return nil
	}

	units := make([]RetrievedUnit, 0, len(records))
	for _, rec := range records {
		units = append(units, RetrievedUnit{
			Text:        rec.ChunkText,
			SourceLabel: fmt.Sprintf("%s (page %d)", rec.DocumentName, rec.PageNumber),
			Similarity:  rec.Similarity,
		})
	}

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Query:      query,
			NumResults: len(units),
			Duration:   time.Since(start),
		})
	}

	return units
}
