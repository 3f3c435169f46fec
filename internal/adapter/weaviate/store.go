package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/sidkoko/discord-copilot/internal/retrieval"
	"github.com/sidkoko/discord-copilot/internal/vector"
	"github.com/sidkoko/discord-copilot/internal/worker"
)

const className = vector.ClassName

// insertBatchSize bounds one batch insert request to Weaviate.
const insertBatchSize = 50

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	return vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(s.client))
}

// StoreChunks inserts embedded chunks in batches. Any per-object error fails
// the whole call so the ingest job can be retried.
func (s *Store) StoreChunks(ctx context.Context, chunks []worker.Chunk) error {
	for start := 0; start < len(chunks); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		objects := make([]*models.Object, 0, end-start)
		for _, chunk := range chunks[start:end] {
			objects = append(objects, &models.Object{
				Class: className,
				Properties: map[string]interface{}{
					"content":    chunk.Text,
					"documentId": chunk.DocumentID,
					"filename":   chunk.Filename,
					"pageNumber": chunk.PageNumber,
					"chunkIndex": chunk.ChunkIndex,
				},
				Vector: models.C11yVector(chunk.Vector),
			})
		}

		resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
		if err != nil {
			return err
		}
		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				return fmt.Errorf("batch insert error: %s", obj.Result.Errors.Error[0].Message)
			}
		}
	}
	return nil
}

func (s *Store) DeleteChunksByDocumentID(ctx context.Context, documentID string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(className).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"documentId"}).
			WithOperator(filters.Equal).
			WithValueString(documentID)).
		Do(ctx)
	return err
}

// Search runs a nearVector query and maps hits to retrieval records.
// Similarity is Weaviate's certainty, already normalised to [0,1].
func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]retrieval.SearchRecord, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "documentId"},
		{Name: "filename"},
		{Name: "pageNumber"},
		{Name: "chunkIndex"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(className).
		WithNearVector(nearVector).
		WithLimit(topK).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var records []retrieval.SearchRecord
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return records, nil
	}
	hits, ok := data[className].([]interface{})
	if !ok {
		return records, nil
	}

	for _, h := range hits {
		props, ok := h.(map[string]interface{})
		if !ok {
			continue
		}

		var rec retrieval.SearchRecord
		if content, ok := props["content"].(string); ok {
			rec.ChunkText = content
		}
		if filename, ok := props["filename"].(string); ok {
			rec.DocumentName = filename
		}
		if page, ok := props["pageNumber"].(float64); ok {
			rec.PageNumber = int(page)
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			switch c := additional["certainty"].(type) {
			case float64:
				rec.Similarity = float32(c)
			case string:
				var f float64
				fmt.Sscanf(c, "%f", &f)
				rec.Similarity = float32(f)
			}
		}

		records = append(records, rec)
	}

	return records, nil
}

func (s *Store) CountChunks(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(className).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	if agg, ok := res.Data["Aggregate"].(map[string]interface{}); ok {
		if rows, ok := agg[className].([]interface{}); ok && len(rows) > 0 {
			if row, ok := rows[0].(map[string]interface{}); ok {
				if meta, ok := row["meta"].(map[string]interface{}); ok {
					if count, ok := meta["count"].(float64); ok {
						return int(count), nil
					}
				}
			}
		}
	}
	return 0, nil
}
