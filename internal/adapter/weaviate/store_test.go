package weaviate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	adapter "github.com/sidkoko/discord-copilot/internal/adapter/weaviate"
	"github.com/sidkoko/discord-copilot/internal/worker"
)

func mockWeaviate(t *testing.T, handler http.HandlerFunc) (*weaviate.Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	cfg := weaviate.Config{Host: ts.Listener.Addr().String(), Scheme: "http"}
	client, err := weaviate.NewClient(cfg)
	assert.NoError(t, err)
	return client, ts
}

func TestStore_StoreChunks(t *testing.T) {
	var gotObjects []map[string]interface{}
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		assert.Equal(t, "/v1/batch/objects", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		for _, o := range body["objects"].([]interface{}) {
			gotObjects = append(gotObjects, o.(map[string]interface{}))
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode([]map[string]interface{}{})
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	chunks := []worker.Chunk{
		{Text: "first chunk", DocumentID: "doc-1", Filename: "handbook.pdf", PageNumber: 1, ChunkIndex: 0, Vector: []float32{0.1, 0.2}},
		{Text: "second chunk", DocumentID: "doc-1", Filename: "handbook.pdf", PageNumber: 2, ChunkIndex: 1, Vector: []float32{0.3, 0.4}},
	}
	err := store.StoreChunks(context.Background(), chunks)
	assert.NoError(t, err)

	assert.Len(t, gotObjects, 2)
	props := gotObjects[0]["properties"].(map[string]interface{})
	assert.Equal(t, "first chunk", props["content"])
	assert.Equal(t, "doc-1", props["documentId"])
	assert.Equal(t, "handbook.pdf", props["filename"])
	assert.Equal(t, 1.0, props["pageNumber"])
	assert.Equal(t, 0.0, props["chunkIndex"])
	assert.Equal(t, "DocumentChunk", gotObjects[0]["class"])
}

func TestStore_StoreChunks_Empty(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		t.Errorf("unexpected request to %s", r.URL.Path)
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	assert.NoError(t, store.StoreChunks(context.Background(), nil))
}

func TestStore_DeleteChunksByDocumentID(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		assert.Equal(t, "/v1/batch/objects", r.URL.Path)
		assert.Equal(t, "DELETE", r.Method)

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		match := body["match"].(map[string]interface{})
		where := match["where"].(map[string]interface{})
		assert.Equal(t, []interface{}{"documentId"}, where["path"])
		assert.Equal(t, "doc-1", where["valueString"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{})
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	err := store.DeleteChunksByDocumentID(context.Background(), "doc-1")
	assert.NoError(t, err)
}

func TestStore_Search(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		assert.Equal(t, "/v1/graphql", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		resp := map[string]interface{}{
			"data": map[string]interface{}{
				"Get": map[string]interface{}{
					"DocumentChunk": []interface{}{
						map[string]interface{}{
							"content":    "Refunds take 5 days.",
							"filename":   "handbook.pdf",
							"pageNumber": 3.0,
							"chunkIndex": 7.0,
							"_additional": map[string]interface{}{
								"certainty": 0.82,
							},
						},
						map[string]interface{}{
							"content":    "Contact support.",
							"filename":   "handbook.pdf",
							"pageNumber": 9.0,
							"chunkIndex": 21.0,
							"_additional": map[string]interface{}{
								"certainty": 0.61,
							},
						},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	records, err := store.Search(context.Background(), []float32{0.1, 0.2}, 5)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "Refunds take 5 days.", records[0].ChunkText)
	assert.Equal(t, "handbook.pdf", records[0].DocumentName)
	assert.Equal(t, 3, records[0].PageNumber)
	assert.Equal(t, float32(0.82), records[0].Similarity)
	assert.Equal(t, float32(0.61), records[1].Similarity)
}

func TestStore_Search_NoHits(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		resp := map[string]interface{}{
			"data": map[string]interface{}{
				"Get": map[string]interface{}{
					"DocumentChunk": []interface{}{},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	records, err := store.Search(context.Background(), []float32{0.1}, 5)
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_CountChunks(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		assert.Equal(t, "/v1/graphql", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		resp := map[string]interface{}{
			"data": map[string]interface{}{
				"Aggregate": map[string]interface{}{
					"DocumentChunk": []interface{}{
						map[string]interface{}{
							"meta": map[string]interface{}{
								"count": 42.0,
							},
						},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	count, err := store.CountChunks(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 42, count)
}
