package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxEmbedBatch is the provider's documented cap on inputs per embeddings
// request. Larger input sets are split into consecutive requests, preserving
// overall order.
const maxEmbedBatch = 2048

// Client talks to an OpenAI-compatible API (OpenRouter in production). It
// serves both embedding generation and chat completion; construct one per
// process and inject it where needed.
type Client struct {
	apiKey         string
	baseURL        string
	chatModel      string
	embeddingModel string
	dimensions     int
	client         *http.Client
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func NewClient(apiKey, baseURL, chatModel, embeddingModel string, dimensions int, timeout time.Duration) *Client {
	return &Client{
		apiKey:         apiKey,
		baseURL:        baseURL,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		dimensions:     dimensions,
		client:         &http.Client{Timeout: timeout},
	}
}

func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// Embed returns one vector per input text, in input order. Any provider
// failure fails the whole call: partial embeddings are never returned, so
// callers can treat a non-nil result as complete.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := start + maxEmbedBatch
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"model": c.embeddingModel,
		"input": texts,
	}

	var result struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}

	if err := c.post(ctx, "/embeddings", reqBody, &result); err != nil {
		return nil, err
	}

	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(result.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embeddings response index %d out of range", d.Index)
		}
		if len(d.Embedding) != c.dimensions {
			return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(d.Embedding), c.dimensions)
		}
		vectors[d.Index] = d.Embedding
	}

	return vectors, nil
}

// ChatCompletion performs a single-shot, non-streaming completion. maxTokens
// of zero leaves the provider default in place. No retry here; retry policy
// belongs to the caller.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	reqBody := map[string]interface{}{
		"model":    c.chatModel,
		"messages": messages,
	}
	if maxTokens > 0 {
		reqBody["max_tokens"] = maxTokens
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := c.post(ctx, "/chat/completions", reqBody, &result); err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, result interface{}) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("provider api error: %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
