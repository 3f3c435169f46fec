package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sidkoko/discord-copilot/internal/adapter/openai"
	"github.com/sidkoko/discord-copilot/internal/retrieval"
)

// summaryMaxTokens caps the compressor completion; the prompt itself asks
// for at most 200 words.
const summaryMaxTokens = 300

const compressorPrompt = `You are a conversation context manager. Create a BRIEF summary that captures the essence of conversations.

RULES:
1. Summarize topics discussed, NOT exact words spoken
2. Focus on: key topics, user interests, important facts mentioned
3. Use short phrases, not full sentences
4. Maximum 200 words - be concise!
5. Format: Topic-based summary, not chronological

EXISTING CONTEXT:
%s

NEW EXCHANGE:
%s

Write a brief, updated context summary. Example format:
"Topics covered: [topics]. User asked about: [interests]. Key info shared: [facts]."

Keep under 200 words.`

type Summarizer interface {
	ChatCompletion(ctx context.Context, messages []openai.Message, maxTokens int) (string, error)
}

// Service keeps one rolling summary per scope. Folding a new exchange into a
// scope is serialized with a per-scope lock so concurrent exchanges cannot
// clobber each other's summaries.
type Service struct {
	repo Repository
	llm  Summarizer

	mu     sync.Mutex
	scopes map[string]*sync.Mutex
}

func NewService(repo Repository, llm Summarizer) *Service {
	return &Service{
		repo:   repo,
		llm:    llm,
		scopes: make(map[string]*sync.Mutex),
	}
}

func normalizeScope(scopeID string) string {
	if scopeID == "" {
		return DefaultScope
	}
	return scopeID
}

func (s *Service) scopeLock(scopeID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.scopes[scopeID]
	if !ok {
		lock = &sync.Mutex{}
		s.scopes[scopeID] = lock
	}
	return lock
}

// Summary returns the scope's rolling summary, or the no-history sentinel
// when nothing has been recorded yet.
func (s *Service) Summary(ctx context.Context, scopeID string) (string, error) {
	m, err := s.repo.Get(ctx, normalizeScope(scopeID))
	if errors.Is(err, sql.ErrNoRows) {
		return retrieval.NoHistorySentinel, nil
	}
	if err != nil {
		return "", err
	}
	if m.Summary == "" {
		return retrieval.NoHistorySentinel, nil
	}
	return m.Summary, nil
}

func (s *Service) Get(ctx context.Context, scopeID string) (*Memory, error) {
	scope := normalizeScope(scopeID)
	m, err := s.repo.Get(ctx, scope)
	if errors.Is(err, sql.ErrNoRows) {
		return &Memory{ScopeID: scope, Summary: retrieval.NoHistorySentinel}, nil
	}
	return m, err
}

// Record folds one user/assistant exchange into the scope's summary.
func (s *Service) Record(ctx context.Context, scopeID, userMessage, botResponse string) error {
	scope := normalizeScope(scopeID)

	lock := s.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	existing := ""
	count := 0
	m, err := s.repo.Get(ctx, scope)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if m != nil {
		existing = m.Summary
		count = m.MessageCount
	}

	exchange := fmt.Sprintf("User: %s\nAssistant: %s", userMessage, botResponse)
	summary := s.compress(ctx, existing, exchange)

	return s.repo.Upsert(ctx, &Memory{
		ScopeID:      scope,
		Summary:      summary,
		MessageCount: count + 1,
	})
}

// Set overwrites a scope's summary directly, bypassing compression. Used by
// the admin API.
func (s *Service) Set(ctx context.Context, scopeID, summary string, messageCount int) (*Memory, error) {
	scope := normalizeScope(scopeID)

	lock := s.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	m := &Memory{ScopeID: scope, Summary: summary, MessageCount: messageCount}
	if err := s.repo.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Clear(ctx context.Context, scopeID string) error {
	scope := normalizeScope(scopeID)

	lock := s.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	return s.repo.Delete(ctx, scope)
}

// compress asks the LLM for an updated topic summary. If the call fails the
// exchange is appended verbatim so nothing is lost.
func (s *Service) compress(ctx context.Context, existing, exchange string) string {
	history := existing
	if history == "" {
		history = retrieval.NoHistorySentinel
	}

	prompt := fmt.Sprintf(compressorPrompt, history, exchange)
	summary, err := s.llm.ChatCompletion(ctx, []openai.Message{
		{Role: "user", Content: prompt},
	}, summaryMaxTokens)
	if err != nil {
		slog.ErrorContext(ctx, "memory summary generation failed", "error", err)
		if existing == "" {
			return exchange
		}
		return existing + "\n\n" + exchange
	}
	return summary
}
