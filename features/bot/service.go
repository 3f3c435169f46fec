package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sidkoko/discord-copilot/internal/adapter/openai"
	"github.com/sidkoko/discord-copilot/internal/retrieval"
)

var ErrChannelNotAllowed = errors.New("channel not allowed")

// FallbackReply is returned when generation fails so the bot always has
// something to say.
const FallbackReply = "I apologize, but I'm having trouble processing your request right now. Please try again later."

type ChannelGate interface {
	IsAllowed(ctx context.Context, channelID string) (bool, error)
}

type InstructionsProvider interface {
	Content(ctx context.Context) (string, error)
}

type MemoryStore interface {
	Summary(ctx context.Context, scopeID string) (string, error)
	Record(ctx context.Context, scopeID, userMessage, botResponse string) error
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) []retrieval.RetrievedUnit
}

type Generator interface {
	ChatCompletion(ctx context.Context, messages []openai.Message, maxTokens int) (string, error)
}

// QueryContext is everything a transport needs to answer one question.
type QueryContext struct {
	SystemInstructions  string                    `json:"system_instructions"`
	ConversationSummary string                    `json:"conversation_summary"`
	RelevantKnowledge   []retrieval.RetrievedUnit `json:"relevant_knowledge"`
	IsAllowedChannel    bool                      `json:"is_allowed_channel"`
}

type Service struct {
	channels     ChannelGate
	instructions InstructionsProvider
	memory       MemoryStore
	retriever    Retriever
	llm          Generator
	topK         int
	threshold    float32
}

func NewService(channels ChannelGate, instructions InstructionsProvider, memory MemoryStore, retriever Retriever, llm Generator, topK int, threshold float32) *Service {
	return &Service{
		channels:     channels,
		instructions: instructions,
		memory:       memory,
		retriever:    retriever,
		llm:          llm,
		topK:         topK,
		threshold:    threshold,
	}
}

// Context gathers instructions, summary and retrieved knowledge for one
// query. A disallowed channel short-circuits with empty context.
func (s *Service) Context(ctx context.Context, query, channelID string) (*QueryContext, error) {
	allowed, err := s.channels.IsAllowed(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return &QueryContext{RelevantKnowledge: []retrieval.RetrievedUnit{}}, nil
	}

	instructions, err := s.instructions.Content(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.memory.Summary(ctx, channelID)
	if err != nil {
		return nil, err
	}

	units := s.retriever.Retrieve(ctx, query, s.topK)
	if units == nil {
		units = []retrieval.RetrievedUnit{}
	}

	return &QueryContext{
		SystemInstructions:  instructions,
		ConversationSummary: summary,
		RelevantKnowledge:   units,
		IsAllowedChannel:    true,
	}, nil
}

// Message runs the full exchange: gate, gather, assemble, generate, then
// fold the exchange into the channel's rolling summary.
func (s *Service) Message(ctx context.Context, query, channelID string) (string, error) {
	qc, err := s.Context(ctx, query, channelID)
	if err != nil {
		return "", err
	}
	if !qc.IsAllowedChannel {
		return "", ErrChannelNotAllowed
	}

	prompt := retrieval.Assemble(qc.SystemInstructions, qc.ConversationSummary, qc.RelevantKnowledge, s.threshold)

	reply, err := s.llm.ChatCompletion(ctx, []openai.Message{
		{Role: "system", Content: prompt},
		{Role: "user", Content: query},
	}, 0)
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "error", err, "channel_id", channelID)
		reply = FallbackReply
	}

	if err := s.memory.Record(ctx, channelID, query, reply); err != nil {
		slog.ErrorContext(ctx, "memory update failed", "error", err, "channel_id", channelID)
	}

	return reply, nil
}
