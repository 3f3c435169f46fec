package bot

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sidkoko/discord-copilot/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

type queryRequest struct {
	Query     string `json:"query"`
	ChannelID string `json:"channel_id"`
}

// Query returns the raw context bundle so the Discord transport can drive
// its own generation.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "query is required", http.StatusBadRequest)
		return
	}

	qc, err := h.service.Context(ctx, req.Query, req.ChannelID)
	if err != nil {
		slog.ErrorContext(ctx, "bot query failed", "error", err, "channel_id", req.ChannelID)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(qc); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// Message runs the full answer pipeline and returns the reply text.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "query is required", http.StatusBadRequest)
		return
	}

	reply, err := h.service.Message(ctx, req.Query, req.ChannelID)
	if err != nil {
		if errors.Is(err, ErrChannelNotAllowed) {
			h.writeError(ctx, w, "FORBIDDEN", "Channel not allowed", http.StatusForbidden)
			return
		}
		slog.ErrorContext(ctx, "bot message failed", "error", err, "channel_id", req.ChannelID)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"response": reply}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
