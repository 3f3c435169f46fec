package memory

import (
	"context"
	"encoding/json"
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

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scopeID := r.URL.Query().Get("channel_id")

	m, err := h.service.Get(ctx, scopeID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load memory", "error", err, "scope_id", scopeID)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": m}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		ChannelID    string `json:"channel_id"`
		Summary      string `json:"summary"`
		MessageCount int    `json:"message_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	m, err := h.service.Set(ctx, req.ChannelID, req.Summary, req.MessageCount)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update memory", "error", err, "scope_id", req.ChannelID)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": m}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scopeID := r.URL.Query().Get("channel_id")

	if err := h.service.Clear(ctx, scopeID); err != nil {
		slog.ErrorContext(ctx, "failed to clear memory", "error", err, "scope_id", scopeID)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
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
