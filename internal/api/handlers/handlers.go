// Package handlers implements the HTTP handlers of the FashBot gateway.
// Each capability handler validates the payload, runs the orchestrator
// sweep, and performs the route-level error classification that decides
// whether the cross-provider fallback engages.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fashbot/fashbot/internal/explain"
	"github.com/fashbot/fashbot/internal/orchestrator"
	"github.com/fashbot/fashbot/pkg/models"
	"github.com/rs/zerolog/log"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Orchestrator *orchestrator.Orchestrator
	PingMessage  string
}

// New creates a Handlers instance.
func New(o *orchestrator.Orchestrator, pingMessage string) *Handlers {
	return &Handlers{Orchestrator: o, PingMessage: pingMessage}
}

// Ping is the trivial liveness endpoint the front end polls.
func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": h.PingMessage})
}

// Chat runs the primary provider sweep and, when the failure signature says
// the primary service is disabled or unauthorized, the alternate-provider
// fallback. Other fatal failures surface directly with their status and
// details.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(req.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ctx := r.Context()
	result, err := h.Orchestrator.ChatPrimary(ctx, req.Model, req.Messages, req.Attachments)
	if err == nil {
		respondJSON(w, http.StatusOK, models.ChatResponse{
			Message:     result.Value,
			Explanation: explain.Segments(req.Messages, result.Value),
		})
		return
	}
	if cancelled(ctx) {
		// The user stopped waiting; discard the pending response quietly.
		log.Debug().Msg("chat request cancelled by client")
		return
	}

	if orchestrator.TriggersCrossProviderFallback(err) {
		reply, provider, fbErr := h.Orchestrator.ChatFallback(ctx, req.Messages)
		if fbErr == nil {
			respondJSON(w, http.StatusOK, models.ChatResponse{
				Message:     reply.Value,
				Explanation: explain.Segments(req.Messages, reply.Value),
				Provider:    provider,
			})
			return
		}
		if cancelled(ctx) {
			log.Debug().Msg("chat request cancelled by client")
			return
		}
		var sweepErr *models.SweepError
		if errors.As(fbErr, &sweepErr) {
			respondJSON(w, http.StatusBadGateway, map[string]any{
				"error": sweepErr.Message,
				"tried": sweepErr.Tried,
			})
			return
		}
		respondError(w, http.StatusBadGateway, fbErr.Error())
		return
	}

	status := http.StatusBadGateway
	details := err.Error()
	var provErr *orchestrator.ProviderError
	if errors.As(err, &provErr) {
		if provErr.Status >= 400 {
			status = provErr.Status
		}
		details = provErr.Details
	}
	respondJSON(w, status, map[string]string{
		"error":   "Chat provider request failed",
		"details": details,
	})
}

// GenerateImage handles POST /api/generate/image.
func (h *Handlers) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req models.ImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		respondError(w, http.StatusBadRequest, "Missing prompt")
		return
	}

	resp, err := h.Orchestrator.GenerateImage(r.Context(), req)
	if err != nil {
		h.respondSweepFailure(w, r.Context(), err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GenerateDocument handles POST /api/generate/document.
func (h *Handlers) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	var req models.DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		respondError(w, http.StatusBadRequest, "Missing prompt")
		return
	}

	resp, err := h.Orchestrator.GenerateDocument(r.Context(), req)
	if err != nil {
		h.respondSweepFailure(w, r.Context(), err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GenerateVideo handles POST /api/generate/video.
func (h *Handlers) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req models.VideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		respondError(w, http.StatusBadRequest, "Missing prompt")
		return
	}

	resp, err := h.Orchestrator.GenerateVideo(r.Context(), req)
	if err != nil {
		h.respondSweepFailure(w, r.Context(), err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) respondSweepFailure(w http.ResponseWriter, ctx context.Context, err error) {
	if cancelled(ctx) {
		log.Debug().Msg("generation request cancelled by client")
		return
	}
	var sweepErr *models.SweepError
	if errors.As(err, &sweepErr) {
		respondJSON(w, http.StatusBadGateway, map[string]any{
			"error":  sweepErr.Message,
			"tried":  sweepErr.Tried,
			"errors": sweepErr.Errors,
		})
		return
	}
	respondError(w, http.StatusBadGateway, err.Error())
}

func cancelled(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
