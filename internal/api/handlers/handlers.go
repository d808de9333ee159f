// Package handlers implements the HTTP handlers for the PawMart backend:
// account signup/login, catalog browsing, orders, cart, and the
// conversational shopping assistant endpoint.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pawmart/pawmart/internal/assistant"
	"github.com/pawmart/pawmart/internal/auth"
	"github.com/pawmart/pawmart/internal/llm"
	"github.com/pawmart/pawmart/internal/store"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Store      store.Store
	Auth       *auth.Manager
	Upstream   llm.Client
	Classifier *assistant.Classifier
	Dispatcher *assistant.Dispatcher
	Composer   *assistant.Composer

	// Development gates diagnostic detail in error payloads.
	Development bool
	Version     string
}

// New creates a Handlers instance with all dependencies.
func New(s store.Store, am *auth.Manager, client llm.Client, cls *assistant.Classifier, development bool, version string) *Handlers {
	return &Handlers{
		Store:       s,
		Auth:        am,
		Upstream:    client,
		Classifier:  cls,
		Dispatcher:  assistant.NewDispatcher(s),
		Composer:    assistant.NewComposer(client),
		Development: development,
		Version:     version,
	}
}

// Health reports liveness; it also pings the store so a dead database
// shows up here first.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := h.Store.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]string{
		"status":  status,
		"service": "pawmart-backend",
	})
}

func (h *Handlers) GetVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version": h.Version,
		"service": "pawmart-backend",
	})
}

// ── Response helpers ────────────────────────────────────────

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondResult writes the storefront response convention: success flag,
// a human-readable message, and an optional data payload.
func respondResult(w http.ResponseWriter, status int, success bool, message string, data any) {
	body := map[string]any{
		"success": success,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	respondJSON(w, status, body)
}
