package travelhistory

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hcid-network/platform/internal/shared/errors"
)

// Handler provides the travel history narrative endpoints
type Handler struct{}

// NewHandler creates a new travel history handler
func NewHandler() *Handler {
	return &Handler{}
}

// Routes registers the travel history routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/prompts", h.Prompts)
	r.Post("/narrative", h.Narrative)
	return r
}

type narrativeRequest struct {
	Entries []Entry `json:"entries"`

	// MarkRemainingNo applies the bulk deny action before rendering
	MarkRemainingNo bool `json:"mark_remaining_no,omitempty"`
}

func (h *Handler) Prompts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"prompts": DefaultPrompts()})
}

func (h *Handler) Narrative(w http.ResponseWriter, r *http.Request) {
	var req narrativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	entries := req.Entries
	if req.MarkRemainingNo {
		for i := range entries {
			entries[i].Prompts = MarkRemainingNo(entries[i].Prompts)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"narrative": Narrative(entries),
		"countries": Countries(entries),
		"entries":   entries,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		writeJSON(w, appErr.HTTPStatus, map[string]any{"error": appErr})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"error": map[string]string{"message": "internal server error", "code": "INTERNAL_ERROR"},
	})
}
