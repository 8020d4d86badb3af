package hepb

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hcid-network/platform/internal/shared/errors"
)

// Handler provides the hepatitis B advisor endpoint
type Handler struct{}

// NewHandler creates a new hepatitis B handler
func NewHandler() *Handler {
	return &Handler{}
}

// Routes registers the advisor routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/advice", h.Advice)
	return r
}

func (h *Handler) Advice(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, errors.Validation(err.Error(), nil))
		return
	}

	writeJSON(w, http.StatusOK, Evaluate(in))
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
