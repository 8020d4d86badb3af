package risktable

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler provides HTTP handlers for risk table inspection
type Handler struct {
	service *Service
}

// NewHandler creates a new risk table handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes registers the risk table routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetTable)
	r.Get("/{country}", h.GetCountry)

	return r
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	table := h.service.Current()

	writeJSON(w, http.StatusOK, map[string]any{
		"provenance": table.Provenance(),
		"countries":  table.Countries(),
		"total":      table.Len(),
	})
}

func (h *Handler) GetCountry(w http.ResponseWriter, r *http.Request) {
	table := h.service.Current()
	country := chi.URLParam(r, "country")

	records := table.Lookup(country)

	writeJSON(w, http.StatusOK, map[string]any{
		"country":    country,
		"records":    records,
		"total":      len(records),
		"provenance": table.Provenance(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
