// Package api exposes the risk assessment over HTTP. Handlers load the
// aggregate, apply one transition, persist the new snapshot and publish the
// drained domain events; all decision logic stays in the domain package.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hcid-network/platform/internal/assessment/domain"
	"github.com/hcid-network/platform/internal/risktable"
	"github.com/hcid-network/platform/internal/shared/auth"
	"github.com/hcid-network/platform/internal/shared/errors"
	"github.com/hcid-network/platform/internal/shared/events"
	"github.com/hcid-network/platform/internal/shared/metrics"
	"github.com/hcid-network/platform/internal/shared/types"
)

// Handler provides HTTP handlers for risk assessments
type Handler struct {
	repo   domain.Repository
	tables *risktable.Service
	bus    events.EventBus
}

// NewHandler creates a new assessment handler. The bus may be nil, in which
// case domain events are dropped after persistence.
func NewHandler(repo domain.Repository, tables *risktable.Service, bus events.EventBus) *Handler {
	return &Handler{repo: repo, tables: tables, bus: bus}
}

// Routes registers the assessment routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)

		r.Post("/screening", h.AnswerScreening)
		r.Post("/segments", h.AddSegment)
		r.Put("/segments/{segmentID}", h.UpdateSegment)
		r.Delete("/segments/{segmentID}", h.RemoveSegment)
		r.Post("/onset", h.SetOnset)

		r.Post("/advance", h.Advance)
		r.Post("/back", h.Back)
		r.Post("/reset", h.Reset)

		r.Post("/exposures", h.AnswerExposure)
		r.Post("/followup", h.AnswerFollowUp)

		r.Get("/review", h.Review)
		r.Get("/outcome", h.Outcome)
	})

	return r
}

type screeningRequest struct {
	Fever           string `json:"fever"`
	HighRiskContact string `json:"high_risk_contact"`
}

type segmentRequest struct {
	Country       string `json:"country"`
	ArrivalDate   string `json:"arrival_date"`
	DepartureDate string `json:"departure_date"`
}

type onsetRequest struct {
	OnsetDate string `json:"onset_date"`
}

type exposureRequest struct {
	SegmentID string `json:"segment_id,omitempty"`
	Hazard    string `json:"hazard,omitempty"`
	Question  string `json:"question,omitempty"`
	Answer    string `json:"answer"`
}

type followUpRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type assessmentResponse struct {
	Assessment *domain.Assessment `json:"assessment"`
	Outcome    domain.Outcome     `json:"outcome"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	assessment := domain.NewAssessment(user.ID)
	if err := h.repo.Create(r.Context(), assessment); err != nil {
		writeError(w, err)
		return
	}

	metrics.RecordAssessmentStarted()
	h.publishEvents(r, assessment)
	writeJSON(w, http.StatusCreated, h.respond(assessment))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.respond(assessment))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	assessments, err := h.repo.ListByClinician(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"assessments": assessments,
		"total":       len(assessments),
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.repo.Delete(r.Context(), assessment.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AnswerScreening(w http.ResponseWriter, r *http.Request) {
	var req screeningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	fever, err := types.ParseAnswer(req.Fever)
	if err != nil {
		writeError(w, errors.Validation("invalid fever answer", map[string]string{"fever": req.Fever}))
		return
	}
	contact, err := types.ParseAnswer(req.HighRiskContact)
	if err != nil {
		writeError(w, errors.Validation("invalid contact answer", map[string]string{"high_risk_contact": req.HighRiskContact}))
		return
	}

	h.mutate(w, r, func(a *domain.Assessment) error {
		return a.AnswerScreening(fever, contact)
	})
}

func (h *Handler) AddSegment(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	h.mutate(w, r, func(a *domain.Assessment) error {
		_, err := a.AddSegment(req.Country, req.ArrivalDate, req.DepartureDate)
		return err
	})
}

func (h *Handler) UpdateSegment(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	segmentID := types.ID(chi.URLParam(r, "segmentID"))

	h.mutate(w, r, func(a *domain.Assessment) error {
		return a.UpdateSegment(segmentID, req.Country, req.ArrivalDate, req.DepartureDate)
	})
}

func (h *Handler) RemoveSegment(w http.ResponseWriter, r *http.Request) {
	segmentID := types.ID(chi.URLParam(r, "segmentID"))

	h.mutate(w, r, func(a *domain.Assessment) error {
		return a.RemoveSegment(segmentID)
	})
}

func (h *Handler) SetOnset(w http.ResponseWriter, r *http.Request) {
	var req onsetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	h.mutate(w, r, func(a *domain.Assessment) error {
		return a.SetOnsetDate(req.OnsetDate)
	})
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	table := h.tables.Current()

	h.mutate(w, r, func(a *domain.Assessment) error {
		from := a.Stage
		if err := a.Advance(table); err != nil {
			return err
		}
		metrics.RecordStageChange(string(from), string(a.Stage))
		return nil
	})
}

func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(a *domain.Assessment) error {
		from := a.Stage
		if err := a.Back(); err != nil {
			return err
		}
		metrics.RecordStageChange(string(from), string(a.Stage))
		return nil
	})
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(a *domain.Assessment) error {
		a.Reset()
		return nil
	})
}

func (h *Handler) AnswerExposure(w http.ResponseWriter, r *http.Request) {
	var req exposureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	answer, err := types.ParseAnswer(req.Answer)
	if err != nil {
		writeError(w, errors.Validation("invalid answer", map[string]string{"answer": req.Answer}))
		return
	}

	h.mutate(w, r, func(a *domain.Assessment) error {
		if req.Question != "" {
			return a.AnswerGlobal(domain.GlobalQuestion(req.Question), answer)
		}
		return a.AnswerHazard(types.ID(req.SegmentID), domain.Hazard(req.Hazard), answer)
	})
}

func (h *Handler) AnswerFollowUp(w http.ResponseWriter, r *http.Request) {
	var req followUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	answer, err := types.ParseAnswer(req.Answer)
	if err != nil {
		writeError(w, errors.Validation("invalid answer", map[string]string{"answer": req.Answer}))
		return
	}

	h.mutate(w, r, func(a *domain.Assessment) error {
		return a.AnswerFollowUp(domain.FollowUpQuestion(req.Question), answer)
	})
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.load(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// Provenance was pinned when the reviews were computed; the current
	// table may have been refreshed since and would mislabel them
	writeJSON(w, http.StatusOK, map[string]any{
		"reviews":    assessment.Reviews,
		"all_green":  domain.AllGreen(assessment.Reviews),
		"provenance": assessment.TableProvenance,
	})
}

func (h *Handler) Outcome(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.Resolve(assessment))
}

// mutate loads the assessment, applies one transition and persists it
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fn func(*domain.Assessment) error) {
	assessment, err := h.load(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := fn(assessment); err != nil {
		if _, ok := err.(*errors.AppError); ok {
			writeError(w, err)
		} else {
			writeError(w, errors.BadRequest(err.Error()))
		}
		return
	}

	if err := h.repo.Update(r.Context(), assessment); err != nil {
		writeError(w, err)
		return
	}

	outcome := domain.Resolve(assessment)
	if !outcome.Pending && outcome.Terminal {
		metrics.RecordAssessmentOutcome(string(outcome.Tone))
	}

	h.publishEvents(r, assessment)
	writeJSON(w, http.StatusOK, assessmentResponse{Assessment: assessment, Outcome: outcome})
}

// load fetches the assessment and checks the caller may act on it
func (h *Handler) load(r *http.Request) (*domain.Assessment, error) {
	id, err := types.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return nil, errors.BadRequest("invalid assessment ID")
	}

	assessment, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}

	user := auth.GetUser(r.Context())
	if user == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	if assessment.ClinicianID != user.ID && user.UserType != "admin" {
		return nil, errors.Forbidden("assessment belongs to another clinician")
	}
	return assessment, nil
}

func (h *Handler) respond(a *domain.Assessment) assessmentResponse {
	return assessmentResponse{Assessment: a, Outcome: domain.Resolve(a)}
}

// publishEvents drains the aggregate's domain events onto the bus
func (h *Handler) publishEvents(r *http.Request, a *domain.Assessment) {
	drained := a.GetDomainEvents()
	if h.bus == nil || len(drained) == 0 {
		return
	}

	user := auth.GetUser(r.Context())
	for _, de := range drained {
		event := events.NewEvent(de.Type, "assessment-api", de.AssessmentEvent)
		if user != nil {
			event = event.WithActor(user.ID, user.UserType)
		}
		if err := h.bus.Publish(r.Context(), event); err != nil {
			log.Printf("Failed to publish event %s: %v", de.Type, err)
		}
	}
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
