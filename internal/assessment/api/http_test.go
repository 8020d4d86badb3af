package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hcid-network/platform/internal/assessment/domain"
	"github.com/hcid-network/platform/internal/assessment/infrastructure"
	"github.com/hcid-network/platform/internal/risktable"
	"github.com/hcid-network/platform/internal/shared/auth"
	"github.com/hcid-network/platform/internal/shared/types"
)

type testServer struct {
	handler http.Handler
	tables  *risktable.Service
	user    *auth.User
}

func newTestServer() *testServer {
	tables := risktable.NewService()
	handler := NewHandler(infrastructure.NewMemoryRepository(), tables, nil)
	return &testServer{
		handler: handler.Routes(),
		tables:  tables,
		user: &auth.User{
			ID:       types.NewID(),
			UserType: "clinician",
			Roles:    []string{"clinician"},
		},
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(context.WithValue(req.Context(), auth.UserContextKey, s.user))

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// doAnon issues a request with no user in context, as happens outside
// production where the auth middleware is not mounted
func (s *testServer) doAnon(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) create(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Assessment struct {
			ID string `json:"id"`
		} `json:"assessment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.Assessment.ID
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) assessmentResponse {
	t.Helper()
	var resp assessmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestCreateAndGet(t *testing.T) {
	s := newTestServer()
	id := s.create(t)

	rec := s.do(t, http.MethodGet, "/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get returned %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	if resp.Assessment.Stage != domain.StageScreening {
		t.Errorf("expected screening stage, got %s", resp.Assessment.Stage)
	}
	if !resp.Outcome.Pending {
		t.Errorf("expected a pending outcome, got %+v", resp.Outcome)
	}
}

func TestGetUnknownAssessment(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, http.MethodGet, "/"+types.NewID().String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a malformed ID, got %d", rec.Code)
	}
}

func TestOwnershipEnforced(t *testing.T) {
	s := newTestServer()
	id := s.create(t)

	s.user = &auth.User{ID: types.NewID(), UserType: "clinician"}
	rec := s.do(t, http.MethodGet, "/"+id, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for another clinician, got %d", rec.Code)
	}

	s.user = &auth.User{ID: types.NewID(), UserType: "admin"}
	rec = s.do(t, http.MethodGet, "/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected admins to read any assessment, got %d", rec.Code)
	}
}

func TestRequestsWithoutUserAreRejected(t *testing.T) {
	s := newTestServer()
	id := s.create(t)

	requests := []struct{ method, path string }{
		{http.MethodPost, "/"},
		{http.MethodGet, "/"},
		{http.MethodGet, "/" + id},
	}
	for _, tc := range requests {
		rec := s.doAnon(t, tc.method, tc.path)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s with no user returned %d, want %d", tc.method, tc.path, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestScreeningTerminalOutcome(t *testing.T) {
	s := newTestServer()
	id := s.create(t)

	rec := s.do(t, http.MethodPost, "/"+id+"/screening", screeningRequest{Fever: "no"})
	if rec.Code != http.StatusOK {
		t.Fatalf("screening returned %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	if resp.Outcome.Tone != domain.ToneGreen || !resp.Outcome.Terminal {
		t.Errorf("expected terminal green, got %+v", resp.Outcome)
	}

	rec = s.do(t, http.MethodPost, "/"+id+"/advance", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected advancing past a terminal screening to fail, got %d", rec.Code)
	}
}

// TestFullAssessmentFlow drives the minimal-risk path end to end over HTTP
func TestFullAssessmentFlow(t *testing.T) {
	s := newTestServer()
	id := s.create(t)
	base := "/" + id

	steps := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, base + "/screening", screeningRequest{Fever: "yes", HighRiskContact: "no"}},
		{http.MethodPost, base + "/advance", nil},
		{http.MethodPost, base + "/segments", segmentRequest{Country: "Ghana", DepartureDate: "2024-06-01"}},
		{http.MethodPost, base + "/onset", onsetRequest{OnsetDate: "2024-06-11"}},
		{http.MethodPost, base + "/advance", nil}, // select -> review
		{http.MethodPost, base + "/advance", nil}, // review -> exposures
	}
	for _, step := range steps {
		rec := s.do(t, step.method, step.path, step.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s %s returned %d: %s", step.method, step.path, rec.Code, rec.Body.String())
		}
	}

	// Ghana carries a single Marburg record in the bundled table
	rec := s.do(t, http.MethodGet, base+"/review", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("review returned %d", rec.Code)
	}
	var review struct {
		Reviews  []domain.SegmentReview `json:"reviews"`
		AllGreen bool                   `json:"all_green"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &review); err != nil {
		t.Fatal(err)
	}
	if len(review.Reviews) != 1 || !review.Reviews[0].Hazards.EbolaMarburg {
		t.Fatalf("expected a single Ebola/Marburg review, got %+v", review.Reviews)
	}
	segID := review.Reviews[0].SegmentID.String()

	answers := []exposureRequest{
		{SegmentID: segID, Hazard: "ebola_marburg", Answer: "no"},
		{Question: "outbreak_exposure", Answer: "no"},
		{Question: "bleeding_symptom", Answer: "no"},
	}
	for _, answer := range answers {
		rec := s.do(t, http.MethodPost, base+"/exposures", answer)
		if rec.Code != http.StatusOK {
			t.Fatalf("exposure answer returned %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec = s.do(t, http.MethodGet, base+"/outcome", nil)
	var outcome domain.Outcome
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatal(err)
	}
	if outcome.Tone != domain.ToneAmber || outcome.NextQuestion != domain.QuestionMalariaResult {
		t.Fatalf("expected the amber follow-up chain, got %+v", outcome)
	}

	rec = s.do(t, http.MethodPost, base+"/followup", followUpRequest{Question: "malaria_result", Answer: "no"})
	if rec.Code != http.StatusOK {
		t.Fatalf("follow-up returned %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if resp.Outcome.NextQuestion != domain.QuestionAlternativeDiagnosis {
		t.Errorf("expected the alternative diagnosis question next, got %+v", resp.Outcome)
	}
}

// TestReviewProvenanceSurvivesTableRefresh pins the review display to the
// table that actually classified the segments, not whatever the registry
// delivered afterwards
func TestReviewProvenanceSurvivesTableRefresh(t *testing.T) {
	s := newTestServer()
	id := s.create(t)
	base := "/" + id

	steps := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, base + "/screening", screeningRequest{Fever: "yes", HighRiskContact: "no"}},
		{http.MethodPost, base + "/advance", nil},
		{http.MethodPost, base + "/segments", segmentRequest{Country: "Ghana", DepartureDate: "2024-06-01"}},
		{http.MethodPost, base + "/onset", onsetRequest{OnsetDate: "2024-06-11"}},
		{http.MethodPost, base + "/advance", nil}, // select -> review
	}
	for _, step := range steps {
		rec := s.do(t, step.method, step.path, step.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s %s returned %d: %s", step.method, step.path, rec.Code, rec.Body.String())
		}
	}

	captured := time.Now().UTC()
	s.tables.SetLive(risktable.New(map[string][]risktable.Record{
		"Ghana": {{Disease: "Marburg virus disease", Evidence: "Live refresh", Year: "2025"}},
	}, risktable.Provenance{Source: risktable.SourceLive, CapturedAt: &captured}))

	rec := s.do(t, http.MethodGet, base+"/review", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("review returned %d", rec.Code)
	}
	var review struct {
		Provenance *risktable.Provenance `json:"provenance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &review); err != nil {
		t.Fatal(err)
	}
	if review.Provenance == nil || review.Provenance.Source != risktable.SourceFallback {
		t.Errorf("expected the provenance of the classifying table, got %+v", review.Provenance)
	}
}

func TestExposureAnswerValidation(t *testing.T) {
	s := newTestServer()
	id := s.create(t)

	rec := s.do(t, http.MethodPost, "/"+id+"/exposures", exposureRequest{Question: "outbreak_exposure", Answer: "maybe"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an invalid answer, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/"+id+"/exposures", exposureRequest{Question: "outbreak_exposure", Answer: "no"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 answering exposures at the screening stage, got %d", rec.Code)
	}
}

func TestResetReturnsToScreening(t *testing.T) {
	s := newTestServer()
	id := s.create(t)

	s.do(t, http.MethodPost, "/"+id+"/screening", screeningRequest{Fever: "yes", HighRiskContact: "no"})
	s.do(t, http.MethodPost, "/"+id+"/advance", nil)

	rec := s.do(t, http.MethodPost, "/"+id+"/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset returned %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Assessment.Stage != domain.StageScreening {
		t.Errorf("expected screening stage after reset, got %s", resp.Assessment.Stage)
	}
}

func TestDeleteAssessment(t *testing.T) {
	s := newTestServer()
	id := s.create(t)

	rec := s.do(t, http.MethodDelete, "/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestListByClinician(t *testing.T) {
	s := newTestServer()
	first := s.create(t)
	second := s.create(t)

	rec := s.do(t, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}
	var resp struct {
		Assessments []json.RawMessage `json:"assessments"`
		Total       int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 {
		t.Errorf("expected 2 assessments, got %d (%s, %s)", resp.Total, first, second)
	}
}

func TestSegmentLifecycleOverHTTP(t *testing.T) {
	s := newTestServer()
	id := s.create(t)
	base := "/" + id

	s.do(t, http.MethodPost, base+"/screening", screeningRequest{Fever: "yes", HighRiskContact: "no"})
	s.do(t, http.MethodPost, base+"/advance", nil)

	rec := s.do(t, http.MethodPost, base+"/segments", segmentRequest{Country: "Nigeria", DepartureDate: "2024-06-01"})
	resp := decodeResponse(t, rec)
	if len(resp.Assessment.Segments) != 1 {
		t.Fatalf("expected one segment, got %d", len(resp.Assessment.Segments))
	}
	segID := resp.Assessment.Segments[0].ID.String()

	rec = s.do(t, http.MethodPut, fmt.Sprintf("%s/segments/%s", base, segID),
		segmentRequest{Country: "Uganda", DepartureDate: "2024-06-02"})
	resp = decodeResponse(t, rec)
	if resp.Assessment.Segments[0].Country != "Uganda" {
		t.Errorf("expected the segment country updated, got %s", resp.Assessment.Segments[0].Country)
	}

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("%s/segments/%s", base, segID), nil)
	resp = decodeResponse(t, rec)
	if len(resp.Assessment.Segments) != 0 {
		t.Errorf("expected no segments after removal, got %d", len(resp.Assessment.Segments))
	}
}
