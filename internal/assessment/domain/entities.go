package domain

import (
	"time"

	"github.com/hcid-network/platform/internal/risktable"
	"github.com/hcid-network/platform/internal/shared/types"
)

// Stage defines the questionnaire stage
type Stage string

const (
	StageScreening Stage = "screening"
	StageSelect    Stage = "select"
	StageReview    Stage = "review"
	StageExposures Stage = "exposures"
	StageSummary   Stage = "summary"
)

// stageOrder is the forward sequence of stages
var stageOrder = []Stage{StageScreening, StageSelect, StageReview, StageExposures, StageSummary}

func stageIndex(s Stage) int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Tone is the three-valued decision severity
type Tone string

const (
	ToneGreen Tone = "green"
	ToneAmber Tone = "amber"
	ToneRed   Tone = "red"
)

// Hazard identifies one of the country-specific exposure question groups
type Hazard string

const (
	HazardLassa        Hazard = "lassa"
	HazardEbolaMarburg Hazard = "ebola_marburg"
	HazardCCHF         Hazard = "cchf"
)

// Hazards lists all hazard buckets in display order
var Hazards = []Hazard{HazardLassa, HazardEbolaMarburg, HazardCCHF}

// HazardSet records which hazard buckets matched a country's filtered records
type HazardSet struct {
	Lassa        bool `json:"lassa"`
	EbolaMarburg bool `json:"ebola_marburg"`
	CCHF         bool `json:"cchf"`
}

// Has reports whether the given hazard is set
func (h HazardSet) Has(hazard Hazard) bool {
	switch hazard {
	case HazardLassa:
		return h.Lassa
	case HazardEbolaMarburg:
		return h.EbolaMarburg
	case HazardCCHF:
		return h.CCHF
	}
	return false
}

// Any reports whether any hazard bucket matched
func (h HazardSet) Any() bool {
	return h.Lassa || h.EbolaMarburg || h.CCHF
}

// TravelSegment is one visited country with its travel dates. Dates are
// kept as entered (ISO yyyy-mm-dd or empty); the window evaluator parses
// them and treats unparseable values as missing.
type TravelSegment struct {
	ID            types.ID `json:"id"`
	Country       string   `json:"country"`
	ArrivalDate   string   `json:"arrival_date,omitempty"`
	DepartureDate string   `json:"departure_date,omitempty"`
}

// HazardAnswers holds a segment's exposure answers. Only the hazards the
// classifier flagged for that country are ever required; the rest stay
// unanswered and are excluded from completion accounting.
type HazardAnswers struct {
	Lassa        types.Answer `json:"lassa,omitempty"`
	EbolaMarburg types.Answer `json:"ebola_marburg,omitempty"`
	CCHF         types.Answer `json:"cchf,omitempty"`
}

// Get returns the answer for a hazard
func (h HazardAnswers) Get(hazard Hazard) types.Answer {
	switch hazard {
	case HazardLassa:
		return h.Lassa
	case HazardEbolaMarburg:
		return h.EbolaMarburg
	case HazardCCHF:
		return h.CCHF
	}
	return types.Unanswered
}

func (h *HazardAnswers) set(hazard Hazard, answer types.Answer) {
	switch hazard {
	case HazardLassa:
		h.Lassa = answer
	case HazardEbolaMarburg:
		h.EbolaMarburg = answer
	case HazardCCHF:
		h.CCHF = answer
	}
}

// GlobalQuestion identifies one of the always-required exposure questions
type GlobalQuestion string

const (
	QuestionOutbreakExposure GlobalQuestion = "outbreak_exposure"
	QuestionBleedingSymptom  GlobalQuestion = "bleeding_symptom"
)

// GlobalAnswers holds the session-wide exposure answers
type GlobalAnswers struct {
	OutbreakExposure types.Answer `json:"outbreak_exposure,omitempty"`
	BleedingSymptom  types.Answer `json:"bleeding_symptom,omitempty"`
}

// FollowUpQuestion identifies a question in the minimal-risk follow-up chain
type FollowUpQuestion string

const (
	QuestionMalariaResult        FollowUpQuestion = "malaria_result"
	QuestionAlternativeDiagnosis FollowUpQuestion = "alternative_diagnosis"
	QuestionConcern72h           FollowUpQuestion = "concern_72h"
	QuestionVHFTest              FollowUpQuestion = "vhf_test"
)

// FollowUpAnswers holds the sequential minimal-risk follow-up chain.
// Changing any answer clears everything downstream of it.
type FollowUpAnswers struct {
	MalariaPositive      types.Answer `json:"malaria_positive,omitempty"`
	AlternativeDiagnosis types.Answer `json:"alternative_diagnosis,omitempty"`
	Concern72h           types.Answer `json:"concern_72h,omitempty"`
	VHFTestPositive      types.Answer `json:"vhf_test_positive,omitempty"`
}

// SegmentReview is the per-country classification card produced on entering
// the review stage. It is re-derivable from the segment and the risk table;
// it is stored on the assessment so the resolver stays a pure function of
// accumulated state.
type SegmentReview struct {
	SegmentID  types.ID          `json:"segment_id"`
	Country    string            `json:"country"`
	Tone       Tone              `json:"tone"`
	Heading    string            `json:"heading"`
	Records    []risktable.Record `json:"records,omitempty"`
	Hazards    HazardSet         `json:"hazards"`
	Unmatched  []string          `json:"unmatched,omitempty"`

	// DaysSinceDeparture is nil when either date is missing or unparseable
	DaysSinceDeparture *int `json:"days_since_departure,omitempty"`

	// TravelAssociatedNote is set when the country had only travel-associated
	// mentions that were filtered out
	TravelAssociatedNote bool `json:"travel_associated_note,omitempty"`

	// MERSNotice is independent of the tone: it flags that a separate
	// assessment pathway applies for this country
	MERSNotice bool `json:"mers_notice,omitempty"`
}

// AssessmentEventType defines the type of assessment event
type AssessmentEventType string

const (
	EventTypeCreated         AssessmentEventType = "CREATED"
	EventTypeStageChanged    AssessmentEventType = "STAGE_CHANGED"
	EventTypeAnswerRecorded  AssessmentEventType = "ANSWER_RECORDED"
	EventTypeSegmentAdded    AssessmentEventType = "SEGMENT_ADDED"
	EventTypeSegmentUpdated  AssessmentEventType = "SEGMENT_UPDATED"
	EventTypeSegmentRemoved  AssessmentEventType = "SEGMENT_REMOVED"
	EventTypeReviewed        AssessmentEventType = "REVIEWED"
	EventTypeReset           AssessmentEventType = "RESET"
)

// AssessmentEvent records something that happened to an assessment
type AssessmentEvent struct {
	ID           types.ID            `json:"id"`
	AssessmentID types.ID            `json:"assessment_id"`
	Type         AssessmentEventType `json:"type"`
	ActorID      types.ID            `json:"actor_id"`
	Description  string              `json:"description"`
	Data         map[string]any      `json:"data,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
}

// Event is a domain event wrapper for publishing
type Event struct {
	Type            string          `json:"type"`
	AssessmentID    types.ID        `json:"assessment_id"`
	AssessmentEvent AssessmentEvent `json:"assessment_event"`
}
