package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hcid-network/platform/internal/risktable"
	"github.com/hcid-network/platform/internal/shared/types"
)

// Assessment is the aggregate root for one risk-assessment session. All
// mutation goes through its methods; each method validates the transition,
// applies the reducer-style answer change (including downstream clears) and
// records a domain event. Derived output comes from Resolve, which reads
// but never writes this state.
type Assessment struct {
	ID    types.ID `json:"id"`
	Stage Stage    `json:"stage"`

	Fever           types.Answer `json:"fever"`
	HighRiskContact types.Answer `json:"high_risk_contact"`

	Segments  []TravelSegment `json:"segments"`
	OnsetDate string          `json:"onset_date,omitempty"`

	// Reviews is computed once on entering the review stage so the resolver
	// stays a pure function of stored state. TableProvenance travels with it,
	// naming the table that actually produced the classification; a later
	// registry refresh must not relabel stored reviews.
	Reviews         []SegmentReview       `json:"reviews,omitempty"`
	TableProvenance *risktable.Provenance `json:"table_provenance,omitempty"`

	HazardAnswers map[types.ID]*HazardAnswers `json:"hazard_answers,omitempty"`
	Global        GlobalAnswers               `json:"global"`
	FollowUp      FollowUpAnswers             `json:"follow_up"`

	ClinicianID types.ID  `json:"clinician_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	domainEvents []Event
}

// NewAssessment starts a new session at the screening stage
func NewAssessment(clinicianID types.ID) *Assessment {
	now := time.Now()
	a := &Assessment{
		ID:            types.NewID(),
		Stage:         StageScreening,
		HazardAnswers: make(map[types.ID]*HazardAnswers),
		ClinicianID:   clinicianID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	a.addEvent(EventTypeCreated, "Assessment started", nil)
	return a
}

// AnswerScreening records the fever and high-risk contact answers. The
// contact answer is only meaningful when fever is yes; otherwise it is
// cleared. Changing either answer invalidates everything downstream.
func (a *Assessment) AnswerScreening(fever, contact types.Answer) error {
	if a.Stage != StageScreening {
		return fmt.Errorf("screening answers can only be changed at the screening stage")
	}
	if !fever.Answered() && fever != types.Unanswered {
		return fmt.Errorf("invalid fever answer")
	}
	if !fever.IsYes() {
		contact = types.Unanswered
	}

	changed := a.Fever != fever || a.HighRiskContact != contact
	a.Fever = fever
	a.HighRiskContact = contact

	if changed {
		a.clearReviewAndBeyond()
		a.addEvent(EventTypeAnswerRecorded, "Screening answers recorded", map[string]any{
			"fever":             string(fever),
			"high_risk_contact": string(contact),
		})
	}

	a.touch()
	return nil
}

// AddSegment adds a visited country at the select stage
func (a *Assessment) AddSegment(country, arrivalDate, departureDate string) (*TravelSegment, error) {
	if a.Stage != StageSelect {
		return nil, fmt.Errorf("countries can only be added at the select stage")
	}
	if country == "" {
		return nil, fmt.Errorf("country is required")
	}

	seg := TravelSegment{
		ID:            types.NewID(),
		Country:       country,
		ArrivalDate:   arrivalDate,
		DepartureDate: departureDate,
	}
	a.Segments = append(a.Segments, seg)
	a.clearReviewAndBeyond()
	a.addEvent(EventTypeSegmentAdded, fmt.Sprintf("Country added: %s", country), map[string]any{
		"segment_id": seg.ID.String(),
	})
	a.touch()
	return &seg, nil
}

// UpdateSegment edits an existing segment's country or dates
func (a *Assessment) UpdateSegment(segmentID types.ID, country, arrivalDate, departureDate string) error {
	if a.Stage != StageSelect {
		return fmt.Errorf("countries can only be edited at the select stage")
	}
	if country == "" {
		return fmt.Errorf("country is required")
	}

	for i := range a.Segments {
		if a.Segments[i].ID == segmentID {
			a.Segments[i].Country = country
			a.Segments[i].ArrivalDate = arrivalDate
			a.Segments[i].DepartureDate = departureDate
			a.clearReviewAndBeyond()
			a.addEvent(EventTypeSegmentUpdated, fmt.Sprintf("Country updated: %s", country), map[string]any{
				"segment_id": segmentID.String(),
			})
			a.touch()
			return nil
		}
	}
	return fmt.Errorf("segment not found")
}

// RemoveSegment deletes a segment and its exposure answers
func (a *Assessment) RemoveSegment(segmentID types.ID) error {
	if a.Stage != StageSelect {
		return fmt.Errorf("countries can only be removed at the select stage")
	}

	for i := range a.Segments {
		if a.Segments[i].ID == segmentID {
			a.Segments = append(a.Segments[:i], a.Segments[i+1:]...)
			delete(a.HazardAnswers, segmentID)
			a.clearReviewAndBeyond()
			a.addEvent(EventTypeSegmentRemoved, "Country removed", map[string]any{
				"segment_id": segmentID.String(),
			})
			a.touch()
			return nil
		}
	}
	return fmt.Errorf("segment not found")
}

// SetOnsetDate records the symptom onset date
func (a *Assessment) SetOnsetDate(date string) error {
	if a.Stage != StageSelect {
		return fmt.Errorf("onset date can only be changed at the select stage")
	}
	if a.OnsetDate != date {
		a.OnsetDate = date
		a.clearReviewAndBeyond()
		a.addEvent(EventTypeAnswerRecorded, "Onset date recorded", map[string]any{
			"onset_date": date,
		})
	}
	a.touch()
	return nil
}

// Advance moves the assessment to the next stage if the guard holds. The
// risk table is needed for the select-to-review transition, where every
// segment is classified.
func (a *Assessment) Advance(table *risktable.Table) error {
	switch a.Stage {
	case StageScreening:
		if !a.Fever.Answered() {
			return fmt.Errorf("fever question must be answered")
		}
		if a.Fever.IsNo() {
			return fmt.Errorf("screening has resolved the assessment")
		}
		if !a.HighRiskContact.Answered() {
			return fmt.Errorf("high-risk contact question must be answered")
		}
		if a.HighRiskContact.IsYes() {
			return fmt.Errorf("screening has resolved the assessment")
		}
		a.setStage(StageSelect)

	case StageSelect:
		if !a.hasCompleteSegment() {
			return fmt.Errorf("at least one country is required")
		}
		if a.OnsetDate == "" {
			return fmt.Errorf("symptom onset date is required")
		}
		a.Reviews = ReviewAll(a.Segments, a.OnsetDate, table)
		provenance := table.Provenance()
		a.TableProvenance = &provenance
		a.addEvent(EventTypeReviewed, "Countries classified", map[string]any{
			"segments": len(a.Reviews),
		})
		a.setStage(StageReview)

	case StageReview:
		if AllGreen(a.Reviews) {
			return fmt.Errorf("all countries resolved green; the assessment is complete")
		}
		a.setStage(StageExposures)

	case StageExposures:
		a.setStage(StageSummary)

	default:
		return fmt.Errorf("already at the final stage")
	}

	a.touch()
	return nil
}

// Back moves one stage backwards. Stored reviews are dropped when leaving
// the review stage; they are recomputed on the next advance so edits to
// countries or dates can never pair with a stale classification.
func (a *Assessment) Back() error {
	idx := stageIndex(a.Stage)
	if idx <= 0 {
		return fmt.Errorf("already at the first stage")
	}

	if a.Stage == StageReview {
		a.Reviews = nil
		a.TableProvenance = nil
	}
	a.setStage(stageOrder[idx-1])
	a.touch()
	return nil
}

// Reset returns the assessment to a fresh screening stage, clearing every
// accumulated answer.
func (a *Assessment) Reset() {
	a.Stage = StageScreening
	a.Fever = types.Unanswered
	a.HighRiskContact = types.Unanswered
	a.Segments = nil
	a.OnsetDate = ""
	a.Reviews = nil
	a.TableProvenance = nil
	a.HazardAnswers = make(map[types.ID]*HazardAnswers)
	a.Global = GlobalAnswers{}
	a.FollowUp = FollowUpAnswers{}
	a.addEvent(EventTypeReset, "Assessment reset", nil)
	a.touch()
}

// AnswerHazard records a country-specific exposure answer. The hazard must
// be one the classifier flagged for that segment.
func (a *Assessment) AnswerHazard(segmentID types.ID, hazard Hazard, answer types.Answer) error {
	if a.Stage != StageExposures && a.Stage != StageSummary {
		return fmt.Errorf("exposure answers can only be changed at the exposures or summary stage")
	}
	if !answer.Answered() {
		return fmt.Errorf("answer must be yes or no")
	}

	review := a.reviewFor(segmentID)
	if review == nil {
		return fmt.Errorf("segment not found")
	}
	if !review.Hazards.Has(hazard) {
		return fmt.Errorf("question does not apply to %s", review.Country)
	}

	answers, ok := a.HazardAnswers[segmentID]
	if !ok {
		answers = &HazardAnswers{}
		a.HazardAnswers[segmentID] = answers
	}

	if answers.Get(hazard) != answer {
		answers.set(hazard, answer)
		a.FollowUp = FollowUpAnswers{}
		a.addEvent(EventTypeAnswerRecorded, fmt.Sprintf("Exposure answer recorded for %s", review.Country), map[string]any{
			"segment_id": segmentID.String(),
			"hazard":     string(hazard),
			"answer":     string(answer),
		})
	}

	a.touch()
	return nil
}

// AnswerGlobal records one of the two session-wide exposure answers
func (a *Assessment) AnswerGlobal(question GlobalQuestion, answer types.Answer) error {
	if a.Stage != StageExposures && a.Stage != StageSummary {
		return fmt.Errorf("exposure answers can only be changed at the exposures or summary stage")
	}
	if !answer.Answered() {
		return fmt.Errorf("answer must be yes or no")
	}

	var current *types.Answer
	switch question {
	case QuestionOutbreakExposure:
		current = &a.Global.OutbreakExposure
	case QuestionBleedingSymptom:
		current = &a.Global.BleedingSymptom
	default:
		return fmt.Errorf("unknown question %q", question)
	}

	if *current != answer {
		*current = answer
		a.FollowUp = FollowUpAnswers{}
		a.addEvent(EventTypeAnswerRecorded, "Global exposure answer recorded", map[string]any{
			"question": string(question),
			"answer":   string(answer),
		})
	}

	a.touch()
	return nil
}

// AnswerFollowUp records an answer in the minimal-risk follow-up chain.
// Each question is gated by its predecessor, and changing an answer clears
// everything downstream of it so conclusions cannot go stale.
func (a *Assessment) AnswerFollowUp(question FollowUpQuestion, answer types.Answer) error {
	if !answer.Answered() {
		return fmt.Errorf("answer must be yes or no")
	}

	outcome := Resolve(a)
	if !outcome.FollowUpActive {
		return fmt.Errorf("follow-up questions only apply once all exposure answers are no")
	}

	f := &a.FollowUp
	switch question {
	case QuestionMalariaResult:
		if f.MalariaPositive != answer {
			f.MalariaPositive = answer
			f.AlternativeDiagnosis = types.Unanswered
			f.Concern72h = types.Unanswered
			f.VHFTestPositive = types.Unanswered
		}

	case QuestionAlternativeDiagnosis:
		if !f.MalariaPositive.IsNo() {
			return fmt.Errorf("alternative diagnosis only applies after a negative malaria result")
		}
		if f.AlternativeDiagnosis != answer {
			f.AlternativeDiagnosis = answer
			f.Concern72h = types.Unanswered
			f.VHFTestPositive = types.Unanswered
		}

	case QuestionConcern72h:
		reachable := f.MalariaPositive.IsYes() ||
			(f.MalariaPositive.IsNo() && f.AlternativeDiagnosis.IsNo())
		if !reachable {
			return fmt.Errorf("question not yet reachable")
		}
		if f.Concern72h != answer {
			f.Concern72h = answer
			f.VHFTestPositive = types.Unanswered
		}

	case QuestionVHFTest:
		if !f.Concern72h.IsYes() {
			return fmt.Errorf("VHF test result only applies after escalation")
		}
		f.VHFTestPositive = answer

	default:
		return fmt.Errorf("unknown question %q", question)
	}

	a.addEvent(EventTypeAnswerRecorded, "Follow-up answer recorded", map[string]any{
		"question": string(question),
		"answer":   string(answer),
	})
	a.touch()
	return nil
}

// Serialize returns a lossless snapshot of the assessment state
func (a *Assessment) Serialize() ([]byte, error) {
	return json.Marshal(a)
}

// Restore rebuilds an assessment from a serialized snapshot
func Restore(data []byte) (*Assessment, error) {
	var a Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to restore assessment: %w", err)
	}
	if a.HazardAnswers == nil {
		a.HazardAnswers = make(map[types.ID]*HazardAnswers)
	}
	return &a, nil
}

// GetDomainEvents returns and clears the accumulated domain events
func (a *Assessment) GetDomainEvents() []Event {
	events := a.domainEvents
	a.domainEvents = nil
	return events
}

func (a *Assessment) reviewFor(segmentID types.ID) *SegmentReview {
	for i := range a.Reviews {
		if a.Reviews[i].SegmentID == segmentID {
			return &a.Reviews[i]
		}
	}
	return nil
}

func (a *Assessment) hasCompleteSegment() bool {
	for _, seg := range a.Segments {
		if seg.Country != "" {
			return true
		}
	}
	return false
}

// clearReviewAndBeyond drops the stored classification and every exposure
// and follow-up answer. Called whenever an upstream fact changes.
func (a *Assessment) clearReviewAndBeyond() {
	a.Reviews = nil
	a.TableProvenance = nil
	a.HazardAnswers = make(map[types.ID]*HazardAnswers)
	a.Global = GlobalAnswers{}
	a.FollowUp = FollowUpAnswers{}
}

func (a *Assessment) setStage(stage Stage) {
	from := a.Stage
	a.Stage = stage
	a.addEvent(EventTypeStageChanged, fmt.Sprintf("Stage changed from %s to %s", from, stage), map[string]any{
		"from": string(from),
		"to":   string(stage),
	})
}

func (a *Assessment) touch() {
	a.UpdatedAt = time.Now()
}

func (a *Assessment) addEvent(eventType AssessmentEventType, description string, data map[string]any) {
	event := AssessmentEvent{
		ID:           types.NewID(),
		AssessmentID: a.ID,
		Type:         eventType,
		ActorID:      a.ClinicianID,
		Description:  description,
		Data:         data,
		Timestamp:    time.Now(),
	}
	a.domainEvents = append(a.domainEvents, Event{
		Type:            "assessment." + string(eventType),
		AssessmentID:    a.ID,
		AssessmentEvent: event,
	})
}
