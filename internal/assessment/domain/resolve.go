package domain

import "github.com/hcid-network/platform/internal/shared/types"

// Outcome titles
const (
	TitleAtRisk          = "AT RISK OF VHF"
	TitleConfirmed       = "CONFIRMED VHF"
	TitleMinimalRisk     = "Minimal risk of VHF"
	TitleUnlikely        = "VHF unlikely; manage locally"
	TitleManageAsMalaria = "Manage as malaria; VHF unlikely"
)

// RedChecklist is the fixed isolation and escalation checklist shown for
// every at-risk outcome.
var RedChecklist = []string{
	"Isolate the patient in a side room",
	"Discuss urgently with the infection consultant on call",
	"Arrange an urgent malaria investigation",
	"Send FBC, U&E, LFT, clotting, CRP, glucose and blood cultures",
	"Inform the laboratory before sending samples",
}

// AmberActions accompanies the minimal-risk outcome
var AmberActions = []string{
	"Arrange an urgent malaria investigation",
	"Perform urgent local investigations including blood cultures",
}

// ConfirmedActions accompanies a confirmed VHF outcome
var ConfirmedActions = []string{
	"Contact the national emergency response line to arrange transfer",
	"Initiate public-health contact tracing",
}

// Outcome is the resolver's decision output. When Pending is set, the tone
// and title are withheld and PendingReason says what is still needed.
type Outcome struct {
	Tone    Tone     `json:"tone,omitempty"`
	Title   string   `json:"title,omitempty"`
	Actions []string `json:"actions,omitempty"`

	Pending       bool   `json:"pending,omitempty"`
	PendingReason string `json:"pending_reason,omitempty"`

	// Terminal means no further questions can change the outcome
	Terminal bool `json:"terminal,omitempty"`

	// FollowUpActive means the minimal-risk follow-up chain applies;
	// NextQuestion names the next unanswered question in it
	FollowUpActive bool             `json:"follow_up_active,omitempty"`
	NextQuestion   FollowUpQuestion `json:"next_question,omitempty"`

	RequiredAnswers int `json:"required_answers"`
	GivenAnswers    int `json:"given_answers"`
}

// Resolve derives the current decision from accumulated state. It is a
// pure function: it never mutates the assessment, and identical state
// always yields an identical outcome.
func Resolve(a *Assessment) Outcome {
	if !a.Fever.Answered() {
		return pending("Answer the screening questions")
	}
	if a.Fever.IsNo() {
		return Outcome{Tone: ToneGreen, Title: TitleUnlikely, Terminal: true}
	}
	if !a.HighRiskContact.Answered() {
		return pending("Answer the screening questions")
	}
	if a.HighRiskContact.IsYes() {
		return Outcome{Tone: ToneRed, Title: TitleAtRisk, Actions: RedChecklist, Terminal: true}
	}

	if len(a.Reviews) == 0 {
		return pending("Complete the travel history")
	}
	if AllGreen(a.Reviews) {
		return Outcome{Tone: ToneGreen, Title: TitleUnlikely, Terminal: true}
	}

	required, given, anyYes := a.countAnswers()

	if given < required {
		out := pending("Answer all exposure questions")
		out.RequiredAnswers = required
		out.GivenAnswers = given
		return out
	}

	if anyYes {
		return Outcome{
			Tone:            ToneRed,
			Title:           TitleAtRisk,
			Actions:         RedChecklist,
			RequiredAnswers: required,
			GivenAnswers:    given,
		}
	}

	out := resolveFollowUp(a.FollowUp)
	out.RequiredAnswers = required
	out.GivenAnswers = given
	return out
}

// countAnswers tallies the required exposure questions: per segment, the
// hazards the classifier flagged, plus the two session-wide questions.
func (a *Assessment) countAnswers() (required, given int, anyYes bool) {
	for _, review := range a.Reviews {
		answers := a.HazardAnswers[review.SegmentID]
		for _, hazard := range Hazards {
			if !review.Hazards.Has(hazard) {
				continue
			}
			required++
			if answers == nil {
				continue
			}
			answer := answers.Get(hazard)
			if answer.Answered() {
				given++
			}
			if answer.IsYes() {
				anyYes = true
			}
		}
	}

	for _, answer := range []types.Answer{a.Global.OutbreakExposure, a.Global.BleedingSymptom} {
		required++
		if answer.Answered() {
			given++
		}
		if answer.IsYes() {
			anyYes = true
		}
	}

	return required, given, anyYes
}

// resolveFollowUp walks the minimal-risk chain: malaria result, then either
// an alternative diagnosis or a deterioration concern, with a VHF test
// result after any escalation.
func resolveFollowUp(f FollowUpAnswers) Outcome {
	switch {
	case !f.MalariaPositive.Answered():
		return Outcome{
			Tone:           ToneAmber,
			Title:          TitleMinimalRisk,
			Actions:        AmberActions,
			FollowUpActive: true,
			NextQuestion:   QuestionMalariaResult,
		}

	case f.MalariaPositive.IsYes():
		return resolveConcern(f, Outcome{
			Tone:           ToneGreen,
			Title:          TitleManageAsMalaria,
			FollowUpActive: true,
			NextQuestion:   QuestionConcern72h,
		})

	case !f.AlternativeDiagnosis.Answered():
		return Outcome{
			Tone:           ToneAmber,
			Title:          TitleMinimalRisk,
			Actions:        AmberActions,
			FollowUpActive: true,
			NextQuestion:   QuestionAlternativeDiagnosis,
		}

	case f.AlternativeDiagnosis.IsYes():
		return Outcome{
			Tone:           ToneGreen,
			Title:          TitleUnlikely,
			Terminal:       true,
			FollowUpActive: true,
		}

	default:
		return resolveConcern(f, Outcome{
			Tone:           ToneAmber,
			Title:          TitleMinimalRisk,
			Actions:        AmberActions,
			FollowUpActive: true,
			NextQuestion:   QuestionConcern72h,
		})
	}
}

// resolveConcern handles the 72-hour deterioration question and the VHF
// test branch behind it. The interim outcome is what to show while the
// concern question is still open.
func resolveConcern(f FollowUpAnswers, interim Outcome) Outcome {
	switch {
	case !f.Concern72h.Answered():
		return interim

	case f.Concern72h.IsNo():
		return Outcome{
			Tone:           ToneGreen,
			Title:          TitleUnlikely,
			Terminal:       true,
			FollowUpActive: true,
		}

	case !f.VHFTestPositive.Answered():
		return Outcome{
			Tone:           ToneRed,
			Title:          TitleAtRisk,
			Actions:        RedChecklist,
			FollowUpActive: true,
			NextQuestion:   QuestionVHFTest,
		}

	case f.VHFTestPositive.IsYes():
		return Outcome{
			Tone:           ToneRed,
			Title:          TitleConfirmed,
			Actions:        ConfirmedActions,
			Terminal:       true,
			FollowUpActive: true,
		}

	default:
		return Outcome{
			Tone:           ToneGreen,
			Title:          TitleUnlikely,
			Terminal:       true,
			FollowUpActive: true,
		}
	}
}

func pending(reason string) Outcome {
	return Outcome{Pending: true, PendingReason: reason}
}
