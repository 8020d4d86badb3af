package audit

import (
	"context"
	"log"
	"strings"

	"github.com/hcid-network/platform/internal/shared/events"
	"github.com/hcid-network/platform/internal/shared/metrics"
	"github.com/hcid-network/platform/internal/shared/types"
)

// Subscriber turns assessment domain events into audit entries
type Subscriber struct {
	bus  events.EventBus
	repo Repository
}

// NewSubscriber creates an audit subscriber
func NewSubscriber(bus events.EventBus, repo Repository) *Subscriber {
	return &Subscriber{bus: bus, repo: repo}
}

// Start subscribes to all assessment events
func (s *Subscriber) Start(ctx context.Context) error {
	return s.bus.Subscribe(ctx, "assessment.*", s.handle)
}

func (s *Subscriber) handle(ctx context.Context, event events.Event) error {
	actorType := ActorTypeSystem
	switch event.ActorType {
	case "clinician":
		actorType = ActorTypeClinician
	case "admin":
		actorType = ActorTypeAdmin
	}

	var resourceID *types.ID
	changes := map[string]any{}
	if data, ok := event.Data.(map[string]any); ok {
		if raw, ok := data["assessment_id"].(string); ok {
			if id, err := types.ParseID(raw); err == nil {
				resourceID = &id
			}
		}
		if desc, ok := data["description"].(string); ok {
			changes["description"] = desc
		}
		if inner, ok := data["data"].(map[string]any); ok {
			for k, v := range inner {
				changes[k] = v
			}
		}
	}

	entry := NewAuditEntry(
		actorType,
		event.ActorID,
		action(event.Type),
		"assessment",
		resourceID,
		changes,
		s.repo.GetLastHash(),
	)
	entry.CorrelationID = event.CorrelationID

	if err := s.repo.Append(ctx, entry); err != nil {
		log.Printf("Failed to append audit entry for %s: %v", event.Type, err)
		return err
	}

	metrics.RecordAuditEntry()
	return nil
}

// action maps a bus event type onto an audit action
func action(eventType string) string {
	switch eventType {
	case "assessment.CREATED":
		return ActionAssessmentCreated
	case "assessment.ANSWER_RECORDED":
		return ActionAnswerRecorded
	case "assessment.STAGE_CHANGED":
		return ActionStageChanged
	case "assessment.SEGMENT_ADDED", "assessment.SEGMENT_UPDATED", "assessment.SEGMENT_REMOVED":
		return ActionSegmentChanged
	case "assessment.REVIEWED":
		return ActionOutcomeResolved
	case "assessment.RESET":
		return ActionAssessmentReset
	default:
		return strings.ToLower(eventType)
	}
}
