package audit

import (
	"context"
	"testing"

	"github.com/hcid-network/platform/internal/shared/types"
)

func appendEntry(t *testing.T, repo *MemoryRepository, action string) *AuditEntry {
	t.Helper()
	entry := NewAuditEntry(
		ActorTypeClinician,
		types.NewID(),
		action,
		"assessment",
		nil,
		map[string]any{"note": action},
		repo.GetLastHash(),
	)
	if err := repo.Append(context.Background(), entry); err != nil {
		t.Fatalf("append: %v", err)
	}
	return entry
}

func TestCanonicalJSONIsDeterministic(t *testing.T) {
	value := map[string]any{
		"zebra": 1,
		"alpha": map[string]any{"nested": []any{"b", "a"}, "also": true},
		"mid":   nil,
	}

	first, err := canonicalJSON(value)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, err := canonicalJSON(value)
		if err != nil {
			t.Fatal(err)
		}
		if string(first) != string(again) {
			t.Fatalf("canonical encoding varied: %s vs %s", first, again)
		}
	}

	want := `{"alpha":{"also":true,"nested":["b","a"]},"mid":null,"zebra":1}`
	if string(first) != want {
		t.Errorf("expected %s, got %s", want, first)
	}
}

func TestEntryHashVerification(t *testing.T) {
	entry := NewAuditEntry(ActorTypeClinician, types.NewID(), ActionAnswerRecorded, "assessment", nil, nil, "")

	if !entry.VerifyHash() {
		t.Error("freshly created entry must verify")
	}

	entry.Action = ActionAssessmentReset
	if entry.VerifyHash() {
		t.Error("tampered entry must fail verification")
	}
}

func TestChainSequencingAndVerification(t *testing.T) {
	repo := NewMemoryRepository()

	first := appendEntry(t, repo, ActionAssessmentCreated)
	second := appendEntry(t, repo, ActionAnswerRecorded)
	third := appendEntry(t, repo, ActionStageChanged)

	if first.Sequence != 1 || second.Sequence != 2 || third.Sequence != 3 {
		t.Errorf("unexpected sequences: %d %d %d", first.Sequence, second.Sequence, third.Sequence)
	}
	if second.PrevHash != first.Hash || third.PrevHash != second.Hash {
		t.Error("entries are not chained to their predecessors")
	}

	result, err := repo.VerifyChain(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Valid || result.Checked != 3 {
		t.Errorf("expected a valid 3-entry chain, got %+v", result)
	}
}

func TestChainDetectsTampering(t *testing.T) {
	repo := NewMemoryRepository()
	appendEntry(t, repo, ActionAssessmentCreated)
	tampered := appendEntry(t, repo, ActionAnswerRecorded)
	appendEntry(t, repo, ActionStageChanged)

	tampered.Changes = map[string]any{"note": "rewritten"}

	result, err := repo.VerifyChain(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if result.Valid {
		t.Fatal("expected verification to fail after tampering")
	}
	if result.FirstBreakAt != tampered.Sequence {
		t.Errorf("expected the break at sequence %d, got %d", tampered.Sequence, result.FirstBreakAt)
	}
}

func TestChainDetectsSequenceRewrite(t *testing.T) {
	repo := NewMemoryRepository()
	appendEntry(t, repo, ActionAssessmentCreated)
	tampered := appendEntry(t, repo, ActionAnswerRecorded)
	appendEntry(t, repo, ActionStageChanged)

	tampered.Sequence = 99

	if tampered.VerifyHash() {
		t.Fatal("a rewritten sequence number must fail hash verification")
	}

	result, err := repo.VerifyChain(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if result.Valid {
		t.Error("expected chain verification to fail after a sequence rewrite")
	}
}

func TestListFiltering(t *testing.T) {
	repo := NewMemoryRepository()
	appendEntry(t, repo, ActionAssessmentCreated)
	appendEntry(t, repo, ActionAnswerRecorded)
	appendEntry(t, repo, ActionAnswerRecorded)

	entries, total, err := repo.List(context.Background(), ListEntriesFilter{Action: ActionAnswerRecorded})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(entries) != 2 {
		t.Errorf("expected 2 answer entries, got %d (%d listed)", total, len(entries))
	}

	entries, total, err = repo.List(context.Background(), ListEntriesFilter{Action: ActionAnswerRecorded, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(entries) != 1 {
		t.Errorf("expected a limited page of 1 with total 2, got %d of %d", len(entries), total)
	}
}

func TestGetByResource(t *testing.T) {
	repo := NewMemoryRepository()
	resourceID := types.NewID()

	entry := NewAuditEntry(ActorTypeClinician, types.NewID(), ActionAssessmentCreated, "assessment", &resourceID, nil, repo.GetLastHash())
	if err := repo.Append(context.Background(), entry); err != nil {
		t.Fatal(err)
	}
	appendEntry(t, repo, ActionAnswerRecorded) // different resource

	entries, err := repo.GetByResource(context.Background(), "assessment", resourceID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ID != entry.ID {
		t.Errorf("expected the single matching entry, got %d", len(entries))
	}
}
