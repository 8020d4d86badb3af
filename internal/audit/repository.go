package audit

import (
	"context"
	"fmt"
	"sync"

	"github.com/hcid-network/platform/internal/shared/errors"
	"github.com/hcid-network/platform/internal/shared/types"
)

// Repository defines append-only audit storage. Implementations keep the
// chain head (last hash, sequence) in memory after Initialize.
type Repository interface {
	Initialize(ctx context.Context) error
	Append(ctx context.Context, entry *AuditEntry) error
	FindByID(ctx context.Context, id types.ID) (*AuditEntry, error)
	List(ctx context.Context, filter ListEntriesFilter) ([]*AuditEntry, int, error)
	GetByResource(ctx context.Context, resourceType string, resourceID types.ID, limit int) ([]*AuditEntry, error)
	VerifyChain(ctx context.Context, limit int) (*VerifyResult, error)
	GetLastHash() string
	GetSequence() int64
	Count(ctx context.Context) (int, error)
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*EventStoreRepository)(nil)
)

// MemoryRepository is an in-memory audit chain used in tests and when the
// event store is unavailable at startup.
type MemoryRepository struct {
	mu       sync.Mutex
	entries  []*AuditEntry
	lastHash string
	sequence int64
}

// NewMemoryRepository creates an empty in-memory audit repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Initialize(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) Append(ctx context.Context, entry *AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sequence++
	entry.Sequence = r.sequence
	entry.PrevHash = r.lastHash
	entry.Hash = entry.ComputeHash()

	r.entries = append(r.entries, entry)
	r.lastHash = entry.Hash
	return nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id types.ID) (*AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return nil, errors.NotFound("audit entry", id.String())
}

func (r *MemoryRepository) List(ctx context.Context, filter ListEntriesFilter) ([]*AuditEntry, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*AuditEntry
	for _, entry := range r.entries {
		if matches(entry, filter) {
			matched = append(matched, entry)
		}
	}
	total := len(matched)

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	end := filter.Offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], total, nil
}

func (r *MemoryRepository) GetByResource(ctx context.Context, resourceType string, resourceID types.ID, limit int) ([]*AuditEntry, error) {
	entries, _, err := r.List(ctx, ListEntriesFilter{
		ResourceType: resourceType,
		ResourceID:   &resourceID,
		Limit:        limit,
	})
	return entries, err
}

func (r *MemoryRepository) VerifyChain(ctx context.Context, limit int) (*VerifyResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return verifyEntries(r.entries, limit), nil
}

func (r *MemoryRepository) GetLastHash() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastHash
}

func (r *MemoryRepository) GetSequence() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sequence
}

func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries), nil
}

func matches(entry *AuditEntry, filter ListEntriesFilter) bool {
	if filter.ActorID != nil && entry.ActorID != *filter.ActorID {
		return false
	}
	if filter.Action != "" && entry.Action != filter.Action {
		return false
	}
	if filter.ResourceType != "" && entry.ResourceType != filter.ResourceType {
		return false
	}
	if filter.ResourceID != nil {
		if entry.ResourceID == nil || *entry.ResourceID != *filter.ResourceID {
			return false
		}
	}
	return true
}

// verifyEntries walks the chain in order, checking each entry's own hash
// and its link to the predecessor.
func verifyEntries(entries []*AuditEntry, limit int) *VerifyResult {
	result := &VerifyResult{Valid: true}

	prevHash := ""
	for i, entry := range entries {
		if limit > 0 && i >= limit {
			break
		}
		result.Checked++

		if !entry.VerifyHash() {
			result.Valid = false
			if result.FirstBreakAt == 0 {
				result.FirstBreakAt = entry.Sequence
			}
			result.Problems = append(result.Problems,
				fmt.Sprintf("entry %d: stored hash does not match content", entry.Sequence))
		}
		if entry.PrevHash != prevHash {
			result.Valid = false
			if result.FirstBreakAt == 0 {
				result.FirstBreakAt = entry.Sequence
			}
			result.Problems = append(result.Problems,
				fmt.Sprintf("entry %d: chain link broken", entry.Sequence))
		}
		prevHash = entry.Hash
	}

	return result
}
