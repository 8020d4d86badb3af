package infrastructure

import (
	"context"
	"sort"
	"sync"

	"github.com/hcid-network/platform/internal/assessment/domain"
	"github.com/hcid-network/platform/internal/shared/errors"
	"github.com/hcid-network/platform/internal/shared/types"
)

// MemoryRepository is an in-memory domain.Repository used in tests and
// local development. Snapshots are stored serialized so restore paths get
// exercised the same way as with the real database.
type MemoryRepository struct {
	mu        sync.RWMutex
	snapshots map[types.ID][]byte
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{snapshots: make(map[types.ID][]byte)}
}

func (r *MemoryRepository) Create(ctx context.Context, assessment *domain.Assessment) error {
	snapshot, err := assessment.Serialize()
	if err != nil {
		return errors.Wrap(err, "failed to serialize assessment")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.snapshots[assessment.ID]; exists {
		return errors.Conflict("assessment already exists")
	}
	r.snapshots[assessment.ID] = snapshot
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id types.ID) (*domain.Assessment, error) {
	r.mu.RLock()
	snapshot, ok := r.snapshots[id]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.NotFound("assessment", id.String())
	}
	return domain.Restore(snapshot)
}

func (r *MemoryRepository) Update(ctx context.Context, assessment *domain.Assessment) error {
	snapshot, err := assessment.Serialize()
	if err != nil {
		return errors.Wrap(err, "failed to serialize assessment")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.snapshots[assessment.ID]; !exists {
		return errors.NotFound("assessment", assessment.ID.String())
	}
	r.snapshots[assessment.ID] = snapshot
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id types.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.snapshots[id]; !exists {
		return errors.NotFound("assessment", id.String())
	}
	delete(r.snapshots, id)
	return nil
}

func (r *MemoryRepository) ListByClinician(ctx context.Context, clinicianID types.ID, limit, offset int) ([]*domain.Assessment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*domain.Assessment
	for _, snapshot := range r.snapshots {
		assessment, err := domain.Restore(snapshot)
		if err != nil {
			return nil, err
		}
		if assessment.ClinicianID == clinicianID {
			all = append(all, assessment)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
