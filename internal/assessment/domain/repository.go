package domain

import (
	"context"

	"github.com/hcid-network/platform/internal/shared/types"
)

// Repository defines persistence for assessments
type Repository interface {
	Create(ctx context.Context, assessment *Assessment) error
	GetByID(ctx context.Context, id types.ID) (*Assessment, error)
	Update(ctx context.Context, assessment *Assessment) error
	Delete(ctx context.Context, id types.ID) error
	ListByClinician(ctx context.Context, clinicianID types.ID, limit, offset int) ([]*Assessment, error)
}
