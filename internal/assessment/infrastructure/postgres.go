// Package infrastructure provides the PostgreSQL persistence for
// assessments. The full aggregate is stored as a JSONB snapshot; a few
// columns are lifted out for indexing and listing.
package infrastructure

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hcid-network/platform/internal/assessment/domain"
	"github.com/hcid-network/platform/internal/shared/database"
	"github.com/hcid-network/platform/internal/shared/errors"
	"github.com/hcid-network/platform/internal/shared/metrics"
	"github.com/hcid-network/platform/internal/shared/types"
)

// PostgresRepository implements domain.Repository using PostgreSQL
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a new PostgreSQL assessment repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new assessment
func (r *PostgresRepository) Create(ctx context.Context, assessment *domain.Assessment) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("assessment_create", time.Since(start)) }()

	snapshot, err := assessment.Serialize()
	if err != nil {
		return errors.Wrap(err, "failed to serialize assessment")
	}

	query := `
		INSERT INTO assessments.assessments (id, stage, clinician_id, snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.Pool.Exec(ctx, query,
		assessment.ID,
		string(assessment.Stage),
		assessment.ClinicianID,
		snapshot,
		assessment.CreatedAt,
		assessment.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create assessment")
	}
	return nil
}

// GetByID loads an assessment from its snapshot
func (r *PostgresRepository) GetByID(ctx context.Context, id types.ID) (*domain.Assessment, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("assessment_get", time.Since(start)) }()

	query := `SELECT snapshot FROM assessments.assessments WHERE id = $1`

	var snapshot []byte
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&snapshot)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("assessment", id.String())
		}
		return nil, errors.Wrap(err, "failed to get assessment")
	}

	assessment, err := domain.Restore(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "failed to restore assessment")
	}
	return assessment, nil
}

// Update replaces the stored snapshot
func (r *PostgresRepository) Update(ctx context.Context, assessment *domain.Assessment) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("assessment_update", time.Since(start)) }()

	snapshot, err := assessment.Serialize()
	if err != nil {
		return errors.Wrap(err, "failed to serialize assessment")
	}

	tone := domain.Resolve(assessment).Tone

	query := `
		UPDATE assessments.assessments
		SET stage = $2, tone = $3, snapshot = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query,
		assessment.ID,
		string(assessment.Stage),
		string(tone),
		snapshot,
		assessment.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update assessment")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("assessment", assessment.ID.String())
	}
	return nil
}

// Delete removes an assessment
func (r *PostgresRepository) Delete(ctx context.Context, id types.ID) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("assessment_delete", time.Since(start)) }()

	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM assessments.assessments WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete assessment")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("assessment", id.String())
	}
	return nil
}

// ListByClinician returns a clinician's assessments, newest first
func (r *PostgresRepository) ListByClinician(ctx context.Context, clinicianID types.ID, limit, offset int) ([]*domain.Assessment, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("assessment_list", time.Since(start)) }()

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT snapshot FROM assessments.assessments
		WHERE clinician_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Pool.Query(ctx, query, clinicianID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list assessments")
	}
	defer rows.Close()

	var assessments []*domain.Assessment
	for rows.Next() {
		var snapshot []byte
		if err := rows.Scan(&snapshot); err != nil {
			return nil, errors.Wrap(err, "failed to scan assessment")
		}
		assessment, err := domain.Restore(snapshot)
		if err != nil {
			return nil, errors.Wrap(err, "failed to restore assessment")
		}
		assessments = append(assessments, assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read assessments")
	}
	return assessments, nil
}
