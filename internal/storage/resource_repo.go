package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_resource_store.go -package=mocks wikindex/internal/storage ResourceStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ResourceStore defines the interface for indexed resource lookups.
type ResourceStore interface {
	// GetByName gets a resource of a run by name. Returns ErrNotFound if not found.
	GetByName(ctx context.Context, runID, name string) (*ResourceRecord, error)
	// ListByRun returns all resources of a run ordered by name.
	ListByRun(ctx context.Context, runID string) ([]ResourceRecord, error)
}

// ResourceRepo provides methods for resource operations.
// It implements the ResourceStore interface.
type ResourceRepo struct {
	db *sql.DB
}

// NewResourceRepo creates a new ResourceRepo.
func NewResourceRepo(db *sql.DB) *ResourceRepo {
	return &ResourceRepo{db: db}
}

// GetByName gets a resource of a run by name.
func (r *ResourceRepo) GetByName(ctx context.Context, runID, name string) (*ResourceRecord, error) {
	var res ResourceRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT run_id, name, uri, breadcrumbs FROM resources WHERE run_id = ? AND name = ?",
		runID, name,
	).Scan(&res.RunID, &res.Name, &res.URI, &res.Breadcrumbs)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query resource: %w", err)
	}

	return &res, nil
}

// ListByRun returns all resources of a run ordered by name.
// Returns an empty slice if the run has no resources (not an error).
func (r *ResourceRepo) ListByRun(ctx context.Context, runID string) ([]ResourceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT run_id, name, uri, breadcrumbs FROM resources WHERE run_id = ? ORDER BY name",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	resources := []ResourceRecord{}
	for rows.Next() {
		var res ResourceRecord
		if err := rows.Scan(&res.RunID, &res.Name, &res.URI, &res.Breadcrumbs); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return resources, nil
}
