package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_run_store.go -package=mocks wikindex/internal/storage RunStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// RunStore defines the interface for index run storage operations.
type RunStore interface {
	// Create stores a run together with its resources in one transaction.
	// A missing run ID or creation time is filled in.
	Create(ctx context.Context, run *RunRecord, resources []ResourceRecord) error
	// Latest returns the most recently created run. Returns ErrNotFound if there is none.
	Latest(ctx context.Context) (*RunRecord, error)
	// Get returns a run by ID. Returns ErrNotFound if not found.
	Get(ctx context.Context, id string) (*RunRecord, error)
	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]RunRecord, error)
}

// RunRepo provides methods for index run operations.
// It implements the RunStore interface.
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

const runColumns = "id, root_path, source_url, format, resource_count, created_at"

// Create stores a run together with its resources in one transaction.
func (r *RunRepo) Create(ctx context.Context, run *RunRecord, resources []ResourceRecord) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.ResourceCount = len(resources)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO index_runs ("+runColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		run.ID, run.RootPath, run.SourceURL, run.Format, run.ResourceCount, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO resources (run_id, name, uri, breadcrumbs) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare resource insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i := range resources {
		resources[i].RunID = run.ID
		res := resources[i]
		if _, err := stmt.ExecContext(ctx, res.RunID, res.Name, res.URI, res.Breadcrumbs); err != nil {
			return fmt.Errorf("failed to insert resource %q: %w", res.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Latest returns the most recently created run.
func (r *RunRepo) Latest(ctx context.Context) (*RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM index_runs ORDER BY created_at DESC, rowid DESC LIMIT 1",
	)
	return scanRun(row)
}

// Get returns a run by ID.
func (r *RunRepo) Get(ctx context.Context, id string) (*RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM index_runs WHERE id = ?",
		id,
	)
	return scanRun(row)
}

// List returns up to limit runs, newest first.
func (r *RunRepo) List(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM index_runs ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var run RunRecord
	err := row.Scan(&run.ID, &run.RootPath, &run.SourceURL, &run.Format, &run.ResourceCount, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return &run, nil
}
