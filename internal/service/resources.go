package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_resource_service.go -package=mocks wikindex/internal/service ResourceService
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_story_loader.go -package=mocks wikindex/internal/service StoryLoader

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"wikindex/internal/contextutil"
	"wikindex/internal/storage"
)

// ResourceEntry is one indexed page as seen by API consumers.
type ResourceEntry struct {
	Name        string
	URI         string
	Breadcrumbs string
}

// IndexSnapshot is the content of one completed indexing run.
type IndexSnapshot struct {
	RunID     string
	RootPath  string
	Format    string
	CreatedAt time.Time
	Resources []ResourceEntry
}

// Story is the text of a page resolved through the index.
type Story struct {
	ResourceEntry
	Title  string
	Syntax string
	Text   string
}

// ResourceService answers lookups against the latest indexing run.
type ResourceService interface {
	// Lookup returns the entry for name. Returns ErrNoIndex before the first
	// run and ErrNotFound for an unknown name.
	Lookup(ctx context.Context, name string) (ResourceEntry, error)
	// Latest returns every entry of the latest run, ordered by name.
	Latest(ctx context.Context) (IndexSnapshot, error)
}

// StoryLoader loads the text of a page by its short name.
type StoryLoader interface {
	LoadStoryAsText(ctx context.Context, name string) (Story, error)
}

type resourceService struct {
	runs      storage.RunStore
	resources storage.ResourceStore
}

// NewResourceService creates a ResourceService backed by the run and resource stores.
func NewResourceService(runs storage.RunStore, resources storage.ResourceStore) ResourceService {
	return &resourceService{
		runs:      runs,
		resources: resources,
	}
}

func (s *resourceService) latestRun(ctx context.Context) (*storage.RunRecord, error) {
	run, err := s.runs.Latest(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoIndex
	}
	if err != nil {
		return nil, WrapError(err, "failed to load latest run")
	}
	return run, nil
}

// Lookup resolves name in the latest run.
func (s *resourceService) Lookup(ctx context.Context, name string) (ResourceEntry, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if name == "" {
		return ResourceEntry{}, &ValidationError{Field: "name", Message: "cannot be empty"}
	}

	run, err := s.latestRun(ctx)
	if err != nil {
		return ResourceEntry{}, err
	}

	rec, err := s.resources.GetByName(ctx, run.ID, name)
	if errors.Is(err, storage.ErrNotFound) {
		logger.DebugContext(ctx, "resource not indexed", "name", name, "run_id", run.ID)
		return ResourceEntry{}, ErrNotFound
	}
	if err != nil {
		return ResourceEntry{}, WrapError(err, "failed to look up resource")
	}

	return toEntry(*rec), nil
}

// Latest returns the entries of the latest run.
func (s *resourceService) Latest(ctx context.Context) (IndexSnapshot, error) {
	run, err := s.latestRun(ctx)
	if err != nil {
		return IndexSnapshot{}, err
	}

	recs, err := s.resources.ListByRun(ctx, run.ID)
	if err != nil {
		return IndexSnapshot{}, WrapError(err, "failed to list resources")
	}

	entries := make([]ResourceEntry, len(recs))
	for i, rec := range recs {
		entries[i] = toEntry(rec)
	}

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "loaded latest index",
		slog.String("run_id", run.ID), slog.Int("resources", len(entries)))

	return IndexSnapshot{
		RunID:     run.ID,
		RootPath:  run.RootPath,
		Format:    run.Format,
		CreatedAt: run.CreatedAt,
		Resources: entries,
	}, nil
}

func toEntry(rec storage.ResourceRecord) ResourceEntry {
	return ResourceEntry{
		Name:        rec.Name,
		URI:         rec.URI,
		Breadcrumbs: rec.Breadcrumbs,
	}
}
