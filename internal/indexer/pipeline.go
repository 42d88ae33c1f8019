package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_fetcher.go -package=mocks wikindex/internal/indexer Fetcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"wikindex/internal/contextutil"
	"wikindex/internal/metrics"
	"wikindex/internal/rest"
	"wikindex/internal/storage"
)

var (
	// ErrFetch wraps failures to retrieve the hierarchy document.
	ErrFetch = errors.New("failed to fetch hierarchy")
	// ErrIndex wraps failures to decode or index the hierarchy document.
	ErrIndex = errors.New("failed to index hierarchy")
)

// Fetcher retrieves a document as text.
type Fetcher interface {
	Fetch(ctx context.Context, url, accept string) (string, error)
}

// OptionsFunc returns the rest.Indexer options for a hierarchy format.
type OptionsFunc func(format string) ([]rest.Option, error)

// AcceptFunc returns the Accept header to send for a hierarchy format.
type AcceptFunc func(format string) string

// Request describes one indexing run. Empty fields take the pipeline defaults.
type Request struct {
	RootPath  string
	SourceURL string
	Format    string
}

// RunResult is the outcome of a successful run.
type RunResult struct {
	RunID     string
	Request   Request
	Resources map[string]rest.Resource
	Stats     Stats
	Duration  time.Duration
	CreatedAt time.Time
}

// Pipeline fetches a hierarchy document, indexes it and persists the result
// as a new run.
type Pipeline struct {
	fetcher  Fetcher
	runs     storage.RunStore
	options  OptionsFunc
	accept   AcceptFunc
	defaults Request
	metrics  *metrics.Collector

	mu sync.Mutex
}

// NewPipeline creates a new indexing pipeline. defaults fills the empty
// fields of every Request; collector may be nil.
func NewPipeline(
	fetcher Fetcher,
	runs storage.RunStore,
	options OptionsFunc,
	accept AcceptFunc,
	defaults Request,
	collector *metrics.Collector,
) *Pipeline {
	if defaults.SourceURL == "" {
		defaults.SourceURL = defaults.RootPath
	}
	return &Pipeline{
		fetcher:  fetcher,
		runs:     runs,
		options:  options,
		accept:   accept,
		defaults: defaults,
		metrics:  collector,
	}
}

// resolve fills the empty fields of req. A request that overrides the root
// path without a source fetches from that root path. Trailing slashes are
// dropped from the root path since resource URIs append "/name" to it.
func (p *Pipeline) resolve(req Request) Request {
	req.RootPath = strings.TrimRight(req.RootPath, "/")
	if req.SourceURL == "" {
		if req.RootPath != "" {
			req.SourceURL = req.RootPath
		} else {
			req.SourceURL = p.defaults.SourceURL
		}
	}
	if req.RootPath == "" {
		req.RootPath = strings.TrimRight(p.defaults.RootPath, "/")
	}
	if req.Format == "" {
		req.Format = p.defaults.Format
	}
	return req
}

// Run executes one indexing run. Runs are serialized; a second caller waits
// for the first to finish.
func (p *Pipeline) Run(ctx context.Context, req Request) (*RunResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	logger := contextutil.LoggerFromContext(ctx)
	req = p.resolve(req)
	start := time.Now()

	logger.InfoContext(ctx, "starting indexing run", "root_path", req.RootPath, "source_url", req.SourceURL, "format", req.Format)

	opts, err := p.options(req.Format)
	if err != nil {
		p.record(metrics.OutcomeDecodeError, 0, start)
		return nil, fmt.Errorf("%w: %w", ErrIndex, err)
	}

	accept := ""
	if p.accept != nil {
		accept = p.accept(req.Format)
	}
	entity, err := p.fetcher.Fetch(ctx, req.SourceURL, accept)
	if err != nil {
		if p.metrics != nil {
			p.metrics.FetchFailures.Inc()
		}
		p.record(metrics.OutcomeFetchError, 0, start)
		return nil, fmt.Errorf("%w from %s: %w", ErrFetch, req.SourceURL, err)
	}

	index, err := rest.NewIndexer(opts...).IndexResources(req.RootPath, entity)
	if err != nil {
		p.record(metrics.OutcomeDecodeError, 0, start)
		return nil, fmt.Errorf("%w: %w", ErrIndex, err)
	}

	run := &storage.RunRecord{
		RootPath:  req.RootPath,
		SourceURL: req.SourceURL,
		Format:    req.Format,
	}
	if err := p.runs.Create(ctx, run, toRecords(index)); err != nil {
		p.record(metrics.OutcomeStoreError, 0, start)
		return nil, fmt.Errorf("failed to store run: %w", err)
	}

	duration := time.Since(start)
	p.record(metrics.OutcomeSuccess, len(index), start)

	stats := ComputeStats(index)
	logger.InfoContext(ctx, "indexing run completed",
		"run_id", run.ID,
		"resources", stats.Resources,
		"max_depth", stats.Depth.Max,
		"duration", duration,
	)

	return &RunResult{
		RunID:     run.ID,
		Request:   req,
		Resources: index,
		Stats:     stats,
		Duration:  duration,
		CreatedAt: run.CreatedAt,
	}, nil
}

func (p *Pipeline) record(outcome string, resources int, start time.Time) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordRun(outcome, resources, time.Since(start))
}

// toRecords converts an index to storage records ordered by name.
func toRecords(index map[string]rest.Resource) []storage.ResourceRecord {
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]storage.ResourceRecord, len(names))
	for i, name := range names {
		res := index[name]
		records[i] = storage.ResourceRecord{
			Name:        name,
			URI:         res.URI(),
			Breadcrumbs: res.Breadcrumbs(),
		}
	}
	return records
}
