package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index_runner.go -package=mocks wikindex/internal/service IndexRunner
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index_service.go -package=mocks -mock_names=IndexService=MockIndexService wikindex/internal/service IndexService

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"wikindex/internal/contextutil"
	"wikindex/internal/indexer"
)

// IndexRunner runs one indexing pass.
// This interface is defined from the service layer's perspective (consumer-first).
type IndexRunner interface {
	Run(ctx context.Context, req indexer.Request) (*indexer.RunResult, error)
}

// IndexRequest represents an indexing request in the domain layer. Empty
// fields take the configured defaults.
type IndexRequest struct {
	// URIs are built by appending "/name", so the root path cannot carry a query.
	RootPath  string `validate:"omitempty,http_url,excludes=?"`
	SourceURL string `validate:"omitempty,http_url"`
	Format    string `validate:"omitempty,oneof=json xml yaml yml xwiki"`
}

// IndexResult summarizes a completed indexing run.
type IndexResult struct {
	RunID     string
	RootPath  string
	Format    string
	Resources int
	Stats     indexer.Stats
	Duration  time.Duration
}

// IndexService validates indexing requests and runs them.
type IndexService interface {
	// Run validates req and indexes synchronously.
	Run(ctx context.Context, req IndexRequest) (IndexResult, error)
	// Start validates req and indexes in the background. Only validation
	// errors are returned; the outcome of the run is logged.
	Start(ctx context.Context, req IndexRequest) error
	// Wait blocks until every run launched by Start has finished.
	Wait()
}

type indexService struct {
	runner IndexRunner
	wg     sync.WaitGroup
}

// NewIndexService creates a new IndexService.
func NewIndexService(runner IndexRunner) IndexService {
	return &indexService{runner: runner}
}

// Run validates req and indexes synchronously.
func (s *indexService) Run(ctx context.Context, req IndexRequest) (IndexResult, error) {
	if err := Validate(req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid index request", "error", err)
		return IndexResult{}, err
	}
	return s.run(ctx, req)
}

// Start validates req and indexes in the background.
func (s *indexService) Start(ctx context.Context, req IndexRequest) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := Validate(req); err != nil {
		logger.WarnContext(ctx, "invalid index request", "error", err)
		return err
	}

	// The run outlives the request that triggered it but keeps its logger.
	runCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.run(runCtx, req); err != nil {
			logger.ErrorContext(runCtx, "background indexing failed", "error", err)
		}
	}()

	logger.InfoContext(ctx, "indexing started", "root_path", req.RootPath, "format", req.Format)
	return nil
}

// Wait blocks until every background run has finished.
func (s *indexService) Wait() {
	s.wg.Wait()
}

func (s *indexService) run(ctx context.Context, req IndexRequest) (IndexResult, error) {
	result, err := s.runner.Run(ctx, indexer.Request{
		RootPath:  strings.TrimRight(req.RootPath, "/"),
		SourceURL: req.SourceURL,
		Format:    req.Format,
	})
	if err != nil {
		if errors.Is(err, indexer.ErrFetch) {
			return IndexResult{}, fmt.Errorf("%w: %w", ErrExternalService, err)
		}
		return IndexResult{}, WrapError(err, "indexing failed")
	}

	return IndexResult{
		RunID:     result.RunID,
		RootPath:  result.Request.RootPath,
		Format:    result.Request.Format,
		Resources: len(result.Resources),
		Stats:     result.Stats,
		Duration:  result.Duration,
	}, nil
}
