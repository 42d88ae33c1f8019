package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"wikindex/internal/contextutil"
	"wikindex/internal/service"
)

// Fetcher retrieves a document as text.
type Fetcher interface {
	Fetch(ctx context.Context, url, accept string) (string, error)
}

// page is the part of an XWiki REST page representation the loader reads.
type page struct {
	Title   string  `json:"title"`
	Syntax  string  `json:"syntax"`
	Content *string `json:"content"`
}

// StoryLoader resolves a story name through the latest index and loads the
// page text from its URI. It implements service.StoryLoader.
type StoryLoader struct {
	resources service.ResourceService
	fetcher   Fetcher
}

// NewStoryLoader creates a new StoryLoader.
func NewStoryLoader(resources service.ResourceService, fetcher Fetcher) *StoryLoader {
	return &StoryLoader{
		resources: resources,
		fetcher:   fetcher,
	}
}

// LoadStoryAsText returns the text of the story called name. An unknown name
// yields service.ErrNotFound. When the page body is an XWiki page object its
// content field is the story text; any other body is returned as is.
func (l *StoryLoader) LoadStoryAsText(ctx context.Context, name string) (service.Story, error) {
	logger := contextutil.LoggerFromContext(ctx)

	entry, err := l.resources.Lookup(ctx, name)
	if err != nil {
		return service.Story{}, err
	}

	body, err := l.fetcher.Fetch(ctx, entry.URI, "application/json")
	if err != nil {
		logger.ErrorContext(ctx, "failed to fetch story", "name", name, "uri", entry.URI, "error", err)
		return service.Story{}, fmt.Errorf("%w: failed to fetch story %s: %w", service.ErrExternalService, name, err)
	}

	story := service.Story{ResourceEntry: entry, Text: body}

	var p page
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &p); err == nil && p.Content != nil {
		story.Text = *p.Content
		story.Syntax = p.Syntax
	} else {
		logger.DebugContext(ctx, "story body is not a page object, using raw text", "name", name)
	}
	story.Title = storyTitle(p.Title, name, story.Syntax, story.Text)

	logger.InfoContext(ctx, "story loaded", "name", name, "bytes", len(story.Text))
	return story, nil
}

var _ service.StoryLoader = (*StoryLoader)(nil)
