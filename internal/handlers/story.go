package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"wikindex/internal/contextutil"
	"wikindex/internal/service"
)

// StoryHandler serves stories as rendered HTML pages.
type StoryHandler struct {
	stories  service.StoryLoader
	parser   goldmark.Markdown
	template *template.Template
}

// storyPageData holds template data for rendered story pages.
type storyPageData struct {
	Title       string
	Name        string
	Breadcrumbs string
	URI         string
	Content     template.HTML
}

var storyTemplate = template.Must(template.New("story").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    :root {
      color-scheme: dark;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 900px;
      line-height: 1.7;
      background: #050b18;
      color: #e4ecff;
    }
    header {
      margin-bottom: 2rem;
      border-bottom: 1px solid rgba(148, 163, 184, 0.2);
      padding-bottom: 1.5rem;
    }
    h1 {
      margin-top: 0;
      color: #fff;
      font-size: 2rem;
    }
    article {
      background: rgba(12, 19, 35, 0.85);
      border: 1px solid rgba(99, 102, 241, 0.2);
      border-radius: 16px;
      padding: 2rem;
    }
    pre.source {
      white-space: pre-wrap;
    }
    pre {
      background: #0f172a;
      padding: 1rem;
      overflow-x: auto;
      border-radius: 10px;
    }
    a {
      color: #60a5fa;
      text-decoration: none;
    }
    .meta {
      color: #94a3b8;
      font-size: 0.95rem;
      margin-top: 0.5rem;
    }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <p class="meta">{{if .Breadcrumbs}}{{.Breadcrumbs}} &middot; {{end}}<a href="{{.URI}}">{{.Name}}</a></p>
  </header>
  <article>{{.Content}}</article>
</body>
</html>`))

// NewStoryHandler creates a new handler for serving stories.
func NewStoryHandler(stories service.StoryLoader) *StoryHandler {
	return &StoryHandler{
		stories: stories,
		parser: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: storyTemplate,
	}
}

// ServeHTTP renders the story named by the {name} URL parameter as HTML.
func (h *StoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	name, err := url.PathUnescape(strings.TrimSpace(chi.URLParam(r, "name")))
	if err != nil || name == "" {
		http.Error(w, "invalid story name", http.StatusBadRequest)
		return
	}

	story, err := h.stories.LoadStoryAsText(ctx, name)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	htmlContent, err := h.renderStory(story)
	if err != nil {
		logger.ErrorContext(ctx, "failed to render story", "name", name, "error", err)
		http.Error(w, "failed to render story", http.StatusInternalServerError)
		return
	}

	pageData := storyPageData{
		Title:       story.Title,
		Name:        story.Name,
		Breadcrumbs: story.Breadcrumbs,
		URI:         story.URI,
		Content:     template.HTML(htmlContent),
	}

	var buf bytes.Buffer
	if err := h.template.Execute(&buf, pageData); err != nil {
		logger.ErrorContext(ctx, "failed to execute story template", "name", name, "error", err)
		http.Error(w, "failed to render story", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// renderStory renders markdown stories with goldmark. Other wiki syntaxes
// (xwiki/2.x, plain/1.0, ...) are shown as escaped source text.
func (h *StoryHandler) renderStory(story service.Story) (string, error) {
	if !isMarkdown(story.Syntax) {
		return `<pre class="source">` + template.HTMLEscapeString(story.Text) + "</pre>", nil
	}
	return h.renderMarkdown([]byte(story.Text))
}

// isMarkdown reports whether syntax names a markdown dialect. Text without a
// syntax is treated as markdown.
func isMarkdown(syntax string) bool {
	syntax = strings.ToLower(strings.TrimSpace(syntax))
	return syntax == "" || strings.HasPrefix(syntax, "markdown/")
}

// renderMarkdown converts story text to HTML. Raw HTML in the text is
// omitted since it comes from the wiki.
func (h *StoryHandler) renderMarkdown(content []byte) (string, error) {
	var buf bytes.Buffer
	if err := h.parser.Convert(content, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
