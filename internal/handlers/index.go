package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"wikindex/internal/contextutil"
	"wikindex/internal/service"
)

// IndexHandler handles HTTP requests for triggering re-indexing.
type IndexHandler struct {
	indexService service.IndexService
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(indexService service.IndexService) *IndexHandler {
	return &IndexHandler{indexService: indexService}
}

// IndexRequest represents the optional HTTP request payload for indexing.
// Empty fields take the configured defaults.
//
// swagger:model IndexRequest
type IndexRequest struct {
	RootPath  string `json:"root_path,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	Format    string `json:"format,omitempty"`
}

// IndexResponse represents the response from the index endpoint.
//
// swagger:model IndexResponse
type IndexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP handles HTTP requests for triggering re-indexing.
//
// swagger:route POST /api/index triggerIndex
//
// # Re-index the wiki
//
// Starts an indexing run in the background and returns immediately.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'202':
//	  description: Indexing started
//	  schema:
//	    "$ref": "#/definitions/IndexResponse"
//	'400':
//	  description: Invalid request body
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// The body is optional.
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.indexService.Start(ctx, service.IndexRequest{
		RootPath:  req.RootPath,
		SourceURL: req.SourceURL,
		Format:    req.Format,
	})
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusAccepted, IndexResponse{
		Message: "Indexing started. Check server logs for progress.",
		Status:  "accepted",
	})
}
