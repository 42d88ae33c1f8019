package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"wikindex/internal/contextutil"
	"wikindex/internal/service"
)

// ResourceHandler serves lookups against the latest index.
type ResourceHandler struct {
	resources service.ResourceService
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler(resources service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// ResourceResponse is one indexed page.
//
// swagger:model ResourceResponse
type ResourceResponse struct {
	Name        string `json:"name"`
	URI         string `json:"uri"`
	Breadcrumbs string `json:"breadcrumbs"`
}

// IndexSnapshotResponse is the content of the latest indexing run.
//
// swagger:model IndexSnapshotResponse
type IndexSnapshotResponse struct {
	RunID     string             `json:"run_id"`
	RootPath  string             `json:"root_path"`
	Format    string             `json:"format"`
	CreatedAt string             `json:"created_at"`
	Count     int                `json:"count"`
	Resources []ResourceResponse `json:"resources"`
}

// List returns every resource of the latest index.
//
// swagger:route GET /api/resources listResources
//
// # List indexed resources
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/IndexSnapshotResponse"
//	'503':
//	  description: Nothing indexed yet
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := h.resources.Latest(ctx)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	resp := IndexSnapshotResponse{
		RunID:     snap.RunID,
		RootPath:  snap.RootPath,
		Format:    snap.Format,
		CreatedAt: snap.CreatedAt.UTC().Format(time.RFC3339),
		Count:     len(snap.Resources),
		Resources: make([]ResourceResponse, len(snap.Resources)),
	}
	for i, e := range snap.Resources {
		resp.Resources[i] = toResourceResponse(e)
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

// Get returns the resource named by the {name} URL parameter.
//
// swagger:route GET /api/resources/{name} getResource
//
// # Look up one resource
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/ResourceResponse"
//	'404':
//	  description: Name not indexed
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	name, err := url.PathUnescape(strings.TrimSpace(chi.URLParam(r, "name")))
	if err != nil {
		logger.WarnContext(ctx, "invalid resource name", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid resource name")
		return
	}

	entry, err := h.resources.Lookup(ctx, name)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, toResourceResponse(entry))
}

func toResourceResponse(e service.ResourceEntry) ResourceResponse {
	return ResourceResponse{
		Name:        e.Name,
		URI:         e.URI,
		Breadcrumbs: e.Breadcrumbs,
	}
}
