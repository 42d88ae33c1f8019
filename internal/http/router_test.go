package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"wikindex/internal/metrics"
	"wikindex/internal/service"
	"wikindex/internal/service/mocks"
	"wikindex/internal/storage"
	storage_mocks "wikindex/internal/storage/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type okPinger struct{}

func (okPinger) PingContext(ctx context.Context) error { return nil }

type closedBreaker struct{}

func (closedBreaker) State() string { return "closed" }

type testDeps struct {
	index     *mocks.MockIndexService
	resources *mocks.MockResourceService
	stories   *mocks.MockStoryLoader
	runs      *storage_mocks.MockRunStore
	deps      *Deps
}

func newTestDeps(ctrl *gomock.Controller) *testDeps {
	td := &testDeps{
		index:     mocks.NewMockIndexService(ctrl),
		resources: mocks.NewMockResourceService(ctrl),
		stories:   mocks.NewMockStoryLoader(ctrl),
		runs:      storage_mocks.NewMockRunStore(ctrl),
	}
	td.deps = &Deps{
		IndexService:    td.index,
		ResourceService: td.resources,
		StoryLoader:     td.stories,
		DB:              okPinger{},
		Runs:            td.runs,
		Wiki:            closedBreaker{},
		Metrics:         metrics.NewCollector("test"),
	}
	return td
}

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(newTestDeps(ctrl).deps)

	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		mockSetup  func(td *testDeps)
		wantStatus int
	}{
		{
			name:   "POST /api/index",
			method: http.MethodPost,
			path:   "/api/index",
			mockSetup: func(td *testDeps) {
				td.index.EXPECT().Start(gomock.Any(), service.IndexRequest{}).Return(nil)
			},
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "GET /api/index method not allowed",
			method:     http.MethodGet,
			path:       "/api/index",
			mockSetup:  func(td *testDeps) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:   "GET /api/resources",
			method: http.MethodGet,
			path:   "/api/resources",
			mockSetup: func(td *testDeps) {
				td.resources.EXPECT().Latest(gomock.Any()).Return(service.IndexSnapshot{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /api/resources/{name}",
			method: http.MethodGet,
			path:   "/api/resources/a_story",
			mockSetup: func(td *testDeps) {
				td.resources.EXPECT().Lookup(gomock.Any(), "a_story").Return(service.ResourceEntry{Name: "a_story"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /stories/{name}",
			method: http.MethodGet,
			path:   "/stories/a_story",
			mockSetup: func(td *testDeps) {
				td.stories.EXPECT().LoadStoryAsText(gomock.Any(), "a_story").Return(service.Story{Text: "# A"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /api/health",
			method: http.MethodGet,
			path:   "/api/health",
			mockSetup: func(td *testDeps) {
				td.runs.EXPECT().Latest(gomock.Any()).Return(nil, storage.ErrNotFound)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "GET /metrics",
			method:     http.MethodGet,
			path:       "/metrics",
			mockSetup:  func(td *testDeps) {},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/chat",
			mockSetup:  func(td *testDeps) {},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			td := newTestDeps(ctrl)
			tt.mockSetup(td)
			router := NewRouter(td.deps)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	td := newTestDeps(ctrl)
	td.resources.EXPECT().Lookup(gomock.Any(), "a_story").Return(service.ResourceEntry{}, service.ErrNotFound)
	router := NewRouter(td.deps)

	req := httptest.NewRequest(http.MethodGet, "/api/resources/a_story", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Check CORS headers are present
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}

	got := testutil.ToFloat64(td.deps.Metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/api/resources/{name}", "404"))
	if got != 1 {
		t.Errorf("http_requests_total = %v, want 1", got)
	}
}

func TestRouter_WithoutMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	td := newTestDeps(ctrl)
	td.deps.Metrics = nil
	router := NewRouter(td.deps)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("GET /metrics without collector status = %d, want 404", w.Code)
	}
	if strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("metrics served without a collector")
	}
}
