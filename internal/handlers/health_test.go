package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"wikindex/internal/storage"
	storage_mocks "wikindex/internal/storage/mocks"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

type fakeBreaker string

func (b fakeBreaker) State() string { return string(b) }

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		latestErr  error
		breaker    string
		wantStatus int
		wantHealth string
		wantChecks map[string]string
		wantIssues int
	}{
		{
			name:       "healthy",
			breaker:    "closed",
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
			wantChecks: map[string]string{"database": "ok", "index": "ok", "wiki_breaker": "closed"},
		},
		{
			name:       "nothing indexed yet",
			latestErr:  storage.ErrNotFound,
			breaker:    "closed",
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
			wantChecks: map[string]string{"database": "ok", "index": "empty", "wiki_breaker": "closed"},
		},
		{
			name:       "wiki breaker open",
			breaker:    "open",
			wantStatus: http.StatusOK,
			wantHealth: "degraded",
			wantChecks: map[string]string{"database": "ok", "index": "ok", "wiki_breaker": "open"},
			wantIssues: 1,
		},
		{
			name:       "database down",
			pingErr:    errors.New("unable to open database file"),
			latestErr:  errors.New("unable to open database file"),
			breaker:    "half-open",
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
			wantChecks: map[string]string{"database": "error", "index": "error", "wiki_breaker": "half-open"},
			wantIssues: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			runs := storage_mocks.NewMockRunStore(ctrl)
			if tt.latestErr != nil {
				runs.EXPECT().Latest(gomock.Any()).Return(nil, tt.latestErr)
			} else {
				runs.EXPECT().Latest(gomock.Any()).Return(&storage.RunRecord{ID: "run-1"}, nil)
			}

			handler := NewHealthHandler(fakePinger{err: tt.pingErr}, runs, fakeBreaker(tt.breaker))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantHealth {
				t.Errorf("health = %q, want %q", resp.Status, tt.wantHealth)
			}
			for k, v := range tt.wantChecks {
				if resp.Checks[k] != v {
					t.Errorf("checks[%s] = %q, want %q", k, resp.Checks[k], v)
				}
			}
			if len(resp.Issues) != tt.wantIssues {
				t.Errorf("issues = %v, want %d", resp.Issues, tt.wantIssues)
			}
		})
	}
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	handler := NewHealthHandler(fakePinger{}, nil, fakeBreaker("closed"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/health", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}
