package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"wikindex/internal/contextutil"
)

// maxBodySize caps the hierarchy and page documents read from the wiki.
const maxBodySize = 32 << 20

var (
	// ErrUnavailable is returned while the circuit breaker rejects requests.
	ErrUnavailable = errors.New("remote wiki unavailable")
)

// StatusError is returned when the wiki answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: bad status %d: %s", e.URL, e.StatusCode, e.Body)
}

// BreakerSettings configures the circuit breaker guarding the wiki.
type BreakerSettings struct {
	Name         string
	MaxRequests  uint32        // requests allowed while half-open
	Interval     time.Duration // closed-state window after which counts reset
	Timeout      time.Duration // open-state duration before going half-open
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerSettings returns the settings used when none are configured.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:         "xwiki",
		MaxRequests:  1,
		Interval:     30 * time.Second,
		Timeout:      60 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  3,
	}
}

// Options configures a Client.
type Options struct {
	Timeout  time.Duration
	Username string
	Password string
	Breaker  BreakerSettings
	// HTTPClient overrides the default client; its Timeout is left unchanged.
	HTTPClient *http.Client
}

// Client fetches documents from the wiki REST API.
type Client struct {
	httpClient *http.Client
	username   string
	password   string
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a new Client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	settings := opts.Breaker
	if settings.Name == "" {
		settings.Name = DefaultBreakerSettings().Name
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: isSuccessful,
	})

	return &Client{
		httpClient: httpClient,
		username:   opts.Username,
		password:   opts.Password,
		breaker:    breaker,
	}
}

// isSuccessful counts only transport failures and 5xx answers against the
// breaker. Client errors and caller cancellation leave it alone.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

// State reports the circuit breaker state: "closed", "half-open" or "open".
func (c *Client) State() string {
	return c.breaker.State().String()
}

// Fetch GETs url and returns the response body as text.
func (c *Client) Fetch(ctx context.Context, url, accept string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.get(ctx, url, accept)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logger.WarnContext(ctx, "request rejected by circuit breaker", "url", url, "state", c.State())
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}

	body := result.(string)
	logger.DebugContext(ctx, "fetched document", "url", url, "bytes", len(body))
	return body, nil
}

func (c *Client) get(ctx context.Context, url, accept string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if len(raw) > maxBodySize {
		return "", fmt.Errorf("response from %s exceeds %d bytes", url, maxBodySize)
	}
	return string(raw), nil
}

// AcceptFor returns the Accept header matching a hierarchy format.
func AcceptFor(format string) string {
	switch strings.ToLower(format) {
	case "xml":
		return "application/xml"
	case "yaml", "yml":
		return "application/yaml, text/yaml;q=0.9, */*;q=0.1"
	default:
		return "application/json"
	}
}
