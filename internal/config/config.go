package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"wikindex/internal/rest"
)

// Config holds all configuration for the application.
type Config struct {
	RootPath  string // XWiki REST pages URL, e.g. http://host/xwiki/rest/wikis/xwiki/spaces/Main/pages
	SourceURL string // hierarchy document URL; defaults to RootPath
	Username  string
	Password  string

	Format          string
	NameKey         string
	ChildrenKey     string
	RootName        string
	CollisionPolicy rest.CollisionPolicy

	FetchTimeout        time.Duration
	BreakerMaxRequests  uint32
	BreakerInterval     time.Duration
	BreakerTimeout      time.Duration
	BreakerFailureRatio float64
	BreakerMinRequests  uint32

	CORSOrigins  []string
	DBPath       string
	APIPort      string
	IndexOnStart bool
	LogLevel     slog.Level
	LogFormat    string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		RootPath:    strings.TrimRight(getEnv("XWIKI_ROOT_PATH", ""), "/"),
		SourceURL:   getEnv("XWIKI_SOURCE_URL", ""),
		Username:    getEnv("XWIKI_USERNAME", ""),
		Password:    getEnv("XWIKI_PASSWORD", ""),
		Format:      strings.ToLower(getEnv("HIERARCHY_FORMAT", rest.FormatXWiki)),
		NameKey:     getEnv("HIERARCHY_NAME_KEY", rest.DefaultNameKey),
		ChildrenKey: getEnv("HIERARCHY_CHILDREN_KEY", rest.DefaultChildrenKey),
		RootName:    getEnv("HIERARCHY_ROOT_NAME", ""),
		DBPath:      getEnv("DB_PATH", "./data/wikindex.db"),
		APIPort:     getEnv("API_PORT", "9000"),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.RootPath == "" {
		return nil, fmt.Errorf("XWIKI_ROOT_PATH is required")
	}
	if cfg.SourceURL == "" {
		cfg.SourceURL = cfg.RootPath
	}

	if _, err := rest.DecoderFor(cfg.Format, cfg.NameKey, cfg.ChildrenKey); err != nil {
		return nil, fmt.Errorf("HIERARCHY_FORMAT is invalid: %w", err)
	}

	cfg.CollisionPolicy, err = ParseCollisionPolicy(getEnv("COLLISION_POLICY", "last-write-wins"))
	if err != nil {
		return nil, err
	}

	if cfg.FetchTimeout, err = getDuration("FETCH_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.BreakerInterval, err = getDuration("BREAKER_INTERVAL", "30s"); err != nil {
		return nil, err
	}
	if cfg.BreakerTimeout, err = getDuration("BREAKER_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.BreakerMaxRequests, err = getUint32("BREAKER_MAX_REQUESTS", "1"); err != nil {
		return nil, err
	}
	if cfg.BreakerMinRequests, err = getUint32("BREAKER_MIN_REQUESTS", "3"); err != nil {
		return nil, err
	}

	ratioStr := getEnv("BREAKER_FAILURE_RATIO", "0.6")
	cfg.BreakerFailureRatio, err = strconv.ParseFloat(ratioStr, 64)
	if err != nil {
		return nil, fmt.Errorf("BREAKER_FAILURE_RATIO must be a number: %w", err)
	}
	if cfg.BreakerFailureRatio <= 0 || cfg.BreakerFailureRatio > 1 {
		return nil, fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1]")
	}

	cfg.CORSOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	cfg.IndexOnStart, err = strconv.ParseBool(getEnv("INDEX_ON_START", "true"))
	if err != nil {
		return nil, fmt.Errorf("INDEX_ON_START must be a boolean: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json")
	}

	// Create ./data directory if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// ParseCollisionPolicy maps a configuration value to a rest.CollisionPolicy.
func ParseCollisionPolicy(s string) (rest.CollisionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "last-write-wins", "":
		return rest.LastWriteWins, nil
	case "reject", "error":
		return rest.RejectCollisions, nil
	default:
		return rest.LastWriteWins, fmt.Errorf("COLLISION_POLICY must be last-write-wins or reject, got %q", s)
	}
}

// IndexerOptions returns the rest.Indexer options for the configured hierarchy
// format. An empty format uses the configured one.
func (c *Config) IndexerOptions(format string) ([]rest.Option, error) {
	if format == "" {
		format = c.Format
	}
	decoder, err := rest.DecoderFor(format, c.NameKey, c.ChildrenKey)
	if err != nil {
		return nil, err
	}
	return []rest.Option{
		rest.WithDecoder(decoder),
		rest.WithRootName(c.RootName),
		rest.WithCollisionPolicy(c.CollisionPolicy),
	}, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return d, nil
}

func getUint32(key, defaultValue string) (uint32, error) {
	n, err := strconv.ParseUint(getEnv(key, defaultValue), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return uint32(n), nil
}
