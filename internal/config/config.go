package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port string
	Env  string

	// GitHubToken may be empty: the engine then runs in "lite" mode where
	// per-commit detail endpoints are unavailable and aggregators fall back
	// to seeded synthetic data.
	GitHubToken string
	GitHubRepo  string

	CacheSnapshotPath string
	FetchConcurrency  int
	HTTPTimeout       time.Duration
	DefaultTTL        time.Duration
}

// Load reads configuration from environment variables.
// Returns an error if required variables are missing or malformed.
func Load() (*Config, error) {
	repo := getEnv("GITHUB_REPO", "")
	if repo == "" {
		return nil, fmt.Errorf("GITHUB_REPO is required")
	}
	if parts := strings.Split(repo, "/"); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid GITHUB_REPO format: %s (expected owner/repo)", repo)
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		GitHubToken: os.Getenv("GITHUB_TOKEN"),
		GitHubRepo:  repo,

		CacheSnapshotPath: getEnv("CACHE_SNAPSHOT_PATH", "gitpulse_cache.json"),
		FetchConcurrency:  getInt("FETCH_CONCURRENCY", 3),
		HTTPTimeout:       getDuration("HTTP_TIMEOUT", 30*time.Second),
		DefaultTTL:        getDuration("CACHE_DEFAULT_TTL", 7*24*time.Hour),
	}, nil
}

// Owner returns the owner half of GitHubRepo.
func (c *Config) Owner() string {
	return strings.SplitN(c.GitHubRepo, "/", 2)[0]
}

// Repo returns the repository half of GitHubRepo.
func (c *Config) Repo() string {
	return strings.SplitN(c.GitHubRepo, "/", 2)[1]
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
