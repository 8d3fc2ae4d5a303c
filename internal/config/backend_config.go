package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	apiURLVar    = "AGRILINK_API_URL"
	tokenPathVar = "AGRILINK_TOKEN_FILE"
	timeoutVar   = "AGRILINK_TIMEOUT"
)

type Backend struct{}

var _ BackendConfig = Backend{}

// GetBaseURL returns the marketplace backend's API root.
func (Backend) GetBaseURL() string {
	return GetEnv(apiURLVar, "http://localhost:8000/api/")
}

// GetTokenPath returns where the credential pair is persisted between runs.
func (Backend) GetTokenPath() string {
	if path := os.Getenv(tokenPathVar); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "agrilink-credentials.json"
	}
	return filepath.Join(home, ".agrilink", "credentials.json")
}

func (Backend) GetRequestTimeout() time.Duration {
	raw := GetEnv(timeoutVar, "30s")
	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return 30 * time.Second
	}
	return timeout
}
