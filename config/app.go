package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrNotConfigured is returned by the Init* helpers when the service's
// environment variable is absent. The server runs without that service.
var ErrNotConfigured = errors.New("not configured")

const (
	STTWhisper = "whisper"
	STTGoogle  = "google"
	STTNone    = "none"
)

type AppConfig struct {
	Port           int
	BaseDirectory  string
	MaxUploadBytes int64

	GCPProjectID string
	GCPLocation  string
	GeminiModel  string

	STTProvider       string
	STTLanguage       string
	WhisperServiceURL string

	GCSBucket string

	ProcessingWorkers int
	QueueSize         int
	JobTTL            time.Duration
	JobTimeout        time.Duration

	JWTSecret string
	GinMode   string
}

// Load reads AppConfig from the environment and validates it.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		BaseDirectory:     envOr("BASE_DIRECTORY", "processed"),
		GCPProjectID:      os.Getenv("GCP_PROJECT_ID"),
		GCPLocation:       envOr("GCP_LOCATION", "us-central1"),
		GeminiModel:       envOr("GEMINI_MODEL", "gemini-1.5-flash"),
		STTProvider:       strings.ToLower(envOr("STT_PROVIDER", STTWhisper)),
		STTLanguage:       envOr("STT_LANGUAGE", "en-US"),
		WhisperServiceURL: envOr("WHISPER_SERVICE_URL", "http://localhost:1991"),
		GCSBucket:         os.Getenv("GCS_BUCKET"),
		JWTSecret:         os.Getenv("INTAKE_JWT_SECRET"),
		GinMode:           os.Getenv("GIN_MODE"),
	}

	var errs []error
	var err error

	if cfg.Port, err = envInt("PORT", 3000); err != nil {
		errs = append(errs, err)
	} else if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port))
	}

	maxUpload, err := envInt("MAX_UPLOAD_BYTES", 50<<20)
	switch {
	case err != nil:
		errs = append(errs, err)
	case maxUpload <= 0:
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", maxUpload))
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if cfg.ProcessingWorkers, err = envInt("PROCESSING_WORKERS", 2); err != nil {
		errs = append(errs, err)
	} else if cfg.ProcessingWorkers < 1 {
		errs = append(errs, fmt.Errorf("PROCESSING_WORKERS must be at least 1, got %d", cfg.ProcessingWorkers))
	}
	if cfg.QueueSize, err = envInt("PROCESSING_QUEUE_SIZE", 16); err != nil {
		errs = append(errs, err)
	}

	if cfg.JobTTL, err = envDuration("JOB_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.JobTimeout, err = envDuration("JOB_TIMEOUT", 10*time.Minute); err != nil {
		errs = append(errs, err)
	}

	switch cfg.STTProvider {
	case STTWhisper, STTGoogle, STTNone:
	default:
		errs = append(errs, fmt.Errorf("STT_PROVIDER must be one of whisper, google, none; got %q", cfg.STTProvider))
	}

	if strings.TrimSpace(cfg.BaseDirectory) == "" {
		errs = append(errs, errors.New("BASE_DIRECTORY must not be empty"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// LLMConfigured reports whether Vertex AI can be reached.
func (c *AppConfig) LLMConfigured() bool { return c.GCPProjectID != "" }

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
