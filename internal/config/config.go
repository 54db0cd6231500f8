// Package config reads service settings from the environment.
package config

import (
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	defaultHost           = "0.0.0.0"
	defaultPort           = "8000"
	defaultLocation       = "us-central1"
	defaultCatalogPath    = "brand_kits/database.json"
	defaultStaticDir      = "static"
	defaultGeminiModel    = "gemini-2.0-flash"
	defaultImagenModel    = "imagen-3.0-generate-001"
	defaultTemperature    = 0.7
	defaultVertexTimeout  = 60 * time.Second
	defaultVisionTimeout  = 30 * time.Second
	defaultRetryBackoff   = 500 * time.Millisecond
	defaultMaxUploadBytes = 20 << 20
)

// Config is the complete service configuration.
type Config struct {
	Env             string
	Host            string
	Port            string
	ProjectID       string
	Location        string
	CredentialsFile string
	CatalogPath     string
	StaticDir       string
	AllowedOrigins  []string

	GeminiModel       string
	GeminiTemperature float64
	ImagenModel       string

	VertexBaseURL      string
	VertexTimeout      time.Duration
	VertexMaxRetries   int
	VertexRetryBackoff time.Duration
	VisionEndpoint     string
	VisionTimeout      time.Duration

	MaxUploadBytes int64
	LogLevel       string
	LogFormat      string
}

// Load reads a .env file outside production and then the process environment.
func Load() Config {
	env := strings.TrimSpace(os.Getenv("ENV"))
	if !strings.EqualFold(env, "production") {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			logrus.WithError(err).Warn("read .env file")
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from lookup, applying defaults for unset keys.
func FromEnv(lookup func(string) string) Config {
	get := func(key string) string { return strings.TrimSpace(lookup(key)) }

	cfg := Config{
		Env:                get("ENV"),
		Host:               firstNonEmpty(get("BACKEND_HOST"), defaultHost),
		Port:               firstNonEmpty(get("BACKEND_PORT"), get("PORT"), defaultPort),
		ProjectID:          get("GCP_PROJECT_ID"),
		Location:           firstNonEmpty(get("GCP_LOCATION"), defaultLocation),
		CredentialsFile:    get("GOOGLE_APPLICATION_CREDENTIALS"),
		CatalogPath:        firstNonEmpty(get("BRAND_CATALOG_PATH"), defaultCatalogPath),
		StaticDir:          firstNonEmpty(get("STATIC_DIR"), defaultStaticDir),
		AllowedOrigins:     splitList(get("ALLOWED_ORIGINS")),
		GeminiModel:        firstNonEmpty(get("GEMINI_MODEL"), defaultGeminiModel),
		GeminiTemperature:  defaultTemperature,
		ImagenModel:        firstNonEmpty(get("IMAGEN_MODEL"), defaultImagenModel),
		VertexBaseURL:      get("VERTEX_BASE_URL"),
		VertexTimeout:      defaultVertexTimeout,
		VertexMaxRetries:   1,
		VertexRetryBackoff: defaultRetryBackoff,
		VisionEndpoint:     get("VISION_ENDPOINT"),
		VisionTimeout:      defaultVisionTimeout,
		MaxUploadBytes:     defaultMaxUploadBytes,
		LogLevel:           firstNonEmpty(get("LOG_LEVEL"), "info"),
		LogFormat:          firstNonEmpty(get("LOG_FORMAT"), "text"),
	}

	if v := get("GEMINI_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			cfg.GeminiTemperature = parsed
		}
	}
	if v := get("VERTEX_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.VertexTimeout = d
		}
	}
	if v := get("VERTEX_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.VertexMaxRetries = parsed
		}
	}
	if v := get("VERTEX_RETRY_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.VertexRetryBackoff = d
		}
	}
	if v := get("VISION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.VisionTimeout = d
		}
	}
	if v := get("MAX_UPLOAD_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			cfg.MaxUploadBytes = parsed
		}
	}
	return cfg
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Warnings lists settings that will make upstream calls fail. None of them
// prevents startup.
func (c Config) Warnings() []string {
	var out []string
	if c.ProjectID == "" {
		out = append(out, "GCP_PROJECT_ID is not set; Gemini and Imagen calls will fail")
	}
	if c.CredentialsFile == "" {
		out = append(out, "GOOGLE_APPLICATION_CREDENTIALS is not set; falling back to application default credentials")
	}
	return out
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logger.
func (c Config) ConfigureLogging() {
	if strings.EqualFold(c.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.WithField("log_level", c.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
