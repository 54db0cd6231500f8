// Package vertex is the authenticated JSON transport shared by the Gemini and
// Imagen adapters.
package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
	defaultLocation    = "us-central1"
	defaultTimeout     = 60 * time.Second
	maxErrorBody       = 4 << 10
)

var ErrNotConfigured = errors.New("vertex client not configured")

// Config holds Vertex AI connection settings.
type Config struct {
	Project         string
	Location        string
	CredentialsFile string
	// BaseURL overrides the regional endpoint, mostly for tests.
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	// HTTPClient skips credential discovery when set.
	HTTPClient *http.Client
}

// Client posts JSON bodies to Vertex AI publisher model endpoints.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	project     string
	location    string
	maxRetries  int
	baseBackoff time.Duration
}

// StatusError is returned for non-2xx responses after retries are exhausted.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("vertex status %d", e.StatusCode)
	}
	return fmt.Sprintf("vertex status %d: %s", e.StatusCode, e.Body)
}

// NewClient constructs a Client. Without an explicit HTTP client it authenticates
// with the credentials file when given, otherwise application default credentials.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cfg.Project = strings.TrimSpace(cfg.Project)
	cfg.Location = strings.TrimSpace(cfg.Location)
	if cfg.Location == "" {
		cfg.Location = defaultLocation
	}
	if cfg.Project == "" {
		return nil, fmt.Errorf("%w: project id is required", ErrNotConfigured)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRetries, backoff := cfg.MaxRetries, cfg.Backoff
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	var httpClient http.Client
	if cfg.HTTPClient != nil {
		httpClient = *cfg.HTTPClient
	} else {
		tokens, err := tokenSource(ctx, strings.TrimSpace(cfg.CredentialsFile))
		if err != nil {
			return nil, err
		}
		httpClient = *oauth2.NewClient(context.Background(), tokens)
	}
	httpClient.Timeout = timeout

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = regionalEndpoint(cfg.Location)
	}
	return &Client{
		httpClient:  &httpClient,
		baseURL:     baseURL,
		project:     cfg.Project,
		location:    cfg.Location,
		maxRetries:  maxRetries,
		baseBackoff: backoff,
	}, nil
}

func tokenSource(ctx context.Context, credentialsFile string) (oauth2.TokenSource, error) {
	if credentialsFile != "" {
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("parse credentials: %w", err)
		}
		return creds.TokenSource, nil
	}
	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("find default credentials: %w", err)
	}
	return creds.TokenSource, nil
}

func regionalEndpoint(location string) string {
	if location == "global" {
		return "https://aiplatform.googleapis.com"
	}
	return "https://" + location + "-aiplatform.googleapis.com"
}

// ModelURL returns the REST URL for invoking method on a Google publisher model.
func (c *Client) ModelURL(model, method string) string {
	return fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:%s",
		c.baseURL, c.project, c.location, model, method)
}

// PostJSON marshals payload, posts it to url and decodes a 2xx body into out.
func (c *Client) PostJSON(ctx context.Context, url string, payload, out any) error {
	if c == nil || c.httpClient == nil {
		return ErrNotConfigured
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
