// Package vision wraps Google Cloud Vision logo, SafeSearch and image
// properties detection behind the Analyzer interface.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	visionapi "google.golang.org/api/vision/v1"

	"brandai/backend/internal/failure"
)

// Config holds Cloud Vision client settings.
type Config struct {
	CredentialsFile string
	Endpoint        string
	Timeout         time.Duration
	// ClientOptions are appended after the options derived from the fields above.
	ClientOptions []option.ClientOption
}

// Client implements Analyzer against the Cloud Vision REST API.
type Client struct {
	service *visionapi.Service
	timeout time.Duration
}

// NewClient constructs a Cloud Vision client. Without a credentials file the
// client falls back to application default credentials.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	opts = append(opts, cfg.ClientOptions...)

	service, err := visionapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{service: service, timeout: timeout}, nil
}

// Analyze runs logo, SafeSearch and image properties detection in one batched request.
func (c *Client) Analyze(ctx context.Context, image []byte) (Analysis, error) {
	if c == nil || c.service == nil {
		return Analysis{}, failure.Vision(errors.New("vision client not configured"))
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &visionapi.BatchAnnotateImagesRequest{
		Requests: []*visionapi.AnnotateImageRequest{{
			Image: &visionapi.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*visionapi.Feature{
				{Type: "LOGO_DETECTION"},
				{Type: "SAFE_SEARCH_DETECTION"},
				{Type: "IMAGE_PROPERTIES"},
			},
		}},
	}

	resp, err := c.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return Analysis{}, failure.Vision(err)
	}
	if len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return Analysis{}, failure.Vision(errors.New("empty annotate response"))
	}
	result := resp.Responses[0]
	if result.Error != nil && result.Error.Code != 0 {
		return Analysis{}, failure.Vision(fmt.Errorf("status %d: %s", result.Error.Code, result.Error.Message))
	}

	analysis := Normalize(result)
	logrus.WithFields(logrus.Fields{
		"logo_candidates": len(result.LogoAnnotations),
		"detected_logo":   analysis.DetectedLogo,
		"colors":          len(analysis.DominantColors),
	}).Debug("vision analysis normalized")
	return analysis, nil
}
