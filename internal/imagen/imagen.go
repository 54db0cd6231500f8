// Package imagen renders refinement prompts into images with Imagen on Vertex AI.
package imagen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"brandai/backend/internal/failure"
)

const defaultMIMEType = "image/png"

// Generator turns a text prompt into one rendered image.
type Generator interface {
	Regenerate(ctx context.Context, prompt string) (Image, error)
}

// Transport is the subset of the Vertex client the generator needs.
type Transport interface {
	ModelURL(model, method string) string
	PostJSON(ctx context.Context, url string, payload, out any) error
}

// Config holds Imagen generation parameters.
type Config struct {
	Model string
}

// Image is a generated asset.
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURI encodes the image as a base64 data URI.
func (img Image) DataURI() string {
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = defaultMIMEType
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Client implements Generator against the Imagen predict endpoint.
type Client struct {
	transport Transport
	model     string
}

var ErrDisabled = errors.New("image generator disabled")

// NewClient constructs a Client if a transport is available.
func NewClient(transport Transport, cfg Config) (*Client, error) {
	if transport == nil {
		return nil, ErrDisabled
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = "imagen-3.0-generate-001"
	}
	return &Client{transport: transport, model: cfg.Model}, nil
}

type predictRequest struct {
	Instances  []instance `json:"instances"`
	Parameters parameters `json:"parameters"`
}

type instance struct {
	Prompt string `json:"prompt"`
}

type parameters struct {
	SampleCount   int    `json:"sampleCount"`
	AspectRatio   string `json:"aspectRatio"`
	AddWatermark  bool   `json:"addWatermark"`
	SafetySetting string `json:"safetySetting"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MIMEType           string `json:"mimeType"`
	} `json:"predictions"`
}

// Regenerate requests a single square image for prompt.
func (c *Client) Regenerate(ctx context.Context, prompt string) (Image, error) {
	if c == nil || c.transport == nil {
		return Image{}, failure.Regeneration(ErrDisabled)
	}
	payload := predictRequest{
		Instances: []instance{{Prompt: prompt}},
		Parameters: parameters{
			SampleCount:   1,
			AspectRatio:   "1:1",
			AddWatermark:  false,
			SafetySetting: "block_only_high",
		},
	}

	var decoded predictResponse
	if err := c.transport.PostJSON(ctx, c.transport.ModelURL(c.model, "predict"), payload, &decoded); err != nil {
		return Image{}, failure.Regeneration(err)
	}
	if len(decoded.Predictions) == 0 {
		return Image{}, failure.ErrNoCandidates
	}

	prediction := decoded.Predictions[0]
	mimeType := strings.ToLower(strings.TrimSpace(prediction.MIMEType))
	if mimeType == "" {
		mimeType = defaultMIMEType
	}
	if mimeType != "image/png" && mimeType != "image/jpeg" {
		return Image{}, &failure.UnsupportedMimeTypeError{MIMEType: prediction.MIMEType}
	}

	data, err := base64.StdEncoding.DecodeString(prediction.BytesBase64Encoded)
	if err != nil {
		return Image{}, failure.Regeneration(fmt.Errorf("decode image bytes: %w", err))
	}
	if len(data) == 0 {
		return Image{}, failure.Regeneration(errors.New("imagen returned an empty image"))
	}

	logrus.WithFields(logrus.Fields{
		"model":     c.model,
		"mime_type": mimeType,
		"bytes":     len(data),
	}).Debug("imagen prediction decoded")
	return Image{Data: data, MIMEType: mimeType}, nil
}
