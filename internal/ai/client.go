// Package ai asks Gemini on Vertex AI for a structured ad critique.
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"brandai/backend/internal/failure"
)

// Transport is the subset of the Vertex client the critic needs.
type Transport interface {
	ModelURL(model, method string) string
	PostJSON(ctx context.Context, url string, payload, out any) error
}

// Config holds Gemini generation parameters. A nil Temperature selects the
// default; zero is a valid setting.
type Config struct {
	Model       string
	Temperature *float64
}

const defaultTemperature = 0.7

// Client implements Critic against the Gemini generateContent endpoint.
type Client struct {
	transport   Transport
	model       string
	temperature float64
}

var ErrDisabled = errors.New("critique generator disabled")

// NewClient constructs a Client if a transport is available.
func NewClient(transport Transport, cfg Config) (*Client, error) {
	if transport == nil {
		return nil, ErrDisabled
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	temp := defaultTemperature
	if cfg.Temperature != nil && *cfg.Temperature >= 0 {
		temp = *cfg.Temperature
	}
	return &Client{transport: transport, model: cfg.Model, temperature: temp}, nil
}

// Critique sends the ad image and brand prompt to Gemini and decodes the reply.
func (c *Client) Critique(ctx context.Context, req Request) (Critique, error) {
	if c == nil || c.transport == nil {
		return Critique{}, failure.Critique(ErrDisabled)
	}

	payload := c.buildPayload(req)
	var decoded generateContentResponse
	if err := c.transport.PostJSON(ctx, c.transport.ModelURL(c.model, "generateContent"), payload, &decoded); err != nil {
		return Critique{}, failure.Critique(err)
	}

	text, err := replyText(decoded)
	if err != nil {
		return Critique{}, failure.Critique(err)
	}

	critique, err := DecodeCritique(text)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"model":       c.model,
			"reply_bytes": len(text),
		}).WithError(err).Warn("critique reply rejected")
		return Critique{}, err
	}
	return critique, nil
}

func (c *Client) buildPayload(req Request) generateContentRequest {
	mimeType := strings.TrimSpace(req.MIMEType)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = defaultImageMIME
	}
	return generateContentRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{MIMEType: mimeType, Data: base64.StdEncoding.EncodeToString(req.Image)}},
				{Text: buildPrompt(req.Brand, req.Analysis)},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			Temperature:      c.temperature,
		},
	}
}

func replyText(resp generateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	builder := &strings.Builder{}
	for _, p := range resp.Candidates[0].Content.Parts {
		builder.WriteString(p.Text)
	}
	text := strings.TrimSpace(builder.String())
	if text == "" {
		reason := resp.Candidates[0].FinishReason
		if reason == "" {
			reason = "unknown"
		}
		return "", fmt.Errorf("gemini returned empty text (finish reason %s)", reason)
	}
	return text, nil
}
