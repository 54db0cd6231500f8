package ai

import (
	"context"

	"brandai/backend/internal/catalog"
	"brandai/backend/internal/vision"
)

const (
	maxStrengths     = 3
	maxImprovements  = 5
	defaultImageMIME = "image/jpeg"
)

// Critic produces a brand compliance critique for one advertisement.
type Critic interface {
	Critique(ctx context.Context, req Request) (Critique, error)
}

// Request carries everything the critique prompt is built from.
type Request struct {
	Image    []byte
	MIMEType string
	Brand    catalog.BrandRecord
	Analysis vision.Analysis
}

// Dimension is one scored axis of the scorecard.
type Dimension struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Scorecard captures the four dimension scores plus the overall verdict.
type Scorecard struct {
	BrandAlignment Dimension `json:"brand_alignment"`
	VisualQuality  Dimension `json:"visual_quality"`
	MessageClarity Dimension `json:"message_clarity"`
	SafetyEthics   Dimension `json:"safety_ethics"`
	OverallScore   float64   `json:"overall_score"`
	Strengths      []string  `json:"strengths"`
	WhatToImprove  []string  `json:"what_to_improve"`
}

// Critique is the decoded model reply.
type Critique struct {
	Scorecard      Scorecard `json:"scorecard"`
	RefinementPlan string    `json:"refinement_plan"`
}

// Pointer fields let the decoder tell a missing value from a zero score.
type rawDimension struct {
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

type rawScorecard struct {
	BrandAlignment *rawDimension `json:"brand_alignment"`
	VisualQuality  *rawDimension `json:"visual_quality"`
	MessageClarity *rawDimension `json:"message_clarity"`
	SafetyEthics   *rawDimension `json:"safety_ethics"`
	OverallScore   *float64      `json:"overall_score"`
	Strengths      []string      `json:"strengths"`
	WhatToImprove  []string      `json:"what_to_improve"`
}

type rawCritique struct {
	Scorecard      *rawScorecard `json:"scorecard"`
	RefinementPlan *string       `json:"refinement_plan"`
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}
