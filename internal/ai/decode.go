package ai

import (
	"encoding/json"
	"math"
	"strings"

	"brandai/backend/internal/failure"
)

// DecodeCritique strictly decodes a model reply. Fenced or padded JSON is
// accepted, scores are clamped to [0,1] and over-long lists are truncated.
func DecodeCritique(text string) (Critique, error) {
	block := normalizeJSONBlock(text)
	if block == "" {
		return Critique{}, &failure.MalformedCritiqueError{Reason: "empty reply"}
	}

	var raw rawCritique
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return Critique{}, &failure.MalformedCritiqueError{Reason: "invalid JSON", Err: err}
	}
	if raw.Scorecard == nil {
		return Critique{}, &failure.MalformedCritiqueError{Reason: "scorecard missing"}
	}
	if raw.RefinementPlan == nil || strings.TrimSpace(*raw.RefinementPlan) == "" {
		return Critique{}, &failure.MalformedCritiqueError{Reason: "refinement_plan missing"}
	}
	if raw.Scorecard.OverallScore == nil {
		return Critique{}, &failure.MalformedCritiqueError{Reason: "overall_score missing"}
	}

	dimensions := []struct {
		name string
		raw  *rawDimension
	}{
		{"brand_alignment", raw.Scorecard.BrandAlignment},
		{"visual_quality", raw.Scorecard.VisualQuality},
		{"message_clarity", raw.Scorecard.MessageClarity},
		{"safety_ethics", raw.Scorecard.SafetyEthics},
	}
	decoded := make([]Dimension, len(dimensions))
	for i, dim := range dimensions {
		if dim.raw == nil || dim.raw.Score == nil {
			return Critique{}, &failure.MalformedCritiqueError{Reason: dim.name + " score missing"}
		}
		decoded[i] = Dimension{
			Score:    clampFloat(*dim.raw.Score, 0, 1),
			Feedback: strings.TrimSpace(dim.raw.Feedback),
		}
	}

	return Critique{
		Scorecard: Scorecard{
			BrandAlignment: decoded[0],
			VisualQuality:  decoded[1],
			MessageClarity: decoded[2],
			SafetyEthics:   decoded[3],
			OverallScore:   clampFloat(*raw.Scorecard.OverallScore, 0, 1),
			Strengths:      truncate(raw.Scorecard.Strengths, maxStrengths),
			WhatToImprove:  truncate(raw.Scorecard.WhatToImprove, maxImprovements),
		},
		RefinementPlan: strings.TrimSpace(*raw.RefinementPlan),
	}, nil
}

func normalizeJSONBlock(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.IndexRune(trimmed, '\n'); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		if strings.HasSuffix(trimmed, "```") {
			trimmed = trimmed[:len(trimmed)-3]
		}
	}
	trimmed = strings.TrimSpace(trimmed)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end >= start {
		return strings.TrimSpace(trimmed[start : end+1])
	}
	return trimmed
}

func truncate(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if len(out) == limit {
			break
		}
		out = append(out, item)
	}
	return out
}

func clampFloat(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
