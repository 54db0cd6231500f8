package api

import (
	"brandai/backend/internal/catalog"
)

// RegenerateRequest is the body of POST /regenerate.
type RegenerateRequest struct {
	RefinementPlan string `json:"refinement_plan" binding:"required"`
}

// RegenerateResponse carries the rendered image as a data URI.
type RegenerateResponse struct {
	RegeneratedImageURL string `json:"regenerated_image_url"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// BrandDTO is the API representation of a catalog entry.
type BrandDTO struct {
	Key                 string   `json:"brand_key"`
	BrandName           string   `json:"brand_name"`
	ColorPaletteHex     []string `json:"color_palette_hex"`
	ToneOfVoiceKeywords []string `json:"tone_of_voice_keywords"`
	Taglines            []string `json:"taglines"`
	SafetyRules         []string `json:"safety_rules"`
}

// BrandsResponse lists the catalog in order.
type BrandsResponse struct {
	Source string     `json:"source"`
	Count  int        `json:"count"`
	Items  []BrandDTO `json:"items"`
}

// BrandFromRecord converts a catalog record into the DTO representation.
func BrandFromRecord(r catalog.BrandRecord) BrandDTO {
	return BrandDTO{
		Key:                 r.Key,
		BrandName:           r.BrandName,
		ColorPaletteHex:     nonNil(r.ColorPaletteHex),
		ToneOfVoiceKeywords: nonNil(r.ToneOfVoiceKeywords),
		Taglines:            nonNil(r.Taglines),
		SafetyRules:         nonNil(r.SafetyRules),
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
