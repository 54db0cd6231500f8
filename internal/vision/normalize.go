package vision

import (
	"fmt"
	"math"
	"strings"

	visionapi "google.golang.org/api/vision/v1"
)

// Normalize converts a raw annotate response into an Analysis.
func Normalize(resp *visionapi.AnnotateImageResponse) Analysis {
	analysis := Analysis{
		SafetyRatings:  map[string]string{},
		DominantColors: []ColorSwatch{},
	}
	if resp == nil {
		return analysis
	}
	analysis.DetectedLogo = bestLogo(resp.LogoAnnotations)
	if resp.SafeSearchAnnotation != nil {
		analysis.SafetyRatings = safetyRatings(resp.SafeSearchAnnotation)
	}
	if props := resp.ImagePropertiesAnnotation; props != nil && props.DominantColors != nil {
		analysis.DominantColors = dominantColors(props.DominantColors.Colors)
	}
	return analysis
}

func bestLogo(candidates []*visionapi.EntityAnnotation) *DetectedLogo {
	var best *visionapi.EntityAnnotation
	for _, candidate := range candidates {
		if candidate == nil || strings.TrimSpace(candidate.Description) == "" {
			continue
		}
		if best == nil || candidate.Score > best.Score {
			best = candidate
		}
	}
	if best == nil {
		return nil
	}
	return &DetectedLogo{Description: best.Description, Confidence: best.Score}
}

func safetyRatings(annotation *visionapi.SafeSearchAnnotation) map[string]string {
	values := map[string]string{
		"adult":    annotation.Adult,
		"medical":  annotation.Medical,
		"spoof":    annotation.Spoof,
		"violence": annotation.Violence,
		"racy":     annotation.Racy,
	}
	ratings := make(map[string]string, len(values))
	for category, likelihood := range values {
		if likelihood == "" {
			continue
		}
		ratings[category] = likelihood
	}
	return ratings
}

func dominantColors(colors []*visionapi.ColorInfo) []ColorSwatch {
	out := make([]ColorSwatch, 0, MaxDominantColors)
	for _, info := range colors {
		if len(out) == MaxDominantColors {
			break
		}
		if info == nil {
			continue
		}
		var r, g, b float64
		if info.Color != nil {
			r, g, b = info.Color.Red, info.Color.Green, info.Color.Blue
		}
		out = append(out, ColorSwatch{
			Hex:           HexColor(r, g, b),
			PixelFraction: info.PixelFraction,
		})
	}
	return out
}

// HexColor formats RGB channels as #rrggbb, truncating fractions and clamping to 0..255.
func HexColor(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x", channel(r), channel(g), channel(b))
}

func channel(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v)
}
