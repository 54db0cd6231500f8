package vision

import "context"

// Safety categories reported by SafeSearch, in prompt order.
var SafetyCategories = []string{"adult", "medical", "spoof", "violence", "racy"}

// MaxDominantColors caps the colors kept from the provider ranking.
const MaxDominantColors = 5

// DetectedLogo is the single logo candidate kept from the provider response.
type DetectedLogo struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// ColorSwatch is one dominant color as a lowercase #rrggbb string.
type ColorSwatch struct {
	Hex           string  `json:"hex"`
	PixelFraction float64 `json:"pixel_fraction"`
}

// Analysis is the normalized vision result for one image.
type Analysis struct {
	DetectedLogo   *DetectedLogo     `json:"detected_logo"`
	SafetyRatings  map[string]string `json:"safety_ratings"`
	DominantColors []ColorSwatch     `json:"dominant_colors"`
}

// ColorHexes returns the dominant colors as hex strings in rank order.
func (a Analysis) ColorHexes() []string {
	out := make([]string, 0, len(a.DominantColors))
	for _, c := range a.DominantColors {
		out = append(out, c.Hex)
	}
	return out
}

// Analyzer runs image analysis against an external provider.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (Analysis, error)
}
