package catalog

// BrandRecord holds the guidelines for one brand. Records are immutable once
// they are part of a loaded catalog.
type BrandRecord struct {
	Key                 string   `json:"-" yaml:"-"`
	BrandName           string   `json:"brand_name" yaml:"brand_name"`
	ColorPaletteHex     []string `json:"color_palette_hex" yaml:"color_palette_hex"`
	ToneOfVoiceKeywords []string `json:"tone_of_voice_keywords" yaml:"tone_of_voice_keywords"`
	Taglines            []string `json:"taglines" yaml:"taglines"`
	SafetyRules         []string `json:"safety_rules" yaml:"safety_rules"`
}

func (r BrandRecord) clone() BrandRecord {
	r.ColorPaletteHex = cloneStrings(r.ColorPaletteHex)
	r.ToneOfVoiceKeywords = cloneStrings(r.ToneOfVoiceKeywords)
	r.Taglines = cloneStrings(r.Taglines)
	r.SafetyRules = cloneStrings(r.SafetyRules)
	return r
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
