package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BrandKit is the persisted form of a brand guideline record. Position keeps
// the catalog iteration order stable across loads.
type BrandKit struct {
	Key              string `gorm:"column:brand_key;primaryKey;size:64"`
	Position         int    `gorm:"index"`
	BrandName        string `gorm:"size:256"`
	ColorPaletteJSON string `gorm:"type:text"`
	ToneJSON         string `gorm:"type:text"`
	TaglinesJSON     string `gorm:"type:text"`
	SafetyRulesJSON  string `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SetColorPalette persists the palette as JSON.
func (b *BrandKit) SetColorPalette(values []string) { b.ColorPaletteJSON = encodeList(values) }

// ColorPalette returns the unmarshalled palette.
func (b *BrandKit) ColorPalette() ([]string, error) {
	return decodeList("color palette", b.ColorPaletteJSON)
}

// SetTone persists the tone of voice keywords as JSON.
func (b *BrandKit) SetTone(values []string) { b.ToneJSON = encodeList(values) }

// Tone returns the unmarshalled tone of voice keywords.
func (b *BrandKit) Tone() ([]string, error) {
	return decodeList("tone", b.ToneJSON)
}

// SetTaglines persists the taglines as JSON.
func (b *BrandKit) SetTaglines(values []string) { b.TaglinesJSON = encodeList(values) }

// Taglines returns the unmarshalled taglines.
func (b *BrandKit) Taglines() ([]string, error) {
	return decodeList("taglines", b.TaglinesJSON)
}

// SetSafetyRules persists the safety rules as JSON.
func (b *BrandKit) SetSafetyRules(values []string) { b.SafetyRulesJSON = encodeList(values) }

// SafetyRules returns the unmarshalled safety rules.
func (b *BrandKit) SafetyRules() ([]string, error) {
	return decodeList("safety rules", b.SafetyRulesJSON)
}

func encodeList(values []string) string {
	if values == nil {
		return "[]"
	}
	payload, _ := json.Marshal(values)
	return string(payload)
}

func decodeList(column, raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", column, err)
	}
	return out, nil
}
