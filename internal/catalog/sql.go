package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"brandai/backend/internal/store"
)

// SQLSource reads brand kits from a SQLite database written by the
// "catalog import" command. The service only ever reads from it.
type SQLSource struct {
	Path string
}

func (s SQLSource) Describe() string {
	return "sqlite:" + filepath.Clean(s.Path)
}

func (s SQLSource) Load(ctx context.Context) ([]BrandRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.Path); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	db, err := store.OpenReadOnly(s.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.ListBrandKits()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	records := make([]BrandRecord, 0, len(rows))
	for _, row := range rows {
		record, err := FromBrandKit(row)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// FromBrandKit converts a stored brand kit into a record. A list column that
// is not valid JSON is an error.
func FromBrandKit(kit store.BrandKit) (BrandRecord, error) {
	record := BrandRecord{Key: kit.Key, BrandName: kit.BrandName}
	var err error
	if record.ColorPaletteHex, err = kit.ColorPalette(); err != nil {
		return BrandRecord{}, fmt.Errorf("brand %q: %w", kit.Key, err)
	}
	if record.ToneOfVoiceKeywords, err = kit.Tone(); err != nil {
		return BrandRecord{}, fmt.Errorf("brand %q: %w", kit.Key, err)
	}
	if record.Taglines, err = kit.Taglines(); err != nil {
		return BrandRecord{}, fmt.Errorf("brand %q: %w", kit.Key, err)
	}
	if record.SafetyRules, err = kit.SafetyRules(); err != nil {
		return BrandRecord{}, fmt.Errorf("brand %q: %w", kit.Key, err)
	}
	return record, nil
}

// ToBrandKits converts records into store rows, preserving order.
func ToBrandKits(records []BrandRecord) []store.BrandKit {
	kits := make([]store.BrandKit, 0, len(records))
	for i, record := range records {
		kit := store.BrandKit{Key: record.Key, Position: i, BrandName: record.BrandName}
		kit.SetColorPalette(record.ColorPaletteHex)
		kit.SetTone(record.ToneOfVoiceKeywords)
		kit.SetTaglines(record.Taglines)
		kit.SetSafetyRules(record.SafetyRules)
		kits = append(kits, kit)
	}
	return kits
}
