package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"brandai/backend/internal/failure"
	"brandai/backend/internal/store"
)

const sampleJSON = `{
  "pepsi": {"brand_name": "Pepsi", "color_palette_hex": ["#004b93", "#e32934"], "tone_of_voice_keywords": ["bold"], "taglines": ["That's What I Like"], "safety_rules": ["No alcohol."]},
  "cocacola": {"brand_name": "Coca-Cola", "color_palette_hex": ["#f40009"], "tone_of_voice_keywords": ["happy"], "taglines": ["Taste the Feeling"], "safety_rules": []},
  "nike": {"brand_name": "Nike", "color_palette_hex": ["#111111"], "tone_of_voice_keywords": ["inspiring"], "taglines": ["Just Do It"], "safety_rules": ["No unsafe stunts."]}
}`

const sampleYAML = `
starbucks:
  brand_name: Starbucks
  color_palette_hex: ["#00704a"]
  tone_of_voice_keywords: [warm]
  taglines: []
  safety_rules: []
apple:
  brand_name: Apple
  color_palette_hex: ["#000000", "#ffffff"]
  tone_of_voice_keywords: [minimal]
  taglines: [Think Different]
  safety_rules: []
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadJSONKeepsDocumentOrder(t *testing.T) {
	c := New(SourceForPath(writeFile(t, "database.json", sampleJSON)))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	keys := c.Keys()
	want := []string{"pepsi", "cocacola", "nike"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v got %v", want, keys)
		}
	}
	record, ok := c.Get("cocacola")
	if !ok {
		t.Fatalf("expected cocacola record")
	}
	if record.BrandName != "Coca-Cola" || record.Key != "cocacola" {
		t.Fatalf("unexpected record %+v", record)
	}
	if _, ok := c.Get("adidas"); ok {
		t.Fatalf("did not expect adidas")
	}
}

func TestLoadYAML(t *testing.T) {
	c := New(SourceForPath(writeFile(t, "brands.yaml", sampleYAML)))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	keys := c.Keys()
	if len(keys) != 2 || keys[0] != "starbucks" || keys[1] != "apple" {
		t.Fatalf("unexpected keys %v", keys)
	}
	record, _ := c.Get("apple")
	if len(record.Taglines) != 1 || record.Taglines[0] != "Think Different" {
		t.Fatalf("unexpected taglines %v", record.Taglines)
	}
}

func TestLoadFromSQLite(t *testing.T) {
	records, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	path := filepath.Join(t.TempDir(), "brands.db")
	db, err := store.Open(path, true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.ReplaceBrandKits(ToBrandKits(records)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	_ = db.Close()

	c := New(SourceForPath(path))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	keys := c.Keys()
	if len(keys) != 3 || keys[0] != "pepsi" || keys[2] != "nike" {
		t.Fatalf("unexpected keys %v", keys)
	}
	pepsi, _ := c.Get("pepsi")
	if len(pepsi.ColorPaletteHex) != 2 || pepsi.SafetyRules[0] != "No alcohol." {
		t.Fatalf("unexpected pepsi record %+v", pepsi)
	}
}

func TestSQLiteSourceLeavesDatabaseUntouched(t *testing.T) {
	path := writeFile(t, "empty.db", "")

	if _, err := (SQLSource{Path: path}).Load(context.Background()); err == nil {
		t.Fatalf("expected error for a database without the brand kit table")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("read-only source wrote %d bytes of schema", info.Size())
	}
	if _, err := os.Stat(path + "-wal"); !os.IsNotExist(err) {
		t.Fatalf("read-only source created a WAL file")
	}
}

func TestSQLiteSourceRejectsCorruptListColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brands.db")
	db, err := store.Open(path, true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	broken := store.BrandKit{Key: "nike", BrandName: "Nike", TaglinesJSON: `["Just Do It"`}
	if err := db.ReplaceBrandKits([]store.BrandKit{broken}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	_ = db.Close()

	c := New(SourceForPath(path))
	if err := c.Load(context.Background()); !errors.Is(err, failure.ErrCatalogLoad) {
		t.Fatalf("expected catalog load error, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("corrupt catalog must not load, got %d brands", c.Len())
	}
}

func TestLoadFailureFallsBackToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"invalid json", "bad.json", `{"nike": `},
		{"not an object", "list.json", `["nike"]`},
		{"duplicate key", "dup.json", `{"nike": {}, "nike": {}}`},
		{"uppercase key", "upper.json", `{"Nike": {}}`},
		{"hyphenated key", "hyphen.json", `{"coca-cola": {}}`},
		{"empty key", "empty-key.json", `{"": {}}`},
		{"empty document", "empty.json", ``},
		{"yaml sequence", "seq.yaml", "- nike\n- pepsi\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			good, err := FromRecords([]BrandRecord{{Key: "nike"}})
			if err != nil {
				t.Fatalf("seed: %v", err)
			}
			good.source = SourceForPath(writeFile(t, tc.file, tc.content))

			err = good.Load(context.Background())
			if !errors.Is(err, failure.ErrCatalogLoad) {
				t.Fatalf("expected catalog load error got %v", err)
			}
			if good.Len() != 0 {
				t.Fatalf("expected empty catalog after failed load, got %v", good.Keys())
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	for _, name := range []string{"missing.json", "missing.db"} {
		c := New(SourceForPath(filepath.Join(t.TempDir(), name)))
		err := c.Load(context.Background())
		var loadErr *failure.CatalogLoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("%s: expected CatalogLoadError got %v", name, err)
		}
		if c.Len() != 0 {
			t.Fatalf("%s: expected empty catalog", name)
		}
	}
}

func TestZeroValueCatalogIsEmpty(t *testing.T) {
	var c Catalog
	if c.Len() != 0 || len(c.Keys()) != 0 {
		t.Fatalf("expected empty zero catalog")
	}
	if _, ok := c.Get("nike"); ok {
		t.Fatalf("zero catalog returned a record")
	}
	if err := c.Load(context.Background()); !errors.Is(err, failure.ErrCatalogLoad) {
		t.Fatalf("expected load error without source, got %v", err)
	}
}

func TestGetReturnsCopies(t *testing.T) {
	c, err := FromRecords([]BrandRecord{{Key: "nike", Taglines: []string{"Just Do It"}}})
	if err != nil {
		t.Fatalf("from records: %v", err)
	}
	record, _ := c.Get("nike")
	record.Taglines[0] = "mutated"
	again, _ := c.Get("nike")
	if again.Taglines[0] != "Just Do It" {
		t.Fatalf("catalog record was mutated through Get")
	}
}

func TestReloadIsAtomicForReaders(t *testing.T) {
	path := writeFile(t, "database.json", sampleJSON)
	c := New(SourceForPath(path))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				keys := c.Keys()
				for _, key := range keys {
					if _, ok := c.current().records[key]; !ok {
						t.Errorf("key %s missing from its own snapshot", key)
						return
					}
				}
			}
		}()
	}
	for i := 0; i < 20; i++ {
		if err := c.Load(context.Background()); err != nil {
			t.Fatalf("reload: %v", err)
		}
	}
	close(stop)
	wg.Wait()
}

func TestResolveUsesOneSnapshot(t *testing.T) {
	records, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c, err := FromRecords(records)
	if err != nil {
		t.Fatalf("from records: %v", err)
	}

	record, keys, ok := c.Resolve("The Coca-Cola Company")
	if !ok || record.Key != "cocacola" || record.BrandName != "Coca-Cola" {
		t.Fatalf("unexpected resolution %+v ok=%v", record, ok)
	}
	if len(keys) != 3 || keys[0] != "pepsi" {
		t.Fatalf("unexpected keys %v", keys)
	}

	if _, keys, ok := c.Resolve("Adidas"); ok || len(keys) != 3 {
		t.Fatalf("expected no match with supported keys, got ok=%v keys=%v", ok, keys)
	}

	var empty Catalog
	if _, keys, ok := empty.Resolve("Nike"); ok || len(keys) != 0 {
		t.Fatalf("empty catalog must not resolve, got ok=%v keys=%v", ok, keys)
	}
}
