package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source produces brand records in catalog order.
type Source interface {
	Load(ctx context.Context) ([]BrandRecord, error)
	Describe() string
}

// SourceForPath picks a source implementation from the file extension:
// .yaml/.yml, .db/.sqlite/.sqlite3, anything else is read as JSON.
func SourceForPath(path string) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FileSource{Path: path, Format: FormatYAML}
	case ".db", ".sqlite", ".sqlite3":
		return SQLSource{Path: path}
	default:
		return FileSource{Path: path, Format: FormatJSON}
	}
}

// Format selects the document syntax of a FileSource.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FileSource reads a catalog document mapping brand key to record.
type FileSource struct {
	Path   string
	Format Format
}

func (s FileSource) Describe() string {
	return filepath.Clean(s.Path)
}

func (s FileSource) Load(ctx context.Context) ([]BrandRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Clean(s.Path))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	switch s.Format {
	case FormatYAML:
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes a JSON object of brand key to record, keeping document order.
func ParseJSON(data []byte) ([]BrandRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("catalog: document is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("catalog: decode json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("catalog: expected a JSON object of brand kits")
	}

	var records []BrandRecord
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("catalog: decode json: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("catalog: unexpected token %v", tok)
		}
		var record BrandRecord
		if err := dec.Decode(&record); err != nil {
			return nil, fmt.Errorf("catalog: decode brand %q: %w", key, err)
		}
		record.Key = key
		records = append(records, record)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("catalog: decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("catalog: trailing data after brand kits object")
	}
	return records, nil
}

// ParseYAML decodes a YAML mapping of brand key to record, keeping document order.
func ParseYAML(data []byte) ([]BrandRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("catalog: document is empty")
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("catalog: expected a YAML document")
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, errors.New("catalog: expected a YAML mapping of brand kits")
	}

	records := make([]BrandRecord, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode, valueNode := mapping.Content[i], mapping.Content[i+1]
		var record BrandRecord
		if err := valueNode.Decode(&record); err != nil {
			return nil, fmt.Errorf("catalog: decode brand %q: %w", keyNode.Value, err)
		}
		record.Key = keyNode.Value
		records = append(records, record)
	}
	return records, nil
}
