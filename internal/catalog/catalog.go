// Package catalog holds the in-memory brand kit registry. A catalog is loaded
// from a static source and replaced wholesale on reload; readers always see a
// complete snapshot.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/sirupsen/logrus"

	"brandai/backend/internal/failure"
	"brandai/backend/internal/match"
)

type snapshot struct {
	order   []string
	records map[string]BrandRecord
}

var emptySnapshot = &snapshot{records: map[string]BrandRecord{}}

// Catalog is a read-mostly registry of brand records. The zero value is an
// empty catalog with no source.
type Catalog struct {
	source Source
	snap   atomic.Pointer[snapshot]
}

// New returns an empty catalog bound to source. Call Load to populate it.
func New(source Source) *Catalog {
	return &Catalog{source: source}
}

// FromRecords builds a catalog from records in the given order.
func FromRecords(records []BrandRecord) (*Catalog, error) {
	snap, err := buildSnapshot(records)
	if err != nil {
		return nil, err
	}
	c := &Catalog{}
	c.snap.Store(snap)
	return c, nil
}

// Load reads the configured source and atomically replaces the current set.
// On failure the catalog becomes empty and a *failure.CatalogLoadError is
// returned so callers can surface a warning; it is never fatal.
func (c *Catalog) Load(ctx context.Context) error {
	if c.source == nil {
		c.snap.Store(emptySnapshot)
		return &failure.CatalogLoadError{Path: "<none>", Err: errors.New("no catalog source configured")}
	}

	records, err := c.source.Load(ctx)
	if err == nil {
		var snap *snapshot
		if snap, err = buildSnapshot(records); err == nil {
			c.snap.Store(snap)
			logrus.WithFields(logrus.Fields{
				"source": c.source.Describe(),
				"brands": snap.order,
			}).Infof("loaded %d brand kits", len(snap.order))
			return nil
		}
	}

	c.snap.Store(emptySnapshot)
	loadErr := &failure.CatalogLoadError{Path: c.source.Describe(), Err: err}
	logrus.WithError(err).WithField("source", c.source.Describe()).Warn("could not load brand kits, continuing with empty catalog")
	return loadErr
}

func (c *Catalog) current() *snapshot {
	if c == nil {
		return emptySnapshot
	}
	if snap := c.snap.Load(); snap != nil {
		return snap
	}
	return emptySnapshot
}

// Get returns the record stored under key.
func (c *Catalog) Get(key string) (BrandRecord, bool) {
	record, ok := c.current().records[key]
	if !ok {
		return BrandRecord{}, false
	}
	return record.clone(), true
}

// Keys returns the brand keys in catalog order.
func (c *Catalog) Keys() []string {
	return cloneStrings(c.current().order)
}

// Resolve maps a logo description to a brand within one snapshot, so the
// record and the supported key list always agree even across a reload.
func (c *Catalog) Resolve(description string) (BrandRecord, []string, bool) {
	snap := c.current()
	key, ok := match.Resolve(description, snap.order)
	if !ok {
		return BrandRecord{}, cloneStrings(snap.order), false
	}
	return snap.records[key].clone(), cloneStrings(snap.order), true
}

// Records returns every record in catalog order.
func (c *Catalog) Records() []BrandRecord {
	snap := c.current()
	out := make([]BrandRecord, 0, len(snap.order))
	for _, key := range snap.order {
		out = append(out, snap.records[key].clone())
	}
	return out
}

// Len reports the number of brands in the current snapshot.
func (c *Catalog) Len() int {
	return len(c.current().order)
}

// Source describes where the catalog loads from.
func (c *Catalog) Source() string {
	if c == nil || c.source == nil {
		return ""
	}
	return c.source.Describe()
}

func buildSnapshot(records []BrandRecord) (*snapshot, error) {
	snap := &snapshot{
		order:   make([]string, 0, len(records)),
		records: make(map[string]BrandRecord, len(records)),
	}
	for i, record := range records {
		if err := ValidateKey(record.Key); err != nil {
			return nil, fmt.Errorf("brand kit %d: %w", i, err)
		}
		if _, dup := snap.records[record.Key]; dup {
			return nil, fmt.Errorf("duplicate brand key %q", record.Key)
		}
		snap.order = append(snap.order, record.Key)
		snap.records[record.Key] = record.clone()
	}
	return snap, nil
}

// ValidateKey enforces the key shape the resolver relies on: non-empty,
// lowercase, with no whitespace or hyphens.
func ValidateKey(key string) error {
	if key == "" {
		return errors.New("brand key is empty")
	}
	if strings.ContainsRune(key, '-') {
		return fmt.Errorf("brand key %q contains a hyphen", key)
	}
	for _, r := range key {
		if unicode.IsSpace(r) {
			return fmt.Errorf("brand key %q contains whitespace", key)
		}
		if unicode.IsUpper(r) {
			return fmt.Errorf("brand key %q is not lowercase", key)
		}
	}
	return nil
}
