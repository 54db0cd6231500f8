package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes brand kit helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path required")
	}
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&BrandKit{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	return &Database{gorm: db}, nil
}

// OpenReadOnly opens an existing database without migrating it. The schema
// must already be in place.
func OpenReadOnly(path string) (*Database, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path required")
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	db, err := gorm.Open(sqlite.Open("file:"+path+"?mode=ro"), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Database{gorm: db}, nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListBrandKits returns every brand kit in catalog order.
func (d *Database) ListBrandKits() ([]BrandKit, error) {
	var rows []BrandKit
	if err := d.gorm.Order("position ASC").Order("brand_key ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list brand kits: %w", err)
	}
	return rows, nil
}

// CountBrandKits returns the number of stored brand kits.
func (d *Database) CountBrandKits() (int64, error) {
	var count int64
	if err := d.gorm.Model(&BrandKit{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ReplaceBrandKits swaps the stored catalog for kits inside one transaction.
// Positions are assigned from slice order.
func (d *Database) ReplaceBrandKits(kits []BrandKit) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&BrandKit{}).Error; err != nil {
			return fmt.Errorf("clear brand kits: %w", err)
		}
		if len(kits) == 0 {
			return nil
		}
		rows := make([]BrandKit, len(kits))
		copy(rows, kits)
		for i := range rows {
			rows[i].Key = strings.TrimSpace(rows[i].Key)
			if rows[i].Key == "" {
				return fmt.Errorf("brand kit at position %d has empty key", i)
			}
			rows[i].Position = i
		}
		if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
			return fmt.Errorf("insert brand kits: %w", err)
		}
		return nil
	})
}
