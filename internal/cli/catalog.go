package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"brandai/backend/internal/catalog"
	"brandai/backend/internal/store"
)

// NewCatalogCmd creates the 'catalog' command group.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage brand catalog sources",
	}
	cmd.AddCommand(NewCatalogImportCmd())
	return cmd
}

// NewCatalogImportCmd creates 'catalog import', which writes a JSON or YAML
// catalog into a SQLite database usable as BRAND_CATALOG_PATH.
func NewCatalogImportCmd() *cobra.Command {
	var from, dbPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON or YAML catalog into SQLite",
		Example: `  brandai catalog import --from brand_kits/database.json --db data/brands.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := runImport(cmd, from, dbPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d brand kits into %s\n", count, dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source catalog (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Target SQLite database")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func runImport(cmd *cobra.Command, from, dbPath string) (int, error) {
	switch strings.ToLower(filepath.Ext(from)) {
	case ".db", ".sqlite", ".sqlite3":
		return 0, fmt.Errorf("import source %s must be a JSON or YAML document", from)
	}

	records, err := catalog.SourceForPath(from).Load(cmd.Context())
	if err != nil {
		return 0, err
	}
	// Reject anything the service would refuse to load.
	if _, err := catalog.FromRecords(records); err != nil {
		return 0, fmt.Errorf("validate %s: %w", from, err)
	}

	db, err := store.Open(dbPath, true)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("close database")
		}
	}()

	if err := db.ReplaceBrandKits(catalog.ToBrandKits(records)); err != nil {
		return 0, err
	}
	return len(records), nil
}
