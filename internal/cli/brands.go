package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"brandai/backend/internal/api"
	"brandai/backend/internal/catalog"
	"brandai/backend/internal/config"
	"brandai/backend/internal/failure"
)

// NewBrandsCmd creates the 'brands' command listing the configured catalog.
func NewBrandsCmd() *cobra.Command {
	var path string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "brands",
		Aliases: []string{"ls"},
		Short:   "List the brands in the catalog",
		Example: `  brandai brands
  brandai brands --catalog brand_kits/database.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			brands, err := loadCatalog(cmd, path)
			if err != nil {
				return err
			}
			return printBrands(cmd.OutOrStdout(), brands, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&path, "catalog", "c", "", "Catalog path (defaults to BRAND_CATALOG_PATH)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

// NewResolveCmd creates the 'resolve' command that runs the brand matcher
// against the catalog for a logo description.
func NewResolveCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "resolve <logo description>",
		Short: "Match a logo description to a catalog brand",
		Example: `  brandai resolve "The Coca-Cola Company"
  brandai resolve "Nike Air" --catalog brands.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brands, err := loadCatalog(cmd, path)
			if err != nil {
				return err
			}
			description := strings.Join(args, " ")
			record, supported, ok := brands.Resolve(description)
			if !ok {
				return &failure.BrandUnsupportedError{Description: description, Supported: supported}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", record.Key, record.BrandName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "catalog", "c", "", "Catalog path (defaults to BRAND_CATALOG_PATH)")
	return cmd
}

// loadCatalog loads the catalog strictly: unlike the service, the CLI
// reports a broken catalog as an error.
func loadCatalog(cmd *cobra.Command, path string) (*catalog.Catalog, error) {
	if path == "" {
		path = config.Load().CatalogPath
	}
	brands := catalog.New(catalog.SourceForPath(path))
	if err := brands.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return brands, nil
}

func printBrands(out io.Writer, brands *catalog.Catalog, jsonOutput bool) error {
	records := brands.Records()
	if jsonOutput {
		items := make([]api.BrandDTO, 0, len(records))
		for _, record := range records {
			items = append(items, api.BrandFromRecord(record))
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(api.BrandsResponse{Source: brands.Source(), Count: len(items), Items: items})
	}

	fmt.Fprintf(out, "Brands (%d) from %s:\n\n", len(records), brands.Source())
	for _, record := range records {
		fmt.Fprintf(out, "  %s\n", record.Key)
		fmt.Fprintf(out, "    Name:    %s\n", record.BrandName)
		if len(record.ColorPaletteHex) > 0 {
			fmt.Fprintf(out, "    Palette: %s\n", strings.Join(record.ColorPaletteHex, ", "))
		}
		if len(record.Taglines) > 0 {
			fmt.Fprintf(out, "    Tagline: %s\n", record.Taglines[0])
		}
	}
	return nil
}
