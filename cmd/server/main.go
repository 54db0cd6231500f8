/*
Package main is the entry point of the brandai backend.

Usage:

	brandai [command]

Available Commands:

	serve     Run the ad critique HTTP service (default)
	brands    List the brands in the catalog
	resolve   Match a logo description to a catalog brand
	catalog   Manage brand catalog sources
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"brandai/backend/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "brandai",
		Short: "Brand compliance critique for advertisement images",
		Long: `brandai scores an advertisement against its brand kit using Cloud Vision,
Gemini and Imagen on Vertex AI, and renders an improved version on request.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cli.NewServeCmd())
	rootCmd.AddCommand(cli.NewBrandsCmd())
	rootCmd.AddCommand(cli.NewResolveCmd())
	rootCmd.AddCommand(cli.NewCatalogCmd())

	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"serve"})
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
