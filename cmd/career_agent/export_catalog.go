package main

import (
	"fmt"
	"os"

	"github.com/jonathan/career-recommender/internal/catalog"
	"github.com/spf13/cobra"
)

var exportCatalogCmd = &cobra.Command{
	Use:   "export-catalog",
	Short: "Convert a catalog between JSON and YAML",
	Long:  "Loads and validates a catalog, then writes it back in the requested format with a stable field order.",
	RunE:  runExportCatalog,
}

var (
	exportFormat string
	exportOutput string
)

func init() {
	exportCatalogCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json or yaml")
	exportCatalogCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Output file (default stdout)")

	rootCmd.AddCommand(exportCatalogCmd)
}

func runExportCatalog(cmd *cobra.Command, _ []string) error {
	format := catalog.Format(exportFormat)
	if format != catalog.FormatJSON && format != catalog.FormatYAML {
		return fmt.Errorf("unsupported format %q: use json or yaml", exportFormat)
	}

	path := catalogPath
	if path == "" {
		cfg, err := loadConfig(os.Getenv)
		if err != nil {
			return err
		}
		path = cfg.Catalog
	}

	c, err := catalog.Load(path)
	if err != nil {
		return err
	}
	data, err := catalog.Encode(c, format)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), exportOutput, data)
}
