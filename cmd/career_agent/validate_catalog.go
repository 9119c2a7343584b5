package main

import (
	"fmt"
	"os"

	"github.com/jonathan/career-recommender/internal/catalog"
	"github.com/spf13/cobra"
)

var validateCatalogCmd = &cobra.Command{
	Use:   "validate-catalog [path]",
	Short: "Validate a role catalog",
	Long:  "Checks a catalog file against the catalog JSON schema and its cross references (unknown skills, weights, prerequisites, ambiguous aliases).",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidateCatalog,
}

func init() {
	rootCmd.AddCommand(validateCatalogCmd)
}

func runValidateCatalog(cmd *cobra.Command, args []string) error {
	path := catalogPath
	if len(args) == 1 {
		path = args[0]
	}
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

	resources := 0
	for _, id := range c.SkillIDs() {
		resources += len(c.Resources(id))
	}
	version := c.Version()
	if version == "" {
		version = "unversioned"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%s): %d skills, %d roles, %d resources\n",
		path, version, len(c.SkillIDs()), len(c.Roles()), resources)
	return err
}
