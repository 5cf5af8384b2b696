package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-pim"
	"github.com/goliatone/go-pim/internal/catalog"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the catalog store",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a YAML catalog document",
	Long: `Import locales, channels, attributes, families, media files, product
models and products from a YAML document. Existing entities are updated.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

var catalogMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the catalog tables",
	RunE:  runCatalogMigrate,
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogMigrateCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	module, err := buildModule(ctx)
	if err != nil {
		return err
	}
	defer module.Close()

	summary, err := importCatalog(ctx, module, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"imported %d locales, %d channels, %d attributes, %d families, %d files, %d product models, %d products\n",
		summary.Locales, summary.Channels, summary.Attributes, summary.Families,
		summary.FileInfos, summary.ProductModels, summary.Products)
	return nil
}

func runCatalogMigrate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	module, err := buildModule(ctx)
	if err != nil {
		return err
	}
	defer module.Close()

	db := module.Container().BunDB()
	if db == nil {
		return fmt.Errorf("catalog migrate: storage driver %q has no database", module.Container().Config.Storage.Driver)
	}
	if err := catalog.CreateSchema(ctx, db); err != nil {
		return fmt.Errorf("catalog migrate: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "catalog schema is up to date")
	return nil
}

func importCatalog(ctx context.Context, module *pim.Module, path string) (pim.ImportSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return pim.ImportSummary{}, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()
	summary, err := module.Import(ctx, file)
	if err != nil {
		return summary, fmt.Errorf("import catalog %s: %w", path, err)
	}
	return summary, nil
}
