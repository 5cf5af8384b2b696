package main

import (
	"fmt"

	"github.com/goliatone/go-pim"
	"github.com/spf13/cobra"
)

var (
	exportUser       string
	exportScope      string
	exportLocales    []string
	exportProperties []string
	exportWithMedia  bool
	exportProducts   []string
	exportModels     []string
	exportFormat     string
	exportWorkdir    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export jobs",
}

var exportQuickCmd = &cobra.Command{
	Use:   "quick",
	Short: "Export products and product models into the working directory",
	Long: `Run a quick export for the selected products and product models, or for
the whole catalog when nothing is selected.

Examples:
  pim export quick --user julia --scope ecommerce --locales en_US
  pim export quick --user julia --scope print --products sandal --format jsonl`,
	RunE: runExportQuick,
}

func init() {
	flags := exportQuickCmd.Flags()
	flags.StringVarP(&exportUser, "user", "u", "", "User running the export")
	flags.StringVarP(&exportScope, "scope", "s", "", "Channel code used to resolve scopable values")
	flags.StringSliceVar(&exportLocales, "locales", nil, "Locales to export")
	flags.StringSliceVar(&exportProperties, "properties", nil, "Properties to export")
	flags.BoolVar(&exportWithMedia, "with-media", false, "Copy media files next to the export")
	flags.StringSliceVar(&exportProducts, "products", nil, "Product identifiers to export")
	flags.StringSliceVar(&exportModels, "models", nil, "Product model codes to export")
	flags.StringVarP(&exportFormat, "format", "f", "", "Output format (csv, jsonl, json)")
	flags.StringVar(&exportWorkdir, "workdir", "", "Working directory for the export file")
	_ = exportQuickCmd.MarkFlagRequired("user")

	exportCmd.AddCommand(exportQuickCmd)
}

func runExportQuick(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	module, err := buildModule(ctx, exportUser)
	if err != nil {
		return err
	}
	defer module.Close()

	cfg := module.Container().Config
	msg := pim.QuickExportCommand{
		Username:           exportUser,
		Parameters:         exportParameters(),
		ProductIdentifiers: exportProducts,
		ProductModelCodes:  exportModels,
		WorkingDirectory:   firstNonEmpty(exportWorkdir, cfg.Export.WorkingDirectory),
		Format:             firstNonEmpty(exportFormat, cfg.Export.Format),
	}
	result, err := module.QuickExport(ctx, msg)
	if result != nil && result.Step != nil {
		out := cmd.OutOrStdout()
		for _, warning := range result.Step.Warnings() {
			fmt.Fprintf(out, "warning: %s: %s\n", warning.Item, warning.Reason)
		}
	}
	if err != nil {
		return err
	}
	read, written, skipped := result.Step.Counts()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: read %d, written %d, skipped %d\n", result.Path, read, written, skipped)
	return nil
}

func exportParameters() map[string]any {
	params := map[string]any{"with_media": exportWithMedia}
	if exportScope != "" {
		params["scope"] = exportScope
	}
	if len(exportLocales) > 0 {
		params["selected_locales"] = toAny(exportLocales)
	}
	if len(exportProperties) > 0 {
		params["selected_properties"] = toAny(exportProperties)
	}
	return params
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
