package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-pim"
	"github.com/goliatone/go-pim/internal/di"
	"github.com/goliatone/go-pim/internal/security"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configPath  string
	catalogPath string
	verbose     bool
	timeout     time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pim",
	Short: "Catalog completeness and quick export jobs",
	Long: `pim runs the catalog batch jobs.

Available commands:
  catalog       - Import catalog documents and create the schema
  completeness  - Recompute product completeness
  export        - Run quick exports of products and product models`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "YAML catalog document imported before the command runs")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Minute, "Operation timeout")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(completenessCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig overlays the YAML file at path on the default configuration.
func loadConfig(path string) (pim.Config, error) {
	cfg := pim.DefaultConfig()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if verbose {
		cfg.Features.Logger = true
		cfg.Logging.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// buildModule loads the configuration, wires the module and imports the
// --catalog document when set. Users are the accounts quick exports may
// authenticate as.
func buildModule(ctx context.Context, users ...string) (*pim.Module, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	provider := security.NewMemoryUserProvider()
	for _, username := range users {
		if username = strings.TrimSpace(username); username != "" {
			provider.Add(&pim.User{Username: username})
		}
	}
	module, err := pim.New(cfg, di.WithUserProvider(provider))
	if err != nil {
		return nil, err
	}
	if catalogPath == "" {
		return module, nil
	}
	if _, err := importCatalog(ctx, module, catalogPath); err != nil {
		_ = module.Close()
		return nil, err
	}
	return module, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
