package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cityzones/safezones-cli/internal/config"
	"github.com/cityzones/safezones-cli/internal/registry"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "safezones",
	Short: "Fireworks safe-zone finder for cities",
	Long:  "Downloads OpenStreetMap hazards for a city, buffers them by per-category safety distances, and extracts the remaining free space as ranked safe zones.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// loadRegistry builds the active category registry: the config file replaces
// the built-in set, buffer overrides apply on top of either.
func loadRegistry() (*registry.Registry, error) {
	reg := registry.Builtin()
	if cfg.Registry.File != "" {
		loaded, err := registry.LoadFile(cfg.Registry.File)
		if err != nil {
			return nil, err
		}
		reg = loaded
	}
	if len(cfg.Registry.BufferOverrides) > 0 {
		overridden, err := reg.WithOverrides(cfg.Registry.BufferOverrides)
		if err != nil {
			return nil, err
		}
		reg = overridden
	}
	return reg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
