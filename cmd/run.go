package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cityzones/safezones-cli/internal/export"
	"github.com/cityzones/safezones-cli/internal/pipeline"
	"github.com/cityzones/safezones-cli/pkg/overpass"
)

var (
	runOut     string
	runFormats []string
	runMinArea float64
)

var runCmd = &cobra.Command{
	Use:   "run <place>",
	Short: "Compute safe zones for a place",
	Long:  "Resolves the place boundary via Nominatim, downloads hazard features via Overpass, computes the safe zones, and writes the requested export formats.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		place := args[0]

		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		var cache *overpass.Cache
		if cfg.Overpass.CachePath != "" {
			if err := os.MkdirAll(filepath.Dir(cfg.Overpass.CachePath), 0o755); err != nil {
				return err
			}
			cache, err = overpass.OpenCache(cfg.Overpass.CachePath,
				time.Duration(cfg.Overpass.CacheTTLHours)*time.Hour)
			if err != nil {
				return err
			}
			defer func() { _ = cache.Close() }()
		}

		client := overpass.New(overpass.Options{
			BaseURL:        cfg.Overpass.BaseURL,
			NominatimURL:   cfg.Overpass.NominatimURL,
			UserAgent:      cfg.Overpass.UserAgent,
			Timeout:        time.Duration(cfg.Overpass.TimeoutSecs) * time.Second,
			MaxRetries:     cfg.Overpass.Retries,
			RequestsPerSec: cfg.Overpass.RequestsPerSec,
			Cache:          cache,
		})

		boundary, err := client.FetchBoundary(ctx, place)
		if err != nil {
			return err
		}
		features, err := client.FetchFeatures(ctx, boundary.Geometry.Bounds(), reg.Selectors())
		if err != nil {
			return err
		}

		minArea := cfg.Zones.MinAreaM2
		if cmd.Flags().Changed("min-area") {
			minArea = runMinArea
		}
		res, err := pipeline.Run(ctx, pipeline.Input{
			Boundary:    boundary.Geometry,
			CentroidLon: boundary.CentroidLon,
			CentroidLat: boundary.CentroidLat,
			Features:    features,
		}, pipeline.Options{
			Registry:    reg,
			Workers:     cfg.Engine.Workers,
			MinAreaM2:   minArea,
			Breakpoints: cfg.Zones.SizeBreakpoints,
		})
		if err != nil {
			return err
		}

		outDir := cfg.Export.Dir
		if runOut != "" {
			outDir = runOut
		}
		formats := cfg.Export.Formats
		if len(runFormats) > 0 {
			formats = runFormats
		}
		paths, err := export.WriteAll(outDir, formats, &export.Run{
			Place:       boundary.Name,
			DisplayName: boundary.DisplayName,
			EPSG:        res.EPSG,
			GeneratedAt: time.Now(),
			Zones:       res.Zones,
			Diagnostics: res.Diagnostics,
		})
		if err != nil {
			return err
		}

		zap.L().Info("run complete",
			zap.String("place", place),
			zap.Int("zones", len(res.Zones)),
			zap.Duration("elapsed", res.Elapsed),
		)
		fmt.Printf("%d safe zones for %q (%s)\n", len(res.Zones), boundary.DisplayName, res.EPSG)
		for _, p := range paths {
			fmt.Println("  " + p)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "output directory (default from config)")
	runCmd.Flags().StringSliceVarP(&runFormats, "format", "f", nil, "export formats: geojson, csv, kml, kmz, shapefile")
	runCmd.Flags().Float64Var(&runMinArea, "min-area", 2000, "minimum zone area in square meters")
	rootCmd.AddCommand(runCmd)
}
