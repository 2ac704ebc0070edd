// Package pipeline runs the full safe-zone computation: classify raw
// features, buffer and union them into the forbidden region, subtract it
// from the city boundary, and annotate the surviving free-space polygons.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geos"
	"go.uber.org/zap"

	"github.com/cityzones/safezones-cli/internal/classify"
	"github.com/cityzones/safezones-cli/internal/forbidden"
	"github.com/cityzones/safezones-cli/internal/geomio"
	"github.com/cityzones/safezones-cli/internal/model"
	"github.com/cityzones/safezones-cli/internal/proj"
	"github.com/cityzones/safezones-cli/internal/registry"
	"github.com/cityzones/safezones-cli/internal/zones"
)

// Input is everything a run needs: the boundary and features are loaded
// upstream so the computation itself stays network-free and deterministic.
type Input struct {
	Boundary    geom.T
	CentroidLon float64
	CentroidLat float64
	Features    []model.RawFeature
}

// Options tunes a run.
type Options struct {
	Registry    *registry.Registry
	Workers     int
	MinAreaM2   float64
	Breakpoints []model.SizeBreakpoint
}

// Result is the outcome of one run.
type Result struct {
	Zones       []model.SafeZone
	EPSG        string
	Diagnostics model.Diagnostics
	Elapsed     time.Duration
}

// Run executes the pipeline. The same input and options always produce the
// same zones in the same order.
func Run(ctx context.Context, in Input, opts Options) (*Result, error) {
	start := time.Now()
	reg := opts.Registry
	if reg == nil {
		reg = registry.Builtin()
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	breakpoints := opts.Breakpoints
	if len(breakpoints) == 0 {
		breakpoints = model.DefaultSizeBreakpoints()
	} else if err := model.ValidateSizeBreakpoints(breakpoints); err != nil {
		return nil, err
	}

	diag := model.Diagnostics{
		RunID:    uuid.New().String(),
		Features: len(in.Features),
	}
	zap.L().Info("pipeline started",
		zap.String("run_id", diag.RunID),
		zap.Int("features", diag.Features),
		zap.Int("categories", len(reg.Categories)),
	)

	projector, err := proj.NewForCentroid(in.CentroidLon, in.CentroidLat)
	if err != nil {
		return nil, err
	}

	cls := classify.Features(reg, in.Features)
	diag.Obstacles = cls.Collection.Len()
	diag.Unclassified = cls.Unclassified
	diag.UnclassifiedSamples = cls.UnclassifiedSamples

	// One context owns every geometry of the merge and subtraction stages.
	gctx := geos.NewContext()

	boundaryGeos, err := projectBoundary(gctx, projector, in.Boundary, &diag)
	if err != nil {
		return nil, err
	}
	defer boundaryGeos.Destroy()

	region, err := forbidden.Build(ctx, gctx, reg, cls.Collection, projector, opts.Workers)
	if err != nil {
		return nil, err
	}
	if region.Geom != nil {
		defer region.Geom.Destroy()
	}
	diag.RepairedGeometries += region.Stats.Repaired
	diag.DroppedObstacles = region.Stats.Dropped

	ext, err := zones.Extract(gctx, boundaryGeos, region.Geom, opts.MinAreaM2)
	if err != nil {
		return nil, err
	}
	defer ext.Destroy()
	diag.DiscardedCandidates = ext.Discarded

	annotated, err := zones.Annotate(ctx, ext, projector, breakpoints, opts.Workers)
	if err != nil {
		return nil, err
	}
	if len(annotated) == 0 {
		diag.Note("no safe zones: free space is empty or below the area threshold")
	}

	res := &Result{
		Zones:       annotated,
		EPSG:        projector.EPSG(),
		Diagnostics: diag,
		Elapsed:     time.Since(start),
	}
	zap.L().Info("pipeline finished",
		zap.String("run_id", diag.RunID),
		zap.Int("zones", len(annotated)),
		zap.String("epsg", res.EPSG),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

// projectBoundary moves the boundary into the metric frame and repairs it if
// the projection produced an invalid ring.
func projectBoundary(gctx *geos.Context, projector *proj.Projector, boundary geom.T, diag *model.Diagnostics) (*geos.Geom, error) {
	switch boundary.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
	default:
		return nil, eris.Errorf("pipeline: boundary must be areal, got %T", boundary)
	}

	projected, err := projector.Forward(boundary)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: project boundary")
	}
	g, err := geomio.ToGeos(gctx, projected)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: convert boundary")
	}
	if !g.IsValid() {
		fixed := g.MakeValid()
		g.Destroy()
		if fixed == nil || fixed.IsEmpty() {
			if fixed != nil {
				fixed.Destroy()
			}
			return nil, eris.New("pipeline: boundary is unrepairable")
		}
		diag.RepairedGeometries++
		diag.Note("boundary ring repaired before subtraction")
		g = fixed
	}
	return g, nil
}
