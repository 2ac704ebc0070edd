package zones

import (
	"context"
	"math"
	"runtime"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"golang.org/x/sync/errgroup"

	"github.com/cityzones/safezones-cli/internal/geomio"
	"github.com/cityzones/safezones-cli/internal/model"
	"github.com/cityzones/safezones-cli/internal/proj"
)

// metric carries the measurements taken while the polygon is still in the
// metric frame. Area, perimeter and compactness are only meaningful there.
type metric struct {
	areaM2     float64
	perimeterM float64
	cx, cy     float64
	poly       geom.T
}

// Annotate measures each extracted polygon, reprojects it to the geographic
// frame, and assigns stable identifiers 1..n in extraction order. The
// geometric reads happen up front on the owning context; only the
// coordinate transforms run on the worker pool.
func Annotate(ctx context.Context, ext *Extraction, projector *proj.Projector, breakpoints []model.SizeBreakpoint, workers int) ([]model.SafeZone, error) {
	if len(ext.Polygons) == 0 {
		return nil, nil
	}

	metrics := make([]metric, len(ext.Polygons))
	for i, p := range ext.Polygons {
		c := p.Centroid()
		m := metric{
			areaM2:     p.Area(),
			perimeterM: p.Length(),
			cx:         c.X(),
			cy:         c.Y(),
		}
		c.Destroy()
		poly, err := geomio.ToGeom(p)
		if err != nil {
			return nil, eris.Wrapf(err, "zones: decode zone %d", i+1)
		}
		m.poly = poly
		metrics[i] = m
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([]model.SafeZone, len(metrics))
	idxCh := make(chan int)

	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			workerProj, err := projector.Clone()
			if err != nil {
				return err
			}
			for i := range idxCh {
				zone, err := annotateOne(workerProj, i+1, metrics[i], breakpoints)
				if err != nil {
					return err
				}
				out[i] = zone
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(idxCh)
		for i := range metrics {
			select {
			case idxCh <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func annotateOne(projector *proj.Projector, id int, m metric, breakpoints []model.SizeBreakpoint) (model.SafeZone, error) {
	lon, lat, err := projector.InverseXY(m.cx, m.cy)
	if err != nil {
		return model.SafeZone{}, eris.Wrapf(err, "zones: reproject centroid of zone %d", id)
	}
	geo, err := projector.Inverse(m.poly)
	if err != nil {
		return model.SafeZone{}, eris.Wrapf(err, "zones: reproject zone %d", id)
	}
	poly, ok := geo.(*geom.Polygon)
	if !ok {
		return model.SafeZone{}, eris.Errorf("zones: zone %d reprojected to %T, want polygon", id, geo)
	}
	return model.SafeZone{
		ID:          id,
		Polygon:     poly,
		AreaM2:      m.areaM2,
		PerimeterM:  m.perimeterM,
		Compactness: compactness(m.areaM2, m.perimeterM),
		CentroidLon: lon,
		CentroidLat: lat,
		SizeClass:   model.ClassifySize(m.areaM2, breakpoints),
	}, nil
}

// compactness is the isoperimetric quotient 4*pi*A/P^2: 1.0 for a disk,
// approaching 0 for elongated slivers.
func compactness(areaM2, perimeterM float64) float64 {
	if perimeterM <= 0 {
		return 0
	}
	return 4 * math.Pi * areaM2 / (perimeterM * perimeterM)
}
