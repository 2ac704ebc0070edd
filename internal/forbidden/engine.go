// Package forbidden builds the forbidden region: every categorized obstacle
// inflated by its category's safety radius in the metric frame, unioned into
// a single geometry.
package forbidden

import (
	"context"
	"runtime"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geos"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cityzones/safezones-cli/internal/geomio"
	"github.com/cityzones/safezones-cli/internal/model"
	"github.com/cityzones/safezones-cli/internal/proj"
	"github.com/cityzones/safezones-cli/internal/registry"
)

// bufferQuadSegs is the number of segments per quarter circle used when
// inflating obstacles. The GEOS default of 8 keeps the disk-area error of a
// point buffer well under the sliver tolerance.
const bufferQuadSegs = 8

// Stats counts per-obstacle outcomes of the buffering stage.
type Stats struct {
	Buffered int
	Repaired int
	Dropped  int
}

// Region is the forbidden region in the metric frame. Geom is a Polygon or
// MultiPolygon owned by the context passed to Build; it is nil when there
// are no obstacles. Disconnected results are expected and preserved.
type Region struct {
	Geom  *geos.Geom
	Stats Stats
}

// bufferJob is one obstacle to inflate, addressed by its position in the
// flattened collection so results merge in input order regardless of which
// worker finishes first.
type bufferJob struct {
	index    int
	radiusM  float64
	obstacle model.Obstacle
}

type bufferOutcome struct {
	wkb      []byte
	repaired bool
	dropped  bool
}

// Build projects every obstacle into the metric frame, inflates it by its
// category's buffer radius, and unions all buffered obstacles into one
// region. Buffering runs on a worker pool; the final union is a balanced
// pairwise reduction in deterministic input order, so the result does not
// depend on scheduling. The merged geometry is owned by gctx.
func Build(ctx context.Context, gctx *geos.Context, reg *registry.Registry, col *model.Collection, projector *proj.Projector, workers int) (*Region, error) {
	jobs := flatten(reg, col)
	if len(jobs) == 0 {
		return &Region{}, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]bufferOutcome, len(jobs))
	jobCh := make(chan bufferJob)

	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			// Each worker owns a GEOS context and a projector so the
			// pool runs without shared mutable state.
			workerProj, err := projector.Clone()
			if err != nil {
				return err
			}
			workerCtx := geos.NewContext()
			for job := range jobCh {
				outcomes[job.index] = bufferOne(workerCtx, workerProj, job)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case jobCh <- job:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "forbidden: buffer obstacles")
	}

	region := &Region{}
	geoms := make([]*geos.Geom, 0, len(outcomes))
	for _, o := range outcomes {
		if o.repaired {
			region.Stats.Repaired++
		}
		if o.dropped {
			region.Stats.Dropped++
			continue
		}
		if o.wkb == nil {
			continue
		}
		gg, err := gctx.NewGeomFromWKB(o.wkb)
		if err != nil {
			region.Stats.Dropped++
			continue
		}
		region.Stats.Buffered++
		geoms = append(geoms, gg)
	}

	if len(geoms) == 0 {
		zap.L().Warn("no buffered geometries, forbidden region is empty",
			zap.Int("dropped", region.Stats.Dropped),
		)
		return region, nil
	}

	region.Geom = treeUnion(geoms, &region.Stats)
	zap.L().Info("forbidden region built",
		zap.Int("buffered", region.Stats.Buffered),
		zap.Int("repaired", region.Stats.Repaired),
		zap.Int("dropped", region.Stats.Dropped),
		zap.Int("components", region.Geom.NumGeometries()),
	)
	return region, nil
}

// flatten orders the collection into one job list: categories in registry
// order, obstacles in input order within each category.
func flatten(reg *registry.Registry, col *model.Collection) []bufferJob {
	var jobs []bufferJob
	for _, name := range col.Order {
		cat, ok := reg.Lookup(name)
		if !ok {
			continue
		}
		for _, obstacle := range col.ByCategory[name] {
			jobs = append(jobs, bufferJob{
				index:    len(jobs),
				radiusM:  cat.BufferM,
				obstacle: obstacle,
			})
		}
	}
	return jobs
}

// bufferOne projects and inflates a single obstacle. GEOS reports errors by
// panicking, so failures are contained here and become dropped obstacles
// rather than aborting the run.
func bufferOne(gctx *geos.Context, projector *proj.Projector, job bufferJob) (out bufferOutcome) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("buffering obstacle failed",
				zap.Int64("feature_id", job.obstacle.FeatureID),
				zap.String("category", job.obstacle.Category),
				zap.Any("cause", r),
			)
			out = bufferOutcome{dropped: true}
		}
	}()

	projected, err := projector.Forward(job.obstacle.Geometry)
	if err != nil {
		return bufferOutcome{dropped: true}
	}
	gg, err := geomio.ToGeos(gctx, projected)
	if err != nil {
		return bufferOutcome{dropped: true}
	}
	defer gg.Destroy()

	buffered := gg.Buffer(job.radiusM, bufferQuadSegs)
	defer buffered.Destroy()

	repaired := false
	if !buffered.IsValid() {
		fixed := buffered.MakeValid()
		if fixed == nil || !fixed.IsValid() {
			if fixed != nil {
				fixed.Destroy()
			}
			return bufferOutcome{dropped: true}
		}
		buffered.Destroy()
		buffered = fixed
		repaired = true
	}

	// A zero radius on a point or line inflates to nothing; polygons keep
	// their own footprint.
	if buffered.IsEmpty() {
		return bufferOutcome{repaired: repaired}
	}
	return bufferOutcome{wkb: buffered.ToWKB(), repaired: repaired}
}

// treeUnion reduces the geometries by pairwise union in rounds. Union is
// commutative and associative, so the balanced order only changes cost, not
// the result; it keeps each union's operands small compared to a linear
// fold. Input geometries are consumed.
func treeUnion(geoms []*geos.Geom, stats *Stats) *geos.Geom {
	for len(geoms) > 1 {
		next := make([]*geos.Geom, 0, (len(geoms)+1)/2)
		for i := 0; i+1 < len(geoms); i += 2 {
			next = append(next, unionPair(geoms[i], geoms[i+1], stats))
		}
		if len(geoms)%2 == 1 {
			next = append(next, geoms[len(geoms)-1])
		}
		geoms = next
	}
	return geoms[0]
}

// unionPair unions two geometries, repairing the operands once if GEOS
// rejects them. If the repaired union still fails, b is discarded so the
// pipeline can continue with the largest valid subset.
func unionPair(a, b *geos.Geom, stats *Stats) *geos.Geom {
	if u := tryUnion(a, b); u != nil {
		a.Destroy()
		b.Destroy()
		return u
	}
	stats.Repaired++
	fixedA, fixedB := a.MakeValid(), b.MakeValid()
	a.Destroy()
	b.Destroy()
	if u := tryUnion(fixedA, fixedB); u != nil {
		fixedA.Destroy()
		fixedB.Destroy()
		return u
	}
	stats.Dropped++
	fixedB.Destroy()
	return fixedA
}

// tryUnion attempts a union, converting a GEOS panic into a nil result.
func tryUnion(a, b *geos.Geom) (out *geos.Geom) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	return a.Union(b)
}
