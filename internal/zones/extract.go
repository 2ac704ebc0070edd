// Package zones carves the free space out of a city boundary and turns its
// connected components into ranked, annotated safe zones.
package zones

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geos"
	"go.uber.org/zap"
)

// Extraction is the ordered set of candidate zone polygons in the metric
// frame, largest first. Polygons are owned by the context passed to Extract.
type Extraction struct {
	Polygons  []*geos.Geom
	Discarded int
}

// Destroy releases the extracted polygons.
func (e *Extraction) Destroy() {
	for _, p := range e.Polygons {
		p.Destroy()
	}
	e.Polygons = nil
}

type candidate struct {
	geom   *geos.Geom
	area   float64
	cx, cy float64
}

// Extract subtracts the forbidden region from the boundary and explodes the
// remainder into its connected polygonal components. Components smaller than
// minAreaM2 are discarded as slivers. The survivors are ordered by
// descending area, with centroid coordinates breaking exact-area ties, so
// zone ranks are stable across reruns. A nil forbidden region means the
// whole boundary is free. An empty result is a valid outcome, not an error.
func Extract(gctx *geos.Context, boundary, forbidden *geos.Geom, minAreaM2 float64) (ext *Extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("zones: free-space subtraction failed: %v", r)
		}
	}()

	var free *geos.Geom
	if forbidden == nil {
		free = boundary.Clone()
	} else {
		free = boundary.Difference(forbidden)
	}
	defer free.Destroy()

	ext = &Extraction{}
	if free.IsEmpty() {
		zap.L().Warn("forbidden region covers the entire boundary")
		return ext, nil
	}

	var cands []candidate
	for _, poly := range explode(free) {
		area := poly.Area()
		if area < minAreaM2 {
			ext.Discarded++
			continue
		}
		c := poly.Centroid()
		clone := poly.Clone()
		cands = append(cands, candidate{geom: clone, area: area, cx: c.X(), cy: c.Y()})
		c.Destroy()
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.area != b.area {
			return a.area > b.area
		}
		if a.cx != b.cx {
			return a.cx < b.cx
		}
		return a.cy < b.cy
	})

	ext.Polygons = make([]*geos.Geom, len(cands))
	for i, c := range cands {
		ext.Polygons[i] = c.geom
	}
	zap.L().Info("free space extracted",
		zap.Int("zones", len(ext.Polygons)),
		zap.Int("discarded", ext.Discarded),
		zap.Float64("min_area_m2", minAreaM2),
	)
	return ext, nil
}

// explode flattens a geometry into its polygonal components. Non-areal parts
// of a mixed collection, such as boundary-contact lines left by the
// subtraction, are ignored. Returned geometries are owned by g.
func explode(g *geos.Geom) []*geos.Geom {
	switch g.TypeID() {
	case geos.TypeIDPolygon:
		return []*geos.Geom{g}
	case geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		var polys []*geos.Geom
		for i := range g.NumGeometries() {
			polys = append(polys, explode(g.Geometry(i))...)
		}
		return polys
	default:
		return nil
	}
}
