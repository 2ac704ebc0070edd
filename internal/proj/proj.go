// Package proj selects a locally accurate metric frame for a region and
// transforms geometries between the geographic frame (WGS84 lon/lat) and
// that frame (UTM easting/northing in meters). Buffer radii are only true
// distances in the metric frame; buffering in raw degrees is not valid
// because degree width varies with latitude.
package proj

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-proj/v10"
)

// UTM is undefined at the polar caps.
const (
	minLat = -80.0
	maxLat = 84.0
)

// Projector holds a fixed UTM zone selected once from a region centroid.
// The zone never changes for the lifetime of the projector, so one run never
// mixes two metric frames. Methods are safe for concurrent use; hot loops
// should Clone per worker to avoid serializing on the shared transform.
type Projector struct {
	mu    sync.Mutex
	zone  int
	north bool
	pj    *proj.PJ
}

// Zone returns the UTM zone index and hemisphere derived from a centroid.
// The selection is a pure function of longitude (zone) and latitude sign
// (hemisphere).
func Zone(lon, lat float64) (zone int, north bool) {
	zone = int((lon+180)/6) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return zone, lat >= 0
}

// NewForCentroid builds a projector for the UTM zone containing the given
// geographic centroid. Centroids at the polar caps are outside the valid
// projection domain and report a configuration error.
func NewForCentroid(lon, lat float64) (*Projector, error) {
	if lat < minLat || lat > maxLat {
		return nil, eris.Errorf("proj: centroid latitude %.4f outside UTM domain [%g, %g]", lat, minLat, maxLat)
	}
	if lon < -180 || lon > 180 {
		return nil, eris.Errorf("proj: centroid longitude %.4f outside [-180, 180]", lon)
	}
	zone, north := Zone(lon, lat)
	return newForZone(zone, north)
}

func newForZone(zone int, north bool) (*Projector, error) {
	epsg := 32600 + zone
	if !north {
		epsg = 32700 + zone
	}
	pj, err := proj.NewCRSToCRS("EPSG:4326", fmt.Sprintf("EPSG:%d", epsg), nil)
	if err != nil {
		return nil, eris.Wrapf(err, "proj: create transform to EPSG:%d", epsg)
	}
	return &Projector{zone: zone, north: north, pj: pj}, nil
}

// Clone returns an independent projector for the same zone, for use by a
// concurrent worker.
func (p *Projector) Clone() (*Projector, error) {
	return newForZone(p.zone, p.north)
}

// EPSG returns the EPSG code string of the metric frame, e.g. "EPSG:32638".
func (p *Projector) EPSG() string {
	epsg := 32600 + p.zone
	if !p.north {
		epsg = 32700 + p.zone
	}
	return fmt.Sprintf("EPSG:%d", epsg)
}

// ZoneNumber returns the UTM zone index (1-60).
func (p *Projector) ZoneNumber() int { return p.zone }

// ForwardXY transforms one geographic coordinate to easting/northing meters.
func (p *Projector) ForwardXY(lon, lat float64) (x, y float64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// EPSG:4326 axis order is latitude first.
	c, err := p.pj.Forward(proj.NewCoord(lat, lon, 0, 0))
	if err != nil {
		return 0, 0, eris.Wrapf(err, "proj: forward (%.6f, %.6f)", lon, lat)
	}
	return c.X(), c.Y(), nil
}

// InverseXY transforms one metric coordinate back to lon/lat degrees.
func (p *Projector) InverseXY(x, y float64) (lon, lat float64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, err := p.pj.Inverse(proj.NewCoord(x, y, 0, 0))
	if err != nil {
		return 0, 0, eris.Wrapf(err, "proj: inverse (%.2f, %.2f)", x, y)
	}
	return c.Y(), c.X(), nil
}

// Forward transforms a geometry from the geographic to the metric frame.
func (p *Projector) Forward(g geom.T) (geom.T, error) {
	return p.transform(g, p.ForwardXY)
}

// Inverse transforms a geometry from the metric back to the geographic frame.
func (p *Projector) Inverse(g geom.T) (geom.T, error) {
	return p.transform(g, p.InverseXY)
}

// ForwardPolygon is Forward specialized to polygons.
func (p *Projector) ForwardPolygon(poly *geom.Polygon) (*geom.Polygon, error) {
	g, err := p.Forward(poly)
	if err != nil {
		return nil, err
	}
	return g.(*geom.Polygon), nil
}

// InversePolygon is Inverse specialized to polygons.
func (p *Projector) InversePolygon(poly *geom.Polygon) (*geom.Polygon, error) {
	g, err := p.Inverse(poly)
	if err != nil {
		return nil, err
	}
	return g.(*geom.Polygon), nil
}

type xyFunc func(a, b float64) (float64, float64, error)

// transform rebuilds the geometry with every coordinate pair mapped through
// fn. The input is never mutated.
func (p *Projector) transform(g geom.T, fn xyFunc) (geom.T, error) {
	flat, err := transformFlat(g.FlatCoords(), g.Stride(), fn)
	if err != nil {
		return nil, err
	}
	layout := g.Layout()
	switch g := g.(type) {
	case *geom.Point:
		return geom.NewPointFlat(layout, flat), nil
	case *geom.LineString:
		return geom.NewLineStringFlat(layout, flat), nil
	case *geom.MultiLineString:
		return geom.NewMultiLineStringFlat(layout, flat, slices.Clone(g.Ends())), nil
	case *geom.Polygon:
		return geom.NewPolygonFlat(layout, flat, slices.Clone(g.Ends())), nil
	case *geom.MultiPolygon:
		endss := make([][]int, len(g.Endss()))
		for i, ends := range g.Endss() {
			endss[i] = slices.Clone(ends)
		}
		return geom.NewMultiPolygonFlat(layout, flat, endss), nil
	default:
		return nil, eris.Errorf("proj: unsupported geometry type %T", g)
	}
}

func transformFlat(flat []float64, stride int, fn xyFunc) ([]float64, error) {
	out := slices.Clone(flat)
	for i := 0; i+1 < len(out); i += stride {
		x, y, err := fn(out[i], out[i+1])
		if err != nil {
			return nil, err
		}
		out[i], out[i+1] = x, y
	}
	return out, nil
}
