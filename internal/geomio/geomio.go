// Package geomio converts between go-geom geometries (the geographic data
// model) and GEOS geometries (the metric-frame set algebra engine). WKB is
// the interchange format, which also makes geometries safe to hand between
// GEOS contexts owned by different goroutines.
package geomio

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geos"
)

// Encode serializes a go-geom geometry to WKB.
func Encode(g geom.T) ([]byte, error) {
	b, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "geomio: marshal wkb")
	}
	return b, nil
}

// ToGeos converts a go-geom geometry into a GEOS geometry owned by the given
// context.
func ToGeos(gctx *geos.Context, g geom.T) (*geos.Geom, error) {
	b, err := Encode(g)
	if err != nil {
		return nil, err
	}
	gg, err := gctx.NewGeomFromWKB(b)
	if err != nil {
		return nil, eris.Wrap(err, "geomio: parse wkb")
	}
	return gg, nil
}

// ToGeom converts a GEOS geometry back into a go-geom geometry.
func ToGeom(g *geos.Geom) (geom.T, error) {
	out, err := wkb.Unmarshal(g.ToWKB())
	if err != nil {
		return nil, eris.Wrap(err, "geomio: unmarshal wkb")
	}
	return out, nil
}
