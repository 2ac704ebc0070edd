package export

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Shapefile writes the zones as a polygon shapefile at the given path
// (".shp" suffix; the companion .shx and .dbf files are created alongside).
// Attribute names are capped at ten characters by the dBASE format.
func Shapefile(path string, run *Run) error {
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}
	defer w.Close()

	fields := []shp.Field{
		shp.NumberField("ZONE_ID", 10),
		shp.FloatField("AREA_M2", 16, 1),
		shp.FloatField("PERIM_M", 16, 1),
		shp.FloatField("COMPACT", 8, 4),
		shp.FloatField("CENT_LON", 12, 7),
		shp.FloatField("CENT_LAT", 12, 7),
		shp.StringField("SIZE_CLASS", 16),
	}
	w.SetFields(fields)

	for _, z := range run.Zones {
		poly := shpPolygon(z.Polygon)
		row := int(w.Write(poly))
		attrs := []any{
			z.ID, z.AreaM2, z.PerimeterM, z.Compactness,
			z.CentroidLon, z.CentroidLat, z.SizeClass,
		}
		for col, val := range attrs {
			if err := w.WriteAttribute(row, col, val); err != nil {
				return eris.Wrapf(err, "export: write attribute %d for zone %d", col, z.ID)
			}
		}
	}
	return nil
}

func shpPolygon(p *geom.Polygon) *shp.Polygon {
	parts := make([][]shp.Point, p.NumLinearRings())
	for i := range parts {
		ring := p.LinearRing(i)
		flat := ring.FlatCoords()
		stride := ring.Stride()
		pts := make([]shp.Point, 0, len(flat)/stride)
		for j := 0; j+1 < len(flat); j += stride {
			pts = append(pts, shp.Point{X: flat[j], Y: flat[j+1]})
		}
		parts[i] = pts
	}
	poly := shp.Polygon(*shp.NewPolyLine(parts))
	return &poly
}
