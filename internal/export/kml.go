package export

import (
	"archive/zip"
	"fmt"
	"image/color"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	kml "github.com/twpayne/go-kml/v3"

	"github.com/cityzones/safezones-cli/internal/model"
)

// Fill colors per size class, semi-transparent so the basemap stays visible.
var sizeClassColors = map[string]color.RGBA{
	"small":      {R: 0xa8, G: 0xe6, B: 0xa3, A: 0x99},
	"medium":     {R: 0x6c, G: 0xc6, B: 0x44, A: 0x99},
	"large":      {R: 0x2e, G: 0x8b, B: 0x2e, A: 0x99},
	"very_large": {R: 0x00, G: 0x64, B: 0x00, A: 0x99},
}

var outlineColor = color.RGBA{R: 0x1a, G: 0x47, B: 0x1a, A: 0xff}

// Fallback fill for labels from custom breakpoint configs.
var defaultFillColor = color.RGBA{R: 0x7f, G: 0xb2, B: 0x7f, A: 0x99}

// KML writes the zones as a KML document with one shared style per size
// class present in the result, so every placemark's style reference resolves
// even under custom tier labels.
func KML(w io.Writer, run *Run) error {
	doc := kml.Document(kml.Name(documentName(run)))
	for _, class := range sizeClasses(run.Zones) {
		fill, ok := sizeClassColors[class]
		if !ok {
			fill = defaultFillColor
		}
		doc.Append(kml.SharedStyle(
			"zone-"+class,
			kml.PolyStyle(kml.Color(fill)),
			kml.LineStyle(kml.Color(outlineColor), kml.Width(1.5)),
		))
	}
	for _, z := range run.Zones {
		doc.Append(placemark(z))
	}
	if err := kml.KML(doc).WriteIndent(w, "", "  "); err != nil {
		return eris.Wrap(err, "export: write kml")
	}
	return nil
}

// KMZ writes the zones as a zip archive holding a single doc.kml, the layout
// Google Earth expects.
func KMZ(w io.Writer, run *Run) error {
	zw := zip.NewWriter(w)
	entry, err := zw.Create("doc.kml")
	if err != nil {
		return eris.Wrap(err, "export: create kmz entry")
	}
	if err := KML(entry, run); err != nil {
		return err
	}
	return eris.Wrap(zw.Close(), "export: close kmz")
}

// sizeClasses returns the distinct size-class labels in first-use order.
func sizeClasses(zones []model.SafeZone) []string {
	seen := make(map[string]bool, len(zones))
	var classes []string
	for _, z := range zones {
		if !seen[z.SizeClass] {
			seen[z.SizeClass] = true
			classes = append(classes, z.SizeClass)
		}
	}
	return classes
}

func documentName(run *Run) string {
	if run.DisplayName != "" {
		return "Safe zones: " + run.DisplayName
	}
	return "Safe zones: " + run.Place
}

func placemark(z model.SafeZone) kml.Element {
	poly := kml.Polygon(kml.OuterBoundaryIs(linearRing(z.Polygon.LinearRing(0))))
	for i := 1; i < z.Polygon.NumLinearRings(); i++ {
		poly.Append(kml.InnerBoundaryIs(linearRing(z.Polygon.LinearRing(i))))
	}
	return kml.Placemark(
		kml.Name(fmt.Sprintf("Zone %d", z.ID)),
		kml.Description(fmt.Sprintf("%.0f m2, %s", z.AreaM2, z.SizeClass)),
		kml.StyleURL("#zone-"+z.SizeClass),
		poly,
	)
}

func linearRing(ring *geom.LinearRing) kml.Element {
	flat := ring.FlatCoords()
	stride := ring.Stride()
	coords := make([]kml.Coordinate, 0, len(flat)/stride)
	for i := 0; i+1 < len(flat); i += stride {
		coords = append(coords, kml.Coordinate{Lon: flat[i], Lat: flat[i+1]})
	}
	return kml.LinearRing(kml.Coordinates(coords...))
}
