// Package export serializes safe-zone results to the interchange formats
// downstream tools expect: GeoJSON for web maps, CSV for spreadsheets, KML
// and KMZ for Google Earth, and shapefiles for desktop GIS.
package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/cityzones/safezones-cli/internal/model"
)

// Run bundles everything the exporters need about one pipeline run.
type Run struct {
	Place       string
	DisplayName string
	EPSG        string
	GeneratedAt time.Time
	Zones       []model.SafeZone
	Diagnostics model.Diagnostics
}

// GeoJSON writes the zones as a FeatureCollection in WGS84 lon/lat.
func GeoJSON(w io.Writer, run *Run) error {
	fc := geojson.FeatureCollection{
		Features: make([]*geojson.Feature, len(run.Zones)),
	}
	for i, z := range run.Zones {
		fc.Features[i] = &geojson.Feature{
			Geometry: z.Polygon,
			Properties: map[string]any{
				"zone_id":      z.ID,
				"area_m2":      z.AreaM2,
				"perimeter_m":  z.PerimeterM,
				"compactness":  z.Compactness,
				"centroid_lon": z.CentroidLon,
				"centroid_lat": z.CentroidLat,
				"size_class":   z.SizeClass,
			},
		}
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(&fc); err != nil {
		return eris.Wrap(err, "export: encode geojson")
	}
	return nil
}

// runMetadata is the sidecar document describing how the zones were made.
type runMetadata struct {
	Place       string            `json:"place"`
	DisplayName string            `json:"display_name,omitempty"`
	EPSG        string            `json:"metric_crs"`
	GeneratedAt time.Time         `json:"generated_at"`
	ZoneCount   int               `json:"zone_count"`
	Diagnostics model.Diagnostics `json:"diagnostics"`
}

// Metadata writes the run metadata sidecar as JSON.
func Metadata(w io.Writer, run *Run) error {
	meta := runMetadata{
		Place:       run.Place,
		DisplayName: run.DisplayName,
		EPSG:        run.EPSG,
		GeneratedAt: run.GeneratedAt.UTC(),
		ZoneCount:   len(run.Zones),
		Diagnostics: run.Diagnostics,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return eris.Wrap(err, "export: encode metadata")
	}
	return nil
}
