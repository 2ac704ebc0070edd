package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/cityzones/safezones-cli/internal/model"
)

func testRun() *Run {
	poly := geom.NewPolygonFlat(geom.XY, []float64{
		14.40, 50.07,
		14.44, 50.07,
		14.44, 50.09,
		14.40, 50.09,
		14.40, 50.07,
	}, []int{10})
	return &Run{
		Place:       "Hradec Králové",
		DisplayName: "Hradec Králové, Czechia",
		EPSG:        "EPSG:32633",
		GeneratedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Zones: []model.SafeZone{
			{
				ID: 1, Polygon: poly,
				AreaM2: 120000, PerimeterM: 1600, Compactness: 0.589,
				CentroidLon: 14.42, CentroidLat: 50.08,
				SizeClass: "very_large",
			},
			{
				ID: 2, Polygon: poly,
				AreaM2: 3000, PerimeterM: 240, Compactness: 0.65,
				CentroidLon: 14.43, CentroidLat: 50.085,
				SizeClass: "small",
			},
		},
		Diagnostics: model.Diagnostics{RunID: "run-1", Features: 10, Obstacles: 8},
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hradec-kralove", Slugify("Hradec Králové"))
	assert.Equal(t, "new-york-city", Slugify("New York City"))
	assert.Equal(t, "ceske-budejovice", Slugify("České Budějovice"))
	assert.Equal(t, "a-b", Slugify("  a -- b  "))
	assert.Equal(t, "", Slugify("---"))
}

func TestGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GeoJSON(&buf, testRun()))

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Type     string `json:"type"`
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 2)
	assert.Equal(t, "Polygon", doc.Features[0].Geometry.Type)
	assert.EqualValues(t, 1, doc.Features[0].Properties["zone_id"])
	assert.EqualValues(t, 120000, doc.Features[0].Properties["area_m2"])
	assert.Equal(t, "very_large", doc.Features[0].Properties["size_class"])
	assert.Equal(t, "small", doc.Features[1].Properties["size_class"])
}

func TestMetadata(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Metadata(&buf, testRun()))

	var meta map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &meta))
	assert.Equal(t, "Hradec Králové", meta["place"])
	assert.Equal(t, "EPSG:32633", meta["metric_crs"])
	assert.EqualValues(t, 2, meta["zone_count"])
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, testRun()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "zone_id", rows[0][0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "120000.0", rows[1][1])
	assert.Equal(t, "very_large", rows[1][6])
	assert.Equal(t, "small", rows[2][6])
}

func TestKML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, KML(&buf, testRun()))
	out := buf.String()

	assert.Contains(t, out, "<kml")
	assert.Contains(t, out, "Safe zones: Hradec Králové, Czechia")
	assert.Contains(t, out, "Zone 1")
	assert.Contains(t, out, `id="zone-very_large"`)
	assert.Contains(t, out, "#zone-very_large")
	assert.Contains(t, out, "#zone-small")
	assert.Contains(t, out, "<coordinates>")
	// Only styles for classes actually present are emitted.
	assert.NotContains(t, out, "zone-medium")
}

func TestKML_CustomSizeClassStyles(t *testing.T) {
	run := testRun()
	run.Zones[0].SizeClass = "huge"
	run.Zones[1].SizeClass = "huge"

	var buf bytes.Buffer
	require.NoError(t, KML(&buf, run))
	out := buf.String()

	// Custom tier labels get a shared style, so no placemark references a
	// style that does not exist.
	assert.Contains(t, out, `id="zone-huge"`)
	assert.Contains(t, out, "#zone-huge")
	assert.Equal(t, 1, strings.Count(out, `id="zone-huge"`))
	assert.NotContains(t, out, "zone-small")
}

func TestKMZ(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, KMZ(&buf, testRun()))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "doc.kml", zr.File[0].Name)

	f, err := zr.File[0].Open()
	require.NoError(t, err)
	defer f.Close()
	var kmlBuf bytes.Buffer
	_, err = kmlBuf.ReadFrom(f)
	require.NoError(t, err)
	assert.Contains(t, kmlBuf.String(), "Zone 2")
}

func TestShapefile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zones.shp")
	require.NoError(t, Shapefile(path, testRun()))

	reader, err := shp.Open(path)
	require.NoError(t, err)
	defer reader.Close()

	count := 0
	for reader.Next() {
		_, shape := reader.Shape()
		assert.NotNil(t, shape)
		count++
	}
	assert.Equal(t, 2, count)

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}
	assert.Contains(t, names, "ZONE_ID")
	assert.Contains(t, names, "SIZE_CLASS")
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteAll(dir, []string{"geojson", "csv", "kml", "kmz", "shapefile"}, testRun())
	require.NoError(t, err)

	// Metadata sidecar plus five formats.
	assert.Len(t, paths, 6)
	for _, p := range paths {
		info, statErr := os.Stat(p)
		require.NoError(t, statErr)
		assert.Greater(t, info.Size(), int64(0))
		assert.True(t, strings.HasPrefix(filepath.Base(p), "hradec-kralove"))
	}

	_, err = WriteAll(dir, []string{"xlsx"}, testRun())
	assert.Error(t, err)
}
