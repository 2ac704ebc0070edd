package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

const nominatimBody = `[
	{
		"display_name": "Praha, Czechia",
		"lat": "50.08", "lon": "14.42",
		"class": "boundary", "type": "administrative",
		"geojson": {"type": "Point", "coordinates": [14.42, 50.08]}
	},
	{
		"display_name": "Hlavní město Praha, Czechia",
		"lat": "50.0875", "lon": "14.4213",
		"class": "boundary", "type": "administrative",
		"geojson": {"type": "Polygon", "coordinates": [[
			[14.2, 49.9], [14.7, 49.9], [14.7, 50.2], [14.2, 50.2], [14.2, 49.9]
		]]}
	}
]`

func TestFetchBoundary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Praha", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("polygon_geojson"))
		_, _ = w.Write([]byte(nominatimBody))
	}))
	defer srv.Close()

	c := New(Options{NominatimURL: srv.URL, RequestsPerSec: 1000, Timeout: 5 * time.Second})
	b, err := c.FetchBoundary(context.Background(), "Praha")
	require.NoError(t, err)

	// The point result is skipped in favor of the polygon.
	assert.Equal(t, "Praha", b.Name)
	assert.Equal(t, "Hlavní město Praha, Czechia", b.DisplayName)
	assert.InDelta(t, 14.4213, b.CentroidLon, 1e-9)
	assert.InDelta(t, 50.0875, b.CentroidLat, 1e-9)
	poly, ok := b.Geometry.(*geom.Polygon)
	require.True(t, ok)
	assert.Equal(t, 1, poly.NumLinearRings())
}

func TestFetchBoundary_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := New(Options{NominatimURL: srv.URL, RequestsPerSec: 1000, Timeout: 5 * time.Second})
	_, err := c.FetchBoundary(context.Background(), "Nowhere")
	assert.Error(t, err)
}

func TestFetchBoundary_PointOnlyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{
			"display_name": "Some POI", "lat": "50", "lon": "14",
			"geojson": {"type": "Point", "coordinates": [14, 50]}
		}]`))
	}))
	defer srv.Close()

	c := New(Options{NominatimURL: srv.URL, RequestsPerSec: 1000, Timeout: 5 * time.Second})
	_, err := c.FetchBoundary(context.Background(), "Somewhere")
	assert.Error(t, err)
}
