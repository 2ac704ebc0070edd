package overpass

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// FetchBoundary resolves a place name to its administrative boundary polygon
// via the Nominatim search API. The first result carrying an areal geometry
// wins; point-only results (POIs, addresses) are skipped.
func (c *Client) FetchBoundary(ctx context.Context, place string) (*Boundary, error) {
	q := url.Values{
		"q":               {place},
		"format":          {"json"},
		"polygon_geojson": {"1"},
		"limit":           {"5"},
	}
	rawURL := c.opts.NominatimURL + "/search?" + q.Encode()

	body := []byte(nil)
	if c.cache != nil {
		body = c.cache.Get(ctx, rawURL)
	}
	if body == nil {
		var err error
		body, err = c.fetch(ctx, func(ctx context.Context) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		})
		if err != nil {
			return nil, eris.Wrapf(err, "overpass: resolve boundary for %q", place)
		}
		if c.cache != nil {
			if err := c.cache.Put(ctx, rawURL, body); err != nil {
				zap.L().Warn("caching nominatim response failed", zap.Error(err))
			}
		}
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, eris.Wrap(err, "overpass: decode nominatim response")
	}
	if len(places) == 0 {
		return nil, eris.Errorf("overpass: no results for %q", place)
	}

	for _, p := range places {
		g, err := arealGeometry(p.GeoJSON)
		if err != nil || g == nil {
			continue
		}
		lat, latErr := strconv.ParseFloat(p.Lat, 64)
		lon, lonErr := strconv.ParseFloat(p.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		zap.L().Info("boundary resolved",
			zap.String("place", place),
			zap.String("display_name", p.DisplayName),
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
		)
		return &Boundary{
			Name:        place,
			DisplayName: p.DisplayName,
			Geometry:    g,
			CentroidLon: lon,
			CentroidLat: lat,
		}, nil
	}
	return nil, eris.Errorf("overpass: no areal boundary for %q, got point results only", place)
}

// arealGeometry decodes a GeoJSON fragment and returns it if it is a polygon
// or multipolygon, nil otherwise.
func arealGeometry(raw json.RawMessage) (geom.T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		return nil, eris.Wrap(err, "overpass: decode boundary geojson")
	}
	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
		return g, nil
	default:
		return nil, nil
	}
}
