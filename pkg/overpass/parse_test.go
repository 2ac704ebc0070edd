package overpass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestParseElements_Node(t *testing.T) {
	body := []byte(`{"elements":[
		{"type":"node","id":1,"lat":50.08,"lon":14.42,"tags":{"amenity":"fuel"}},
		{"type":"node","id":2,"lat":50.09,"lon":14.43}
	]}`)

	features, skipped, err := parseElements(body)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, 1, skipped)

	f := features[0]
	assert.Equal(t, int64(1), f.ID)
	assert.Equal(t, "fuel", f.Tags["amenity"])
	pt, ok := f.Geometry.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, []float64{14.42, 50.08}, pt.FlatCoords())
}

func TestParseElements_Ways(t *testing.T) {
	body := []byte(`{"elements":[
		{"type":"way","id":10,"tags":{"building":"yes"},"geometry":[
			{"lat":0,"lon":0},{"lat":0,"lon":1},{"lat":1,"lon":1},{"lat":1,"lon":0},{"lat":0,"lon":0}
		]},
		{"type":"way","id":11,"tags":{"highway":"primary"},"geometry":[
			{"lat":0,"lon":0},{"lat":0,"lon":1},{"lat":0,"lon":2}
		]},
		{"type":"way","id":12,"tags":{"highway":"primary"},"geometry":[
			{"lat":0,"lon":0}
		]}
	]}`)

	features, skipped, err := parseElements(body)
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, 1, skipped)

	_, isPolygon := features[0].Geometry.(*geom.Polygon)
	assert.True(t, isPolygon)
	_, isLine := features[1].Geometry.(*geom.LineString)
	assert.True(t, isLine)
}

func TestParseElements_RelationOuterRings(t *testing.T) {
	body := []byte(`{"elements":[
		{"type":"relation","id":20,"tags":{"landuse":"forest"},"members":[
			{"type":"way","role":"outer","geometry":[
				{"lat":0,"lon":0},{"lat":0,"lon":1},{"lat":1,"lon":1},{"lat":1,"lon":0},{"lat":0,"lon":0}
			]},
			{"type":"way","role":"outer","geometry":[
				{"lat":5,"lon":5},{"lat":5,"lon":6},{"lat":6,"lon":6},{"lat":6,"lon":5},{"lat":5,"lon":5}
			]},
			{"type":"way","role":"inner","geometry":[
				{"lat":0.4,"lon":0.4},{"lat":0.4,"lon":0.6},{"lat":0.6,"lon":0.6},{"lat":0.4,"lon":0.4}
			]}
		]}
	]}`)

	features, skipped, err := parseElements(body)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, 0, skipped)

	mp, ok := features[0].Geometry.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, mp.NumPolygons())
}

func TestParseElements_RelationStitchedRing(t *testing.T) {
	// The outer ring is split into two open ways sharing endpoints.
	body := []byte(`{"elements":[
		{"type":"relation","id":21,"tags":{"natural":"water"},"members":[
			{"type":"way","role":"outer","geometry":[
				{"lat":0,"lon":0},{"lat":0,"lon":1},{"lat":1,"lon":1}
			]},
			{"type":"way","role":"outer","geometry":[
				{"lat":1,"lon":1},{"lat":1,"lon":0},{"lat":0,"lon":0}
			]}
		]}
	]}`)

	features, _, err := parseElements(body)
	require.NoError(t, err)
	require.Len(t, features, 1)

	poly, ok := features[0].Geometry.(*geom.Polygon)
	require.True(t, ok)
	assert.Equal(t, 1, poly.NumLinearRings())
	// Ring closes back on the first vertex.
	flat := poly.FlatCoords()
	assert.Equal(t, flat[0], flat[len(flat)-2])
	assert.Equal(t, flat[1], flat[len(flat)-1])
}

func TestParseElements_ReversedFragmentStitch(t *testing.T) {
	// The second fragment runs the wrong way and must be reversed.
	frag1 := []vertex{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}}
	frag2 := []vertex{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 0}, {Lat: 1, Lon: 1}}

	ring := stitch(nil, frag1)
	ring = stitch(ring, frag2)
	assert.True(t, closed(ring))
	assert.Len(t, ring, 5)
}

func TestParseElements_BadJSON(t *testing.T) {
	_, _, err := parseElements([]byte("not json"))
	assert.Error(t, err)
}
