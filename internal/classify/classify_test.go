package classify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/cityzones/safezones-cli/internal/model"
	"github.com/cityzones/safezones-cli/internal/registry"
)

func point(x, y float64) geom.T {
	return geom.NewPointFlat(geom.XY, []float64{x, y})
}

func testRegistry() *registry.Registry {
	return &registry.Registry{Categories: []registry.Category{
		{Name: "fuel", BufferM: 100, Matchers: []registry.TagMatcher{
			{Key: "amenity", Values: []string{"fuel"}},
		}},
		{Name: "amenities", BufferM: 30, Matchers: []registry.TagMatcher{
			{Key: "amenity", Any: true},
		}},
		{Name: "buildings", BufferM: 30, Matchers: []registry.TagMatcher{
			{Key: "building", Any: true},
		}},
	}}
}

func TestFeatures_FirstMatchWins(t *testing.T) {
	reg := testRegistry()
	features := []model.RawFeature{
		// Matches both fuel and amenities; fuel is first.
		{ID: 1, Tags: map[string]string{"amenity": "fuel"}, Geometry: point(0, 0)},
		// Matches both amenities and buildings; amenities is first.
		{ID: 2, Tags: map[string]string{"amenity": "school", "building": "yes"}, Geometry: point(1, 1)},
		{ID: 3, Tags: map[string]string{"building": "yes"}, Geometry: point(2, 2)},
	}

	res := Features(reg, features)
	require.NotNil(t, res.Collection)
	assert.Equal(t, 0, res.Unclassified)

	assert.Len(t, res.Collection.ByCategory["fuel"], 1)
	assert.Len(t, res.Collection.ByCategory["amenities"], 1)
	assert.Len(t, res.Collection.ByCategory["buildings"], 1)
	assert.Equal(t, int64(2), res.Collection.ByCategory["amenities"][0].FeatureID)

	// Order follows registry order, not input order.
	assert.Equal(t, []string{"fuel", "amenities", "buildings"}, res.Collection.Order)
}

func TestFeatures_Unclassified(t *testing.T) {
	reg := testRegistry()
	features := []model.RawFeature{
		{ID: 1, Tags: map[string]string{"highway": "path"}, Geometry: point(0, 0)},
		{ID: 2, Tags: nil, Geometry: point(1, 1)},
		{ID: 3, Tags: map[string]string{"building": "yes"}, Geometry: point(2, 2)},
	}

	res := Features(reg, features)
	assert.Equal(t, 2, res.Unclassified)
	assert.Equal(t, 1, res.Collection.Len())
	// The empty tag set is not sampled.
	assert.Len(t, res.UnclassifiedSamples, 1)
	assert.Equal(t, "path", res.UnclassifiedSamples[0]["highway"])
}

func TestFeatures_SampleCap(t *testing.T) {
	reg := testRegistry()
	var features []model.RawFeature
	for i := range 25 {
		features = append(features, model.RawFeature{
			ID:       int64(i),
			Tags:     map[string]string{"highway": fmt.Sprintf("type%d", i)},
			Geometry: point(float64(i), 0),
		})
	}

	res := Features(reg, features)
	assert.Equal(t, 25, res.Unclassified)
	assert.Len(t, res.UnclassifiedSamples, maxUnclassifiedSamples)
}

func TestFeatures_Deterministic(t *testing.T) {
	reg := testRegistry()
	features := []model.RawFeature{
		{ID: 1, Tags: map[string]string{"amenity": "fuel"}, Geometry: point(0, 0)},
		{ID: 2, Tags: map[string]string{"building": "yes"}, Geometry: point(1, 1)},
		{ID: 3, Tags: map[string]string{"leisure": "park"}, Geometry: point(2, 2)},
	}

	first := Features(reg, features)
	second := Features(reg, features)
	assert.Equal(t, first.Collection.Order, second.Collection.Order)
	assert.Equal(t, first.Unclassified, second.Unclassified)
	for _, name := range first.Collection.Order {
		assert.Equal(t, first.Collection.ByCategory[name], second.Collection.ByCategory[name])
	}
}

func TestFeatures_EmptyInput(t *testing.T) {
	res := Features(testRegistry(), nil)
	assert.Equal(t, 0, res.Unclassified)
	assert.Equal(t, 0, res.Collection.Len())
	assert.Empty(t, res.Collection.Order)
}
