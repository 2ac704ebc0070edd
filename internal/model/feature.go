package model

import (
	"github.com/twpayne/go-geom"
)

// RawFeature is a single geographic feature as delivered by an obstacle
// source, before classification. Tags are OSM-style key/value pairs and
// Geometry is in geographic coordinates (lon/lat, WGS84).
type RawFeature struct {
	ID       int64
	Tags     map[string]string
	Geometry geom.T
}

// Obstacle is a feature assigned to exactly one hazard category. It is
// read-only after classification.
type Obstacle struct {
	FeatureID int64
	Category  string
	Geometry  geom.T
}

// Collection groups obstacles by category. Order preserves registry order so
// downstream stages iterate deterministically; only categories with at least
// one obstacle appear.
type Collection struct {
	Order      []string
	ByCategory map[string][]Obstacle
}

// Len returns the total number of obstacles across all categories.
func (c *Collection) Len() int {
	n := 0
	for _, obstacles := range c.ByCategory {
		n += len(obstacles)
	}
	return n
}
