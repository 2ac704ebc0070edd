// Package overpass loads city boundaries and tagged map features from the
// OpenStreetMap Nominatim and Overpass APIs, with response caching and rate
// limiting suitable for the public instances.
package overpass

import (
	"encoding/json"

	"github.com/twpayne/go-geom"
)

// Boundary is an administrative boundary resolved by place name.
type Boundary struct {
	Name        string
	DisplayName string
	Geometry    geom.T
	CentroidLon float64
	CentroidLat float64
}

// response is the top-level Overpass JSON envelope.
type response struct {
	Elements []element `json:"elements"`
}

// element is one Overpass element with inline geometry (from "out geom").
type element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Tags     map[string]string `json:"tags"`
	Geometry []vertex          `json:"geometry"`
	Members  []member          `json:"members"`
}

type vertex struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type member struct {
	Type     string   `json:"type"`
	Role     string   `json:"role"`
	Geometry []vertex `json:"geometry"`
}

// nominatimPlace is one result row from the Nominatim search API.
type nominatimPlace struct {
	DisplayName string          `json:"display_name"`
	Lat         string          `json:"lat"`
	Lon         string          `json:"lon"`
	Class       string          `json:"class"`
	Type        string          `json:"type"`
	GeoJSON     json.RawMessage `json:"geojson"`
}
