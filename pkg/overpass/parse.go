package overpass

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/cityzones/safezones-cli/internal/model"
)

// parseElements converts an Overpass JSON response into raw features. Nodes
// become points, closed ways become polygons, open ways become linestrings,
// and multipolygon relations are rebuilt from their closed outer rings.
// Untagged elements and degenerate geometries are skipped, not errors:
// Overpass interleaves them freely with the requested features.
func parseElements(body []byte) ([]model.RawFeature, int, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, eris.Wrap(err, "overpass: decode response")
	}

	var features []model.RawFeature
	skipped := 0
	for _, el := range resp.Elements {
		if len(el.Tags) == 0 {
			skipped++
			continue
		}
		g := elementGeometry(el)
		if g == nil {
			skipped++
			continue
		}
		features = append(features, model.RawFeature{
			ID:       el.ID,
			Tags:     el.Tags,
			Geometry: g,
		})
	}
	return features, skipped, nil
}

func elementGeometry(el element) geom.T {
	switch el.Type {
	case "node":
		return geom.NewPointFlat(geom.XY, []float64{el.Lon, el.Lat})
	case "way":
		return wayGeometry(el.Geometry)
	case "relation":
		return relationGeometry(el.Members)
	default:
		return nil
	}
}

// wayGeometry builds a polygon from a closed vertex chain and a linestring
// from an open one.
func wayGeometry(verts []vertex) geom.T {
	if len(verts) < 2 {
		return nil
	}
	flat := flatten(verts)
	if closed(verts) && len(verts) >= 4 {
		return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
	}
	return geom.NewLineStringFlat(geom.XY, flat)
}

// relationGeometry assembles the closed outer rings of a multipolygon
// relation. Rings split across several member ways are stitched end to end
// before closing. Inner rings are ignored: for hazard buffering a courtyard
// inside an obstacle is still unsafe ground.
func relationGeometry(members []member) geom.T {
	var rings [][]vertex
	var open []vertex
	for _, m := range members {
		if m.Type != "way" || m.Role != "outer" || len(m.Geometry) < 2 {
			continue
		}
		if closed(m.Geometry) && len(m.Geometry) >= 4 {
			rings = append(rings, m.Geometry)
			continue
		}
		open = stitch(open, m.Geometry)
		if closed(open) && len(open) >= 4 {
			rings = append(rings, open)
			open = nil
		}
	}
	if len(rings) == 0 {
		return nil
	}

	var flat []float64
	endss := make([][]int, len(rings))
	for i, ring := range rings {
		flat = append(flat, flatten(ring)...)
		endss[i] = []int{len(flat)}
	}
	if len(rings) == 1 {
		return geom.NewPolygonFlat(geom.XY, flat, endss[0])
	}
	return geom.NewMultiPolygonFlat(geom.XY, flat, endss)
}

// stitch appends a way fragment to a partial ring, reversing the fragment
// when its far end is the one that connects.
func stitch(ring, frag []vertex) []vertex {
	if len(ring) == 0 {
		return append([]vertex(nil), frag...)
	}
	last := ring[len(ring)-1]
	switch {
	case frag[0] == last:
		return append(ring, frag[1:]...)
	case frag[len(frag)-1] == last:
		for i := len(frag) - 2; i >= 0; i-- {
			ring = append(ring, frag[i])
		}
		return ring
	default:
		// Disconnected fragment. Restart the partial ring; the dropped
		// prefix could not have closed anyway.
		return append([]vertex(nil), frag...)
	}
}

func closed(verts []vertex) bool {
	return len(verts) >= 3 && verts[0] == verts[len(verts)-1]
}

func flatten(verts []vertex) []float64 {
	flat := make([]float64, 0, 2*len(verts))
	for _, v := range verts {
		flat = append(flat, v.Lon, v.Lat)
	}
	return flat
}
