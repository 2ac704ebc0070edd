package model

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// SafeZone is one connected component of free space at or above the minimum
// area threshold. Polygon is in geographic coordinates; the metric attributes
// were computed in the projected frame before reprojection.
type SafeZone struct {
	ID          int           `json:"zone_id"`
	Polygon     *geom.Polygon `json:"-"`
	AreaM2      float64       `json:"area_m2"`
	PerimeterM  float64       `json:"perimeter_m"`
	Compactness float64       `json:"compactness"`
	CentroidLon float64       `json:"centroid_lon"`
	CentroidLat float64       `json:"centroid_lat"`
	SizeClass   string        `json:"size_class"`
}

// SizeBreakpoint maps an upper area bound to a size-class label. A zone gets
// the label of the first breakpoint whose MaxAreaM2 exceeds its area; the
// last breakpoint of a tier list acts as the catch-all when MaxAreaM2 is 0.
type SizeBreakpoint struct {
	MaxAreaM2 float64 `yaml:"max_area_m2" mapstructure:"max_area_m2"`
	Label     string  `yaml:"label" mapstructure:"label"`
}

// DefaultSizeBreakpoints returns the default size tiers.
func DefaultSizeBreakpoints() []SizeBreakpoint {
	return []SizeBreakpoint{
		{MaxAreaM2: 5000, Label: "small"},
		{MaxAreaM2: 10000, Label: "medium"},
		{MaxAreaM2: 50000, Label: "large"},
		{MaxAreaM2: 0, Label: "very_large"},
	}
}

// ValidateSizeBreakpoints checks that every tier has a label, bounds ascend
// strictly, and the list ends with the catch-all (MaxAreaM2 == 0), so every
// area maps to exactly one label.
func ValidateSizeBreakpoints(breakpoints []SizeBreakpoint) error {
	if len(breakpoints) == 0 {
		return eris.New("model: empty size breakpoint list")
	}
	prev := 0.0
	for i, bp := range breakpoints {
		if bp.Label == "" {
			return eris.Errorf("model: size breakpoint %d has no label", i)
		}
		if i == len(breakpoints)-1 {
			if bp.MaxAreaM2 != 0 {
				return eris.Errorf("model: last size breakpoint %q must be the catch-all with max_area_m2 0", bp.Label)
			}
			break
		}
		if bp.MaxAreaM2 <= prev {
			return eris.Errorf("model: size breakpoint %q out of order, bounds must ascend", bp.Label)
		}
		prev = bp.MaxAreaM2
	}
	return nil
}

// ClassifySize returns the label for the given area. Breakpoints must be
// ordered by ascending MaxAreaM2 with the catch-all (MaxAreaM2 == 0) last.
func ClassifySize(areaM2 float64, breakpoints []SizeBreakpoint) string {
	for _, bp := range breakpoints {
		if bp.MaxAreaM2 > 0 && areaM2 < bp.MaxAreaM2 {
			return bp.Label
		}
	}
	if len(breakpoints) > 0 {
		return breakpoints[len(breakpoints)-1].Label
	}
	return ""
}
