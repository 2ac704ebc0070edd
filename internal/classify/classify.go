// Package classify assigns raw geographic features to hazard categories
// using the ordered tag rules of the category registry.
package classify

import (
	"go.uber.org/zap"

	"github.com/cityzones/safezones-cli/internal/model"
	"github.com/cityzones/safezones-cli/internal/registry"
)

// maxUnclassifiedSamples bounds the tag sets kept for the audit report.
const maxUnclassifiedSamples = 10

// Result is the outcome of classifying a feature set: the per-category
// obstacle collection plus the features that matched no category. Those are
// surfaced rather than silently dropped; whether they constitute a
// configuration failure is the tag-audit validator's call.
type Result struct {
	Collection          *model.Collection
	Unclassified        int
	UnclassifiedSamples []map[string]string
}

// Features assigns each feature to the first category in registry order
// whose tag rules match. Classification is a pure function of the feature
// tags and the registry order, so reruns on unchanged input produce the same
// assignment and the same unclassified count.
func Features(reg *registry.Registry, features []model.RawFeature) *Result {
	byCategory := make(map[string][]model.Obstacle)
	res := &Result{}

	for _, f := range features {
		cat, ok := match(reg, f.Tags)
		if !ok {
			res.Unclassified++
			if len(f.Tags) > 0 && len(res.UnclassifiedSamples) < maxUnclassifiedSamples {
				res.UnclassifiedSamples = append(res.UnclassifiedSamples, f.Tags)
			}
			continue
		}
		byCategory[cat] = append(byCategory[cat], model.Obstacle{
			FeatureID: f.ID,
			Category:  cat,
			Geometry:  f.Geometry,
		})
	}

	// Preserve registry order for deterministic downstream iteration.
	var order []string
	for _, c := range reg.Categories {
		if len(byCategory[c.Name]) > 0 {
			order = append(order, c.Name)
		}
	}
	res.Collection = &model.Collection{Order: order, ByCategory: byCategory}

	if res.Unclassified > 0 {
		zap.L().Warn("features matched no category",
			zap.Int("unclassified", res.Unclassified),
			zap.Int("classified", res.Collection.Len()),
		)
	}
	return res
}

// match returns the name of the first category whose rules match the tags.
func match(reg *registry.Registry, tags map[string]string) (string, bool) {
	if len(tags) == 0 {
		return "", false
	}
	for _, c := range reg.Categories {
		if c.Matches(tags) {
			return c.Name, true
		}
	}
	return "", false
}
