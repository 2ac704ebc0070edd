package registry

import (
	"os"
	"slices"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// TagMatcher matches one tag key against a value set. With Any set it matches
// every value carried under the key.
type TagMatcher struct {
	Key    string   `yaml:"key"`
	Values []string `yaml:"values,omitempty"`
	Any    bool     `yaml:"any,omitempty"`
}

// Matches reports whether the matcher is satisfied by the tag set.
func (m TagMatcher) Matches(tags map[string]string) bool {
	v, ok := tags[m.Key]
	if !ok {
		return false
	}
	if m.Any {
		return true
	}
	return slices.Contains(m.Values, v)
}

// Category is an immutable hazard-category descriptor: a name, a safety
// buffer radius in meters, and the ordered tag rules that select features
// into the category.
type Category struct {
	Name        string       `yaml:"name"`
	BufferM     float64      `yaml:"buffer_m"`
	Matchers    []TagMatcher `yaml:"matchers"`
	Description string       `yaml:"description,omitempty"`
}

// Matches reports whether any of the category's tag rules matches the
// feature's tags.
func (c Category) Matches(tags map[string]string) bool {
	for _, m := range c.Matchers {
		if m.Matches(tags) {
			return true
		}
	}
	return false
}

// Registry is the ordered category list. Order is the classification
// tie-break: when several categories could match a feature, the first one in
// registry order wins, on every run.
type Registry struct {
	Categories []Category `yaml:"categories"`
}

// Lookup returns the category with the given name.
func (r *Registry) Lookup(name string) (Category, bool) {
	for _, c := range r.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Validate checks the registry for configuration errors: an empty registry,
// duplicate names, categories without matchers, matchers without a key or
// values, and negative buffer radii. A zero radius is valid and degenerates
// to the obstacle's own footprint.
func (r *Registry) Validate() error {
	if len(r.Categories) == 0 {
		return eris.New("registry: no categories defined")
	}
	seen := make(map[string]bool, len(r.Categories))
	for _, c := range r.Categories {
		if c.Name == "" {
			return eris.New("registry: category with empty name")
		}
		if seen[c.Name] {
			return eris.Errorf("registry: duplicate category %q", c.Name)
		}
		seen[c.Name] = true
		if c.BufferM < 0 {
			return eris.Errorf("registry: category %q has negative buffer %g", c.Name, c.BufferM)
		}
		if len(c.Matchers) == 0 {
			return eris.Errorf("registry: category %q has no tag matchers", c.Name)
		}
		for _, m := range c.Matchers {
			if m.Key == "" {
				return eris.Errorf("registry: category %q has a matcher with empty key", c.Name)
			}
			if !m.Any && len(m.Values) == 0 {
				return eris.Errorf("registry: category %q matcher %q has no values and is not a wildcard", c.Name, m.Key)
			}
		}
	}
	return nil
}

// WithOverrides returns a copy of the registry with per-category buffer radii
// replaced. Unknown category names are a configuration error.
func (r *Registry) WithOverrides(overrides map[string]float64) (*Registry, error) {
	out := &Registry{Categories: slices.Clone(r.Categories)}
	for name, radius := range overrides {
		if radius < 0 {
			return nil, eris.Errorf("registry: override for %q has negative buffer %g", name, radius)
		}
		i := slices.IndexFunc(out.Categories, func(c Category) bool { return c.Name == name })
		if i < 0 {
			return nil, eris.Errorf("registry: override for unknown category %q", name)
		}
		out.Categories[i].BufferM = radius
	}
	return out, nil
}

// TagKeys returns the distinct matcher keys across all categories, in first
// appearance order. The obstacle loader derives its download selectors from
// this set.
func (r *Registry) TagKeys() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, c := range r.Categories {
		for _, m := range c.Matchers {
			if !seen[m.Key] {
				seen[m.Key] = true
				keys = append(keys, m.Key)
			}
		}
	}
	return keys
}

// Selector is one download filter: a tag key with either an explicit value
// set or a wildcard.
type Selector struct {
	Key    string
	Values []string
	Any    bool
}

// Selectors merges the matchers of every category into one download selector
// per tag key. A wildcard on a key subsumes all value lists for that key.
func (r *Registry) Selectors() []Selector {
	values := make(map[string]map[string]bool)
	wildcard := make(map[string]bool)
	for _, c := range r.Categories {
		for _, m := range c.Matchers {
			if m.Any {
				wildcard[m.Key] = true
				continue
			}
			if values[m.Key] == nil {
				values[m.Key] = make(map[string]bool)
			}
			for _, v := range m.Values {
				values[m.Key][v] = true
			}
		}
	}
	var out []Selector
	for _, key := range r.TagKeys() {
		if wildcard[key] {
			out = append(out, Selector{Key: key, Any: true})
			continue
		}
		vals := make([]string, 0, len(values[key]))
		for v := range values[key] {
			vals = append(vals, v)
		}
		slices.Sort(vals)
		out = append(out, Selector{Key: key, Values: vals})
	}
	return out
}

// LoadFile reads a full registry from a YAML file, replacing the built-in
// one. The result is validated before use.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read %s", path)
	}
	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrapf(err, "registry: parse %s", path)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}
