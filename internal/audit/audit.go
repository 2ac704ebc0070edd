// Package audit inspects a category registry for tag rules that can never
// fire. Classification is first match wins, so a tag claimed by an earlier
// category is unreachable in every later one; that is sometimes intended
// layering and sometimes a configuration mistake, which is why this is a
// report rather than a validation failure.
package audit

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cityzones/safezones-cli/internal/registry"
)

// Overlap records one tag claimed by more than one category. Winner is the
// category that actually receives features carrying the tag.
type Overlap struct {
	Key      string
	Value    string
	Winner   string
	Shadowed []string
}

// Report is the outcome of auditing a registry.
type Report struct {
	Categories int
	Rules      int
	Overlaps   []Overlap
}

// Clean reports whether the audit found nothing to flag.
func (r *Report) Clean() bool {
	return len(r.Overlaps) == 0
}

// Run audits the registry. The registry is assumed to be structurally valid;
// run Validate first.
func Run(reg *registry.Registry) *Report {
	rep := &Report{Categories: len(reg.Categories)}

	// Claims in registry order: tag -> categories that match it. Wildcards
	// claim every value of their key.
	type claim struct {
		winner   string
		shadowed []string
	}
	claims := make(map[string]*claim)
	wildcardOwner := make(map[string]string)

	record := func(tag, category string) {
		if c, ok := claims[tag]; ok {
			if c.winner != category {
				c.shadowed = append(c.shadowed, category)
			}
			return
		}
		claims[tag] = &claim{winner: category}
	}

	for _, cat := range reg.Categories {
		for _, m := range cat.Matchers {
			rep.Rules++
			if m.Any {
				record(m.Key+"=*", cat.Name)
				if _, ok := wildcardOwner[m.Key]; !ok {
					wildcardOwner[m.Key] = cat.Name
				}
				continue
			}
			for _, v := range m.Values {
				tag := m.Key + "=" + v
				// A value rule behind an earlier wildcard on the same
				// key is shadowed even without an exact duplicate.
				if owner, ok := wildcardOwner[m.Key]; ok && owner != cat.Name {
					if _, dup := claims[tag]; !dup {
						claims[tag] = &claim{winner: owner}
					}
				}
				record(tag, cat.Name)
			}
		}
	}

	for tag, c := range claims {
		if len(c.shadowed) == 0 {
			continue
		}
		key, value := splitTag(tag)
		rep.Overlaps = append(rep.Overlaps, Overlap{
			Key:      key,
			Value:    value,
			Winner:   c.winner,
			Shadowed: c.shadowed,
		})
	}
	sort.Slice(rep.Overlaps, func(i, j int) bool {
		a, b := rep.Overlaps[i], rep.Overlaps[j]
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.Value < b.Value
	})

	if !rep.Clean() {
		zap.L().Warn("registry audit found shadowed tag rules",
			zap.Int("overlaps", len(rep.Overlaps)),
		)
	}
	return rep
}

func splitTag(tag string) (key, value string) {
	for i := range tag {
		if tag[i] == '=' {
			return tag[:i], tag[i+1:]
		}
	}
	return tag, ""
}

// Format renders the report as human-readable lines.
func (r *Report) Format() []string {
	lines := []string{
		fmt.Sprintf("categories: %d, rules: %d, overlaps: %d", r.Categories, r.Rules, len(r.Overlaps)),
	}
	for _, o := range r.Overlaps {
		lines = append(lines, fmt.Sprintf("  %s=%s -> %s (shadowed: %v)", o.Key, o.Value, o.Winner, o.Shadowed))
	}
	return lines
}
