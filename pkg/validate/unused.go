package validate

import (
	"fmt"

	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/crystal-mush/gosoul/pkg/soul/verbdata"
)

// UnusedChecker reports prepositions no pattern anchors on, and bodyparts
// and directions declared while no verb takes one. Unused prepositions are
// fixable by dropping them.
type UnusedChecker struct{}

func (c *UnusedChecker) Name() string { return "unused" }

func (c *UnusedChecker) Check(f *verbdata.File, t *soul.Table) []Finding {
	if t == nil {
		return nil
	}
	anchors := make(map[string]bool)
	var parts, dirs bool
	for _, v := range t.Verbs() {
		for _, p := range v.Patterns {
			for _, e := range p.Elems {
				switch e.Kind {
				case soul.ElemAnchor:
					anchors[e.Word] = true
				case soul.ElemBodypart:
					parts = true
				case soul.ElemDirection:
					dirs = true
				}
			}
		}
		if v.DefaultBodypart != "" {
			parts = true
		}
	}

	var findings []Finding
	reported := make(map[string]bool)
	for _, p := range f.Prepositions {
		w := norm(p)
		if anchors[w] || reported[w] {
			continue
		}
		reported[w] = true
		findings = append(findings, Finding{
			Category:    CatUnused,
			Severity:    SevInfo,
			Word:        w,
			Description: fmt.Sprintf("preposition %q is not used by any pattern", w),
			Fixable:     true,
			fixFunc: func() {
				out := f.Prepositions[:0:0]
				for _, p := range f.Prepositions {
					if norm(p) != w {
						out = append(out, p)
					}
				}
				f.Prepositions = out
			},
		})
	}
	if !parts && len(f.Bodyparts) > 0 {
		findings = append(findings, Finding{
			Category:    CatUnused,
			Severity:    SevInfo,
			Description: fmt.Sprintf("%d bodyparts declared but no verb takes a bodypart", len(f.Bodyparts)),
		})
	}
	if !dirs && len(f.Directions) > 0 {
		findings = append(findings, Finding{
			Category:    CatUnused,
			Severity:    SevInfo,
			Description: fmt.Sprintf("%d directions declared but no verb takes a direction", len(f.Directions)),
		})
	}
	return findings
}
