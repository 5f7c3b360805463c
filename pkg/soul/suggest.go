package soul

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// suggest returns the closest word of pool to word within an edit distance
// that grows with the word length, or "". Ties go to the alphabetically first.
func suggest(word string, pool []string) string {
	type scored struct {
		val  string
		dist int
	}
	var results []scored
	for _, cand := range pool {
		if cand == word {
			continue
		}
		dist := levenshtein.ComputeDistance(word, cand)
		if dist > levenshteinLimit(len(cand)) {
			continue
		}
		results = append(results, scored{val: cand, dist: dist})
	}
	if len(results) == 0 {
		return ""
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].dist == results[j].dist {
			return results[i].val < results[j].val
		}
		return results[i].dist < results[j].dist
	})
	return results[0].val
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
