package workflow

import (
	"strings"
	"unicode"
)

// DefaultDiffThreshold is the diff ratio from which a regeneration
// re-runs the full pipeline.
const DefaultDiffThreshold = 0.35

// DiffRatio measures how different two drafts are as the Jaccard distance
// of their lowercased word sets: 0 for the same words, 1 for no shared
// word. It is symmetric. Two texts without words are identical; one empty
// text against a non-empty one is disjoint.
func DiffRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	switch {
	case len(ta) == 0 && len(tb) == 0:
		return 0
	case len(ta) == 0 || len(tb) == 0:
		return 1
	}

	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return 1 - float64(shared)/float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
