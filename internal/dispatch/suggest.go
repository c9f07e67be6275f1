// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

const maxCandidates = 3

// suggest returns up to maxCandidates names close to target, best first.
// Names containing target as a fuzzy subsequence rank first. When none do,
// names within two edits of target (a third of its length for long names)
// are used, which catches transposed letters such as "tset".
func suggest(target string, names []string) []string {
	if target == "" {
		return nil
	}

	matches := fuzzy.Find(target, names)
	if len(matches) > 0 {
		out := make([]string, 0, min(len(matches), maxCandidates))
		for _, m := range matches[:min(len(matches), maxCandidates)] {
			out = append(out, names[m.Index])
		}
		return out
	}
	return nearest(target, names)
}

// nearest ranks names by edit distance to target.
func nearest(target string, names []string) []string {
	type scored struct {
		name string
		dist int
	}

	limit := max(2, len(target)/3)
	var near []scored
	for _, name := range names {
		if d := editDistance(strings.ToLower(target), strings.ToLower(name)); d <= limit {
			near = append(near, scored{name: name, dist: d})
		}
	}

	slices.SortStableFunc(near, func(a, b scored) int { return cmp.Compare(a.dist, b.dist) })
	if len(near) == 0 {
		return nil
	}
	out := make([]string, 0, min(len(near), maxCandidates))
	for _, m := range near[:min(len(near), maxCandidates)] {
		out = append(out, m.name)
	}
	return out
}

// editDistance is the Levenshtein distance between a and b, in runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
