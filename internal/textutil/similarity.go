package textutil

import (
	"math"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Ratio returns a normalized edit-distance similarity between two strings on
// a 0-100 scale. Two empty strings score 0 rather than 100 so that blank
// canonical keys never look like matches.
func Ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	total := len([]rune(a)) + len([]rune(b))
	return int(math.Round(100 * float64(total-dist) / float64(total)))
}

// TokenSetRatio scores two strings as unordered word sets on a 0-100 scale.
// Shared tokens count regardless of position or repetition; when one token
// set contains the other the score is 100. Inputs are expected to already be
// canonical keys (see Normalize), but any whitespace-separated text works.
func TokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared, onlyA, onlyB := partitionTokens(ta, tb)
	if len(shared) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	base := strings.Join(shared, " ")
	joinedA := joinNonEmpty(base, strings.Join(onlyA, " "))
	joinedB := joinNonEmpty(base, strings.Join(onlyB, " "))

	best := Ratio(joinedA, joinedB)
	if len(shared) > 0 {
		best = max(best, Ratio(base, joinedA), Ratio(base, joinedB))
	}
	return best
}

func tokenSet(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	slices.Sort(fields)
	return slices.Compact(fields)
}

// partitionTokens splits two sorted unique token slices into shared tokens
// and the tokens unique to each side, preserving sorted order.
func partitionTokens(a, b []string) (shared, onlyA, onlyB []string) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			shared = append(shared, a[i])
			i++
			j++
		case a[i] < b[j]:
			onlyA = append(onlyA, a[i])
			i++
		default:
			onlyB = append(onlyB, b[j])
			j++
		}
	}
	onlyA = append(onlyA, a[i:]...)
	onlyB = append(onlyB, b[j:]...)
	return shared, onlyA, onlyB
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
