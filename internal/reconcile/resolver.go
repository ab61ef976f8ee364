package reconcile

import (
	"slices"

	"courselens/internal/textutil"
)

// Method records which pass produced a pair.
type Method string

const (
	MethodExact    Method = "exact"
	MethodFuzzy    Method = "fuzzy"
	MethodFallback Method = "fallback"
)

// Candidate is a scored (catalog, entity) pairing considered during one
// resolution pass. Scores are on the textutil 0-100 scale.
type Candidate struct {
	Catalog int
	Entity  int
	Score   int
}

// Pair is an accepted assignment of one catalog index to one entity index.
type Pair struct {
	Catalog int
	Entity  int
	Score   int
	Method  Method
}

// Options tunes the fuzzy passes.
type Options struct {
	// Threshold is the minimum score for the primary fuzzy pass.
	Threshold int
	// FallbackMin is the minimum score for the lowered-threshold fallback,
	// which runs only when the primary pass yields no candidate at all.
	FallbackMin int
	// TopK bounds how many entity candidates are retained per catalog key
	// before threshold filtering.
	TopK int
}

// DefaultOptions mirrors the tuning the engagement reports were built
// against: threshold 80, fallback floor 70, six candidates per key.
func DefaultOptions() Options {
	return Options{Threshold: 80, FallbackMin: 70, TopK: 6}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Threshold <= 0 {
		o.Threshold = d.Threshold
	}
	if o.FallbackMin <= 0 {
		o.FallbackMin = d.FallbackMin
	}
	if o.TopK <= 0 {
		o.TopK = d.TopK
	}
	return o
}

// MatchExact pairs catalog keys to entity keys by equality. Each index on
// either side is used at most once; with duplicate keys, assignment runs in
// catalog-then-entity scan order, first available. Empty keys never match.
// The second return value lists catalog indices left for the fuzzy resolver.
func MatchExact(catalogKeys, entityKeys []string) ([]Pair, []int) {
	available := make(map[string][]int, len(entityKeys))
	for j, key := range entityKeys {
		if key == "" {
			continue
		}
		available[key] = append(available[key], j)
	}

	var pairs []Pair
	var unmatched []int
	for i, key := range catalogKeys {
		queue := available[key]
		if key == "" || len(queue) == 0 {
			unmatched = append(unmatched, i)
			continue
		}
		pairs = append(pairs, Pair{Catalog: i, Entity: queue[0], Score: 100, Method: MethodExact})
		available[key] = queue[1:]
	}
	return pairs, unmatched
}

// ResolveFuzzy assigns still-unmatched catalog indices to entity indices not
// consumed by usedEntities. Candidates are generated per catalog key as the
// top-K scoring entities regardless of absolute score, then filtered by the
// primary threshold; the fallback pass (best single candidate per key, floor
// FallbackMin) runs only when the primary pass kept nothing. Surviving
// candidates are sorted by score descending (ties keep discovery order) and
// accepted greedily, skipping any candidate whose catalog or entity index is
// already taken. This is a greedy approximation of maximum-weight bipartite
// matching, not an optimal assignment.
func ResolveFuzzy(catalogKeys []string, unmatched []int, entityKeys []string, usedEntities map[int]bool, opts Options) []Pair {
	opts = opts.withDefaults()

	var candidates []Candidate
	method := MethodFuzzy
	for _, i := range unmatched {
		for _, c := range topCandidates(catalogKeys[i], i, entityKeys, opts.TopK) {
			if c.Score >= opts.Threshold {
				candidates = append(candidates, c)
			}
		}
	}

	if len(candidates) == 0 {
		method = MethodFallback
		for _, i := range unmatched {
			best, ok := bestCandidate(catalogKeys[i], i, entityKeys)
			if ok && best.Score >= opts.FallbackMin {
				candidates = append(candidates, best)
			}
		}
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return b.Score - a.Score
	})

	usedCatalog := make(map[int]bool, len(unmatched))
	var pairs []Pair
	for _, c := range candidates {
		if usedCatalog[c.Catalog] || usedEntities[c.Entity] {
			continue
		}
		usedCatalog[c.Catalog] = true
		usedEntities[c.Entity] = true
		pairs = append(pairs, Pair{Catalog: c.Catalog, Entity: c.Entity, Score: c.Score, Method: method})
	}
	return pairs
}

// Resolve runs the full exact-then-fuzzy-then-fallback pipeline over two key
// sets and returns the accepted pairs in acceptance order: exact matches in
// catalog order, then fuzzy selections by descending score. The mapping is
// injective in both directions.
func Resolve(catalogKeys, entityKeys []string, opts Options) []Pair {
	pairs, unmatched := MatchExact(catalogKeys, entityKeys)

	usedEntities := make(map[int]bool, len(pairs))
	for _, p := range pairs {
		usedEntities[p.Entity] = true
	}

	return append(pairs, ResolveFuzzy(catalogKeys, unmatched, entityKeys, usedEntities, opts)...)
}

// topCandidates scores one catalog key against every entity key and keeps
// the K best. Zero-scoring entities are ranked like any other and filtered
// later by threshold, never before ranking.
func topCandidates(key string, catalogIdx int, entityKeys []string, k int) []Candidate {
	scored := make([]Candidate, 0, len(entityKeys))
	for j, entityKey := range entityKeys {
		scored = append(scored, Candidate{
			Catalog: catalogIdx,
			Entity:  j,
			Score:   textutil.TokenSetRatio(key, entityKey),
		})
	}
	slices.SortStableFunc(scored, func(a, b Candidate) int {
		return b.Score - a.Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func bestCandidate(key string, catalogIdx int, entityKeys []string) (Candidate, bool) {
	best := Candidate{Catalog: catalogIdx, Entity: -1}
	for j, entityKey := range entityKeys {
		if score := textutil.TokenSetRatio(key, entityKey); best.Entity < 0 || score > best.Score {
			best.Entity = j
			best.Score = score
		}
	}
	return best, best.Entity >= 0
}
