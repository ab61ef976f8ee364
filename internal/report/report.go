// Package report composes the resolution pipeline and aggregates the matched
// pairs by module: extract summaries feed the reconciler, resolved pairs are
// merged back onto the ordered catalog, and module-level means are computed
// over matched rows only. Unmatched catalog items carry no metrics and a
// module with zero matches is omitted from its summary table rather than
// zero-filled.
package report

import (
	"sort"

	"courselens/internal/catalog"
	"courselens/internal/gradebook"
	"courselens/internal/media"
	"courselens/internal/reconcile"
	"courselens/internal/tabular"
	"courselens/internal/textutil"
)

// Options tunes both resolution passes.
type Options struct {
	Matching reconcile.Options
	// AssignmentMinScore is the minimum plain-ratio score for mapping a
	// catalog assignment title onto a gradebook column.
	AssignmentMinScore int
}

// DefaultOptions mirrors the tuning the original reports used.
func DefaultOptions() Options {
	return Options{Matching: reconcile.DefaultOptions(), AssignmentMinScore: 90}
}

// MatchedVideo is one catalog video row with its resolved media entity, or
// nil when no acceptable counterpart exists.
type MatchedVideo struct {
	Item   catalog.Item
	Entity *media.Entity
	Score  int
	Method reconcile.Method
}

// ModuleMediaSummary is one module's aggregated viewing metrics.
type ModuleMediaSummary struct {
	Module                 string
	Position               int
	AvgViewFraction        *float64
	AvgUniqueViewers       *float64
	AvgOverallViewFraction *float64
	// Enrolled is the constant active-student count; zero when unknown.
	Enrolled      int
	MatchedVideos int
}

// ModuleAssignmentSummary is one module's aggregated assignment metrics.
type ModuleAssignmentSummary struct {
	Module            string
	Position          int
	AvgTurnedInRate   *float64
	AvgExcludingZeros *float64
	Assignments       int
}

// Report is the full output surface consumed by the presentation layer.
type Report struct {
	Media             []media.Entity
	Students          []media.StudentEngagement
	Videos            []MatchedVideo
	ModuleMedia       []ModuleMediaSummary
	ModuleAssignments []ModuleAssignmentSummary
	Enrolled          int
}

// Build runs the whole pipeline over already-extracted tables.
func Build(items []catalog.Item, mediaTables *media.Tables, gradeTables *gradebook.Tables, enrolled int, opts Options) *Report {
	if mediaTables == nil {
		mediaTables = &media.Tables{}
	}
	if gradeTables == nil {
		gradeTables = &gradebook.Tables{}
	}
	videos := MatchVideos(items, mediaTables.Media, opts.Matching)
	return &Report{
		Media:             mediaTables.Media,
		Students:          mediaTables.Students,
		Videos:            videos,
		ModuleMedia:       ModuleMediaSummaries(videos, enrolled),
		ModuleAssignments: ModuleAssignmentSummaries(items, gradeTables.Assignments, opts.AssignmentMinScore),
		Enrolled:          enrolled,
	}
}

// MatchVideos resolves catalog video items against media entities and merges
// the result back onto the catalog rows, preserving catalog order. Each
// entity is assigned to at most one catalog row.
func MatchVideos(items []catalog.Item, entities []media.Entity, opts reconcile.Options) []MatchedVideo {
	videoItems := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if it.IsVideo() {
			videoItems = append(videoItems, it)
		}
	}

	catalogKeys := make([]string, len(videoItems))
	for i, it := range videoItems {
		catalogKeys[i] = textutil.Normalize(it.VideoTitle)
	}
	entityKeys := make([]string, len(entities))
	for j, e := range entities {
		entityKeys[j] = e.Key
	}

	pairs := reconcile.Resolve(catalogKeys, entityKeys, opts)
	byCatalog := make(map[int]reconcile.Pair, len(pairs))
	for _, p := range pairs {
		byCatalog[p.Catalog] = p
	}

	rows := make([]MatchedVideo, len(videoItems))
	for i, it := range videoItems {
		row := MatchedVideo{Item: it}
		if p, ok := byCatalog[i]; ok {
			row.Entity = &entities[p.Entity]
			row.Score = p.Score
			row.Method = p.Method
		}
		rows[i] = row
	}
	return rows
}

// ModuleMediaSummaries aggregates matched video rows by module. Metric means
// exclude indeterminate values rather than treating them as zero; a module
// with no matched videos is absent from the output. Modules are ordered by
// ascending position.
func ModuleMediaSummaries(rows []MatchedVideo, enrolled int) []ModuleMediaSummary {
	type group struct {
		summary ModuleMediaSummary
		viewFracs, viewerCounts, overallFracs []float64
	}
	var order []string
	groups := make(map[string]*group)

	for _, row := range rows {
		if row.Entity == nil {
			continue
		}
		g, ok := groups[row.Item.Module]
		if !ok {
			g = &group{summary: ModuleMediaSummary{
				Module:   row.Item.Module,
				Position: row.Item.ModulePosition,
				Enrolled: enrolled,
			}}
			groups[row.Item.Module] = g
			order = append(order, row.Item.Module)
		}
		if row.Item.ModulePosition < g.summary.Position {
			g.summary.Position = row.Item.ModulePosition
		}
		g.summary.MatchedVideos++
		if row.Entity.AvgViewFraction != nil {
			g.viewFracs = append(g.viewFracs, *row.Entity.AvgViewFraction)
		}
		g.viewerCounts = append(g.viewerCounts, float64(row.Entity.UniqueViewers))
		if row.Entity.OverallViewFraction != nil {
			g.overallFracs = append(g.overallFracs, *row.Entity.OverallViewFraction)
		}
	}

	summaries := make([]ModuleMediaSummary, 0, len(order))
	for _, name := range order {
		g := groups[name]
		g.summary.AvgViewFraction = mean(g.viewFracs)
		g.summary.AvgUniqueViewers = mean(g.viewerCounts)
		g.summary.AvgOverallViewFraction = mean(g.overallFracs)
		summaries = append(summaries, g.summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Position < summaries[j].Position
	})
	return summaries
}

// ModuleAssignmentSummaries maps each module's catalog assignment titles to
// gradebook columns by plain-ratio similarity and aggregates the matched
// columns' metrics. A gradebook column counts once per module even when
// several catalog titles land on it; modules with no mapped column are
// omitted.
func ModuleAssignmentSummaries(items []catalog.Item, assignments []gradebook.Assignment, minScore int) []ModuleAssignmentSummary {
	if minScore <= 0 {
		minScore = DefaultOptions().AssignmentMinScore
	}

	type group struct {
		position int
		matched  map[int]struct{}
	}
	var order []string
	groups := make(map[string]*group)

	for _, it := range items {
		if !it.IsAssignment() {
			continue
		}
		g, ok := groups[it.Module]
		if !ok {
			g = &group{position: it.ModulePosition, matched: make(map[int]struct{})}
			groups[it.Module] = g
			order = append(order, it.Module)
		}
		if it.ModulePosition < g.position {
			g.position = it.ModulePosition
		}

		key := textutil.Normalize(textutil.CleanHeaderID(it.Title))
		if idx, score := bestAssignment(key, assignments); idx >= 0 && score >= minScore {
			g.matched[idx] = struct{}{}
		}
	}

	summaries := make([]ModuleAssignmentSummary, 0, len(order))
	for _, name := range order {
		g := groups[name]
		if len(g.matched) == 0 {
			continue
		}
		matched := make([]int, 0, len(g.matched))
		for idx := range g.matched {
			matched = append(matched, idx)
		}
		sort.Ints(matched)

		var turnedIn, exclZeros []float64
		for _, idx := range matched {
			a := assignments[idx]
			if a.TurnedInRate != nil {
				turnedIn = append(turnedIn, *a.TurnedInRate)
			}
			if a.AverageExcludingZeros != nil {
				exclZeros = append(exclZeros, *a.AverageExcludingZeros)
			}
		}
		summaries = append(summaries, ModuleAssignmentSummary{
			Module:            name,
			Position:          g.position,
			AvgTurnedInRate:   mean(turnedIn),
			AvgExcludingZeros: mean(exclZeros),
			Assignments:       len(g.matched),
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Position < summaries[j].Position
	})
	return summaries
}

func bestAssignment(key string, assignments []gradebook.Assignment) (int, int) {
	bestIdx, bestScore := -1, -1
	for idx, a := range assignments {
		if score := textutil.Ratio(key, a.Key); score > bestScore {
			bestIdx, bestScore = idx, score
		}
	}
	return bestIdx, bestScore
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return tabular.Float(sum / float64(len(values)))
}
