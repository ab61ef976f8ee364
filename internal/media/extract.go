// Package media derives per-video summary entities from a raw viewing export.
// The export arrives as a loosely-headed table with one row per viewer and
// media; headers vary across platform versions, so columns are located by
// candidate name lists. Output metrics are fractions in [0,1]; scaling to a
// display percentage belongs to the presentation side.
package media

import (
	"fmt"

	"courselens/internal/tabular"
	"courselens/internal/textutil"
)

// Column candidates, tried case-insensitively with substring fallback.
var (
	titleCandidates    = []string{"media name", "media title", "video title", "title", "name"}
	durationCandidates = []string{"duration", "video duration", "media duration", "length"}
	viewTimeCandidates = []string{"total view time", "total viewtime", "total watch time", "view time"}
	viewerCandidates   = []string{"user email", "user name", "email", "user", "viewer", "username"}
)

// Entity is one distinct video with its aggregated viewing metrics. Nil
// metric fields mean the value is indeterminate, not zero.
type Entity struct {
	Title           string
	Key             string
	DurationSeconds *float64
	UniqueViewers   int
	// AvgViewFraction is the mean of per-row view-seconds / duration over
	// rows where the duration is known and positive.
	AvgViewFraction *float64
	SumViewSeconds  *float64
	// PctStudentsViewing and OverallViewFraction are filled only when the
	// enrolled-student count is known.
	PctStudentsViewing  *float64
	OverallViewFraction *float64
}

// StudentEngagement is one de-identified viewer's summary row.
type StudentEngagement struct {
	Label string
	// AvgWatchedFraction is the mean watched fraction across the rows the
	// student appears in.
	AvgWatchedFraction *float64
	// ShareOfTotal is the student's summed view seconds over the summed
	// duration of all distinct videos.
	ShareOfTotal *float64
}

// Tables is the media extraction output surface.
type Tables struct {
	Media    []Entity
	Students []StudentEngagement
}

type viewRow struct {
	title    string
	duration *float64
	viewSecs *float64
	viewer   string
	// fraction is viewSecs/duration when duration is known and positive.
	fraction *float64
}

// Extract builds per-video entities and the de-identified student table from
// a raw viewing export. enrolled is the active student count; zero means
// unknown, leaving the enrollment-ratio columns indeterminate. A required
// column that cannot be located returns a *tabular.MissingFieldError.
func Extract(t *tabular.Table, enrolled int) (*Tables, error) {
	if t == nil || len(t.Headers) == 0 {
		return &Tables{}, nil
	}

	titleCol, err := tabular.RequireColumn(t.Headers, titleCandidates)
	if err != nil {
		return nil, fmt.Errorf("media export: %w", err)
	}
	durationCol, err := tabular.RequireColumn(t.Headers, durationCandidates)
	if err != nil {
		return nil, fmt.Errorf("media export: %w", err)
	}
	viewCol, err := tabular.RequireColumn(t.Headers, viewTimeCandidates)
	if err != nil {
		return nil, fmt.Errorf("media export: %w", err)
	}
	viewerCol, hasViewer := tabular.FindColumn(t.Headers, viewerCandidates)

	rows := make([]viewRow, 0, len(t.Rows))
	for i := range t.Rows {
		row := viewRow{title: t.Cell(i, titleCol)}
		if v, ok := textutil.ParseSeconds(t.Cell(i, durationCol)); ok {
			row.duration = tabular.Float(v)
		}
		if v, ok := textutil.ParseSeconds(t.Cell(i, viewCol)); ok {
			row.viewSecs = tabular.Float(v)
		}
		if hasViewer {
			row.viewer = t.Cell(i, viewerCol)
		}
		if row.duration != nil && *row.duration > 0 && row.viewSecs != nil {
			row.fraction = tabular.Float(*row.viewSecs / *row.duration)
		}
		rows = append(rows, row)
	}

	tables := &Tables{
		Media: summarizeMedia(rows, hasViewer, enrolled),
	}
	if hasViewer {
		tables.Students = summarizeStudents(rows)
	}
	return tables, nil
}

// summarizeMedia groups rows by raw title in first-seen order and emits one
// entity per distinct title. The row-count stand-in for UniqueViewers applies
// only when the export carries no viewer-identity column at all; a present
// column with empty cells counts zero distinct viewers.
func summarizeMedia(rows []viewRow, hasViewer bool, enrolled int) []Entity {
	order := make([]string, 0)
	groups := make(map[string][]viewRow)
	for _, row := range rows {
		if _, seen := groups[row.title]; !seen {
			order = append(order, row.title)
		}
		groups[row.title] = append(groups[row.title], row)
	}

	entities := make([]Entity, 0, len(order))
	for _, title := range order {
		group := groups[title]
		e := Entity{Title: title, Key: textutil.Normalize(title)}

		for _, row := range group {
			if row.duration != nil {
				e.DurationSeconds = row.duration
				break
			}
		}

		viewers := make(map[string]struct{})
		viewRows := 0
		var sumView float64
		haveView := false
		var fracs []float64
		for _, row := range group {
			if row.viewer != "" {
				viewers[row.viewer] = struct{}{}
			}
			if row.viewSecs != nil {
				viewRows++
				sumView += *row.viewSecs
				haveView = true
			}
			if row.fraction != nil {
				fracs = append(fracs, *row.fraction)
			}
		}
		if hasViewer {
			e.UniqueViewers = len(viewers)
		} else {
			e.UniqueViewers = viewRows
		}
		if haveView {
			e.SumViewSeconds = tabular.Float(sumView)
		}
		e.AvgViewFraction = mean(fracs)

		if enrolled > 0 {
			e.PctStudentsViewing = tabular.Float(float64(e.UniqueViewers) / float64(enrolled))
			if e.DurationSeconds != nil && *e.DurationSeconds > 0 && e.SumViewSeconds != nil {
				e.OverallViewFraction = tabular.Float(*e.SumViewSeconds / (*e.DurationSeconds * float64(enrolled)))
			}
		}

		entities = append(entities, e)
	}
	return entities
}

// summarizeStudents groups rows by viewer identifier in first-seen order and
// replaces identifiers with S0001-style labels. Rows with no identifier
// collapse into a single unknown bucket that is labeled like any other
// viewer. The share-of-total denominator is the summed duration of distinct
// videos, counting each video once no matter how many viewers it has.
func summarizeStudents(rows []viewRow) []StudentEngagement {
	var totalDuration float64
	seenTitle := make(map[string]struct{})
	for _, row := range rows {
		if _, seen := seenTitle[row.title]; seen {
			continue
		}
		seenTitle[row.title] = struct{}{}
		if row.duration != nil {
			totalDuration += *row.duration
		}
	}

	order := make([]string, 0)
	groups := make(map[string][]viewRow)
	for _, row := range rows {
		viewer := row.viewer
		if viewer == "" {
			viewer = "unknown"
		}
		if _, seen := groups[viewer]; !seen {
			order = append(order, viewer)
		}
		groups[viewer] = append(groups[viewer], row)
	}

	students := make([]StudentEngagement, 0, len(order))
	for i, viewer := range order {
		group := groups[viewer]
		s := StudentEngagement{Label: fmt.Sprintf("S%04d", i+1)}

		var fracs []float64
		var sumView float64
		haveView := false
		for _, row := range group {
			if row.fraction != nil {
				fracs = append(fracs, *row.fraction)
			}
			if row.viewSecs != nil {
				sumView += *row.viewSecs
				haveView = true
			}
		}
		s.AvgWatchedFraction = mean(fracs)
		if haveView && totalDuration > 0 {
			s.ShareOfTotal = tabular.Float(sumView / totalDuration)
		}

		students = append(students, s)
	}
	return students
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
