// Package gradebook derives per-assignment summary metrics from a Canvas
// gradebook export. The export's first data row carries the points possible
// for each assignment column; every later row is one student. Identity and
// grade-rollup columns are excluded from assignment metrics by a fixed name
// set, and student rows are de-identified before leaving this package.
package gradebook

import (
	"fmt"
	"strings"

	"courselens/internal/tabular"
	"courselens/internal/textutil"
)

// identityOrMeta lists lowered column names that are never assignments.
var identityOrMeta = map[string]struct{}{
	"student":               {},
	"id":                    {},
	"sis user id":           {},
	"sis login id":          {},
	"integration id":        {},
	"section":               {},
	"final grade":           {},
	"current grade":         {},
	"unposted final grade":  {},
	"final score":           {},
	"current score":         {},
	"unposted final score":  {},
	"final points":          {},
	"current points":        {},
	"unposted current score": {},
}

// gradeColumns are the rollup columns preserved on de-identified student rows.
var gradeColumns = []string{
	"Final Grade",
	"Current Grade",
	"Unposted Final Grade",
	"Final Score",
	"Current Score",
	"Unposted Final Score",
}

// Assignment is one gradebook column with its summary metrics. All three
// metric fields are fractions in [0,1]; nil means indeterminate (for example
// no student had a computable ratio).
type Assignment struct {
	Name           string
	Key            string
	PointsPossible *float64
	// Average includes zero scores; AverageExcludingZeros treats zeros as
	// not turned in; TurnedInRate is the share of computable ratios above
	// zero.
	Average               *float64
	AverageExcludingZeros *float64
	TurnedInRate          *float64
	// Graded counts the student instances with a computable ratio.
	Graded int
}

// StudentRow is one de-identified student with preserved grade rollups.
type StudentRow struct {
	Label  string
	Grades map[string]string
}

// Tables is the gradebook extraction output surface.
type Tables struct {
	Assignments []Assignment
	Students    []StudentRow
}

// Extract computes per-assignment metrics and de-identified student rows.
// Empty input yields empty tables, not an error.
func Extract(t *tabular.Table) (*Tables, error) {
	if t == nil || len(t.Headers) == 0 || len(t.Rows) == 0 {
		return &Tables{}, nil
	}

	headers := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = textutil.CleanHeaderID(h)
	}

	studentCol, hasStudent := tabular.FindColumn(headers, []string{"student"})

	// Row 0 is the points-possible row; later rows are students, minus any
	// stray "Points Possible" or "Student, Test" rows the export slipped in.
	pointsRow := 0
	studentRows := make([]int, 0, len(t.Rows)-1)
	for i := 1; i < len(t.Rows); i++ {
		if hasStudent {
			name := strings.ToLower(t.Cell(i, studentCol))
			if strings.Contains(name, "points possible") || strings.Contains(name, "student, test") {
				continue
			}
		}
		studentRows = append(studentRows, i)
	}

	assignments := extractAssignments(t, headers, pointsRow, studentRows)
	students := deidentifyStudents(t, headers, studentRows)

	return &Tables{Assignments: assignments, Students: students}, nil
}

func extractAssignments(t *tabular.Table, headers []string, pointsRow int, studentRows []int) []Assignment {
	var assignments []Assignment
	for col, name := range headers {
		if !isAssignmentColumn(name) {
			continue
		}

		a := Assignment{Name: name, Key: textutil.Normalize(name)}
		if pts, ok := tabular.ParseFloat(t.Cell(pointsRow, col)); ok {
			a.PointsPossible = tabular.Float(pts)
		}

		var ratios []float64
		for _, row := range studentRows {
			earned, ok := tabular.ParseFloat(t.Cell(row, col))
			if !ok {
				continue
			}
			// A zero or missing points-possible value makes the ratio
			// indeterminate for this instance, never a division fault.
			if a.PointsPossible == nil || *a.PointsPossible <= 0 {
				continue
			}
			ratios = append(ratios, earned / *a.PointsPossible)
		}

		a.Graded = len(ratios)
		if len(ratios) > 0 {
			var sum, nonZeroSum float64
			nonZero := 0
			for _, r := range ratios {
				sum += r
				if r > 0 {
					nonZeroSum += r
					nonZero++
				}
			}
			a.Average = tabular.Float(sum / float64(len(ratios)))
			if nonZero > 0 {
				a.AverageExcludingZeros = tabular.Float(nonZeroSum / float64(nonZero))
			}
			a.TurnedInRate = tabular.Float(float64(nonZero) / float64(len(ratios)))
		}

		assignments = append(assignments, a)
	}
	return assignments
}

func isAssignmentColumn(name string) bool {
	c := strings.ToLower(strings.TrimSpace(name))
	if c == "" || strings.HasPrefix(c, "unnamed") {
		return false
	}
	_, meta := identityOrMeta[c]
	return !meta
}

// deidentifyStudents keeps only the grade rollup columns and replaces
// identities with S0001-style labels.
func deidentifyStudents(t *tabular.Table, headers []string, studentRows []int) []StudentRow {
	keep := make(map[string]int)
	for _, want := range gradeColumns {
		for idx, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				keep[want] = idx
				break
			}
		}
	}

	students := make([]StudentRow, 0, len(studentRows))
	for i, row := range studentRows {
		s := StudentRow{Label: fmt.Sprintf("S%04d", i+1), Grades: make(map[string]string, len(keep))}
		for name, col := range keep {
			s.Grades[name] = t.Cell(row, col)
		}
		students = append(students, s)
	}
	return students
}
