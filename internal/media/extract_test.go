package media

import (
	"errors"
	"math"
	"strings"
	"testing"

	"courselens/internal/tabular"
)

func loadTable(t *testing.T, csv string) *tabular.Table {
	t.Helper()
	table, err := tabular.ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return table
}

func almost(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s is nil, want %v", name, want)
	}
	if math.Abs(*got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, *got, want)
	}
}

func TestExtractGroupsByTitle(t *testing.T) {
	table := loadTable(t, `Media Name,Duration,Total View Time,User Email
Lecture 1,10:00,5:00,a@x.edu
Lecture 1,10:00,10:00,b@x.edu
Lecture 2,600,300,a@x.edu
`)
	tables, err := Extract(table, 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(tables.Media) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(tables.Media))
	}

	first := tables.Media[0]
	if first.Title != "Lecture 1" || first.Key != "lecture 1" {
		t.Errorf("unexpected entity identity: %+v", first)
	}
	almost(t, "duration", first.DurationSeconds, 600)
	if first.UniqueViewers != 2 {
		t.Errorf("unique viewers = %d, want 2", first.UniqueViewers)
	}
	almost(t, "avg fraction", first.AvgViewFraction, 0.75)
	almost(t, "sum view seconds", first.SumViewSeconds, 900)

	if first.PctStudentsViewing != nil || first.OverallViewFraction != nil {
		t.Error("enrollment ratios should be indeterminate when enrolled is unknown")
	}
}

func TestExtractEnrollmentRatios(t *testing.T) {
	table := loadTable(t, `Media Name,Duration,Total View Time,User Email
Lecture 1,600,300,a@x.edu
Lecture 1,600,600,b@x.edu
`)
	tables, err := Extract(table, 4)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	e := tables.Media[0]
	almost(t, "pct viewing", e.PctStudentsViewing, 0.5)
	// 900 view seconds over 600s * 4 students.
	almost(t, "overall fraction", e.OverallViewFraction, 0.375)
}

func TestExtractZeroDurationIsIndeterminate(t *testing.T) {
	table := loadTable(t, `Media Name,Duration,Total View Time
Broken Clip,0,300
`)
	tables, err := Extract(table, 10)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	e := tables.Media[0]
	if e.AvgViewFraction != nil {
		t.Errorf("zero duration should leave fraction indeterminate, got %v", *e.AvgViewFraction)
	}
	if e.OverallViewFraction != nil {
		t.Error("zero duration should leave overall fraction indeterminate")
	}
}

func TestExtractViewerFallbackCount(t *testing.T) {
	table := loadTable(t, `Media Name,Duration,Total View Time
Lecture 1,600,300
Lecture 1,600,
Lecture 1,600,200
`)
	tables, err := Extract(table, 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := tables.Media[0].UniqueViewers; got != 2 {
		t.Errorf("viewer fallback count = %d, want 2 (rows with view time)", got)
	}
	if len(tables.Students) != 0 {
		t.Error("no viewer column should produce no student table")
	}
}

func TestExtractEmptyViewerColumnCountsZero(t *testing.T) {
	// A viewer column with no identifiers means zero distinct viewers; the
	// row-count stand-in applies only when the column is absent entirely.
	table := loadTable(t, `Media Name,Duration,Total View Time,User Email
Lecture 1,600,300,
Lecture 1,600,200,
`)
	tables, err := Extract(table, 4)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	e := tables.Media[0]
	if e.UniqueViewers != 0 {
		t.Errorf("unique viewers = %d, want 0", e.UniqueViewers)
	}
	almost(t, "pct viewing", e.PctStudentsViewing, 0)
}

func TestExtractMissingRequiredColumn(t *testing.T) {
	table := loadTable(t, "Student,Section\nA,1\n")
	_, err := Extract(table, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	var missing *tabular.MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	tables, err := Extract(&tabular.Table{}, 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(tables.Media) != 0 || len(tables.Students) != 0 {
		t.Fatalf("expected empty tables, got %+v", tables)
	}
}

func TestExtractStudentTable(t *testing.T) {
	table := loadTable(t, `Media Name,Duration,Total View Time,User Email
Lecture 1,600,300,a@x.edu
Lecture 2,400,400,a@x.edu
Lecture 1,600,600,b@x.edu
`)
	tables, err := Extract(table, 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(tables.Students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(tables.Students))
	}
	a := tables.Students[0]
	if a.Label != "S0001" {
		t.Errorf("label = %q", a.Label)
	}
	almost(t, "avg watched", a.AvgWatchedFraction, 0.75)
	// 700 viewed seconds over 1000 distinct catalog seconds.
	almost(t, "share of total", a.ShareOfTotal, 0.7)

	b := tables.Students[1]
	if b.Label != "S0002" {
		t.Errorf("label = %q", b.Label)
	}
	almost(t, "share of total b", b.ShareOfTotal, 0.6)
}

func TestExtractStudentTableUnknownBucket(t *testing.T) {
	// Rows without an identifier join one unknown bucket with its own label.
	table := loadTable(t, `Media Name,Duration,Total View Time,User Email
Lecture 1,600,300,a@x.edu
Lecture 1,600,150,
Lecture 2,400,100,
`)
	tables, err := Extract(table, 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(tables.Students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(tables.Students))
	}
	unknown := tables.Students[1]
	if unknown.Label != "S0002" {
		t.Errorf("label = %q", unknown.Label)
	}
	// (150/600 + 100/400) / 2 rows.
	almost(t, "avg watched", unknown.AvgWatchedFraction, 0.25)
	// 250 viewed seconds over 1000 distinct catalog seconds.
	almost(t, "share of total", unknown.ShareOfTotal, 0.25)
}
