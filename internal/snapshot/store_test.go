package snapshot

import (
	"context"
	"errors"
	"testing"

	"courselens/internal/catalog"
	"courselens/internal/tabular"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Run: Run{CourseID: 42, SectionID: "sec-1", Enrolled: 30},
		Catalog: []catalog.Item{
			{Module: "Week 1", ModulePosition: 1, ItemType: "ExternalTool", ItemPosition: 1, Title: "Lecture 1", VideoTitle: "Lecture 1"},
		},
		Media: &tabular.Table{
			Headers: []string{"Media Title", "Video Duration", "Total View Time", "User Email"},
			Rows:    [][]string{{"Lecture 1", "600", "300", "a@x.edu"}},
		},
		Gradebook: &tabular.Table{
			Headers: []string{"Student", "Quiz 1"},
			Rows:    [][]string{{"Points Possible", "10"}, {"Doe, Jane", "9"}},
		},
	}
}

func TestSaveAndLoadLatest(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	run, err := store.SaveRun(ctx, testSnapshot())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected generated run ID")
	}

	loaded, err := store.LoadLatest(ctx)
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if loaded.ID != run.ID {
		t.Errorf("run ID = %s, want %s", loaded.ID, run.ID)
	}
	if loaded.CourseID != 42 || loaded.SectionID != "sec-1" || loaded.Enrolled != 30 {
		t.Errorf("run metadata = %+v", loaded.Run)
	}
	if len(loaded.Catalog) != 1 || loaded.Catalog[0].VideoTitle != "Lecture 1" {
		t.Errorf("catalog = %+v", loaded.Catalog)
	}
	if loaded.Media == nil || loaded.Media.Cell(0, 0) != "Lecture 1" {
		t.Errorf("media table = %+v", loaded.Media)
	}
	if loaded.Gradebook == nil || loaded.Gradebook.Cell(1, 1) != "9" {
		t.Errorf("gradebook table = %+v", loaded.Gradebook)
	}
}

func TestLoadLatestPicksNewestRun(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	first := testSnapshot()
	if _, err := store.SaveRun(ctx, first); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	second := testSnapshot()
	second.Enrolled = 31
	run2, err := store.SaveRun(ctx, second)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	loaded, err := store.LoadLatest(ctx)
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if loaded.ID != run2.ID || loaded.Enrolled != 31 {
		t.Errorf("loaded run = %+v, want %s", loaded.Run, run2.ID)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != run2.ID {
		t.Errorf("runs = %+v", runs)
	}
}

func TestLoadRunByID(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	run, err := store.SaveRun(ctx, testSnapshot())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	loaded, err := store.LoadRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if loaded.ID != run.ID {
		t.Errorf("run ID = %s", loaded.ID)
	}

	if _, err := store.LoadRun(ctx, "missing"); !errors.Is(err, ErrNoRuns) {
		t.Errorf("expected ErrNoRuns, got %v", err)
	}
}

func TestLoadLatestEmptyStore(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if _, err := store.LoadLatest(context.Background()); !errors.Is(err, ErrNoRuns) {
		t.Errorf("expected ErrNoRuns, got %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.SaveRun(context.Background(), testSnapshot()); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("runs after reopen = %d", len(runs))
	}
}

func TestMigrationsApplyOnce(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	var count int
	row := reopened.db.QueryRowContext(context.Background(),
		"SELECT COUNT(1) FROM schema_migrations WHERE version = ?", "0001_init")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if count != 1 {
		t.Errorf("0001_init recorded %d times, want 1", count)
	}
}
