package catalog

import (
	"errors"
	"testing"
)

func TestBuildOrderFlattensByPosition(t *testing.T) {
	modules := []Module{
		{
			Name:     "Week 2",
			Position: 2,
			Items: []ModuleItem{
				{Type: "Assignment", Title: "Essay 1", Position: 1},
			},
		},
		{
			Name:     "Week 1",
			Position: 1,
			Items: []ModuleItem{
				{Type: "ExternalTool", Title: "Lecture 1 (10:00)", Position: 2, ExternalURL: "https://echo360.org/media/abc"},
				{Type: "Quiz", Title: "Quiz 1", Position: 1},
			},
		},
	}

	items := BuildOrder(modules, nil)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Module != "Week 1" || items[0].Title != "Quiz 1" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].VideoTitle != "Lecture 1" || !items[1].IsVideo() {
		t.Errorf("video title not recognized: %+v", items[1])
	}
	if items[2].Module != "Week 2" || !items[2].IsAssignment() {
		t.Errorf("unexpected last item: %+v", items[2])
	}
}

func TestBuildOrderNonEchoExternalTool(t *testing.T) {
	modules := []Module{{
		Name:     "Week 1",
		Position: 1,
		Items:    []ModuleItem{{Type: "ExternalTool", Title: "Some Tool", Position: 1, ExternalURL: "https://other.example.com"}},
	}}
	items := BuildOrder(modules, nil)
	if len(items) != 1 || items[0].IsVideo() {
		t.Fatalf("non-echo tool should stay a plain row: %+v", items)
	}
}

func TestBuildOrderPageEmbeds(t *testing.T) {
	body := `<p>intro</p>
<iframe src="https://echo360.org/media/1" title="Embedded Lecture (12:34)"></iframe>
<iframe src="https://example.com/other" title="Unrelated"></iframe>
<iframe src="/courses/1/external_tools/retrieve?x=1" title="Tool Lecture - 123456"></iframe>`

	modules := []Module{{
		Name:     "Week 1",
		Position: 1,
		Items:    []ModuleItem{{Type: "Page", Title: "Lecture Page", Position: 1, PageURL: "lecture-page"}},
	}}

	items := BuildOrder(modules, func(pageURL string) (string, error) {
		if pageURL != "lecture-page" {
			t.Fatalf("unexpected page url %q", pageURL)
		}
		return body, nil
	})

	if len(items) != 2 {
		t.Fatalf("expected one row per embed, got %+v", items)
	}
	if items[0].VideoTitle != "Embedded Lecture" || items[1].VideoTitle != "Tool Lecture" {
		t.Errorf("unexpected embed titles: %q, %q", items[0].VideoTitle, items[1].VideoTitle)
	}
	if items[0].Title != "Lecture Page" {
		t.Errorf("embed rows keep the page title, got %q", items[0].Title)
	}
}

func TestBuildOrderPageFetchErrorKeepsRow(t *testing.T) {
	modules := []Module{{
		Name:     "Week 1",
		Position: 1,
		Items:    []ModuleItem{{Type: "Page", Title: "Broken Page", Position: 1, PageURL: "broken"}},
	}}
	items := BuildOrder(modules, func(string) (string, error) {
		return "", errors.New("boom")
	})
	if len(items) != 1 || items[0].IsVideo() {
		t.Fatalf("fetch failure should degrade to a plain page row: %+v", items)
	}
}

func TestExtractEchoEmbeds(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty", "", 0},
		{"no iframes", "<p>hello</p>", 0},
		{"untitled iframe skipped", `<iframe src="https://echo360.org/m/1"></iframe>`, 0},
		{"echo iframe", `<iframe src="https://echo360.org/m/1" title="L1"></iframe>`, 1},
		{"retrieve iframe", `<iframe src="/external_tools/retrieve?id=2" title="L2"></iframe>`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractEchoEmbeds(tt.body); len(got) != tt.want {
				t.Errorf("ExtractEchoEmbeds = %v, want %d titles", got, tt.want)
			}
		})
	}
}
