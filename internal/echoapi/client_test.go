package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestExtractItems(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"a":1},{"a":2}]`, 2},
		{"results envelope", `{"results":[{"a":1}]}`, 1},
		{"data envelope", `{"data":[{"a":1},{"a":2},{"a":3}]}`, 3},
		{"rows envelope", `{"rows":[]}`, 0},
		{"single object", `{"title":"x"}`, 1},
		{"null", `null`, 0},
		{"empty", ``, 0},
		{"non-map elements skipped", `[1,"x",{"a":1}]`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := extractItems([]byte(tt.body))
			if err != nil {
				t.Fatalf("extractItems: %v", err)
			}
			if len(items) != tt.want {
				t.Errorf("got %d items, want %d", len(items), tt.want)
			}
		})
	}
}

func TestViewerEngagementSectionFallback(t *testing.T) {
	var sectionHits, courseHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/sections/sec-1/analytics/viewers":
			sectionHits++
			http.NotFound(w, r)
		case "/api/v1/courses/sec-1/analytics/viewers":
			courseHits++
			fmt.Fprint(w, `{"results":[{"title":"Lecture 1"}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "t", server.Client())
	records, err := client.ViewerEngagement(context.Background(), "sec-1")
	if err != nil {
		t.Fatalf("ViewerEngagement: %v", err)
	}
	if sectionHits != 1 || courseHits != 1 {
		t.Errorf("hits = %d sections, %d courses", sectionHits, courseHits)
	}
	if len(records) != 1 || records[0].str("title") != "Lecture 1" {
		t.Errorf("records = %v", records)
	}
}

func TestViewerEngagementNonNotFoundStops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := New(server.URL, "t", server.Client())
	_, err := client.ViewerEngagement(context.Background(), "sec-1")
	statusErr, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusForbidden {
		t.Errorf("code = %d", statusErr.Code)
	}
}

func TestEngagementTableViewerRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sections/s/analytics/viewers" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `[
			{"media":{"title":"Intro","durationSeconds":600},"viewer":{"email":"a@x.edu"},"viewSeconds":300},
			{"mediaTitle":"Recap","duration":120,"viewTime":"60","viewerEmail":"b@x.edu"}
		]`)
	}))
	defer server.Close()

	client := New(server.URL, "t", server.Client())
	table, err := client.EngagementTable(context.Background(), "s")
	if err != nil {
		t.Fatalf("EngagementTable: %v", err)
	}
	want := [][]string{
		{"Intro", "600", "300", "300", "a@x.edu"},
		{"Recap", "120", "60", "", "b@x.edu"},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("rows = %v, want %v", table.Rows, want)
	}
}

func TestEngagementTableMediaFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/sections/s/analytics/viewers":
			fmt.Fprint(w, `{"results":[]}`)
		case "/api/v1/sections/s/analytics/media":
			fmt.Fprint(w, `[{"media":{"title":"Intro"},"analytics":{"durationSeconds":600,"totalViewSeconds":1200,"averageViewSeconds":400}}]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "t", server.Client())
	table, err := client.EngagementTable(context.Background(), "s")
	if err != nil {
		t.Fatalf("EngagementTable: %v", err)
	}
	want := [][]string{{"Intro", "600", "1200", "400", ""}}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("rows = %v, want %v", table.Rows, want)
	}
}

func TestEngagementTableDegradesOnStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer server.Close()

	client := New(server.URL, "t", server.Client())
	table, err := client.EngagementTable(context.Background(), "s")
	if err != nil {
		t.Fatalf("EngagementTable: %v", err)
	}
	if !table.IsEmpty() {
		t.Errorf("expected empty table, got %v", table.Rows)
	}
	if len(table.Headers) != 5 {
		t.Errorf("headers = %v", table.Headers)
	}
}
