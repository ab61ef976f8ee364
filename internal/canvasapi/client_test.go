package canvasapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"no next", `<https://x/api?page=1>; rel="first"`, ""},
		{
			"next present",
			`<https://x/api?page=1>; rel="current", <https://x/api?page=2>; rel="next"`,
			"https://x/api?page=2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextLink(tt.header); got != tt.want {
				t.Errorf("nextLink(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestListModulesPaginates(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("missing bearer token, got %q", got)
		}
		switch r.URL.Query().Get("page") {
		case "":
			if r.URL.Query().Get("include[]") != "items" {
				t.Errorf("missing include[]=items: %s", r.URL.RawQuery)
			}
			w.Header().Set("Link", fmt.Sprintf(`<%s%s?page=2>; rel="next"`, server.URL, r.URL.Path))
			fmt.Fprint(w, `[{"name":"Week 1","position":1,"items":[{"type":"Quiz","title":"Quiz 1","position":1}]}]`)
		case "2":
			fmt.Fprint(w, `[{"name":"Week 2","position":2,"items":[]}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "token-1", server.Client())
	modules, err := client.ListModules(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListModules: %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("expected 2 modules across pages, got %d", len(modules))
	}
	if modules[0].Name != "Week 1" || len(modules[0].Items) != 1 {
		t.Errorf("unexpected first module: %+v", modules[0])
	}
	if modules[1].Name != "Week 2" {
		t.Errorf("unexpected second module: %+v", modules[1])
	}
}

func TestGetAllStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, "bad", server.Client())
	_, err := client.ListModules(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error")
	}
	statusErr, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected StatusError, got %T: %v", err, err)
	}
	if statusErr.Code != http.StatusUnauthorized {
		t.Errorf("code = %d", statusErr.Code)
	}
}

func TestStudentCountDistinctUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"user_id":1},{"user_id":2},{"user_id":1}]`)
	}))
	defer server.Close()

	client := New(server.URL, "t", server.Client())
	count, err := client.StudentCount(context.Background(), 1)
	if err != nil {
		t.Fatalf("StudentCount: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestBuildGradebookShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/courses/7/assignments":
			fmt.Fprint(w, `[
				{"id":10,"name":"Essay 1 (1234567)","points_possible":10,"grading_type":"points"},
				{"id":11,"name":"Survey","grading_type":"not_graded"},
				{"id":12,"name":"Essay 1 - 9999999","points_possible":20,"grading_type":"points"}
			]`)
		case r.URL.Path == "/api/v1/courses/7/enrollments":
			fmt.Fprint(w, `[{"user_id":1,"user":{"sortable_name":"Doe, Jane"},"grades":{"final_grade":"B","final_score":85}}]`)
		case r.URL.Path == "/api/v1/courses/7/students/submissions":
			fmt.Fprint(w, `[{"user_id":1,"assignment_id":10,"score":9.5},{"user_id":1,"assignment_id":12,"score":null}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "t", server.Client())
	table, err := client.BuildGradebook(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildGradebook: %v", err)
	}

	// 12 meta columns plus the two graded assignments; the not_graded survey
	// is excluded and the duplicate cleaned title is disambiguated.
	if len(table.Headers) != 14 {
		t.Fatalf("headers = %v", table.Headers)
	}
	if table.Headers[12] != "Essay 1" || table.Headers[13] != "Essay 1 (2)" {
		t.Errorf("assignment headers = %v", table.Headers[12:])
	}
	if table.Cell(0, 0) != "Points Possible" || table.Cell(0, 12) != "10" {
		t.Errorf("points row = %v", table.Rows[0])
	}
	if table.Cell(1, 0) != "Doe, Jane" || table.Cell(1, 12) != "9.5" {
		t.Errorf("student row = %v", table.Rows[1])
	}
	if table.Cell(1, 13) != "" {
		t.Errorf("null score should be empty, got %q", table.Cell(1, 13))
	}
}

func TestBuildGradebookNoEnrollments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := New(server.URL, "t", server.Client())
	table, err := client.BuildGradebook(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildGradebook: %v", err)
	}
	if len(table.Headers) != 1 || !table.IsEmpty() {
		t.Fatalf("expected bare Student table, got %+v", table)
	}
}
