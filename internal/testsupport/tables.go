package testsupport

import "courselens/internal/tabular"

// EngagementTable returns a small per-viewer engagement table: one video
// watched at 50% and 100% by two viewers.
func EngagementTable() *tabular.Table {
	return &tabular.Table{
		Headers: []string{"Media Title", "Video Duration", "Total View Time", "User Email"},
		Rows: [][]string{
			{"Lecture 1", "600", "300", "a@x.edu"},
			{"Lecture 1", "600", "600", "b@x.edu"},
		},
	}
}

// GradebookTable returns a small gradebook export: a points-possible row and
// two students on one assignment.
func GradebookTable() *tabular.Table {
	return &tabular.Table{
		Headers: []string{"Student", "Quiz 1"},
		Rows: [][]string{
			{"Points Possible", "10"},
			{"Doe, Jane", "8"},
			{"Roe, Sam", "10"},
		},
	}
}
