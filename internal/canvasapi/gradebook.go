package canvasapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"courselens/internal/tabular"
	"courselens/internal/textutil"
)

// Assignment is one Canvas assignment record.
type Assignment struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	PointsPossible  *float64 `json:"points_possible"`
	GradingType     string   `json:"grading_type"`
	SubmissionTypes []string `json:"submission_types"`
}

// graded reports whether the assignment contributes to the gradebook.
func (a Assignment) graded() bool {
	if strings.EqualFold(a.GradingType, "not_graded") {
		return false
	}
	if len(a.SubmissionTypes) == 0 {
		return true
	}
	for _, t := range a.SubmissionTypes {
		if !strings.EqualFold(t, "not_graded") {
			return true
		}
	}
	return false
}

// Enrollment is one Canvas enrollment record with user and grade rollups.
type Enrollment struct {
	UserID        int64  `json:"user_id"`
	SISUserID     string `json:"sis_user_id"`
	SISLoginID    string `json:"sis_login_id"`
	IntegrationID string `json:"integration_id"`
	SectionID     int64  `json:"course_section_id"`
	User          struct {
		Name         string `json:"name"`
		SortableName string `json:"sortable_name"`
		LoginID      string `json:"login_id"`
		SISUserID    string `json:"sis_user_id"`
	} `json:"user"`
	Grades struct {
		FinalGrade         string   `json:"final_grade"`
		CurrentGrade       string   `json:"current_grade"`
		UnpostedFinalGrade string   `json:"unposted_final_grade"`
		FinalScore         *float64 `json:"final_score"`
		CurrentScore       *float64 `json:"current_score"`
		UnpostedFinalScore *float64 `json:"unposted_final_score"`
	} `json:"grades"`
}

// Submission is one student's score on one assignment.
type Submission struct {
	UserID       int64    `json:"user_id"`
	AssignmentID int64    `json:"assignment_id"`
	Score        *float64 `json:"score"`
}

var gradebookMetaColumns = []string{
	"Student",
	"SIS User ID",
	"SIS Login ID",
	"Integration ID",
	"ID",
	"Section",
	"Final Grade",
	"Current Grade",
	"Unposted Final Grade",
	"Final Score",
	"Current Score",
	"Unposted Final Score",
}

// BuildGradebook assembles a table shaped like the Canvas gradebook CSV
// export from API records: meta columns, one cleaned deduplicated column per
// graded assignment, a leading points-possible row, then one row per active
// student.
func (c *Client) BuildGradebook(ctx context.Context, courseID int64) (*tabular.Table, error) {
	assignments, err := c.ListAssignments(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrollments, err := c.ListStudentEnrollments(ctx, courseID)
	if err != nil {
		return nil, err
	}
	submissions, err := c.ListSubmissions(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if len(enrollments) == 0 {
		return &tabular.Table{Headers: []string{"Student"}}, nil
	}

	gradedAssignments := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.graded() {
			gradedAssignments = append(gradedAssignments, a)
		}
	}
	titles := dedupeTitles(gradedAssignments)

	scores := make(map[[2]int64]*float64, len(submissions))
	for _, sub := range submissions {
		if sub.UserID == 0 || sub.AssignmentID == 0 {
			continue
		}
		scores[[2]int64{sub.UserID, sub.AssignmentID}] = sub.Score
	}

	headers := append([]string(nil), gradebookMetaColumns...)
	for _, t := range titles {
		headers = append(headers, t.title)
	}

	rows := make([][]string, 0, len(enrollments)+1)

	pointsRow := make([]string, len(headers))
	pointsRow[0] = "Points Possible"
	for i, t := range titles {
		pointsRow[len(gradebookMetaColumns)+i] = formatFloat(t.assignment.PointsPossible)
	}
	rows = append(rows, pointsRow)

	for _, e := range enrollments {
		row := make([]string, len(headers))
		row[0] = studentName(e)
		row[1] = firstNonEmpty(e.SISUserID, e.User.SISUserID)
		row[2] = firstNonEmpty(e.SISLoginID, e.User.LoginID)
		row[3] = e.IntegrationID
		row[4] = formatID(e.UserID)
		row[5] = formatID(e.SectionID)
		row[6] = e.Grades.FinalGrade
		row[7] = e.Grades.CurrentGrade
		row[8] = e.Grades.UnpostedFinalGrade
		row[9] = formatFloat(e.Grades.FinalScore)
		row[10] = formatFloat(e.Grades.CurrentScore)
		row[11] = formatFloat(e.Grades.UnpostedFinalScore)
		for i, t := range titles {
			row[len(gradebookMetaColumns)+i] = formatFloat(scores[[2]int64{e.UserID, t.assignment.ID}])
		}
		rows = append(rows, row)
	}

	return &tabular.Table{Headers: headers, Rows: rows}, nil
}

type titledAssignment struct {
	assignment Assignment
	title      string
}

// dedupeTitles cleans assignment titles and makes them unique in order,
// suffixing repeats with " (2)", " (3)", and so on, mirroring how the CSV
// export disambiguates duplicate assignment names.
func dedupeTitles(assignments []Assignment) []titledAssignment {
	seen := make(map[string]int)
	out := make([]titledAssignment, 0, len(assignments))
	for _, a := range assignments {
		base := textutil.CleanHeaderID(a.Name)
		if base == "" {
			base = "Assignment"
		}
		count := seen[base]
		unique := base
		if count > 0 {
			unique = fmt.Sprintf("%s (%d)", base, count+1)
		}
		seen[base] = count + 1
		seen[unique] = 1
		out = append(out, titledAssignment{assignment: a, title: unique})
	}
	return out
}

func studentName(e Enrollment) string {
	if e.User.SortableName != "" {
		return e.User.SortableName
	}
	if e.User.Name != "" {
		return e.User.Name
	}
	if e.UserID != 0 {
		return strconv.FormatInt(e.UserID, 10)
	}
	return "Student"
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatID(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
