package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"courselens/internal/gradebook"
	"courselens/internal/media"
	"courselens/internal/report"
	"courselens/internal/snapshot"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var jsonOut, yamlOut, students bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build module engagement and assignment reports from the last snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			snap, err := loadSnapshot(cmd.Context(), ctx, runID)
			if err != nil {
				return err
			}

			rep, err := buildReport(snap, reportOptions(cfg))
			if err != nil {
				return err
			}

			switch {
			case jsonOut:
				return writeJSON(cmd, rep)
			case yamlOut:
				return writeYAML(cmd, rep)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Snapshot %s (course %d, fetched %s)\n\n",
				snap.ID, snap.CourseID, snap.CreatedAt.Local().Format("2006-01-02 15:04"))

			fmt.Fprintln(out, "Module media engagement")
			fmt.Fprintln(out, renderModuleMedia(rep.ModuleMedia))
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Module assignments")
			fmt.Fprintln(out, renderModuleAssignments(rep.ModuleAssignments))

			if students {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Student engagement")
				fmt.Fprintln(out, renderStudents(rep.Students))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Report a specific snapshot run instead of the latest")
	cmd.Flags().BoolVar(&students, "students", false, "Include the de-identified student engagement table")
	addOutputFlags(cmd, &jsonOut, &yamlOut)
	return cmd
}

func loadSnapshot(cmdCtx context.Context, ctx *commandContext, runID string) (*snapshot.Snapshot, error) {
	store, err := ctx.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if runID != "" {
		return store.LoadRun(cmdCtx, runID)
	}
	snap, err := store.LoadLatest(cmdCtx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot (run 'courselens fetch' first): %w", err)
	}
	return snap, nil
}

func buildReport(snap *snapshot.Snapshot, opts report.Options) (*report.Report, error) {
	mediaTables, err := media.Extract(snap.Media, snap.Enrolled)
	if err != nil {
		return nil, fmt.Errorf("extract engagement: %w", err)
	}
	gradeTables, err := gradebook.Extract(snap.Gradebook)
	if err != nil {
		return nil, fmt.Errorf("extract gradebook: %w", err)
	}
	return report.Build(snap.Catalog, mediaTables, gradeTables, snap.Enrolled, opts), nil
}

func renderModuleMedia(rows []report.ModuleMediaSummary) string {
	headers := []string{"Module", "Videos", "Avg View", "Avg Viewers", "Overall View"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Module,
			strconv.Itoa(r.MatchedVideos),
			formatFraction(r.AvgViewFraction),
			formatNumber(r.AvgUniqueViewers),
			formatFraction(r.AvgOverallViewFraction),
		})
	}
	return renderTable(headers, out, aligns)
}

func renderModuleAssignments(rows []report.ModuleAssignmentSummary) string {
	headers := []string{"Module", "Assignments", "Turned In", "Avg Score (nonzero)"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Module,
			strconv.Itoa(r.Assignments),
			formatFraction(r.AvgTurnedInRate),
			formatFraction(r.AvgExcludingZeros),
		})
	}
	return renderTable(headers, out, aligns)
}

func renderStudents(rows []media.StudentEngagement) string {
	headers := []string{"Student", "Avg Watched", "Share of Catalog"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Label,
			formatFraction(r.AvgWatchedFraction),
			formatFraction(r.ShareOfTotal),
		})
	}
	return renderTable(headers, out, aligns)
}
