package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"courselens/internal/media"
	"courselens/internal/report"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var jsonOut, yamlOut bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Show how catalog videos resolved against Echo360 media",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			snap, err := loadSnapshot(cmd.Context(), ctx, runID)
			if err != nil {
				return err
			}

			mediaTables, err := media.Extract(snap.Media, snap.Enrolled)
			if err != nil {
				return fmt.Errorf("extract engagement: %w", err)
			}
			videos := report.MatchVideos(snap.Catalog, mediaTables.Media, reportOptions(cfg).Matching)

			switch {
			case jsonOut:
				return writeJSON(cmd, videos)
			case yamlOut:
				return writeYAML(cmd, videos)
			}

			headers := []string{"Module", "Catalog Title", "Matched Media", "Method", "Score", "Duration (s)"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}
			rows := make([][]string, 0, len(videos))
			matched := 0
			for _, v := range videos {
				mediaTitle := "-"
				method := "-"
				score := "-"
				duration := "-"
				if v.Entity != nil {
					mediaTitle = v.Entity.Title
					method = string(v.Method)
					score = strconv.Itoa(v.Score)
					duration = formatSeconds(v.Entity.DurationSeconds)
					matched++
				}
				rows = append(rows, []string{v.Item.Module, v.Item.VideoTitle, mediaTitle, method, score, duration})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			fmt.Fprintf(out, "\nMatched %d of %d catalog videos (%d media rows)\n",
				matched, len(videos), len(mediaTables.Media))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Use a specific snapshot run instead of the latest")
	addOutputFlags(cmd, &jsonOut, &yamlOut)
	return cmd
}
