package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut, yamlOut bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved snapshot runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			switch {
			case jsonOut:
				return writeJSON(cmd, runs)
			case yamlOut:
				return writeYAML(cmd, runs)
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snapshots saved yet; run 'courselens fetch' first.")
				return nil
			}

			headers := []string{"Run", "Course", "Section", "Enrolled", "Fetched"}
			aligns := []columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignLeft}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID,
					strconv.FormatInt(r.CourseID, 10),
					r.SectionID,
					strconv.Itoa(r.Enrolled),
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list (0 for all)")
	addOutputFlags(cmd, &jsonOut, &yamlOut)
	return cmd
}
