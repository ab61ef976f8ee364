package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"courselens/internal/canvasapi"
	"courselens/internal/echoapi"
	"courselens/internal/logging"
	"courselens/internal/snapshot"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch course data from Canvas and Echo360 and save a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireCanvas(); err != nil {
				return err
			}
			if err := cfg.RequireEcho(); err != nil {
				return err
			}

			logger := logging.WithComponent(ctx.ensureLogger(), "fetch")
			cmdCtx := cmd.Context()

			canvas := canvasapi.New(cfg.Canvas.BaseURL, cfg.Canvas.Token, nil)
			echo := echoapi.New(cfg.Echo.BaseURL, cfg.Echo.Token, nil)

			items, err := canvas.BuildOrder(cmdCtx, cfg.Canvas.CourseID)
			if err != nil {
				return fmt.Errorf("fetch module catalog: %w", err)
			}
			logger.Info("fetched module catalog", "items", len(items))

			enrolled, err := canvas.StudentCount(cmdCtx, cfg.Canvas.CourseID)
			if err != nil {
				return fmt.Errorf("fetch student count: %w", err)
			}
			logger.Info("fetched enrollment", "students", enrolled)

			gradeTable, err := canvas.BuildGradebook(cmdCtx, cfg.Canvas.CourseID)
			if err != nil {
				return fmt.Errorf("build gradebook: %w", err)
			}
			logger.Info("built gradebook", "columns", len(gradeTable.Headers), "rows", len(gradeTable.Rows))

			mediaTable, err := echo.EngagementTable(cmdCtx, cfg.Echo.SectionID)
			if err != nil {
				return fmt.Errorf("fetch engagement: %w", err)
			}
			logger.Info("fetched engagement", "rows", len(mediaTable.Rows))

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.SaveRun(cmdCtx, &snapshot.Snapshot{
				Run: snapshot.Run{
					CourseID:  cfg.Canvas.CourseID,
					SectionID: cfg.Echo.SectionID,
					Enrolled:  enrolled,
				},
				Catalog:   items,
				Media:     mediaTable,
				Gradebook: gradeTable,
			})
			if err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s (catalog items: %d, engagement rows: %d, students: %d)\n",
				run.ID, len(items), len(mediaTable.Rows), enrolled)
			return nil
		},
	}
}
