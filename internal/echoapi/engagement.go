package echoapi

import (
	"context"
	"errors"

	"courselens/internal/tabular"
)

// engagementHeaders mirror the legacy Echo360 CSV export columns that the
// media extractor locates by candidate name.
var engagementHeaders = []string{
	"Media Title",
	"Video Duration",
	"Total View Time",
	"Average View Time",
	"User Email",
}

// EngagementTable assembles the per-viewer engagement table for a section.
// When the viewers endpoint yields nothing it falls back to per-media
// summaries, which carry no viewer identity. Endpoint-level HTTP failures
// degrade to the next source rather than aborting.
func (c *Client) EngagementTable(ctx context.Context, sectionID string) (*tabular.Table, error) {
	viewers, err := c.ViewerEngagement(ctx, sectionID)
	if err != nil {
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			return nil, err
		}
		viewers = nil
	}

	table := &tabular.Table{Headers: append([]string(nil), engagementHeaders...)}
	for _, rec := range viewers {
		media := rec.sub("media")
		viewer := rec.sub("viewer")
		table.Rows = append(table.Rows, []string{
			firstOf(media.str("title", "name"), rec.str("mediaTitle", "media_name", "title")),
			firstOf(media.num("durationSeconds"), rec.num("durationSeconds", "mediaDuration", "duration")),
			rec.num("viewSeconds", "viewTimeSeconds", "totalViewSeconds", "viewTime"),
			rec.num("averageViewSeconds", "avgViewSeconds", "averageViewTimeSeconds", "averageViewTime", "viewSeconds"),
			firstOf(viewer.str("email", "username"), rec.str("viewerEmail", "viewer")),
		})
	}
	if !table.IsEmpty() {
		return table, nil
	}

	summaries, err := c.MediaSummaries(ctx, sectionID)
	if err != nil {
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			return nil, err
		}
		summaries = nil
	}
	for _, rec := range summaries {
		media := rec.sub("media")
		analytics := rec.sub("analytics")
		table.Rows = append(table.Rows, []string{
			firstOf(media.str("title", "name"), rec.str("title")),
			firstOf(media.num("durationSeconds"), rec.num("durationSeconds"), analytics.num("durationSeconds"), rec.num("mediaDuration")),
			firstOf(rec.num("totalViewSeconds"), analytics.num("totalViewSeconds")),
			firstOf(rec.num("averageViewSeconds"), analytics.num("averageViewSeconds")),
			"",
		})
	}
	return table, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
