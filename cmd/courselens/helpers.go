package main

import (
	"fmt"
	"strconv"

	"courselens/internal/config"
	"courselens/internal/reconcile"
	"courselens/internal/report"
)

// formatFraction renders a 0..1 fraction as a percentage, "-" when unknown.
func formatFraction(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

// formatNumber renders an optional float with one decimal, "-" when unknown.
func formatNumber(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

// formatSeconds renders optional seconds as a whole number, "-" when unknown.
func formatSeconds(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 0, 64)
}

func reportOptions(cfg *config.Config) report.Options {
	return report.Options{
		Matching: reconcile.Options{
			Threshold:   cfg.Matching.Threshold,
			FallbackMin: cfg.Matching.FallbackMin,
			TopK:        cfg.Matching.TopK,
		},
		AssignmentMinScore: cfg.Matching.AssignmentMinScore,
	}
}
