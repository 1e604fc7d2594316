package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tvmeta/internal/config"
	"tvmeta/internal/textmatch"
)

const stampLayout = "2006-01-02 15:04"

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(stampLayout)
}

func formatAge(now, t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	age := now.Sub(t).Round(time.Minute)
	if age < time.Minute {
		return "just now"
	}
	return age.String() + " ago"
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 3, 64)
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

// matchQuality labels how far a score falls short of an exact match using the
// configured gap thresholds.
func matchQuality(cfg *config.Config, score float64) string {
	thresholds := textmatch.DefaultThresholds()
	if cfg != nil {
		thresholds = textmatch.Thresholds{
			Minor:       cfg.Matching.MinorGap,
			Significant: cfg.Matching.SignificantGap,
			Major:       cfg.Matching.MajorGap,
		}
	}
	switch thresholds.Classify(1, score) {
	case textmatch.GapNone:
		return "strong"
	case textmatch.GapMinor:
		return "good"
	case textmatch.GapSignificant:
		return "weak"
	default:
		return "poor"
	}
}

func parseNonNegativeInt(label, raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", label, raw)
	}
	return value, nil
}
