package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tvmeta/internal/config"
	"tvmeta/internal/metastore"
	"tvmeta/internal/resolver"
)

type seriesOutput struct {
	Query        string                `json:"query"`
	Match        *resolver.SeriesMatch `json:"match"`
	MatchQuality string                `json:"match_quality,omitempty"`
}

func newSeriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "series <name>",
		Short: "Resolve a series by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return ctx.withEngine(cmd, func(runCtx context.Context, cfg *config.Config, engine *resolver.Engine) error {
				match, err := engine.ResolveSeries(runCtx, name)
				if err != nil {
					return err
				}
				out := seriesOutput{Query: name, Match: match}
				if match != nil {
					out.MatchQuality = matchQuality(cfg, match.Score)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, out)
				}
				if match == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "No series found for %q\n", name)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSeriesMatches(cfg, []*resolver.SeriesMatch{match}))
				return nil
			})
		},
	}
}

func renderSeriesMatches(cfg *config.Config, matches []*resolver.SeriesMatch) string {
	rows := make([][]string, 0, len(matches))
	for _, match := range matches {
		s := match.Series
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			string(s.Status),
			orDash(s.FirstAired),
			formatScore(match.Score),
			matchQuality(cfg, match.Score),
			string(match.Source),
		})
	}
	return renderTable(
		[]string{"ID", "Name", "Status", "First Aired", "Score", "Match Quality", "Source"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func newEpisodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "episode <series-id> <season> <episode>",
		Short: "Resolve an episode by series ID and numbers",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			seriesID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || seriesID <= 0 {
				return fmt.Errorf("series id must be a positive integer, got %q", args[0])
			}
			season, err := parseNonNegativeInt("season", args[1])
			if err != nil {
				return err
			}
			number, err := parseNonNegativeInt("episode", args[2])
			if err != nil {
				return err
			}
			return ctx.withEngine(cmd, func(runCtx context.Context, _ *config.Config, engine *resolver.Engine) error {
				episode, err := engine.ResolveEpisode(runCtx, seriesID, season, number)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, episode)
				}
				if episode == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "No episode S%02dE%02d found for series %d\n", season, number, seriesID)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderEpisode(episode))
				return nil
			})
		},
	}
}

func renderEpisode(ep *metastore.Episode) string {
	return renderKeyValues([][2]string{
		{"Episode ID", strconv.FormatInt(ep.ID, 10)},
		{"Series ID", strconv.FormatInt(ep.SeriesID, 10)},
		{"Code", fmt.Sprintf("S%02dE%02d", ep.SeasonNumber, ep.Number)},
		{"Name", orDash(ep.Name)},
		{"Aired", orDash(ep.Aired)},
		{"Runtime", runtimeLabel(ep.Runtime)},
		{"Finale", orDash(ep.FinaleType)},
		{"Synced", formatStamp(ep.LastSyncedAt)},
	})
}

func runtimeLabel(minutes int) string {
	if minutes <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d min", minutes)
}

func newArtworkCommand(ctx *commandContext) *cobra.Command {
	var season, episode int

	cmd := &cobra.Command{
		Use:   "artwork <name>",
		Short: "Pick the best artwork for a series or season",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			var seasonPtr, episodePtr *int
			if cmd.Flags().Changed("season") {
				if season < 0 {
					return fmt.Errorf("--season must be non-negative")
				}
				seasonPtr = &season
			}
			if cmd.Flags().Changed("episode") {
				if seasonPtr == nil {
					return fmt.Errorf("--episode requires --season")
				}
				if episode < 0 {
					return fmt.Errorf("--episode must be non-negative")
				}
				episodePtr = &episode
			}
			return ctx.withEngine(cmd, func(runCtx context.Context, _ *config.Config, engine *resolver.Engine) error {
				result, err := engine.ResolveCurrentSeasonArtwork(runCtx, name, seasonPtr, episodePtr)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				if result == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "No artwork found for %q\n", name)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderArtwork(result))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&season, "season", "s", 0, "Season number")
	cmd.Flags().IntVarP(&episode, "episode", "e", 0, "Episode number (requires --season)")
	return cmd
}

func renderArtwork(res *resolver.ArtworkResult) string {
	season := "-"
	if res.SeasonNumber != nil {
		season = strconv.Itoa(*res.SeasonNumber)
	}
	episode := "-"
	if res.Episode != nil {
		episode = fmt.Sprintf("S%02dE%02d %s", res.Episode.SeasonNumber, res.Episode.Number, res.Episode.Name)
	}
	return renderKeyValues([][2]string{
		{"Series", fmt.Sprintf("%s (%d)", res.SeriesName, res.SeriesID)},
		{"Status", string(res.SeriesStatus)},
		{"Context", string(res.Context)},
		{"Type", res.Type.String()},
		{"Language", orDash(res.Language)},
		{"Season", season},
		{"Final season", yesNo(res.IsFinalSeason)},
		{"Episode", episode},
		{"Finale", orDash(res.FinaleType)},
		{"URL", res.URL},
		{"Thumbnail", orDash(res.ThumbnailURL)},
	})
}

func newWarmCommand(ctx *commandContext) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "warm [name...]",
		Short: "Resolve several series concurrently to fill the cache",
		Long:  "Resolve the given series names, or the [warm] series list from the configuration when no names are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(runCtx context.Context, cfg *config.Config, engine *resolver.Engine) error {
				names := args
				if len(names) == 0 {
					names = cfg.Warm.Series
				}
				if len(names) == 0 {
					return fmt.Errorf("no series names given and warm.series is empty")
				}
				workers := cfg.Warm.Concurrency
				if cmd.Flags().Changed("concurrency") {
					workers = concurrency
				}
				results := engine.Warm(runCtx, names, workers)
				if ctx.jsonOutput() {
					return writeJSON(cmd, results)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderWarmResults(cfg, results))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "n", 0, "Maximum concurrent lookups (default warm.concurrency)")
	return cmd
}

func renderWarmResults(cfg *config.Config, results []resolver.WarmResult) string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		row := []string{res.Name, "-", "-", "-", "-", "-", orDash(res.Error)}
		if res.Match != nil && res.Match.Series != nil {
			row[1] = strconv.FormatInt(res.Match.Series.ID, 10)
			row[2] = res.Match.Series.Name
			row[3] = formatScore(res.Match.Score)
			row[4] = matchQuality(cfg, res.Match.Score)
			row[5] = string(res.Match.Source)
		} else if res.Err == nil {
			row[6] = "not found"
		}
		rows = append(rows, row)
	}
	return renderTable(
		[]string{"Query", "ID", "Name", "Score", "Match Quality", "Source", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	)
}
