package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"tvmeta/internal/config"
	"tvmeta/internal/logging"
	"tvmeta/internal/metastore"
	"tvmeta/internal/resolver"
	"tvmeta/internal/sweeper"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the metadata cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheSweepCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

type cacheStatsOutput struct {
	metastore.Stats
	DBPath        string `json:"db_path"`
	SchemaVersion string `json:"schema_version"`
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cached record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(runCtx context.Context, _ *config.Config, engine *resolver.Engine) error {
				store := engine.Store()
				stats, err := store.Stats(runCtx)
				if err != nil {
					return err
				}
				version, err := store.SchemaVersion(runCtx)
				if err != nil {
					return err
				}
				out := cacheStatsOutput{Stats: stats, DBPath: store.Path(), SchemaVersion: version}
				if ctx.jsonOutput() {
					return writeJSON(cmd, out)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues([][2]string{
					{"Database", out.DBPath},
					{"Schema", out.SchemaVersion},
					{"Series", strconv.Itoa(stats.Series)},
					{"Seasons", strconv.Itoa(stats.Seasons)},
					{"Episodes", strconv.Itoa(stats.Episodes)},
					{"Artworks", strconv.Itoa(stats.Artworks)},
					{"Oldest sync", formatStamp(stats.OldestSyncAt)},
					{"Newest sync", formatStamp(stats.NewestSyncAt)},
				}))
				return nil
			})
		},
	}
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached series, most recently synced first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(runCtx context.Context, cfg *config.Config, engine *resolver.Engine) error {
				store := engine.Store()
				queryLimit := limit
				if strings.TrimSpace(filter) != "" {
					queryLimit = 0
				}
				series, err := store.ListSeries(runCtx, queryLimit)
				if err != nil {
					return err
				}
				series = filterSeries(series, filter)
				if limit > 0 && len(series) > limit {
					series = series[:limit]
				}
				if ctx.jsonOutput() {
					if series == nil {
						series = []*metastore.Series{}
					}
					return writeJSON(cmd, series)
				}
				if len(series) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No cached series")
					return nil
				}
				now := store.Now()
				rows := make([][]string, 0, len(series))
				for _, s := range series {
					rows = append(rows, []string{
						strconv.FormatInt(s.ID, 10),
						s.Name,
						string(s.Status),
						formatStamp(s.LastSyncedAt),
						formatAge(now, s.LastSyncedAt),
						yesNo(store.Stale(s.LastSyncedAt, cfg.StaleAfter())),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Status", "Synced", "Age", "Stale"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum rows to show (0 for all)")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Fuzzy filter on series name")
	return cmd
}

// filterSeries keeps series whose name fuzzily contains filter, closest first.
func filterSeries(series []*metastore.Series, filter string) []*metastore.Series {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return series
	}
	names := make([]string, len(series))
	for i, s := range series {
		names[i] = s.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(filter, names)
	sort.Stable(ranks)
	out := make([]*metastore.Series, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, series[rank.OriginalIndex])
	}
	return out
}

type sweepOutput struct {
	metastore.SweepResult
	Ran    bool   `json:"ran"`
	MaxAge string `json:"max_age"`
}

func newCacheSweepCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete cached records older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxAge < 0 {
				return errors.New("--max-age must not be negative")
			}
			return ctx.withEngine(cmd, func(runCtx context.Context, cfg *config.Config, engine *resolver.Engine) error {
				age := maxAge
				if age == 0 {
					age = cfg.Retention()
				}
				sw, err := sweeper.New(engine, cfg.Cache.LockPath, cfg.SweepInterval(), age, logging.NewNop())
				if err != nil {
					return err
				}
				result, ran, err := sw.RunOnce(runCtx)
				if err != nil {
					return err
				}
				out := sweepOutput{SweepResult: result, Ran: ran, MaxAge: age.String()}
				if ctx.jsonOutput() {
					return writeJSON(cmd, out)
				}
				if !ran {
					fmt.Fprintf(cmd.OutOrStdout(), "Another process holds %s; sweep skipped\n", sw.LockPath())
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Swept %d records older than %s (series %d, seasons %d, episodes %d, artworks %d)\n",
					result.Total(), age, result.Series, result.Seasons, result.Episodes, result.Artworks)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Age threshold (default cache.retention_hours)")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to clear the cache without --yes")
			}
			return ctx.withEngine(cmd, func(runCtx context.Context, _ *config.Config, engine *resolver.Engine) error {
				result, err := engine.Store().Clear(runCtx)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records\n", result.Total())
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&confirm, "yes", "y", false, "Confirm removal")
	return cmd
}
