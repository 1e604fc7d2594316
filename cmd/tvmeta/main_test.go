package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tvmeta/internal/config"
	"tvmeta/internal/metastore"
	"tvmeta/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *metastore.Store
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("TVDB_API_KEY", "")
	t.Setenv("TVDB_PIN", "")
	t.Setenv("TVMETA_CATALOG_TOKEN", "")

	cfg := testsupport.NewConfig(t)
	content := fmt.Sprintf(`[cache]
db_path = %q
lock_path = %q

[warm]
series = ["South Park", "Lost"]

[logging]
level = "error"
`, cfg.Cache.DBPath, cfg.Cache.LockPath)
	configPath := testsupport.WriteConfigFile(t, testsupport.BaseDir(cfg), content)

	store := testsupport.MustOpenStore(t, cfg)
	seedCatalog(t, store)
	return &cliTestEnv{cfg: cfg, store: store, configPath: configPath}
}

func seedCatalog(t *testing.T, store *metastore.Store) {
	t.Helper()
	ctx := context.Background()
	eng := "eng"

	if _, err := store.UpsertSeries(ctx, metastore.Series{
		ID: 75897, Name: "South Park", Status: metastore.StatusContinuing, FirstAired: "1997-08-13",
	}); err != nil {
		t.Fatalf("seed series: %v", err)
	}
	testsupport.SeedSeries(t, store, 73739, "Lost")
	if _, err := store.UpsertSeason(ctx, metastore.Season{ID: 7589701, Number: 1}, 75897); err != nil {
		t.Fatalf("seed season: %v", err)
	}
	if _, err := store.UpsertEpisode(ctx, metastore.Episode{
		ID: 340, SeasonNumber: 1, Number: 1, Name: "Cartman Gets an Anal Probe", Runtime: 22,
	}, 7589701, 75897); err != nil {
		t.Fatalf("seed episode: %v", err)
	}
	seasonID := int64(7589701)
	if _, err := store.UpsertArtworks(ctx, []metastore.Artwork{
		{ID: 9001, Image: "/banners/seasons/1.jpg", Type: 7, Width: 680, Height: 1000, Language: &eng},
	}, 75897, &seasonID); err != nil {
		t.Fatalf("seed artwork: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestSeriesCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"series", "south", "park"}, env.configPath)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	requireContains(t, out, "75897")
	requireContains(t, out, "South Park")
	requireContains(t, out, "strong")
	requireContains(t, out, "cache")
}

func TestSeriesCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "series", "South Park"}, env.configPath)
	if err != nil {
		t.Fatalf("series --json: %v", err)
	}
	var decoded seriesOutput
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if decoded.Match == nil || decoded.Match.Series.ID != 75897 || decoded.MatchQuality != "strong" {
		t.Fatalf("unexpected JSON output %+v", decoded)
	}
}

func TestSeriesCommandNotFound(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"series", "Firefly"}, env.configPath)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	requireContains(t, out, `No series found for "Firefly"`)
}

func TestEpisodeCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"episode", "75897", "1", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("episode: %v", err)
	}
	requireContains(t, out, "S01E01")
	requireContains(t, out, "Cartman Gets an Anal Probe")
	requireContains(t, out, "22 min")

	out, _, err = runCLI(t, []string{"episode", "75897", "4", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("episode missing: %v", err)
	}
	requireContains(t, out, "No episode S04E01")

	if _, _, err := runCLI(t, []string{"episode", "abc", "1", "1"}, env.configPath); err == nil {
		t.Fatal("expected error for non-numeric series id")
	}
	if _, _, err := runCLI(t, []string{"episode", "75897", "-1", "1"}, env.configPath); err == nil {
		t.Fatal("expected error for negative season")
	}
}

func TestArtworkCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"artwork", "South Park", "--season", "1", "--episode", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("artwork: %v", err)
	}
	requireContains(t, out, "artworks.thetvdb.com/banners/seasons/1.jpg")
	requireContains(t, out, "season")
	requireContains(t, out, "S01E01")

	if _, _, err := runCLI(t, []string{"artwork", "South Park", "--episode", "1"}, env.configPath); err == nil {
		t.Fatal("expected --episode without --season to fail")
	}

	out, _, err = runCLI(t, []string{"artwork", "Lost"}, env.configPath)
	if err != nil {
		t.Fatalf("artwork without art: %v", err)
	}
	requireContains(t, out, `No artwork found for "Lost"`)
}

func TestWarmCommandUsesConfiguredList(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "warm"}, env.configPath)
	if err != nil {
		t.Fatalf("warm: %v", err)
	}
	var results []struct {
		Name  string `json:"name"`
		Match *struct {
			Series struct {
				ID int64 `json:"id"`
			} `json:"series"`
		} `json:"match"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(results) != 2 || results[0].Name != "South Park" || results[1].Name != "Lost" {
		t.Fatalf("unexpected warm results %+v", results)
	}
	if results[0].Match == nil || results[0].Match.Series.ID != 75897 {
		t.Fatalf("expected South Park resolved, got %+v", results[0])
	}

	out, _, err = runCLI(t, []string{"warm", "Firefly", "--concurrency", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("warm names: %v", err)
	}
	requireContains(t, out, "Firefly")
	requireContains(t, out, "not found")
}

func TestCacheStatsAndList(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "0001_init")
	requireContains(t, out, env.cfg.Cache.DBPath)

	out, _, err = runCLI(t, []string{"--json", "cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats --json: %v", err)
	}
	var stats cacheStatsOutput
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Series != 2 || stats.Seasons != 1 || stats.Episodes != 1 || stats.Artworks != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	out, _, err = runCLI(t, []string{"cache", "list", "--filter", "sth prk"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "South Park")
	if strings.Contains(out, "Lost") {
		t.Fatalf("filter should exclude Lost: %q", out)
	}
}

func TestCacheSweepAndClear(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"cache", "sweep"}, env.configPath)
	if err != nil {
		t.Fatalf("cache sweep: %v", err)
	}
	requireContains(t, out, "Swept 0 records")

	if _, _, err := runCLI(t, []string{"cache", "clear"}, env.configPath); err == nil {
		t.Fatal("expected clear without --yes to fail")
	}
	out, _, err = runCLI(t, []string{"cache", "clear", "--yes"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 5 records")

	stats, err := env.store.Stats(context.Background())
	if err != nil || stats.Series != 0 {
		t.Fatalf("expected empty cache, got %+v, %v", stats, err)
	}
}

func TestConfigInitShowAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[catalog]")
	requireContains(t, out, env.cfg.Cache.DBPath)

	out, _, err = runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Catalog credentials: no")
}

func TestMatchQualityLabels(t *testing.T) {
	cfg := config.Default()
	cases := map[float64]string{1: "strong", 0.85: "good", 0.6: "weak", 0.2: "poor"}
	for score, want := range cases {
		if got := matchQuality(&cfg, score); got != want {
			t.Fatalf("matchQuality(%v) = %q, want %q", score, got, want)
		}
	}
}

func TestDaemonStatusAndStopWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"daemon", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("daemon status: %v", err)
	}
	requireContains(t, out, "Running")
	requireContains(t, out, "no")

	out, _, err = runCLI(t, []string{"daemon", "stop"}, env.configPath)
	if err != nil {
		t.Fatalf("daemon stop: %v", err)
	}
	requireContains(t, out, "tvmetad is not running")
}
