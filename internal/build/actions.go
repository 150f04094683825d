// Package build wires the CLI to the dataset pipeline.
package build

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"wikicat/models"
	"wikicat/pkg/db"
	"wikicat/pkg/htmlindex"
)

// BuildAction runs the full pipeline: resolve dumps, assemble, prune, export,
// write indices and run metadata, record the run.
func BuildAction(c *cli.Context) error {
	config, err := configFromContext(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger := newLogger(config.Dev)

	if err := prepareOutputDir(logger, config); err != nil {
		logger.Error("failed to prepare output directory", "error", err)
		os.Exit(2)
	}

	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open run database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	linksSource, pagesSource, linksModified, pagesModified := resolveDataSources(logger, config)

	redundant, err := database.IsRedundant(config.Language, linksModified, pagesModified)
	if err != nil {
		logger.Error("failed to check run redundancy", "error", err)
		os.Exit(2)
	}
	if redundant {
		logger.Info("run is redundant, all dump assets are up to date")
		return nil
	}

	started := time.Now()

	data, err := loadTreeData(logger, config, linksSource, pagesSource)
	if err != nil {
		logger.Error("failed to load category tree data", "error", err)
		os.Exit(1)
	}

	info, err := BuildDataset(logger, config, data)
	if err != nil {
		logger.Error("dataset build failed", "error", err)
		os.Exit(1)
	}

	if err := writeRunInfo(config, info, linksModified, pagesModified); err != nil {
		logger.Error("failed to write run info", "error", err)
		os.Exit(1)
	}

	if !config.NoIndices {
		if err := htmlindex.Generate(config.Dest, config.IndexRootPath); err != nil {
			logger.Error("failed to generate HTML indices", "error", err)
			os.Exit(1)
		}
	}

	runID, err := database.RecordRun(db.Run{
		Language:              config.Language,
		CategoriesCount:       info.CategoriesCount,
		ArticlesCount:         info.ArticlesCount,
		BalancingModOperand:   info.BalancingModOperand,
		CategoryLinksModified: linksModified,
		PagesModified:         pagesModified,
		StartedAt:             started,
		FinishedAt:            info.Finished,
	})
	if err != nil {
		logger.Error("failed to record run", "error", err)
		os.Exit(1)
	}

	logger.Info("build complete",
		"run_id", runID,
		"categories", info.CategoriesCount,
		"articles", info.ArticlesCount,
		"dest", config.Dest)
	return nil
}

// IndexAction regenerates the HTML directory indices for an existing dataset.
func IndexAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: wikicat index <dataset-path>", 2)
	}
	if err := htmlindex.Generate(c.Args().First(), c.String("root-path")); err != nil {
		return cli.Exit(fmt.Sprintf("failed to generate indices: %v", err), 1)
	}
	return nil
}

// RunsAction prints the recorded run history, most recent first.
func RunsAction(c *cli.Context) error {
	database, err := db.Open()
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open run database: %v", err), 2)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to list runs: %v", err), 1)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet. Run 'wikicat build' first.")
		return nil
	}

	fmt.Printf("%-6s %-5s %-12s %-10s %-8s %s\n", "RUN", "LANG", "CATEGORIES", "ARTICLES", "TOOK", "FINISHED")
	for _, run := range runs {
		fmt.Printf("%-6d %-5s %-12d %-10d %-8s %s\n",
			run.RunID, run.Language, run.CategoriesCount, run.ArticlesCount,
			run.Duration().Round(1e9), run.FinishedAt.Format(models.FinishedTimeLayout))
	}
	return nil
}

func newLogger(dev bool) *slog.Logger {
	level := slog.LevelInfo
	if dev {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// configFromContext layers CLI flags over the config file (if any) over the
// defaults. Flags always win.
func configFromContext(c *cli.Context) (*models.RunConfig, error) {
	config := models.DefaultRunConfig()

	if c.IsSet("config") {
		var err error
		if config, err = models.LoadRunConfig(c.String("config")); err != nil {
			return nil, err
		}
	}

	if c.IsSet("language") {
		config.Language = c.String("language")
	}
	if c.IsSet("dest") {
		config.Dest = c.String("dest")
	}
	if c.IsSet("index-root-path") {
		config.IndexRootPath = c.String("index-root-path")
	}
	if c.IsSet("max-articles") {
		config.MaxArticlesPerCategory = c.Int("max-articles")
	}
	if c.IsSet("operand") {
		config.BalancingModOperand = uint32(c.Uint("operand"))
	}
	if c.IsSet("percentile") {
		config.ArticleCountPercentile = c.Int("percentile")
	}
	if c.IsSet("seed") {
		config.SampleSeed = c.Int64("seed")
	}
	if c.IsSet("workers") {
		config.Workers = c.Int("workers")
	}
	if c.IsSet("excluded-parents") {
		ids, err := parseIDList(c.String("excluded-parents"))
		if err != nil {
			return nil, fmt.Errorf("invalid --excluded-parents: %w", err)
		}
		config.ExcludedParents = ids
	}
	if c.IsSet("excluded-grandparents") {
		ids, err := parseIDList(c.String("excluded-grandparents"))
		if err != nil {
			return nil, fmt.Errorf("invalid --excluded-grandparents: %w", err)
		}
		config.ExcludedGrandparents = ids
	}
	if c.IsSet("excluded-article-categories") {
		ids, err := parseIDList(c.String("excluded-article-categories"))
		if err != nil {
			return nil, fmt.Errorf("invalid --excluded-article-categories: %w", err)
		}
		config.ExcludedArticleCategories = ids
	}
	if c.Bool("dev") {
		config.Dev = true
	}
	if c.Bool("clean") {
		config.Clean = true
	}
	if c.Bool("use-cache") {
		config.UseCache = true
	}
	if c.Bool("no-indices") {
		config.NoIndices = true
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func parseIDList(s string) ([]uint32, error) {
	var ids []uint32
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad category id %q", part)
		}
		ids = append(ids, uint32(v))
	}
	return ids, nil
}

// prepareOutputDir optionally cleans the destination and refuses to write
// into a non-empty directory; a stale dataset mixed with a fresh one would
// corrupt the directory indices.
func prepareOutputDir(logger *slog.Logger, config *models.RunConfig) error {
	if config.Clean {
		if _, err := os.Stat(config.Dest); err == nil {
			logger.Debug("cleaning output directory", "dest", config.Dest)
			if err := os.RemoveAll(config.Dest); err != nil {
				return fmt.Errorf("failed to clean output directory: %w", err)
			}
		}
	}

	if err := os.MkdirAll(config.Dest, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	entries, err := os.ReadDir(config.Dest)
	if err != nil {
		return fmt.Errorf("failed to read output directory: %w", err)
	}
	if len(entries) != 0 {
		return fmt.Errorf("output directory %s is not empty; delete its contents or pass --clean", config.Dest)
	}
	return nil
}

func writeRunInfo(config *models.RunConfig, info models.CategoriesInfo, linksModified, pagesModified string) error {
	runInfo := models.NewRunInfo(info, linksModified, pagesModified)

	data, err := json.MarshalIndent(runInfo, "", " ")
	if err != nil {
		return fmt.Errorf("failed to marshal run info: %w", err)
	}

	path := filepath.Join(config.Dest, "run_info.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run info: %w", err)
	}
	return nil
}
