package build

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"wikicat/models"
	"wikicat/pkg/dump"
	"wikicat/pkg/export"
	"wikicat/pkg/prune"
	"wikicat/pkg/tree"
)

const cacheDir = "data_cache"

// BuildDataset runs graph construction, pruning and export over assembled
// tree data and returns the run summary.
func BuildDataset(logger *slog.Logger, config *models.RunConfig, data *tree.CategoryTreeData) (models.CategoriesInfo, error) {
	g := tree.BuildGraph(data)
	logger.Debug("built category graph", "nodes", g.Len(), "edges", len(data.CategoryEdges))

	prune.Prune(logger, g, data, config)

	added, err := export.Export(logger, g, data, config)
	if err != nil {
		return models.CategoriesInfo{}, err
	}
	if err := export.WriteDirIndices(config.Dest); err != nil {
		return models.CategoriesInfo{}, err
	}

	info := models.CategoriesInfo{
		CategoriesCount:     g.Len(),
		ArticlesCount:       len(added),
		Finished:            time.Now(),
		BalancingModOperand: config.BalancingModOperand,
	}
	logger.Debug("finished dataset build",
		"categories", info.CategoriesCount,
		"articles", info.ArticlesCount,
		"finished", info.Finished.Format(models.FinishedTimeLayout))
	return info, nil
}

// loadTreeData assembles the tree model from the dump sources, going through
// the snapshot cache when enabled. The snapshot is purely a speedup for
// repeated local runs; a hit produces the same results as a fresh assembly.
func loadTreeData(logger *slog.Logger, config *models.RunConfig, linksSource, pagesSource string) (*tree.CategoryTreeData, error) {
	if !config.UseCache {
		return assembleFromDumps(logger, linksSource, pagesSource)
	}

	snapshotPath := filepath.Join(cacheDir, fmt.Sprintf("category_tree_%s.gob", config.Language))

	if tree.SnapshotExists(snapshotPath) {
		data, err := tree.LoadSnapshot(snapshotPath)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded category tree snapshot", "path", snapshotPath)
		return data, nil
	}

	data, err := assembleFromDumps(logger, linksSource, pagesSource)
	if err != nil {
		return nil, err
	}
	if err := tree.SaveSnapshot(snapshotPath, data); err != nil {
		return nil, err
	}
	logger.Debug("cached category tree snapshot", "path", snapshotPath)
	return data, nil
}

// assembleFromDumps streams both dump assets through the assembler, each
// exactly once: pages first, then category links.
func assembleFromDumps(logger *slog.Logger, linksSource, pagesSource string) (*tree.CategoryTreeData, error) {
	var pagesErr, linksErr error

	pages := func(yield func(models.Page) bool) {
		r, err := dump.Open(pagesSource)
		if err != nil {
			pagesErr = err
			return
		}
		defer r.Close()
		pagesErr = dump.ParsePages(r, func(p models.Page) { yield(p) })
	}

	links := func(yield func(models.CategoryLink) bool) {
		r, err := dump.Open(linksSource)
		if err != nil {
			linksErr = err
			return
		}
		defer r.Close()
		linksErr = dump.ParseCategoryLinks(r, func(l models.CategoryLink) { yield(l) })
	}

	data := tree.Assemble(logger, pages, links)

	if pagesErr != nil {
		return nil, fmt.Errorf("pages dump: %w", pagesErr)
	}
	if linksErr != nil {
		return nil, fmt.Errorf("categorylinks dump: %w", linksErr)
	}
	return data, nil
}

// resolveDataSources picks the dump locations and probes their freshness.
// With the cache enabled, local dump files under data_cache/ take precedence
// and freshness headers stay empty (a cached build is never redundant).
func resolveDataSources(logger *slog.Logger, config *models.RunConfig) (linksSource, pagesSource, linksModified, pagesModified string) {
	linksSource, pagesSource = dump.URLs(config.Language)
	remote := true

	if config.UseCache {
		cachedLinks := filepath.Join(cacheDir, fmt.Sprintf("%swiki-latest-categorylinks.sql", config.Language))
		if _, err := os.Stat(cachedLinks); err == nil {
			linksSource = cachedLinks
			remote = false
			logger.Info("using cached category links", "path", cachedLinks)
		}

		cachedPages := filepath.Join(cacheDir, fmt.Sprintf("%swiki-latest-page.sql", config.Language))
		if _, err := os.Stat(cachedPages); err == nil {
			pagesSource = cachedPages
			remote = false
			logger.Info("using cached pages", "path", cachedPages)
		}
	}

	if !remote {
		return linksSource, pagesSource, "", ""
	}

	// A failed probe only disables the redundancy check, it never blocks
	// the build.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		if linksModified, err = dump.LastModified(linksSource); err != nil {
			logger.Warn("failed to probe category links dump", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if pagesModified, err = dump.LastModified(pagesSource); err != nil {
			logger.Warn("failed to probe pages dump", "error", err)
		}
		return nil
	})
	_ = g.Wait()

	return linksSource, pagesSource, linksModified, pagesModified
}
