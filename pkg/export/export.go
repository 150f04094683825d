// Package export writes the pruned category graph to its sharded on-disk
// layout: <dest>/<shard>/<categoryId>.category plus dir_list.index files.
//
// The work splits into two phases with different concurrency needs. The
// generation phase walks the graph on a single goroutine — it owns the
// sampling RNG and the added-article accumulator, neither of which is
// synchronized — and pushes (path, bytes) jobs into a bounded channel. A
// fixed-size worker pool drains the channel and performs the writes; paths
// never collide (one file per category id), so the workers need no
// coordination beyond the channel itself.
package export

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"wikicat/models"
	"wikicat/pkg/codec"
	"wikicat/pkg/graph"
	"wikicat/pkg/tree"
)

type writeJob struct {
	path string
	data []byte
}

// Export writes every surviving category and returns the set of article ids
// that made it into the dataset. Any write failure aborts the run: the export
// has no partial-success bookkeeping, a failed run is re-run from scratch.
func Export(logger *slog.Logger, g *graph.Directed, data *tree.CategoryTreeData, config *models.RunConfig) (map[uint32]struct{}, error) {
	if err := createShardDirs(config.Dest, config.BalancingModOperand); err != nil {
		return nil, err
	}

	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	seed := config.SampleSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	jobs := make(chan writeJob, workers*2)
	errs := make(chan error, workers)
	var wg sync.WaitGroup

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go writer(&wg, jobs, errs)
	}

	// Categories are walked in ascending id order. The format does not
	// require it, but the RNG is consumed during the walk, so a stable order
	// is what makes a seeded run byte-identical.
	categories := g.Nodes()
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	addedArticles := make(map[uint32]struct{})

	for _, category := range categories {
		articles := survivingArticles(data, category)

		if config.MaxArticlesPerCategory != -1 && len(articles) > config.MaxArticlesPerCategory {
			articles = sample(rng, articles, config.MaxArticlesPerCategory)
		}

		for _, a := range articles {
			addedArticles[a] = struct{}{}
		}

		articleNames := make([]string, len(articles))
		for i, a := range articles {
			articleNames[i] = data.ArticleIDToName[a]
		}

		record := &codec.CategoryRecord{
			Name:         data.CategoryIDToName[category],
			Predecessors: sortedIDs(g.PredecessorsOf(category)),
			Successors:   sortedIDs(g.SuccessorsOf(category)),
			Articles:     articles,
			ArticleNames: articleNames,
		}

		shard := category % config.BalancingModOperand
		path := filepath.Join(config.Dest, strconv.FormatUint(uint64(shard), 10),
			strconv.FormatUint(uint64(category), 10)+".category")

		jobs <- writeJob{path: path, data: codec.EncodeCategory(record)}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return nil, fmt.Errorf("export aborted: %w", err)
	}

	logger.Debug("exported categories", "categories", len(categories), "articles", len(addedArticles), "workers", workers)
	return addedArticles, nil
}

func writer(wg *sync.WaitGroup, jobs <-chan writeJob, errs chan<- error) {
	defer wg.Done()
	for job := range jobs {
		if err := os.WriteFile(job.path, job.data, 0644); err != nil {
			select {
			case errs <- fmt.Errorf("failed to write %s: %w", job.path, err):
			default:
			}
		}
	}
}

// createShardDirs pre-creates every shard directory unconditionally, so the
// directory set is stable across runs regardless of data distribution.
func createShardDirs(dest string, operand uint32) error {
	for shard := uint32(0); shard < operand; shard++ {
		dir := filepath.Join(dest, strconv.FormatUint(uint64(shard), 10))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create shard directory %s: %w", dir, err)
		}
	}
	return nil
}

// survivingArticles re-checks a category's article list against the article
// name map. Pruning already stripped excluded articles; this guards against
// ids the dump attributed to the category but never defined as pages.
func survivingArticles(data *tree.CategoryTreeData, category uint32) []uint32 {
	var out []uint32
	for _, a := range data.CategoryToArticles[category] {
		if _, ok := data.ArticleIDToName[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

// sample picks k articles uniformly without replacement, preserving the
// relative dump order of the picks.
func sample(rng *rand.Rand, articles []uint32, k int) []uint32 {
	picked := rng.Perm(len(articles))[:k]
	sort.Ints(picked)
	out := make([]uint32, k)
	for i, idx := range picked {
		out[i] = articles[idx]
	}
	return out
}

func sortedIDs(ids []uint32) []uint32 {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
