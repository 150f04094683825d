// Package prune applies the exclusion and statistical pruning stages to the
// category graph. Stages run in a fixed order; each one sees the effect of
// the previous.
package prune

import (
	"log/slog"

	"wikicat/models"
	"wikicat/pkg/graph"
	"wikicat/pkg/tree"
)

// Result reports what a pruning pass removed.
type Result struct {
	RemovedCategories map[uint32]struct{}
	RemovedArticles   map[uint32]struct{}
}

// Prune mutates g and data in place:
//
//  1. union of all configured exclusion ids
//  2. direct successors of excluded parents
//  3. one- and two-level successors of excluded grandparents
//  4. collect articles of excluded article categories
//  5. strip excluded articles from every category's article list
//  6. remove excluded categories from the graph
//  7. remove categories below the article-count percentile threshold
//  8. keep only the largest weakly-connected component
//
// Exclusion ids absent from the graph are no-ops, and an empty graph at any
// stage is valid; nothing here raises on empty input.
func Prune(logger *slog.Logger, g *graph.Directed, data *tree.CategoryTreeData, config *models.RunConfig) Result {
	excludedCategories := excludedCategorySet(g, config)
	excludedArticles := excludedArticleSet(data, config)

	stripExcludedArticles(data, excludedArticles)

	g.RemoveNodes(setToSlice(excludedCategories))

	if len(excludedCategories) > 0 {
		logger.Debug("excluded configured categories", "count", len(excludedCategories))
	}
	if len(excludedArticles) > 0 {
		logger.Debug("excluded configured articles", "count", len(excludedArticles))
	}

	removeSmallCategories(logger, g, data, config)
	keepLargestComponent(logger, g)

	return Result{
		RemovedCategories: excludedCategories,
		RemovedArticles:   excludedArticles,
	}
}

// excludedCategorySet covers stages 1-3. Every configured id is excluded
// itself, on top of the descendants its role implies.
func excludedCategorySet(g *graph.Directed, config *models.RunConfig) map[uint32]struct{} {
	excluded := make(map[uint32]struct{})
	for _, id := range config.ExcludedParents {
		excluded[id] = struct{}{}
	}
	for _, id := range config.ExcludedGrandparents {
		excluded[id] = struct{}{}
	}
	for _, id := range config.ExcludedArticleCategories {
		excluded[id] = struct{}{}
	}

	for _, id := range config.ExcludedParents {
		if !g.Has(id) {
			continue
		}
		for _, child := range g.SuccessorsOf(id) {
			excluded[child] = struct{}{}
		}
	}

	for _, id := range config.ExcludedGrandparents {
		if !g.Has(id) {
			continue
		}
		for _, child := range g.SuccessorsOf(id) {
			excluded[child] = struct{}{}
			for _, grandchild := range g.SuccessorsOf(child) {
				excluded[grandchild] = struct{}{}
			}
		}
	}

	return excluded
}

// excludedArticleSet covers stage 4. Articles are collected even when their
// category is itself excluded later.
func excludedArticleSet(data *tree.CategoryTreeData, config *models.RunConfig) map[uint32]struct{} {
	excluded := make(map[uint32]struct{})
	for _, id := range config.ExcludedArticleCategories {
		for _, article := range data.CategoryToArticles[id] {
			excluded[article] = struct{}{}
		}
	}
	return excluded
}

// stripExcludedArticles rewrites every article list, not just the lists of
// the configured categories: an article can belong to many categories and
// must disappear from all of them.
func stripExcludedArticles(data *tree.CategoryTreeData, excludedArticles map[uint32]struct{}) {
	if len(excludedArticles) == 0 {
		return
	}
	for category, articles := range data.CategoryToArticles {
		kept := articles[:0]
		for _, a := range articles {
			if _, ok := excludedArticles[a]; !ok {
				kept = append(kept, a)
			}
		}
		data.CategoryToArticles[category] = kept
	}
}

// removeSmallCategories covers stage 7: drop every node whose article count
// falls strictly below floor(percentile)+1.
func removeSmallCategories(logger *slog.Logger, g *graph.Directed, data *tree.CategoryTreeData, config *models.RunConfig) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return
	}

	counts := make([]int, 0, len(nodes))
	for _, n := range nodes {
		counts = append(counts, len(data.CategoryToArticles[n]))
	}

	threshold := int(Percentile(counts, config.ArticleCountPercentile)) + 1

	var small []uint32
	for _, n := range nodes {
		if len(data.CategoryToArticles[n]) < threshold {
			small = append(small, n)
		}
	}

	if len(small) > 0 {
		logger.Debug("removing small categories", "count", len(small), "min_articles", threshold)
		g.RemoveNodes(small)
	}
}

// keepLargestComponent covers stage 8. Ties on size break toward the
// component containing the smallest node id, which keeps the pass
// deterministic.
func keepLargestComponent(logger *slog.Logger, g *graph.Directed) {
	components := g.WeaklyConnectedComponents()
	if len(components) <= 1 {
		return
	}

	best := 0
	for i := 1; i < len(components); i++ {
		switch {
		case len(components[i]) > len(components[best]):
			best = i
		case len(components[i]) == len(components[best]) && minID(components[i]) < minID(components[best]):
			best = i
		}
	}

	var removed int
	for i, component := range components {
		if i == best {
			continue
		}
		removed += len(component)
		g.RemoveNodes(component)
	}
	logger.Debug("removed disconnected categories", "count", removed, "components", len(components)-1)
}

func minID(ids []uint32) uint32 {
	min := ids[0]
	for _, id := range ids[1:] {
		if id < min {
			min = id
		}
	}
	return min
}

func setToSlice(set map[uint32]struct{}) []uint32 {
	out := make([]uint32, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
