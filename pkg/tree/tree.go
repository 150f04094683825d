// Package tree assembles the in-memory category tree model from the raw dump
// record streams.
package tree

import (
	"iter"
	"log/slog"

	"wikicat/models"
	"wikicat/pkg/graph"
)

// CategoryTreeData is the normalized model built once per run. It is owned by
// the pipeline and mutated only by the pruning stage.
type CategoryTreeData struct {
	// ArticleIDToName holds every namespace-0 page.
	ArticleIDToName map[uint32]string

	// CategoryIDToName holds every namespace-14 page.
	CategoryIDToName map[uint32]string

	// CategoryEdges are resolved parent→child subcategory relationships,
	// consumed once to construct the graph.
	CategoryEdges []graph.Edge

	// CategoryToArticles maps a category to its member article ids.
	// Insertion order is dump order; duplicates are not removed here.
	CategoryToArticles map[uint32][]uint32
}

// NewCategoryTreeData returns an empty model.
func NewCategoryTreeData() *CategoryTreeData {
	return &CategoryTreeData{
		ArticleIDToName:    make(map[uint32]string),
		CategoryIDToName:   make(map[uint32]string),
		CategoryToArticles: make(map[uint32][]uint32),
	}
}

// Assemble consumes the page stream fully, then the link stream fully, each
// exactly once. Links whose category name or target id does not resolve
// against the page maps are dropped without error; a live dump always
// contains stale and cross-namespace references.
//
// Category titles are assumed unique. If two categories share a title the
// later one wins in the name lookup, matching upstream behavior.
func Assemble(logger *slog.Logger, pages iter.Seq[models.Page], links iter.Seq[models.CategoryLink]) *CategoryTreeData {
	data := NewCategoryTreeData()

	for page := range pages {
		if page.IsArticle() {
			data.ArticleIDToName[page.ID] = page.Title
		} else {
			data.CategoryIDToName[page.ID] = page.Title
		}
	}

	nameToID := make(map[string]uint32, len(data.CategoryIDToName))
	for id, name := range data.CategoryIDToName {
		nameToID[name] = id
	}

	var dropped int
	for link := range links {
		sourceID, ok := nameToID[link.SourceCategoryName]
		if !ok {
			dropped++
			continue
		}

		switch link.Kind {
		case models.LinkMemberArticle:
			if _, ok := data.ArticleIDToName[link.TargetID]; !ok {
				dropped++
				continue
			}
			data.CategoryToArticles[sourceID] = append(data.CategoryToArticles[sourceID], link.TargetID)
		case models.LinkSubcategory:
			if _, ok := data.CategoryIDToName[link.TargetID]; !ok {
				dropped++
				continue
			}
			data.CategoryEdges = append(data.CategoryEdges, graph.Edge{Parent: sourceID, Child: link.TargetID})
		}
	}

	logger.Debug("assembled category tree data",
		"articles", len(data.ArticleIDToName),
		"categories", len(data.CategoryIDToName),
		"edges", len(data.CategoryEdges),
		"dropped_links", dropped)

	return data
}

// BuildGraph constructs the category graph from the edge list. The node set is
// exactly the ids appearing in at least one edge; isolated categories never
// enter the graph.
func BuildGraph(data *CategoryTreeData) *graph.Directed {
	g := graph.NewDirected()
	g.AddEdges(data.CategoryEdges)
	return g
}
