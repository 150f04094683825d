package tree

import (
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"wikicat/models"
	"wikicat/pkg/graph"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func assemble(t *testing.T, pages []models.Page, links []models.CategoryLink) *CategoryTreeData {
	t.Helper()
	return Assemble(discard(), slices.Values(pages), slices.Values(links))
}

func TestAssemblePartitionsPagesByNamespace(t *testing.T) {
	data := assemble(t, []models.Page{
		{ID: 1, Namespace: models.NamespaceArticle, Title: "Go"},
		{ID: 2, Namespace: models.NamespaceCategory, Title: "Programming"},
		{ID: 3, Namespace: models.NamespaceArticle, Title: "Gopher"},
	}, nil)

	if want := map[uint32]string{1: "Go", 3: "Gopher"}; !reflect.DeepEqual(data.ArticleIDToName, want) {
		t.Errorf("ArticleIDToName = %v, want %v", data.ArticleIDToName, want)
	}
	if want := map[uint32]string{2: "Programming"}; !reflect.DeepEqual(data.CategoryIDToName, want) {
		t.Errorf("CategoryIDToName = %v, want %v", data.CategoryIDToName, want)
	}
}

func TestAssembleResolvesLinks(t *testing.T) {
	pages := []models.Page{
		{ID: 10, Namespace: models.NamespaceCategory, Title: "Languages"},
		{ID: 11, Namespace: models.NamespaceCategory, Title: "Compiled"},
		{ID: 100, Namespace: models.NamespaceArticle, Title: "Go"},
	}
	links := []models.CategoryLink{
		{SourceCategoryName: "Languages", TargetID: 11, Kind: models.LinkSubcategory},
		{SourceCategoryName: "Languages", TargetID: 100, Kind: models.LinkMemberArticle},
	}

	data := assemble(t, pages, links)

	if want := []graph.Edge{{Parent: 10, Child: 11}}; !reflect.DeepEqual(data.CategoryEdges, want) {
		t.Errorf("CategoryEdges = %v, want %v", data.CategoryEdges, want)
	}
	if want := []uint32{100}; !reflect.DeepEqual(data.CategoryToArticles[10], want) {
		t.Errorf("CategoryToArticles[10] = %v, want %v", data.CategoryToArticles[10], want)
	}
}

func TestAssembleDropsUnresolvableLinks(t *testing.T) {
	pages := []models.Page{
		{ID: 10, Namespace: models.NamespaceCategory, Title: "Languages"},
		{ID: 100, Namespace: models.NamespaceArticle, Title: "Go"},
	}
	links := []models.CategoryLink{
		// Unknown source category name.
		{SourceCategoryName: "Nope", TargetID: 100, Kind: models.LinkMemberArticle},
		// Article target that is not a known article.
		{SourceCategoryName: "Languages", TargetID: 999, Kind: models.LinkMemberArticle},
		// Subcategory target that is not a known category.
		{SourceCategoryName: "Languages", TargetID: 100, Kind: models.LinkSubcategory},
	}

	data := assemble(t, pages, links)

	if len(data.CategoryEdges) != 0 {
		t.Errorf("CategoryEdges = %v, want none", data.CategoryEdges)
	}
	if len(data.CategoryToArticles) != 0 {
		t.Errorf("CategoryToArticles = %v, want none", data.CategoryToArticles)
	}
}

func TestAssembleDuplicateTitleLaterWins(t *testing.T) {
	pages := []models.Page{
		{ID: 10, Namespace: models.NamespaceCategory, Title: "Same"},
		{ID: 20, Namespace: models.NamespaceCategory, Title: "Same"},
		{ID: 30, Namespace: models.NamespaceCategory, Title: "Child"},
	}
	links := []models.CategoryLink{
		{SourceCategoryName: "Same", TargetID: 30, Kind: models.LinkSubcategory},
	}

	data := assemble(t, pages, links)

	if want := []graph.Edge{{Parent: 20, Child: 30}}; !reflect.DeepEqual(data.CategoryEdges, want) {
		t.Errorf("CategoryEdges = %v, want %v (later duplicate wins)", data.CategoryEdges, want)
	}
}

func TestAssembleKeepsDuplicateArticleMemberships(t *testing.T) {
	pages := []models.Page{
		{ID: 10, Namespace: models.NamespaceCategory, Title: "C"},
		{ID: 100, Namespace: models.NamespaceArticle, Title: "A"},
	}
	links := []models.CategoryLink{
		{SourceCategoryName: "C", TargetID: 100, Kind: models.LinkMemberArticle},
		{SourceCategoryName: "C", TargetID: 100, Kind: models.LinkMemberArticle},
	}

	data := assemble(t, pages, links)

	if want := []uint32{100, 100}; !reflect.DeepEqual(data.CategoryToArticles[10], want) {
		t.Errorf("CategoryToArticles[10] = %v, want %v", data.CategoryToArticles[10], want)
	}
}

func TestBuildGraphExcludesIsolatedCategories(t *testing.T) {
	data := assemble(t, []models.Page{
		{ID: 10, Namespace: models.NamespaceCategory, Title: "Parent"},
		{ID: 11, Namespace: models.NamespaceCategory, Title: "Child"},
		{ID: 12, Namespace: models.NamespaceCategory, Title: "Isolated"},
	}, []models.CategoryLink{
		{SourceCategoryName: "Parent", TargetID: 11, Kind: models.LinkSubcategory},
	})

	g := BuildGraph(data)

	if g.Len() != 2 {
		t.Fatalf("graph Len() = %d, want 2", g.Len())
	}
	if g.Has(12) {
		t.Error("isolated category 12 entered the graph")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	data := assemble(t, []models.Page{
		{ID: 10, Namespace: models.NamespaceCategory, Title: "Parent"},
		{ID: 11, Namespace: models.NamespaceCategory, Title: "Child"},
		{ID: 100, Namespace: models.NamespaceArticle, Title: "A"},
	}, []models.CategoryLink{
		{SourceCategoryName: "Parent", TargetID: 11, Kind: models.LinkSubcategory},
		{SourceCategoryName: "Child", TargetID: 100, Kind: models.LinkMemberArticle},
	})

	path := filepath.Join(t.TempDir(), "cache", "tree.gob")

	if SnapshotExists(path) {
		t.Fatal("snapshot reported present before save")
	}
	if err := SaveSnapshot(path, data); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	if !SnapshotExists(path) {
		t.Fatal("snapshot reported absent after save")
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if !reflect.DeepEqual(loaded, data) {
		t.Errorf("loaded snapshot differs from original:\ngot  %+v\nwant %+v", loaded, data)
	}
}
