package models

// Namespace identifies the wiki namespace a page belongs to. Only the two
// namespaces the pipeline cares about are modeled.
type Namespace int

const (
	NamespaceArticle  Namespace = 0
	NamespaceCategory Namespace = 14
)

// Page is one entry of the pages dump.
type Page struct {
	ID        uint32
	Namespace Namespace
	Title     string
}

// IsArticle reports whether the page lives in the article namespace.
func (p Page) IsArticle() bool {
	return p.Namespace == NamespaceArticle
}

// LinkKind distinguishes the two category-link flavors in the dump.
type LinkKind int

const (
	// LinkMemberArticle attaches an article to a category ("page" rows).
	LinkMemberArticle LinkKind = iota
	// LinkSubcategory attaches a category to a parent category ("subcat" rows).
	LinkSubcategory
)

// CategoryLink is one entry of the categorylinks dump. The source category is
// referenced by name, the target by page id; either may fail to resolve
// against the pages dump, in which case the link is dropped during assembly.
type CategoryLink struct {
	SourceCategoryName string
	TargetID           uint32
	Kind               LinkKind
}
