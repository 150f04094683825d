package dump

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"wikicat/models"
)

const pagesDumpSample = `-- MySQL dump of table page
CREATE TABLE page (page_id int unsigned NOT NULL);
INSERT INTO page VALUES (100,0,'Go_(programming_language)',0,0,0.5,'20230101000000','20230101000000',10,20,'wikitext',NULL),(200,14,'Programming_languages',0,0,0.1,'20230101000000','20230101000000',3,4,'wikitext','utf-8'),(300,2,'User_talk_page',0,0,0.2,'20230101000000','20230101000000',5,6,'wikitext',NULL);
INSERT INTO page VALUES (400,0,'O\'Brien',0,0,0.3,'20230101000000','20230101000000',7,8,'wikitext',NULL);
`

const linksDumpSample = `-- MySQL dump of table categorylinks
INSERT INTO categorylinks VALUES (100,'Programming_languages','sortkey','20230101000000','prefix','uca-default','page'),(201,'Programming_languages','','20230101000000','','uca-default','subcat'),(500,'Some_category','','20230101000000','','uca-default','file');
`

func collectPages(t *testing.T, input string) []models.Page {
	t.Helper()
	var pages []models.Page
	if err := ParsePages(strings.NewReader(input), func(p models.Page) {
		pages = append(pages, p)
	}); err != nil {
		t.Fatalf("ParsePages() error: %v", err)
	}
	return pages
}

func TestParsePages(t *testing.T) {
	pages := collectPages(t, pagesDumpSample)

	want := []models.Page{
		{ID: 100, Namespace: models.NamespaceArticle, Title: "Go_(programming_language)"},
		{ID: 200, Namespace: models.NamespaceCategory, Title: "Programming_languages"},
		{ID: 400, Namespace: models.NamespaceArticle, Title: "O'Brien"},
	}
	if !reflect.DeepEqual(pages, want) {
		t.Errorf("ParsePages() = %+v, want %+v", pages, want)
	}
}

func TestParsePagesSkipsOtherNamespaces(t *testing.T) {
	for _, p := range collectPages(t, pagesDumpSample) {
		if p.ID == 300 {
			t.Error("namespace-2 page was extracted")
		}
	}
}

func TestParseCategoryLinks(t *testing.T) {
	var links []models.CategoryLink
	if err := ParseCategoryLinks(strings.NewReader(linksDumpSample), func(l models.CategoryLink) {
		links = append(links, l)
	}); err != nil {
		t.Fatalf("ParseCategoryLinks() error: %v", err)
	}

	want := []models.CategoryLink{
		{SourceCategoryName: "Programming_languages", TargetID: 100, Kind: models.LinkMemberArticle},
		{SourceCategoryName: "Programming_languages", TargetID: 201, Kind: models.LinkSubcategory},
	}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("ParseCategoryLinks() = %+v, want %+v (file rows must be skipped)", links, want)
	}
}

func TestParseRecordSplitAcrossReads(t *testing.T) {
	// A reader that returns one byte at a time exercises line reassembly
	// across buffer boundaries.
	pages := collectPages(t, pagesDumpSample)
	var chunked []models.Page
	if err := ParsePages(iotest(pagesDumpSample), func(p models.Page) {
		chunked = append(chunked, p)
	}); err != nil {
		t.Fatalf("ParsePages() error: %v", err)
	}
	if !reflect.DeepEqual(chunked, pages) {
		t.Errorf("chunked parse = %+v, want %+v", chunked, pages)
	}
}

type oneByteReader struct {
	s string
}

func iotest(s string) io.Reader {
	return &oneByteReader{s: s}
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(r.s) == 0 {
		return 0, io.EOF
	}
	p[0] = r.s[0]
	r.s = r.s[1:]
	return 1, nil
}

func TestUnquoteSQL(t *testing.T) {
	tests := []struct {
		quoted string
		want   string
	}{
		{`'plain'`, "plain"},
		{`'It\'s'`, "It's"},
		{`'back\\slash'`, `back\slash`},
		{`'tab\there'`, "tab\there"},
		{`''`, ""},
	}
	for _, tt := range tests {
		if got := unquoteSQL(tt.quoted); got != tt.want {
			t.Errorf("unquoteSQL(%s) = %q, want %q", tt.quoted, got, tt.want)
		}
	}
}

func TestOpenLocalGzipAndPlain(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "dump.sql")
	if err := os.WriteFile(plain, []byte(pagesDumpSample), 0644); err != nil {
		t.Fatal(err)
	}

	zipped := filepath.Join(dir, "dump.sql.gz")
	f, err := os.Create(zipped)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(pagesDumpSample)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{plain, zipped} {
		r, err := Open(path)
		if err != nil {
			t.Fatalf("Open(%s) error: %v", path, err)
		}
		content, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("reading %s: %v", path, err)
		}
		if err := r.Close(); err != nil {
			t.Fatalf("closing %s: %v", path, err)
		}
		if string(content) != pagesDumpSample {
			t.Errorf("content of %s does not round-trip", path)
		}
	}
}

func TestURLs(t *testing.T) {
	links, pages := URLs("de")
	if links != "https://dumps.wikimedia.org/dewiki/latest/dewiki-latest-categorylinks.sql.gz" {
		t.Errorf("categorylinks URL = %s", links)
	}
	if pages != "https://dumps.wikimedia.org/dewiki/latest/dewiki-latest-page.sql.gz" {
		t.Errorf("pages URL = %s", pages)
	}
}
