// Package htmlindex renders a static index.html into every directory of the
// dataset so the published tree is browsable without a server-side listing.
package htmlindex

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const indexFileName = "index.html"

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta http-equiv="X-UA-Compatible" content="ie=edge">
    <style>
    :root {
      background-color:#fff;
      color:#333;
      font-family:system-ui,-apple-system,BlinkMacSystemFont,Segoe UI,Roboto,Oxygen,Ubuntu,Cantarell,Open Sans,Helvetica Neue,sans-serif;
      font-size:medium
    }
    li {
      margin:5px 0;
      font-family: monospace;
    }
    ul {
      list-style-type: none;
    }

    @media (prefers-color-scheme: dark) {
      :root {
        background-color:#333;
        color:#fff
      }
      a {
        color:#7568ff
      }
      a:visited {
        color:#f98fff
      }
    }
    </style>
    <title>wiki-categories</title>
  </head>
  <body>
    <main>
      <h1>wiki-categories</h1>
      <p>This is the index for the wiki-categories dataset. See the project
      documentation for its usage, file formats, and creation.</p>
      <b id="sub-path">Directory listing for {{.Label}}:</b>
      <ul id="sub-index">
{{- range .Entries}}
        <li class="{{.Class}}"><a href="{{.Href}}">{{.Text}}</a></li>
{{- end}}
      </ul>
    </main>
  </body>
</html>
`))

type entry struct {
	Class string
	Href  string
	Text  string
}

type listing struct {
	Label   string
	Entries []entry
}

// Generate writes an index.html into root and every subdirectory. rootPath is
// the URL prefix the published site is served under, e.g. "/wiki-categories".
func Generate(root, rootPath string) error {
	if rootPath == "" {
		rootPath = "/"
	}

	return filepath.WalkDir(root, func(dir string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return writeIndex(root, dir, rootPath)
	})
}

func writeIndex(root, dir, rootPath string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return err
	}

	l := listing{Label: dirLabel(rel)}

	// Parent link, except at the dataset root.
	if rel != "." {
		parentHref := joinHref(rootPath, filepath.Dir(rel))
		l.Entries = append(l.Entries, entry{Class: "is-dir is-head-dir", Href: parentHref, Text: ".."})
	}

	var dirs, files []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		} else if e.Name() != indexFileName {
			files = append(files, e.Name())
		}
	}

	// Numeric names sort numerically via zero-padded keys; everything else
	// alphabetically.
	maxLen := maxStemLen(dirs, files)
	sortNames(dirs, maxLen)
	sortNames(files, maxLen)

	for _, name := range dirs {
		href := joinHref(rootPath, path.Join(filepath.ToSlash(rel), name)) + "/"
		l.Entries = append(l.Entries, entry{Class: "is-dir", Href: href, Text: href})
	}
	for _, name := range files {
		href := joinHref(rootPath, path.Join(filepath.ToSlash(rel), name))
		l.Entries = append(l.Entries, entry{Class: "is-file", Href: href, Text: href})
	}

	f, err := os.Create(filepath.Join(dir, indexFileName))
	if err != nil {
		return fmt.Errorf("failed to create index in %s: %w", dir, err)
	}
	if err := indexTemplate.Execute(f, l); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render index for %s: %w", dir, err)
	}
	return f.Close()
}

func dirLabel(rel string) string {
	if rel == "." {
		return "root"
	}
	return "/" + filepath.ToSlash(rel) + "/"
}

func joinHref(rootPath, rel string) string {
	if rel == "." || rel == "" {
		return path.Clean("/" + strings.Trim(rootPath, "/"))
	}
	return path.Clean("/" + path.Join(strings.Trim(rootPath, "/"), rel))
}

func maxStemLen(dirs, files []string) int {
	max := 0
	for _, name := range append(append([]string(nil), dirs...), files...) {
		stem, _, _ := strings.Cut(name, ".")
		if len(stem) > max {
			max = len(stem)
		}
	}
	return max
}

// sortNames orders names so that digit stems compare numerically: "9" before
// "10" before "1000.category".
func sortNames(names []string, maxLen int) {
	key := func(name string) string {
		stem, _, _ := strings.Cut(name, ".")
		if stem != "" && isDigits(stem) {
			return strings.Repeat("0", maxLen-len(stem)) + stem
		}
		return strings.ToLower(stem)
	}
	sort.Slice(names, func(i, j int) bool { return key(names[i]) < key(names[j]) })
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
