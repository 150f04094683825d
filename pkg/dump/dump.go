// Package dump streams and parses the Wikipedia SQL dump assets. Dumps are
// gzip-compressed multi-gigabyte files read exactly once, either from
// dumps.wikimedia.org or from a local cache; records are extracted from the
// INSERT statements by pattern matching, never by a real SQL parser.
package dump

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// URLs returns the categorylinks and pages dump URLs for a language.
func URLs(language string) (categoryLinksURL, pagesURL string) {
	base := fmt.Sprintf("https://dumps.wikimedia.org/%swiki/latest/%swiki-latest-", language, language)
	return base + "categorylinks.sql.gz", base + "page.sql.gz"
}

var httpClient = &http.Client{Timeout: 0} // streaming downloads, no deadline

// Open returns a decompressed stream over a dump asset. An http(s) source is
// fetched with a streaming GET; anything else is treated as a local path.
// Local files are gunzipped only when named *.gz, so a pre-decompressed
// cache file works as-is.
func Open(pathOrURL string) (io.ReadCloser, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		resp, err := httpClient.Get(pathOrURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", pathOrURL, err)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %s fetching %s", resp.Status, pathOrURL)
		}
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("failed to open gzip stream for %s: %w", pathOrURL, err)
		}
		return &compositeCloser{Reader: zr, closers: []io.Closer{zr, resp.Body}}, nil
	}

	f, err := os.Open(pathOrURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump file: %w", err)
	}
	if !strings.HasSuffix(pathOrURL, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to open gzip file %s: %w", pathOrURL, err)
	}
	return &compositeCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
}

type compositeCloser struct {
	io.Reader
	closers []io.Closer
}

func (c *compositeCloser) Close() error {
	var first error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LastModified issues a HEAD request for the asset and returns its
// Last-Modified header, or "" when the header is absent. Used only by the
// redundancy check; failures are the caller's to interpret.
func LastModified(url string) (string, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Head(url)
	if err != nil {
		return "", fmt.Errorf("failed to probe %s: %w", url, err)
	}
	_ = resp.Body.Close()
	return resp.Header.Get("Last-Modified"), nil
}
