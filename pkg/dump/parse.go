package dump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"wikicat/models"
)

const (
	stringValue  = `'[^'\\]*(?:\\.[^'\\]*)*'`
	integerValue = `\d+`
	floatValue   = `\d+\.\d+`
)

// categoryLinkPattern matches one tuple of a categorylinks INSERT statement:
// (cl_from, cl_to, four string columns, cl_type). Only "page" and "subcat"
// rows are of interest; "file" rows never match.
var categoryLinkPattern = regexp.MustCompile(
	`\((` + integerValue + `),(` + stringValue + `),(?:` + stringValue + `,){4}'(subcat|page)'\)`,
)

// pagePattern matches one tuple of a page INSERT statement in the article (0)
// or category (14) namespace, capturing page_id, namespace and title.
var pagePattern = regexp.MustCompile(
	`\((` + integerValue + `),(0|14),` +
		`(` + stringValue + `),` + integerValue + `,` +
		integerValue + `,` + floatValue + `,` +
		stringValue + `,` + stringValue + `,` +
		integerValue + `,` + integerValue + `,` +
		stringValue + `,(?:` + stringValue + `|NULL)\)`,
)

// ParsePages extracts Page records from a pages dump stream, invoking emit
// for each. Lines that match nothing are skipped; the dump interleaves DDL
// and comments with the INSERT statements.
func ParsePages(r io.Reader, emit func(models.Page)) error {
	return eachLine(r, func(line string) {
		for _, hit := range pagePattern.FindAllStringSubmatch(line, -1) {
			id, err := strconv.ParseUint(hit[1], 10, 32)
			if err != nil {
				continue
			}
			ns := models.NamespaceArticle
			if hit[2] == "14" {
				ns = models.NamespaceCategory
			}
			emit(models.Page{ID: uint32(id), Namespace: ns, Title: unquoteSQL(hit[3])})
		}
	})
}

// ParseCategoryLinks extracts CategoryLink records from a categorylinks dump
// stream, invoking emit for each.
func ParseCategoryLinks(r io.Reader, emit func(models.CategoryLink)) error {
	return eachLine(r, func(line string) {
		for _, hit := range categoryLinkPattern.FindAllStringSubmatch(line, -1) {
			target, err := strconv.ParseUint(hit[1], 10, 32)
			if err != nil {
				continue
			}
			kind := models.LinkSubcategory
			if hit[3] == "page" {
				kind = models.LinkMemberArticle
			}
			emit(models.CategoryLink{
				SourceCategoryName: unquoteSQL(hit[2]),
				TargetID:           uint32(target),
				Kind:               kind,
			})
		}
	})
}

// eachLine feeds the stream to fn one '\n'-separated line at a time. Dump
// INSERT lines run to many megabytes, so this reads without a token size
// limit.
func eachLine(r io.Reader, fn func(string)) error {
	br := bufio.NewReaderSize(r, 1<<20)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			fn(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read dump stream: %w", err)
		}
	}
}

// unquoteSQL strips the surrounding single quotes of a dump string literal
// and resolves its backslash escapes.
func unquoteSQL(quoted string) string {
	s := quoted[1 : len(quoted)-1]
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		default:
			// \', \", \\ and anything else: the escaped byte itself.
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
