package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/korean"

	"github.com/rickgao/pricesync/internal/model"
)

// Catalog errors.
var (
	ErrEmptyCatalog     = errors.New("catalog is empty")
	ErrMalformedCatalog = errors.New("catalog table not found")
)

// Column headers of the listed-company download.
const (
	catalogCodeHeader = "종목코드"
	catalogNameHeader = "회사명"
)

// GetCatalog downloads and parses the full listed-company catalog.
func (c *Client) GetCatalog(ctx context.Context) ([]CatalogEntry, error) {
	if c.catalogURL == "" {
		return nil, errors.New("get catalog: catalog url not configured")
	}

	body, err := c.doWithRetry(ctx, http.MethodGet, c.catalogURL, nil)
	if err != nil {
		return nil, fmt.Errorf("get catalog: %w", err)
	}

	entries, err := ParseCatalog(decodeCatalog(body))
	if err != nil {
		return nil, fmt.Errorf("get catalog: %w", err)
	}
	return entries, nil
}

// decodeCatalog converts the CP949 download to UTF-8. Bodies that are
// already valid UTF-8 pass through unchanged.
func decodeCatalog(body []byte) io.Reader {
	if utf8.Valid(body) {
		return bytes.NewReader(body)
	}
	return korean.EUCKR.NewDecoder().Reader(bytes.NewReader(body))
}

// ParseCatalog extracts (code, name) pairs from the first HTML table whose
// header row names both the code and company columns. Codes are
// zero-padded; duplicate codes keep their first occurrence.
func ParseCatalog(r io.Reader) ([]CatalogEntry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse catalog html: %w", err)
	}

	for _, table := range findAll(doc, "table") {
		rows := tableRows(table)
		if len(rows) == 0 {
			continue
		}

		codeIdx, nameIdx := -1, -1
		for i, h := range rows[0] {
			switch h {
			case catalogCodeHeader:
				codeIdx = i
			case catalogNameHeader:
				nameIdx = i
			}
		}
		if codeIdx < 0 || nameIdx < 0 {
			continue
		}

		seen := make(map[string]bool)
		var entries []CatalogEntry
		for _, row := range rows[1:] {
			if codeIdx >= len(row) || nameIdx >= len(row) {
				continue
			}
			code := model.NormalizeCode(row[codeIdx])
			name := row[nameIdx]
			if code == "" || name == "" || seen[code] {
				continue
			}
			seen[code] = true
			entries = append(entries, CatalogEntry{Code: code, Name: name})
		}

		if len(entries) == 0 {
			return nil, ErrEmptyCatalog
		}
		return entries, nil
	}

	return nil, ErrMalformedCatalog
}

// tableRows returns the trimmed text of every th/td cell, row by row.
func tableRows(table *html.Node) [][]string {
	var rows [][]string
	for _, tr := range findAll(table, "tr") {
		var cells []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				cells = append(cells, strings.TrimSpace(textOf(c)))
			}
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

// findAll returns every element named tag under n, in document order.
func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
