// Package importer parses and renders the YAML interchange format used by
// the bookmark import/export endpoints.
package importer

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pinsync/pinsync/internal/domain"
)

// maxImportEntries bounds a single import request.
const maxImportEntries = 1000

// Entry is one bookmark in the interchange document.
type Entry struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Document is the root of the interchange format:
//
//	bookmarks:
//	  - title: Go blog
//	    url: https://go.dev/blog/
type Document struct {
	Bookmarks []Entry `yaml:"bookmarks"`
}

// Result reports what an import did with each entry.
type Result struct {
	Accepted []Entry
	Skipped  []SkippedEntry
}

// SkippedEntry is an entry that failed validation, with the reason.
type SkippedEntry struct {
	Entry  Entry
	Reason string
}

// Parse reads a YAML document and splits its entries into accepted and
// skipped. Invalid entries never abort the whole import; they are reported
// individually so the caller can surface them.
func Parse(r io.Reader) (*Result, error) {
	raw, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read import document: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse import document: %w", err)
	}
	if len(doc.Bookmarks) == 0 {
		return nil, fmt.Errorf("import document has no bookmarks")
	}
	if len(doc.Bookmarks) > maxImportEntries {
		return nil, fmt.Errorf("import document exceeds %d entries", maxImportEntries)
	}

	res := &Result{}
	for _, entry := range doc.Bookmarks {
		entry.Title = strings.TrimSpace(entry.Title)
		entry.URL = strings.TrimSpace(entry.URL)
		if err := domain.ValidateNew(entry.Title, entry.URL); err != nil {
			res.Skipped = append(res.Skipped, SkippedEntry{Entry: entry, Reason: err.Error()})
			continue
		}
		res.Accepted = append(res.Accepted, entry)
	}

	return res, nil
}

// Render writes the owner's bookmarks as an interchange document suitable
// for re-import.
func Render(w io.Writer, bookmarks []*domain.Bookmark) error {
	doc := Document{Bookmarks: make([]Entry, 0, len(bookmarks))}
	for _, b := range bookmarks {
		doc.Bookmarks = append(doc.Bookmarks, Entry{Title: b.Title, URL: b.TargetURL})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to render export document: %w", err)
	}
	return enc.Close()
}
