// Package scanner enumerates the Markdown/MDX documents under a root directory
// and assigns each a stable, extension-stripped, slash-separated identifier.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrUnreadable is returned when any directory under the root cannot be listed.
// A partial scan is never returned.
var ErrUnreadable = errors.New("unreadable document tree")

// Extensions lists the file suffixes recognized as documents.
var Extensions = []string{".md", ".mdx"}

var extPattern = regexp.MustCompile(`\.mdx?$`)

// Document is a single file found under the scan root.
type Document struct {
	// Path is the file system path as discovered (root joined with the relative path).
	Path string
	// ID is the canonical document identifier: root-relative, slash separated,
	// extension stripped.
	ID string
}

// Scan walks root recursively and returns every document file beneath it.
// Directories are visited in lexical order, depth first, so repeated scans of an
// unchanged tree return identical results. Symlinked directories are followed.
func Scan(root string) ([]Document, error) {
	var docs []Document
	if err := walk(root, root, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func walk(root, dir string, docs *[]Document) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreadable, dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// os.Stat follows symlinks, ReadDir entries do not.
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
		}

		if info.IsDir() {
			if err := walk(root, path, docs); err != nil {
				return err
			}
			continue
		}

		if !IsDocument(entry.Name()) {
			continue
		}

		id, err := IDFromPath(root, path)
		if err != nil {
			return err
		}
		*docs = append(*docs, Document{Path: path, ID: id})
	}

	return nil
}

// IsDocument reports whether name carries a recognized document extension.
func IsDocument(name string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// IDFromPath derives the document identifier for path relative to root.
func IDFromPath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", path, err)
	}
	return StripExtension(filepath.ToSlash(rel)), nil
}

// StripExtension removes a trailing .md or .mdx suffix.
func StripExtension(p string) string {
	return extPattern.ReplaceAllString(p, "")
}
