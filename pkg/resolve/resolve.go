// Package resolve maps raw link targets and document paths onto canonical
// document identifiers.
package resolve

import (
	"net/url"
	"path"
	"strings"

	"github.com/rmax-ai/docgraph/pkg/extract"
	"github.com/rmax-ai/docgraph/pkg/scanner"
)

// IndexName is the document that stands in for its directory.
const IndexName = "index"

// Resolver turns link targets into identifiers. The zero value resolves
// site-absolute links from the document root.
type Resolver struct {
	// DocsPrefix is the route prefix documents are served under (e.g. "docs").
	// Absolute links of the form /<DocsPrefix>/x resolve to x.
	DocsPrefix string
}

// Resolve maps link, found in document sourceID, onto a document identifier.
// It never checks whether the target exists. ok is false for links that do not
// name a document (external URLs, fragments, empty targets).
func (r Resolver) Resolve(link, sourceID string) (id string, ok bool) {
	target := strings.TrimSpace(link)
	if target == "" || extract.IsExternal(target) {
		return "", false
	}
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return "", false
	}
	if unescaped, err := url.PathUnescape(target); err == nil {
		target = unescaped
	}
	target = strings.ReplaceAll(target, "\\", "/")

	dirRef := strings.HasSuffix(target, "/")
	if last := path.Base(target); last == "." || last == ".." {
		dirRef = true
	}

	var joined string
	if strings.HasPrefix(target, "/") {
		joined = path.Clean(r.rebase(target))
	} else {
		joined = path.Join(path.Dir(sourceID), target)
	}
	joined = scanner.StripExtension(joined)

	if joined == "." || joined == ".." {
		dirRef = true
	}
	if dirRef {
		joined = path.Join(joined, IndexName)
	}
	return joined, true
}

// rebase strips the leading slash and the docs route prefix from a
// site-absolute link.
func (r Resolver) rebase(target string) string {
	trimmed := strings.TrimPrefix(target, "/")
	if r.DocsPrefix != "" {
		prefix := strings.Trim(r.DocsPrefix, "/") + "/"
		trimmed = strings.TrimPrefix(trimmed, prefix)
	}
	if trimmed == "" {
		return "."
	}
	return trimmed
}

// Parent returns the structural parent of id: the containing directory's index
// document, or for an index document the grandparent directory's index.
// Depth-one identifiers have no parent.
//
//	a/b/c     -> a/b/index
//	a/b/index -> a/index
//	a/index   -> index
//	intro     -> (none)
func Parent(id string) (string, bool) {
	parts := strings.Split(id, "/")
	if len(parts) <= 1 {
		return "", false
	}

	var dir []string
	if parts[len(parts)-1] == IndexName {
		dir = parts[:len(parts)-2]
	} else {
		dir = parts[:len(parts)-1]
	}

	parent := strings.Join(append(append([]string{}, dir...), IndexName), "/")
	parent = strings.TrimPrefix(parent, "/")
	if parent == id {
		return "", false
	}
	return parent, true
}

// Depth is the number of path segments in id.
func Depth(id string) int {
	return strings.Count(id, "/") + 1
}

// IndexOf returns the index identifier for directory dir; "." or "" is the root.
func IndexOf(dir string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" || dir == "." {
		return IndexName
	}
	return dir + "/" + IndexName
}
