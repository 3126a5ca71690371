// Package manifest reads an optional navigation manifest declaring which
// directories group their children under an index document.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned when a manifest parses but declares no directories.
var ErrEmpty = errors.New("manifest declares no directories")

// Entry is one declared directory grouping.
type Entry struct {
	// Dir is the directory relative to the docs root; "." is the root itself.
	Dir string `yaml:"dir" json:"dir"`
	// Children optionally lists the identifiers grouped under Dir. When empty,
	// every direct child document of Dir is grouped.
	Children []string `yaml:"children,omitempty" json:"children,omitempty"`
}

// Manifest is an ordered list of directory groupings.
type Manifest struct {
	Groups []Entry `yaml:"groups" json:"groups"`
}

// Candidates lists the file names probed by Discover, in priority order.
var Candidates = []string{"docgraph.yaml", "docgraph.yml", "docgraph.json", "sidebars.ts", "sidebars.js"}

// Discover returns the first candidate manifest present in any of dirs, or ""
// if none exists.
func Discover(dirs ...string) string {
	for _, dir := range dirs {
		for _, name := range Candidates {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p
			}
		}
	}
	return ""
}

// Load reads and parses the manifest at path, choosing the format from the
// file extension.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".ts", ".mjs", ".cjs":
		return ParseSidebars(data)
	default:
		return Parse(data)
	}
}

// Parse decodes a YAML (or JSON) manifest document.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	for i, g := range m.Groups {
		if strings.TrimSpace(g.Dir) == "" {
			return nil, fmt.Errorf("invalid manifest: group %d has no dir", i)
		}
		m.Groups[i].Dir = normalizeDir(g.Dir)
	}
	if len(m.Groups) == 0 {
		return nil, ErrEmpty
	}
	return &m, nil
}

var dirNamePattern = regexp.MustCompile(`dirName:\s*['"]([^'"]+)['"]`)

// ParseSidebars scans a sidebars.js/ts source for autogenerated directory
// entries (dirName: '...'). The source is never evaluated.
func ParseSidebars(data []byte) (*Manifest, error) {
	var m Manifest
	for _, match := range dirNamePattern.FindAllSubmatch(data, -1) {
		m.Groups = append(m.Groups, Entry{Dir: normalizeDir(string(match[1]))})
	}
	if len(m.Groups) == 0 {
		return nil, ErrEmpty
	}
	return &m, nil
}

func normalizeDir(dir string) string {
	dir = strings.Trim(strings.TrimSpace(filepath.ToSlash(dir)), "/")
	if dir == "" {
		return "."
	}
	return dir
}
