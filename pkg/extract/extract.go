// Package extract mines titles, summaries, keywords and outbound links from
// Markdown/MDX source text using shallow pattern rules.
//
// Each rule is an independent function over the raw text so it can be tested
// against literal fixtures. Headings inside fenced code blocks are not
// special-cased: a "# comment" line in a shell fence can become the title.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxSummaryLength is the summary length, in characters, before truncation.
	MaxSummaryLength = 100
	// Ellipsis is appended to truncated summaries.
	Ellipsis = "…"
	// MaxKeywords bounds the keyword list.
	MaxKeywords = 5

	minKeywordLength = 2
	maxKeywordLength = 30
)

var (
	titlePattern   = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	linkPattern    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldPattern    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	codePattern    = regexp.MustCompile("`([^`]+)`")
	schemePattern  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*:`)
	skippedPrefixs = []string{"#", "import ", "export ", ":::", "<", "{"}
)

// Result holds everything extracted from one document.
type Result struct {
	Title    string
	Summary  string
	Keywords []string
	Links    []string
}

// Parse applies every extraction rule to content.
func Parse(content string) Result {
	return Result{
		Title:    Title(content),
		Summary:  Summary(content),
		Keywords: Keywords(content),
		Links:    Links(content),
	}
}

// Title returns the text of the first level-one heading, or "".
func Title(content string) string {
	m := titlePattern.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Links returns every internal inline-link target in document order.
// External URLs, mail links and pure fragments are dropped here.
func Links(content string) []string {
	var links []string
	for _, m := range linkPattern.FindAllStringSubmatch(content, -1) {
		target := strings.TrimSpace(m[2])
		if target == "" || IsExternal(target) {
			continue
		}
		links = append(links, target)
	}
	return links
}

// IsExternal reports whether a link target leaves the document tree:
// an absolute URL (any scheme, including mailto:), a protocol-relative URL,
// or an in-page fragment.
func IsExternal(target string) bool {
	switch {
	case strings.HasPrefix(target, "#"):
		return true
	case strings.HasPrefix(target, "//"):
		return true
	case schemePattern.MatchString(target):
		return true
	}
	return false
}

// Keywords returns up to MaxKeywords distinct bold spans in document order.
func Keywords(content string) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, m := range boldPattern.FindAllStringSubmatch(content, -1) {
		kw := strings.TrimSpace(m[1])
		n := utf8.RuneCountInString(kw)
		if n <= minKeywordLength || n >= maxKeywordLength || strings.Contains(kw, "\n") {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
		if len(keywords) >= MaxKeywords {
			break
		}
	}
	return keywords
}

// Summary returns the first prose line outside front matter with inline markup
// stripped, truncated to MaxSummaryLength characters.
func Summary(content string) string {
	inFrontMatter := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "---" {
			inFrontMatter = !inFrontMatter
			continue
		}
		if inFrontMatter || trimmed == "" || hasSkippedPrefix(trimmed) {
			continue
		}
		return Truncate(StripMarkup(trimmed), MaxSummaryLength)
	}
	return ""
}

func hasSkippedPrefix(line string) bool {
	for _, p := range skippedPrefixs {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// StripMarkup replaces bold spans, inline links and code spans with their text.
func StripMarkup(s string) string {
	s = boldPattern.ReplaceAllString(s, "$1")
	s = linkPattern.ReplaceAllString(s, "$1")
	return codePattern.ReplaceAllString(s, "$1")
}

// Truncate cuts s to limit characters and appends Ellipsis when it was longer.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + Ellipsis
}
