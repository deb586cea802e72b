package mdbuild

import (
	"regexp"
	"strings"
)

var (
	headingPattern   = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	excessNewlines   = regexp.MustCompile(`\n{3,}`)
	breadcrumbLine   = regexp.MustCompile(`^Home\s*[>»/].*$`)
	postedByLine     = regexp.MustCompile(`^Posted on .+ by .+$`)
	copyrightLine    = regexp.MustCompile(`(?i)^(©|\(c\)\s|copyright\b).*$`)
	lastUpdatedLine  = regexp.MustCompile(`(?i)^last updated\b.*$`)
	structMarkerLine = regexp.MustCompile(`^<!-- STRUCT:[A-Z_]+:[A-Z_]+ -->$`)
)

// normalizeHeadings rewrites ATX headings so no heading skips more than
// one level from the previous one, capped at h6.
func normalizeHeadings(markdown string) string {
	lines := strings.Split(markdown, "\n")
	prevLevel := 0
	for i, line := range lines {
		match := headingPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		level := len(match[1])
		if prevLevel > 0 && level > prevLevel+1 {
			level = prevLevel + 1
		}
		if level > 6 {
			level = 6
		}
		lines[i] = strings.Repeat("#", level) + " " + match[2]
		prevLevel = level
	}
	return strings.Join(lines, "\n")
}

// stripBoilerplate removes breadcrumb text lines, byline/copyright
// noise, and collapses consecutive duplicate non-empty lines.
func stripBoilerplate(markdown string) string {
	lines := strings.Split(markdown, "\n")
	out := lines[:0]
	prevNonEmpty := ""
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			if breadcrumbLine.MatchString(trimmed) ||
				postedByLine.MatchString(trimmed) ||
				copyrightLine.MatchString(trimmed) ||
				lastUpdatedLine.MatchString(trimmed) {
				continue
			}
			if trimmed == prevNonEmpty && !structMarkerLine.MatchString(trimmed) {
				continue
			}
			prevNonEmpty = trimmed
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// collapseWhitespace reduces runs of three or more newlines to two and
// trims the document.
func collapseWhitespace(markdown string) string {
	return strings.TrimSpace(excessNewlines.ReplaceAllString(markdown, "\n\n"))
}

// hoistH1 guarantees the page's H1 opens the document. When the first
// existing h1 already matches, nothing changes. Otherwise every h1 is
// removed and the metadata H1 is prepended. Returns the rewritten
// Markdown plus any SEO issues observed.
func hoistH1(markdown string, h1 string) (string, []string) {
	if strings.TrimSpace(h1) == "" {
		return markdown, nil
	}
	h1 = strings.TrimSpace(h1)

	lines := strings.Split(markdown, "\n")
	firstH1Line := -1
	firstContentLine := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || structMarkerLine.MatchString(trimmed) {
			continue
		}
		if firstContentLine == -1 {
			firstContentLine = i
		}
		if firstH1Line == -1 && isH1Line(trimmed) {
			firstH1Line = i
		}
	}

	var issues []string
	switch {
	case firstH1Line == -1:
		issues = append(issues, IssueH1Missing)
	case firstH1Line != firstContentLine:
		issues = append(issues, IssueH1NotFirst)
	case strings.TrimSpace(strings.TrimPrefix(lines[firstH1Line], "# ")) == h1:
		return markdown, nil
	default:
		issues = append(issues, IssueH1Mismatch)
	}

	var kept []string
	for _, line := range lines {
		if isH1Line(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	rewritten := "# " + h1 + "\n\n" + strings.TrimLeft(strings.Join(kept, "\n"), "\n")
	return rewritten, issues
}

func isH1Line(line string) bool {
	return strings.HasPrefix(line, "# ")
}
