package structural

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

/*
Byte-offset location of parsed nodes back in the raw HTML string.

net/html preserves attribute order, so the rendered outer HTML of a
node is usually a verbatim substring of the raw input. When the
renderer has normalized something (entity escaping, void-element
syntax), a second pass matches the open tag by name plus id/class
attributes and balances nested tags to find the close.
*/

// Locate returns the [start, end) byte range of selection's first node
// within rawHTML, searching from offset from. Reports false when the
// node cannot be matched back to the raw input.
func Locate(rawHTML string, selection *goquery.Selection, from int) (int, int, bool) {
	if selection == nil || selection.Length() == 0 {
		return 0, 0, false
	}
	node := selection.Get(0)
	if node.Type != html.ElementNode {
		return 0, 0, false
	}

	outer, err := goquery.OuterHtml(selection.First())
	if err == nil && outer != "" {
		if idx := strings.Index(rawHTML[from:], outer); idx >= 0 {
			start := from + idx
			return start, start + len(outer), true
		}
	}

	return locateByOpenTag(rawHTML, node, from)
}

// locateByOpenTag finds the open tag by tag name plus id/class match,
// then balances same-name tags to find the closing tag.
func locateByOpenTag(rawHTML string, node *html.Node, from int) (int, int, bool) {
	tag := node.Data
	id := attrValue(node, "id")
	class := attrValue(node, "class")

	search := from
	for {
		start := indexTagOpen(rawHTML, tag, search)
		if start < 0 {
			return 0, 0, false
		}
		tagEnd := strings.IndexByte(rawHTML[start:], '>')
		if tagEnd < 0 {
			return 0, 0, false
		}
		openTag := rawHTML[start : start+tagEnd+1]
		if matchesAttrs(openTag, id, class) {
			end, ok := balanceClose(rawHTML, tag, start+tagEnd+1)
			if !ok {
				return 0, 0, false
			}
			return start, end, true
		}
		search = start + 1
	}
}

func indexTagOpen(rawHTML string, tag string, from int) int {
	lower := strings.ToLower(rawHTML)
	needle := "<" + tag
	for search := from; search < len(lower); {
		idx := strings.Index(lower[search:], needle)
		if idx < 0 {
			return -1
		}
		pos := search + idx
		after := pos + len(needle)
		if after < len(lower) {
			next := lower[after]
			if next == '>' || next == ' ' || next == '\t' || next == '\n' || next == '/' {
				return pos
			}
		}
		search = pos + 1
	}
	return -1
}

func matchesAttrs(openTag string, id string, class string) bool {
	if id != "" && !strings.Contains(openTag, id) {
		return false
	}
	if class != "" {
		for _, name := range strings.Fields(class) {
			if !strings.Contains(openTag, name) {
				return false
			}
		}
	}
	return true
}

// balanceClose scans forward from after the open tag, counting nested
// same-name tags, and returns the offset just past the matching close.
func balanceClose(rawHTML string, tag string, from int) (int, bool) {
	lower := strings.ToLower(rawHTML)
	open := "<" + tag
	close := "</" + tag
	depth := 1
	pos := from
	for depth > 0 {
		nextClose := strings.Index(lower[pos:], close)
		if nextClose < 0 {
			return 0, false
		}
		nextOpen := indexTagOpen(rawHTML, tag, pos)
		if nextOpen >= 0 && nextOpen < pos+nextClose {
			depth++
			pos = nextOpen + len(open)
			continue
		}
		depth--
		closeEnd := strings.IndexByte(rawHTML[pos+nextClose:], '>')
		if closeEnd < 0 {
			return 0, false
		}
		pos = pos + nextClose + closeEnd + 1
	}
	return pos, true
}

func attrValue(node *html.Node, key string) string {
	for _, attr := range node.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
