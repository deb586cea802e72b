package nav

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const maxMenuDepth = 3

// walkMenu turns a cluster container into NavItems via a tree walk.
// Top-level <li> children yield depth-0 items in document order;
// nested menus recurse up to maxMenuDepth. A parent with href="#" is
// kept only when it has a submenu. Order values are assigned densely
// per depth after utility filtering.
func walkMenu(container *goquery.Selection, pageURL string, include func(href string) bool) []NavItem {
	root := menuRoot(container)
	if root == nil {
		return collectFlat(container, pageURL, include)
	}

	orderByDepth := make(map[int]int)
	var items []NavItem
	var recurse func(menu *goquery.Selection, depth int, parents []string)
	recurse = func(menu *goquery.Selection, depth int, parents []string) {
		menu.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			anchor := li.ChildrenFiltered("a").First()
			submenu := findSubmenu(li)

			if anchor.Length() > 0 {
				href, _ := anchor.Attr("href")
				href = strings.TrimSpace(href)
				placeholder := href == "#" || href == ""
				keep := include(href) && (!placeholder || (depth == 0 && submenu != nil))
				if keep {
					items = append(items, NavItem{
						URL:          resolveOrRaw(href, pageURL),
						Label:        linkLabel(anchor),
						Depth:        depth,
						Order:        orderByDepth[depth],
						ParentLabels: append([]string(nil), parents...),
						IsExternal:   isExternal(href, pageURL),
						LinkType:     linkType(anchor),
					})
					orderByDepth[depth]++
				}
			}

			if submenu != nil && depth < maxMenuDepth {
				childParents := parents
				if anchor.Length() > 0 {
					if label := linkLabel(anchor); label != "" {
						childParents = append(append([]string(nil), parents...), label)
					}
				}
				recurse(submenu, depth+1, childParents)
			}
		})
	}
	recurse(root, 0, nil)
	return items
}

// menuRoot finds the top-level <ul> of a container, or nil if the
// container holds no list markup.
func menuRoot(container *goquery.Selection) *goquery.Selection {
	if goquery.NodeName(container) == "ul" {
		return container
	}
	root := container.ChildrenFiltered("ul").First()
	if root.Length() == 0 {
		root = container.Find("ul").First()
	}
	if root.Length() == 0 {
		return nil
	}
	return root
}

func findSubmenu(li *goquery.Selection) *goquery.Selection {
	for _, selector := range submenuSelectors {
		submenu := li.ChildrenFiltered(selector).First()
		if submenu.Length() > 0 {
			return submenu
		}
	}
	// Some themes wrap the submenu in a div.
	nested := li.Find("ul").First()
	if nested.Length() > 0 {
		return nested
	}
	return nil
}

// collectFlat gathers anchors in document order as depth-0 items for
// containers without list markup.
func collectFlat(container *goquery.Selection, pageURL string, include func(href string) bool) []NavItem {
	var items []NavItem
	order := 0
	container.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || href == "#" || !include(href) {
			return
		}
		items = append(items, NavItem{
			URL:        resolveOrRaw(href, pageURL),
			Label:      linkLabel(anchor),
			Depth:      0,
			Order:      order,
			IsExternal: isExternal(href, pageURL),
			LinkType:   linkType(anchor),
		})
		order++
	})
	return items
}

// linkLabel is the anchor's own text, excluding descendant element
// text. Falls back to the full text, then to an image alt.
func linkLabel(anchor *goquery.Selection) string {
	if anchor.Length() == 0 {
		return ""
	}
	var own strings.Builder
	for child := anchor.Get(0).FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			own.WriteString(child.Data)
		}
	}
	if label := strings.TrimSpace(own.String()); label != "" {
		return label
	}
	if label := strings.TrimSpace(anchor.Text()); label != "" {
		return label
	}
	alt, _ := anchor.Find("img").First().Attr("alt")
	return strings.TrimSpace(alt)
}

func linkType(anchor *goquery.Selection) string {
	if anchor.Find("img").Length() > 0 {
		return LinkTypeImage
	}
	if anchor.Find("svg, i[class*=icon], i[class*=fa-], span[class*=icon]").Length() > 0 {
		return LinkTypeIcon
	}
	return LinkTypeText
}
