package content

import "strings"

// soft404Phrases are checked case-insensitively against the title and
// body text of pages that returned 200.
var soft404Phrases = []string{
	"page not found",
	"404 not found",
	"404 error",
	"nothing found",
	"page doesn't exist",
	"page does not exist",
	"page cannot be found",
	"no longer available",
	"oops! that page",
}

// LooksSoft404 reports whether a 200 response reads like an error page.
// The caller additionally gates on a low word count before reclassifying.
func LooksSoft404(title string, bodyText string) bool {
	lowerTitle := strings.ToLower(title)
	lowerBody := strings.ToLower(bodyText)
	for _, phrase := range soft404Phrases {
		if strings.Contains(lowerTitle, phrase) || strings.Contains(lowerBody, phrase) {
			return true
		}
	}
	return false
}
