package nav

// Priority-ordered selector lists per cluster. The first selector whose
// container passes the cluster predicate wins.

var primaryNavSelectors = []string{
	"nav.primary-navigation",
	"nav.main-navigation",
	"#primary-menu",
	"#site-navigation",
	".main-menu",
	"nav[aria-label=Main]",
	".navbar-nav",
	"header nav",
}

// primaryNavFallback is tried only after every priority selector fails
// the minimum-links predicate.
const primaryNavFallback = "nav"

var footerNavSelectors = []string{
	"footer nav",
	".footer-menu",
	".footer-nav",
	"#footer-menu",
	".footer-links",
}

// footerFallbackContainers are scanned for any internal non-utility
// link when the priority selectors fail, capped at footerFallbackCap.
var footerFallbackContainers = []string{
	"footer",
	".footer",
	"#footer",
	".site-footer",
}

const footerFallbackCap = 20

var utilityContainerSelectors = []string{
	".top-bar",
	".topbar",
	".utility-nav",
	".header-top",
	".header-contact",
}

var languageSwitcherSelectors = []string{
	".language-switcher",
	".lang-switcher",
	".wpml-ls",
	".polylang-switcher",
	"[class*=language-select]",
}

var breadcrumbContainerSelectors = []string{
	".breadcrumb",
	".breadcrumbs",
	"#breadcrumbs",
	".yoast-breadcrumb",
	"nav[aria-label=breadcrumb]",
}

var mainContentSelectors = []string{
	"main",
	"#main-content",
	"#content",
	".content",
	"article",
	".entry-content",
	".post-content",
	".page-content",
	"[role=main]",
}

// contentLinkExcludedAncestors disqualify a link from the content-link
// pass even when it sits inside the main region.
const contentLinkExcludedAncestors = "nav, header, footer, aside, .sidebar, .menu, .navbar, .breadcrumb, .breadcrumbs"

// submenuSelectors locate nested menu levels under a parent <li>.
var submenuSelectors = []string{
	"ul.sub-menu",
	"ul.dropdown-menu",
	"ul",
}

// utilityPrefixes mark scheme-level utility links filtered out of
// primary and footer clusters but aggregated into utility_header.
var utilityPrefixes = []string{
	"tel:",
	"mailto:",
	"sms:",
	"whatsapp:",
}

// socialDomains are treated as utility regardless of scheme.
var socialDomains = map[string]struct{}{
	"facebook.com":  {},
	"twitter.com":   {},
	"x.com":         {},
	"instagram.com": {},
	"linkedin.com":  {},
	"youtube.com":   {},
	"pinterest.com": {},
	"tiktok.com":    {},
}
