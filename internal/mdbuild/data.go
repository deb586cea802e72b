package mdbuild

// SEO issues reported by the H1 hoisting pass.
const (
	IssueH1NotFirst = "h1_not_at_start"
	IssueH1Missing  = "h1_missing"
	IssueH1Mismatch = "h1_mismatch"
)

// Result carries both Markdown products of one build: the enhanced
// form with structural markers and the plain form with markers
// stripped.
type Result struct {
	enhanced  string
	plain     string
	seoIssues []string
}

func (r Result) Enhanced() string    { return r.enhanced }
func (r Result) Plain() string       { return r.plain }
func (r Result) SEOIssues() []string { return r.seoIssues }

// NewResultForTest creates a Result for testing purposes.
func NewResultForTest(enhanced, plain string, seoIssues []string) Result {
	return Result{enhanced: enhanced, plain: plain, seoIssues: seoIssues}
}
