package content

// Extraction methods, in cascade order. Fallback never fails but may
// land under the word-count threshold.
const (
	MethodDomainOverride = "domain_override"
	MethodReadability    = "readability"
	MethodSemantic       = "semantic"
	MethodCMSPattern     = "cms_pattern"
	MethodFallback       = "fallback"
)

// Result is the outcome of one extraction cascade run.
type Result struct {
	cleanHTML string
	wordCount int
	method    string
	junkScore float64
}

func (r Result) CleanHTML() string  { return r.cleanHTML }
func (r Result) WordCount() int     { return r.wordCount }
func (r Result) Method() string     { return r.method }
func (r Result) JunkScore() float64 { return r.junkScore }

// NewResultForTest creates a Result for testing purposes.
func NewResultForTest(cleanHTML string, wordCount int, method string, junkScore float64) Result {
	return Result{
		cleanHTML: cleanHTML,
		wordCount: wordCount,
		method:    method,
		junkScore: junkScore,
	}
}
