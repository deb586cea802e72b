package crawler

// Unit of work

// Job is one canonical URL admitted to the crawl queue. originals keeps
// every raw sitemap form that normalized to the canonical so each one
// gets its own alias row.
type Job struct {
	canonical string
	originals []string
	source    string
	typeHint  string
}

func (j Job) Canonical() string   { return j.canonical }
func (j Job) Originals() []string { return j.originals }
func (j Job) Source() string      { return j.source }
func (j Job) TypeHint() string    { return j.typeHint }

// NewJobForTest creates a Job for testing purposes.
func NewJobForTest(canonical string, originals []string, source string, typeHint string) Job {
	return Job{
		canonical: canonical,
		originals: originals,
		source:    source,
		typeHint:  typeHint,
	}
}

// jobOutcome is the worker-side classification of one processed job.
// The orchestrator folds outcomes into run counters; outcomes never
// influence how later jobs are scheduled.
type jobOutcome struct {
	crawled  bool
	skipped  bool
	redirect bool
	errored  bool
}
