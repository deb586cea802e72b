package failure

type Severity int

// Orchestrator control flow. A fatal error aborts the run; a recoverable
// error is recorded and the worker moves on to the next item.
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

type ClassifiedError interface {
	error
	Severity() Severity
}
