package report

import (
	"fmt"
	"io"
	"time"
)

// Summary is the end-of-run aggregate handed to the CLI.
type Summary struct {
	RunID      string
	Discovered int
	Crawled    int
	Skipped    int
	Redirects  int
	Errors     int
	Duration   time.Duration
}

// Print writes the human-readable run summary.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "run %s finished in %s\n", s.RunID, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  discovered: %d\n", s.Discovered)
	fmt.Fprintf(w, "  crawled:    %d\n", s.Crawled)
	fmt.Fprintf(w, "  skipped:    %d\n", s.Skipped)
	fmt.Fprintf(w, "  redirects:  %d\n", s.Redirects)
	fmt.Fprintf(w, "  errors:     %d\n", s.Errors)
}
