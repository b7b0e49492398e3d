package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jimmyjon121/Doc-Creator-sub009/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display after a crawl completes.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl result in human-readable format.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeStats(&sb, result)
	w.writePages(&sb, result)
	w.writeErrors(&sb, result)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         DOCCRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Crawl Date:    %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:      %s\n", result.Duration.Round(10*time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Seed URLs:     %d\n", result.Seeds))

	if result.HasErrors() {
		sb.WriteString(fmt.Sprintf("Status:        Completed with %d failure(s)\n", len(result.Errors)))
	} else {
		sb.WriteString("Status:        Complete\n")
	}

	sb.WriteString("\n")
}

// writeStats writes the crawl statistics section.
func (w *SimpleWriter) writeStats(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CRAWL STATISTICS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	stats := result.Stats
	sb.WriteString(fmt.Sprintf("  REQUESTED:    %d\n", stats.Requested))
	sb.WriteString(fmt.Sprintf("  FETCHED:      %d\n", stats.Fetched))
	sb.WriteString(fmt.Sprintf("  FROM CACHE:   %d\n", stats.Cached))
	sb.WriteString(fmt.Sprintf("  FAILED:       %d\n", stats.Failed))
	sb.WriteString(fmt.Sprintf("  SECOND LEVEL: %d\n", result.SecondLevelCount()))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  SUCCESS RATE: %.1f%%\n", result.SuccessRate()*100))
	sb.WriteString("\n")
}

// writePages writes the collected pages section.
func (w *SimpleWriter) writePages(sb *strings.Builder, result *model.CrawlResult) {
	if len(result.Pages) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES COLLECTED\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(result.Pages) == 0 {
		sb.WriteString("  No pages collected\n")
	} else {
		for _, page := range result.Pages {
			marker := "+"
			if page.SecondLevel {
				marker = ">"
			}
			sb.WriteString(fmt.Sprintf("  [%s] %s\n", marker, displayName(page.URL)))
			if w.verbose {
				sb.WriteString(fmt.Sprintf("      %s (%d bytes", page.URL, len(page.Content)))
				if page.FromCache {
					sb.WriteString(", cached")
				}
				sb.WriteString(")\n")
			}
		}
	}
	sb.WriteString("\n")
}

// writeErrors writes the failure section.
func (w *SimpleWriter) writeErrors(sb *strings.Builder, result *model.CrawlResult) {
	if !result.HasErrors() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILURES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(result.Errors) == 0 {
		sb.WriteString("  No failures\n")
	} else {
		for _, crawlErr := range result.Errors {
			sb.WriteString(fmt.Sprintf("  [!] %s\n", crawlErr.URL))
			sb.WriteString(fmt.Sprintf("      %s (after %d attempt(s))\n", crawlErr.Message, crawlErr.Attempts))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by doccrawl\n")
	sb.WriteString("https://github.com/jimmyjon121/Doc-Creator-sub009\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
