package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/jimmyjon121/Doc-Creator-sub009/internal/model"
)

// MarkdownWriter outputs crawl results in Markdown format.
// This format is designed for pasting into aftercare documents and
// sharing with clinical teams.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeStats(md, result)
	w.writePages(md, result)
	w.writeErrors(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Crawl Date", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", result.Duration.String()},
			{"Seed URLs", strconv.Itoa(result.Seeds)},
			{"Pages Collected", strconv.Itoa(result.PageCount())},
			{"Status", w.getStatusText(result)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on the result state.
func (w *MarkdownWriter) getStatusText(result *model.CrawlResult) string {
	if result.HasErrors() {
		return "⚠️ Completed with " + strconv.Itoa(len(result.Errors)) + " failure(s)"
	}
	return "✅ Complete"
}

// writeStats writes the statistics section with a distribution chart.
func (w *MarkdownWriter) writeStats(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Statistics")
	md.PlainText("")

	stats := result.Stats
	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Count"},
		Rows: [][]string{
			{"Requested", strconv.Itoa(stats.Requested)},
			{"Fetched", strconv.Itoa(stats.Fetched)},
			{"From Cache", strconv.Itoa(stats.Cached)},
			{"Failed", strconv.Itoa(stats.Failed)},
			{"Second Level", strconv.Itoa(result.SecondLevelCount())},
		},
	})
	md.PlainText("")

	if stats.Fetched+stats.Cached+stats.Failed > 0 {
		w.writePieChart(md, stats)
	}

	w.writeAlert(md, result)
}

// writePieChart writes a mermaid pie chart of fetch outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, stats model.CrawlStats) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetch Outcomes"),
		piechart.WithShowData(true),
	)

	if stats.Fetched > 0 {
		chart.LabelAndIntValue("Fetched", uint64(stats.Fetched))
	}
	if stats.Cached > 0 {
		chart.LabelAndIntValue("From Cache", uint64(stats.Cached))
	}
	if stats.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(stats.Failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert keyed to the failure count.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.CrawlResult) {
	failed := result.Stats.Failed
	switch {
	case failed > 0 && result.PageCount() == 0:
		md.Cautionf(
			"No pages were collected. All %d request(s) failed; the sites may be down or blocking automated access.",
			failed,
		)
	case failed > 0:
		md.Warningf(
			"%d URL(s) could not be fetched. The report below covers the pages that were collected.",
			failed,
		)
	default:
		md.Tip("All requested pages were collected successfully.")
	}
	md.PlainText("")
}

// writePages writes the collected pages section.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Pages")
	md.PlainText("")

	if len(result.Pages) == 0 {
		md.PlainText("No pages collected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(result.Pages))
	for i, page := range result.Pages {
		source := "first pass"
		if page.SecondLevel {
			source = "second level"
		}
		origin := "network"
		if page.FromCache {
			origin = "cache"
		}

		rows[i] = []string{
			displayName(page.URL),
			truncateString(page.URL, 60),
			source,
			origin,
			strconv.Itoa(len(page.Content)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "URL", "Source", "Origin", "Bytes"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeErrors writes the failure section with collapsible details.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, result *model.CrawlResult) {
	if !result.HasErrors() {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, len(result.Errors))
	for i, crawlErr := range result.Errors {
		rows[i] = []string{
			truncateString(crawlErr.URL, 60),
			strconv.Itoa(crawlErr.Attempts),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Attempts"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, crawlErr := range result.Errors {
		md.Details(crawlErr.URL, crawlErr.Message)
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [doccrawl](https://github.com/jimmyjon121/Doc-Creator-sub009)*")
}
