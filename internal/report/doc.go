// Package report provides output formatting for crawl results.
//
// This package implements report writers in multiple formats:
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter: machine-readable output for tool integration
//   - MarkdownWriter: shareable documents with tables and charts
//
// All writers implement the Writer interface, and MultiWriter fans a
// single result out to several destinations (e.g. terminal and file).
package report
