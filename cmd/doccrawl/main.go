// Package main provides the entry point for the doccrawl CLI.
//
// doccrawl collects clinical program pages from treatment-provider
// websites for use in aftercare documentation.
//
// Usage:
//
//	doccrawl crawl <url> [url...]
//	doccrawl crawl --list <file>
//
// See --help for all available options.
package main

// main is the entry point for doccrawl.
func main() {
	Execute()
}
