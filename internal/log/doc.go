// Package log provides logging with automatic redaction of sensitive
// information, built on top of the standard slog package.
//
// Crawl logs carry URLs, and URLs on treatment-provider sites sometimes
// carry things they shouldn't: session tokens in query strings, referral
// identifiers, even email addresses baked into contact links. Logs get
// shared during debugging, so redaction happens at the handler rather
// than at each call site.
//
// The RedactHandler automatically masks:
//   - Attribute values whose key names suggest credentials or identity
//     (token, session, auth, password, and similar)
//   - Sensitive query parameters inside URL-valued attributes, leaving
//     the rest of the URL readable
//   - Raw email addresses appearing anywhere in string values
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("fetched",
//	    "url", "https://example.org/intake?session=abc123", // query masked
//	    "bytes", 20480,
//	)
//
// Even in verbose mode, sensitive values are masked to prevent
// accidental exposure in logs that may be shared or stored.
package log
