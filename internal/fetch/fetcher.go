package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/jimmyjon121/Doc-Creator-sub009/internal/model"
)

// Fetcher defaults. The exported equivalents live in the config package.
const (
	// defaultTimeout bounds each attempt. Treatment-program sites are often
	// slow shared hosting; 10 seconds tolerates that without letting a dead
	// host stall the whole batch.
	defaultTimeout = 10 * time.Second

	// defaultAttempts is the total attempt budget per URL (first try plus
	// retries).
	defaultAttempts = 3

	// defaultMinContentLength is the minimum decoded body length accepted
	// as real page content.
	defaultMinContentLength = 100

	// defaultMaxBodySize caps how much of a response body is read.
	defaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// defaultUserAgent identifies the crawler in provider logs. A fixed
	// descriptive User-Agent lets operators recognize and contact us.
	defaultUserAgent = "doccrawl/1.0 (+https://github.com/jimmyjon121/Doc-Creator-sub009)"

	// maxRedirects bounds redirect chains to prevent loops.
	maxRedirects = 10
)

// Fixed request headers sent with every fetch.
const (
	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.5"
)

// Fetcher retrieves single URLs with retry and backoff. It is safe for
// concurrent use: all fields are set at construction and never mutated.
type Fetcher struct {
	client           *http.Client
	timeout          time.Duration
	attempts         int
	backoff          BackoffPolicy
	userAgent        string
	headers          map[string]string
	minContentLength int
	maxBodySize      int64
	logger           *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-attempt timeout. Values below 1 are ignored.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithAttempts sets the total attempt budget per URL. Values below 1 are
// ignored.
func WithAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.attempts = n
		}
	}
}

// WithBackoff sets the retry delay policy.
func WithBackoff(p BackoffPolicy) Option {
	return func(f *Fetcher) {
		f.backoff = p
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders adds extra headers to every request. Site-specific rules from
// the config file arrive through this option.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		if len(headers) == 0 {
			return
		}
		if f.headers == nil {
			f.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithMinContentLength sets the content sanity threshold. Values below 0
// are ignored.
func WithMinContentLength(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.minContentLength = n
		}
	}
}

// WithMaxBodySize caps the response body read. Values below 1 are ignored.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. Useful for tests and
// hosts that need custom transports.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithLogger sets the logger for per-attempt diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Fetcher with the given options applied over the defaults.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:          defaultTimeout,
		attempts:         defaultAttempts,
		backoff:          DefaultBackoffPolicy(),
		userAgent:        defaultUserAgent,
		minContentLength: defaultMinContentLength,
		maxBodySize:      defaultMaxBodySize,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = newHTTPClient()
	}

	return f
}

// newHTTPClient builds the default client: plain transport, bounded
// redirect chain. Per-attempt deadlines come from the request context, so
// no client-wide timeout is set.
func newHTTPClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// Attempts returns the configured total attempt budget.
func (f *Fetcher) Attempts() int {
	return f.attempts
}

// Fetch retrieves a URL, retrying failed attempts with backoff. On success
// the returned page carries the decoded content and fetch time. On failure
// the returned error is an *Error wrapping the last attempt's failure.
//
// Cancellation is honored between attempts and during backoff sleeps; an
// in-flight attempt is bounded by its own timeout.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*model.Page, error) {
	var lastErr error

	for attempt := 1; attempt <= f.attempts; attempt++ {
		if attempt > 1 {
			delay := f.backoff.Delay(attempt - 1)
			select {
			case <-ctx.Done():
				return nil, &Error{URL: url, Attempts: attempt - 1, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		page, err := f.fetchOnce(ctx, url)
		if err == nil {
			if attempt > 1 {
				f.logger.Debug("fetch recovered after retry",
					"url", url,
					"attempt", attempt,
				)
			}
			return page, nil
		}

		lastErr = err
		f.logger.Debug("fetch attempt failed",
			"url", url,
			"attempt", attempt,
			"error", err,
		)

		// A cancelled parent context makes further attempts pointless.
		if ctx.Err() != nil {
			return nil, &Error{URL: url, Attempts: attempt, Err: lastErr}
		}
	}

	return nil, &Error{URL: url, Attempts: f.attempts, Err: lastErr}
}

// fetchOnce performs a single GET attempt with its own deadline.
func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*model.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, err
	}

	content := decodeBody(body, resp.Header.Get("Content-Type"))

	if len(content) < f.minContentLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrContentTooShort, len(content))
	}
	if !strings.Contains(content, "<") {
		return nil, ErrNoMarkup
	}

	page := &model.Page{
		URL:       url,
		Content:   content,
		FetchedAt: time.Now(),
	}
	page.TruncateContent()
	page.ComputeHash()

	return page, nil
}

// decodeBody converts a response body to UTF-8 using the charset declared
// in the Content-Type header or sniffed from the content. Decoding failures
// fall back to the raw bytes; a garbled page is still more useful than a
// dropped one.
func decodeBody(body []byte, contentType string) string {
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
