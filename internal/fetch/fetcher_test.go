package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// validPageHTML is long enough and markup-bearing enough to pass the
// content sanity check.
const validPageHTML = `<html><head><title>Residential Treatment</title></head>
<body><p>Our residential treatment program supports adolescents through
evidence-based clinical care and family involvement.</p></body></html>`

// fastBackoff keeps retry tests quick.
func fastBackoff() BackoffPolicy {
	return BackoffPolicy{Initial: time.Millisecond, Factor: 2, Max: 10 * time.Millisecond}
}

// TestFetcherSuccess verifies a healthy response produces a page.
func TestFetcherSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(validPageHTML))
	}))
	defer server.Close()

	fetcher := New()
	page, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.URL != server.URL {
		t.Errorf("expected URL %s, got %s", server.URL, page.URL)
	}
	if !strings.Contains(page.Content, "Residential Treatment") {
		t.Error("expected page content to be retained")
	}
	if page.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be set")
	}
	if page.Hash == "" {
		t.Error("expected content hash to be computed")
	}
}

// TestFetcherRejectsBadResponses verifies the failure taxonomy: bad status,
// short body, missing markup.
func TestFetcherRejectsBadResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "not found status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "gone", http.StatusNotFound)
			},
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("expected StatusError, got %v", err)
				}
				if statusErr.Code != http.StatusNotFound {
					t.Errorf("expected 404, got %d", statusErr.Code)
				}
			},
		},
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("expected StatusError, got %v", err)
				}
			},
		},
		{
			name: "body too short",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>tiny</html>"))
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrContentTooShort) {
					t.Errorf("expected ErrContentTooShort, got %v", err)
				}
			},
		},
		{
			name: "no markup marker",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(strings.Repeat("plain text without any tags ", 10)))
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNoMarkup) {
					t.Errorf("expected ErrNoMarkup, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tt.handler)
			defer server.Close()

			fetcher := New(WithAttempts(1))
			_, err := fetcher.Fetch(context.Background(), server.URL)
			if err == nil {
				t.Fatal("expected error")
			}

			var fetchErr *Error
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected *fetch.Error wrapper, got %T", err)
			}
			if fetchErr.URL != server.URL {
				t.Errorf("expected wrapped URL %s, got %s", server.URL, fetchErr.URL)
			}

			tt.check(t, err)
		})
	}
}

// TestFetcherRetriesThenSucceeds verifies transient failures are retried and
// a later success wins.
func TestFetcherRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(validPageHTML))
	}))
	defer server.Close()

	fetcher := New(WithBackoff(fastBackoff()))
	page, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected success on the third attempt, got %v", err)
	}
	if page == nil || page.Content == "" {
		t.Fatal("expected page content")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

// TestFetcherAttemptBudget verifies at most the configured attempts are
// made and the final error carries the last failure.
func TestFetcherAttemptBudget(t *testing.T) {
	t.Parallel()

	t.Run("default budget of three", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer server.Close()

		fetcher := New(WithBackoff(fastBackoff()))
		_, err := fetcher.Fetch(context.Background(), server.URL)
		if err == nil {
			t.Fatal("expected failure")
		}
		if got := calls.Load(); got != 3 {
			t.Errorf("expected exactly 3 attempts, got %d", got)
		}

		var fetchErr *Error
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected *fetch.Error, got %T", err)
		}
		if fetchErr.Attempts != 3 {
			t.Errorf("expected 3 recorded attempts, got %d", fetchErr.Attempts)
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.Code != http.StatusBadGateway {
			t.Errorf("expected last failure to be the 502, got %v", err)
		}
	})

	t.Run("reduced budget of two", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer server.Close()

		fetcher := New(WithAttempts(2), WithBackoff(fastBackoff()))
		if _, err := fetcher.Fetch(context.Background(), server.URL); err == nil {
			t.Fatal("expected failure")
		}
		if got := calls.Load(); got != 2 {
			t.Errorf("expected exactly 2 attempts, got %d", got)
		}
	})
}

// TestFetcherPerAttemptTimeout verifies a stalled server fails the attempt.
func TestFetcherPerAttemptTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(validPageHTML))
	}))
	defer server.Close()
	defer close(release)

	fetcher := New(WithTimeout(50*time.Millisecond), WithAttempts(1))
	start := time.Now()
	_, err := fetcher.Fetch(context.Background(), server.URL)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout failure")
	}
	if elapsed > 2*time.Second {
		t.Errorf("timeout took too long: %s", elapsed)
	}
}

// TestFetcherCancellation verifies ctx cancellation is honored before
// backoff sleeps instead of waiting out the delay.
func TestFetcherCancellation(t *testing.T) {
	t.Parallel()

	t.Run("cancel during backoff", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		// A 10s first backoff would dominate the test without cancellation.
		fetcher := New(WithBackoff(BackoffPolicy{Initial: 10 * time.Second, Factor: 2}))
		start := time.Now()
		_, err := fetcher.Fetch(ctx, server.URL)
		elapsed := time.Since(start)

		if err == nil {
			t.Fatal("expected cancellation error")
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if elapsed > 2*time.Second {
			t.Errorf("cancellation not honored promptly: %s", elapsed)
		}
	})

	t.Run("already cancelled context", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(validPageHTML))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fetcher := New(WithBackoff(fastBackoff()))
		_, err := fetcher.Fetch(ctx, server.URL)
		if err == nil {
			t.Fatal("expected error for cancelled context")
		}

		var fetchErr *Error
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected *fetch.Error, got %T", err)
		}
		if fetchErr.Attempts != 1 {
			t.Errorf("expected a single attempt, got %d", fetchErr.Attempts)
		}
	})
}

// TestFetcherRequestHeaders verifies the fixed descriptive header set plus
// configured extras reach the server.
func TestFetcherRequestHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotCustom = r.Header.Get("X-Referral-Source")
		_, _ = w.Write([]byte(validPageHTML))
	}))
	defer server.Close()

	fetcher := New(WithHeaders(map[string]string{"X-Referral-Source": "aftercare-docs"}))
	if _, err := fetcher.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gotUA, "doccrawl") {
		t.Errorf("expected descriptive User-Agent, got %q", gotUA)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Errorf("expected HTML Accept header, got %q", gotAccept)
	}
	if gotCustom != "aftercare-docs" {
		t.Errorf("expected custom header to be sent, got %q", gotCustom)
	}
}

// TestFetcherDecodesCharset verifies non-UTF-8 responses are decoded using
// the declared charset.
func TestFetcherDecodesCharset(t *testing.T) {
	t.Parallel()

	// "Thérapie" with 0xE9 for é in ISO-8859-1, padded past the length check.
	body := append([]byte("<html><body><p>Th\xe9rapie r\xe9sidentielle</p>"),
		[]byte(strings.Repeat("<p>programme clinique</p>", 5)+"</body></html>")...)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write(body)
	}))
	defer server.Close()

	fetcher := New()
	page, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(page.Content, "Thérapie") {
		t.Error("expected ISO-8859-1 body to be decoded to UTF-8")
	}
}

// TestFetcherBodySizeCap verifies oversized bodies are truncated, not
// rejected.
func TestFetcherBodySizeCap(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>" + strings.Repeat("a", 4096) + "</html>"))
	}))
	defer server.Close()

	fetcher := New(WithMaxBodySize(1024))
	page, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Content) > 1024 {
		t.Errorf("expected body capped at 1024 bytes, got %d", len(page.Content))
	}
}
