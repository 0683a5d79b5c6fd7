package trips

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 30 * time.Second

	// maxDocumentSize caps how much of a trip document is read.
	maxDocumentSize = 256 << 20
)

// Loader reads trip documents from local files or http(s) URLs.
type Loader struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.client = client
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) LoaderOption {
	return func(l *Loader) {
		l.userAgent = ua
	}
}

// NewLoader creates a new trip loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		timeout:   DefaultTimeout,
		userAgent: "ls-trails/1.0 (trip trail viewer)",
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.client == nil {
		l.client = &http.Client{
			Timeout: l.timeout,
		}
	}

	return l
}

// LoadResult contains the outcome of a load. On error Set is empty but
// never nil, so the trail layer can still render (nothing).
type LoadResult struct {
	Source   string
	Set      *Set
	Dropped  int
	Duration time.Duration
	Error    error
}

// Load reads, decodes and validates the trips at source.
func (l *Loader) Load(ctx context.Context, source string) LoadResult {
	start := time.Now()
	result := LoadResult{
		Source: source,
		Set:    &Set{},
	}

	raw, err := l.read(ctx, source)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}

	all, err := Decode(raw)
	if err != nil {
		result.Error = fmt.Errorf("parse %s: %w", source, err)
		return result
	}

	set, dropped := NewSet(all)
	result.Dropped = dropped
	result.Duration = time.Since(start)
	if set.Len() == 0 {
		result.Error = fmt.Errorf("%s: %w (%d dropped)", source, ErrNoTrips, dropped)
		return result
	}
	result.Set = set
	return result
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, fmt.Errorf("no trip source configured")
	}
	if isURL(source) {
		return l.fetch(ctx, source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open trips: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read trips: %w", err)
	}
	return data, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "application/json, application/geo+json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trips: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
