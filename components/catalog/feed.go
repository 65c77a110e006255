package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/goliatone/go-pagebuilder/pkg/editor"
)

const (
	defaultFeedTimeout = 10 * time.Second
	maxFeedBody        = 1 << 20
)

// StaticFeed is a fixed catalog.
type StaticFeed []string

// Sections implements editor.CatalogFeed.
func (f StaticFeed) Sections(context.Context) ([]string, error) {
	return slices.Clone([]string(f)), nil
}

// HTTPFeed fetches the catalog from an endpoint serving NewHandler's shape.
// Refreshes beyond the configured rate are answered from the last good
// response.
type HTTPFeed struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	header  http.Header

	mu      sync.Mutex
	cached  []string
	fetched bool
}

var (
	_ editor.CatalogFeed = (*HTTPFeed)(nil)
	_ editor.CatalogFeed = StaticFeed(nil)
)

// FeedOption customises an HTTPFeed.
type FeedOption func(*HTTPFeed)

// WithHTTPClient replaces the client used for requests.
func WithHTTPClient(client *http.Client) FeedOption {
	return func(f *HTTPFeed) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout bounds each fetch.
func WithTimeout(timeout time.Duration) FeedOption {
	return func(f *HTTPFeed) {
		if timeout <= 0 {
			return
		}
		client := *f.client
		client.Timeout = timeout
		f.client = &client
	}
}

// WithRefreshLimit allows burst fetches and then one per interval.
func WithRefreshLimit(interval time.Duration, burst int) FeedOption {
	return func(f *HTTPFeed) {
		if interval <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst <= 0 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Every(interval), burst)
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) FeedOption {
	return func(f *HTTPFeed) {
		f.header.Add(key, value)
	}
}

// NewHTTPFeed builds a feed for url. By default requests time out after ten
// seconds and at most one refresh per second reaches the network.
func NewHTTPFeed(url string, options ...FeedOption) *HTTPFeed {
	feed := &HTTPFeed{
		url:     strings.TrimSpace(url),
		client:  &http.Client{Timeout: defaultFeedTimeout},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		header:  make(http.Header),
	}
	for _, opt := range options {
		if opt != nil {
			opt(feed)
		}
	}
	return feed
}

// Sections implements editor.CatalogFeed.
func (f *HTTPFeed) Sections(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fetched && !f.limiter.Allow() {
		return slices.Clone(f.cached), nil
	}
	sections, err := f.fetch(ctx)
	if err != nil {
		return nil, err
	}
	f.cached = sections
	f.fetched = true
	return slices.Clone(sections), nil
}

func (f *HTTPFeed) fetch(ctx context.Context) ([]string, error) {
	if f.url == "" {
		return nil, errors.New("catalog: feed url is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range f.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog: fetch %s: unexpected status %d", f.url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", f.url, err)
	}
	return DecodeSections(body)
}

// DecodeSections accepts either {"data": [...]} or a bare array. Entries are
// ids or objects carrying the id under "value" (or "type"). Blank and
// duplicate ids are dropped; order is preserved.
func DecodeSections(body []byte) ([]string, error) {
	body = bytes.TrimSpace(body)
	var entries []json.RawMessage
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, fmt.Errorf("catalog: decode list: %w", err)
		}
	} else {
		var envelope struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("catalog: decode response: %w", err)
		}
		entries = envelope.Data
	}

	out := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, raw := range entries {
		id, err := entryID(raw)
		if err != nil {
			return nil, fmt.Errorf("catalog: entry %d: %w", i, err)
		}
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func entryID(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var obj struct {
		Value string `json:"value"`
		Type  string `json:"type"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	if obj.Value != "" {
		return obj.Value, nil
	}
	return obj.Type, nil
}
