// Package media fetches and caches photo/gallery assets. Requests for one
// URL are deduplicated, handles are refcounted, and likely-next assets can
// be prefetched at low priority.
package media

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const maxAssetSize = 32 << 20

// Handle is a locally-addressable reference to a fetched asset. One handle
// is shared by every requester of the same URL; each requester releases it
// when done.
type Handle struct {
	loader *Loader
	url    string

	data        []byte
	contentType string
}

func (h *Handle) URL() string         { return h.url }
func (h *Handle) Bytes() []byte       { return h.data }
func (h *Handle) ContentType() string { return h.contentType }
func (h *Handle) Size() int           { return len(h.data) }

// Release drops one reference. The underlying bytes stay cached until the
// owning loader is closed or the last reference of an evicted entry is gone.
func (h *Handle) Release() {
	h.loader.release(h.url)
}

type entry struct {
	ready  chan struct{}
	handle *Handle
	err    error
	refs   int
}

// Loader is an instance-scoped asset cache. It is owned by the view that
// created it and must be closed on teardown; it is never shared across
// independent mounted instances.
type Loader struct {
	client        *http.Client
	prefetchDelay time.Duration
	limiter       *rate.Limiter

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

// Option tunes a loader.
type Option func(*Loader)

// WithPrefetchDelay overrides the delay before prefetching starts.
func WithPrefetchDelay(d time.Duration) Option {
	return func(l *Loader) { l.prefetchDelay = d }
}

// NewLoader creates a loader. A nil client gets a default with a timeout.
func NewLoader(client *http.Client, opts ...Option) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	l := &Loader{
		client:        client,
		prefetchDelay: 300 * time.Millisecond,
		// Prefetch trickles in behind user-initiated requests.
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		entries: map[string]*entry{},
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Request fetches the asset at url, or joins an in-flight or completed fetch
// for the same url. An in-flight or already-resolved request is never issued
// twice. Failures are terminal for the attempt; the entry is dropped so a
// later explicit request may try again, and the caller falls back to a
// placeholder.
func (l *Loader) Request(ctx context.Context, url string) (*Handle, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, fmt.Errorf("media loader closed")
	}
	if e, ok := l.entries[url]; ok {
		e.refs++
		l.mu.Unlock()
		return l.await(ctx, url, e)
	}

	e := &entry{ready: make(chan struct{}), refs: 1}
	l.entries[url] = e
	l.mu.Unlock()

	go l.fetch(url, e)
	return l.await(ctx, url, e)
}

// Prefetch schedules low-priority fetches of adjacent assets (e.g. the
// previous/next sibling's cover) after a short delay, so they never compete
// with the user's immediate request. Failures are silent.
func (l *Loader) Prefetch(urls ...string) {
	if len(urls) == 0 {
		return
	}
	go func() {
		time.Sleep(l.prefetchDelay)
		for _, url := range urls {
			if err := l.limiter.Wait(context.Background()); err != nil {
				return
			}
			l.mu.Lock()
			if l.closed {
				l.mu.Unlock()
				return
			}
			if _, ok := l.entries[url]; ok {
				l.mu.Unlock()
				continue
			}
			e := &entry{ready: make(chan struct{})}
			l.entries[url] = e
			l.mu.Unlock()
			l.fetch(url, e)
		}
	}()
}

// Close releases every cached asset. Handles obtained earlier become stale.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	for url := range l.entries {
		delete(l.entries, url)
	}
}

// Cached reports whether url has a resolved entry, without fetching.
func (l *Loader) Cached(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[url]
	if !ok {
		return false
	}
	select {
	case <-e.ready:
		return e.err == nil
	default:
		return false
	}
}

func (l *Loader) await(ctx context.Context, url string, e *entry) (*Handle, error) {
	select {
	case <-e.ready:
	case <-ctx.Done():
		l.release(url)
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.handle, nil
}

func (l *Loader) fetch(url string, e *entry) {
	defer close(e.ready)

	resp, err := l.client.Get(url)
	if err != nil {
		l.fail(url, e, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		l.fail(url, e, fmt.Errorf("unexpected status %d", resp.StatusCode))
		return
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize))
	if err != nil {
		l.fail(url, e, err)
		return
	}
	if len(data) == 0 {
		l.fail(url, e, fmt.Errorf("empty response"))
		return
	}

	e.handle = &Handle{
		loader:      l,
		url:         url,
		data:        data,
		contentType: resp.Header.Get("Content-Type"),
	}
}

// fail records the error and drops the entry; no retries are attempted.
func (l *Loader) fail(url string, e *entry, err error) {
	e.err = fmt.Errorf("fetch media %s: %w", url, err)
	log.Printf("[warn] operation=media_fetch url=%s error=%v", url, err)
	l.mu.Lock()
	if l.entries[url] == e {
		delete(l.entries, url)
	}
	l.mu.Unlock()
}

func (l *Loader) release(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[url]
	if !ok {
		return
	}
	if e.refs > 0 {
		e.refs--
	}
}
