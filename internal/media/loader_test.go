package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assetServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes-for-" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRequest(t *testing.T) {
	var hits atomic.Int64
	srv := assetServer(t, &hits)

	l := NewLoader(srv.Client())
	defer l.Close()

	h, err := l.Request(context.Background(), srv.URL+"/lote-1.jpg")
	require.NoError(t, err)
	defer h.Release()

	assert.Equal(t, "jpeg-bytes-for-/lote-1.jpg", string(h.Bytes()))
	assert.Equal(t, "image/jpeg", h.ContentType())
	assert.Equal(t, len("jpeg-bytes-for-/lote-1.jpg"), h.Size())
	assert.Equal(t, int64(1), hits.Load())
	assert.True(t, l.Cached(srv.URL+"/lote-1.jpg"))
}

func TestRequest_ConcurrentDedup(t *testing.T) {
	var hits atomic.Int64
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			close(started)
		}
		<-release
		_, _ = w.Write([]byte("payload"))
	}))
	t.Cleanup(srv.Close)

	l := NewLoader(srv.Client())
	defer l.Close()

	const callers = 8
	var wg sync.WaitGroup
	handles := make([]*Handle, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = l.Request(context.Background(), srv.URL+"/shared.jpg")
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, handles[i])
	}
	assert.Equal(t, int64(1), hits.Load(), "one upstream fetch for all concurrent requesters")
	for i := 1; i < callers; i++ {
		assert.Same(t, handles[0], handles[i], "every requester shares the handle")
	}
}

func TestRequest_SequentialHitsCache(t *testing.T) {
	var hits atomic.Int64
	srv := assetServer(t, &hits)

	l := NewLoader(srv.Client())
	defer l.Close()

	url := srv.URL + "/cover.jpg"
	h1, err := l.Request(context.Background(), url)
	require.NoError(t, err)
	h2, err := l.Request(context.Background(), url)
	require.NoError(t, err)

	assert.Same(t, h1, h2)
	assert.Equal(t, int64(1), hits.Load())

	h1.Release()
	// Released but still cached: a later request stays local.
	_, err = l.Request(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, int64(1), hits.Load())
	h2.Release()
}

func TestRequest_FailureIsNotCached(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		if hits.Load() == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	t.Cleanup(srv.Close)

	l := NewLoader(srv.Client())
	defer l.Close()

	url := srv.URL + "/flaky.jpg"
	_, err := l.Request(context.Background(), url)
	require.Error(t, err)
	assert.False(t, l.Cached(url))

	// The failed entry was dropped, so an explicit retry goes upstream.
	h, err := l.Request(context.Background(), url)
	require.NoError(t, err)
	defer h.Release()
	assert.Equal(t, "recovered", string(h.Bytes()))
	assert.Equal(t, int64(2), hits.Load())
}

func TestRequest_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte("late"))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	l := NewLoader(srv.Client())
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := l.Request(ctx, srv.URL+"/slow.jpg")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequest_AfterClose(t *testing.T) {
	var hits atomic.Int64
	srv := assetServer(t, &hits)

	l := NewLoader(srv.Client())
	l.Close()

	_, err := l.Request(context.Background(), srv.URL+"/x.jpg")
	assert.Error(t, err)
	assert.Equal(t, int64(0), hits.Load())
}

func TestClose_DropsCache(t *testing.T) {
	var hits atomic.Int64
	srv := assetServer(t, &hits)

	l := NewLoader(srv.Client())
	url := srv.URL + "/a.jpg"
	h, err := l.Request(context.Background(), url)
	require.NoError(t, err)
	h.Release()

	l.Close()
	assert.False(t, l.Cached(url))
}

func TestPrefetch(t *testing.T) {
	var hits atomic.Int64
	srv := assetServer(t, &hits)

	l := NewLoader(srv.Client(), WithPrefetchDelay(5*time.Millisecond))
	defer l.Close()

	next := srv.URL + "/next.jpg"
	prev := srv.URL + "/prev.jpg"
	l.Prefetch(next, prev)

	require.Eventually(t, func() bool {
		return l.Cached(next) && l.Cached(prev)
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(2), hits.Load())

	// A later explicit request is served from cache.
	h, err := l.Request(context.Background(), next)
	require.NoError(t, err)
	defer h.Release()
	assert.Equal(t, int64(2), hits.Load())
}

func TestPrefetch_SkipsKnownURLs(t *testing.T) {
	var hits atomic.Int64
	srv := assetServer(t, &hits)

	l := NewLoader(srv.Client(), WithPrefetchDelay(5*time.Millisecond))
	defer l.Close()

	url := srv.URL + "/cover.jpg"
	h, err := l.Request(context.Background(), url)
	require.NoError(t, err)
	defer h.Release()

	l.Prefetch(url)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), hits.Load(), "prefetch never re-fetches a known URL")
}
