package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const carsQuery = `{"query":"{ cars { total } }"}`

func fastRetryClient(retries int) *Client {
	return New(Config{
		Timeout:         5 * time.Second,
		MaxRetries:      retries,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    2 * time.Millisecond,
		MaxConnsPerHost: 10,
	})
}

func postQuery(t *testing.T, d Doer, ctx context.Context, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(carsQuery))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return d.Do(ctx, req)
}

// statusSequence answers each request with the next status in codes,
// repeating the last one, and counts hits.
func statusSequence(t *testing.T, codes ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(hits.Add(1)) - 1
		w.WriteHeader(codes[min(n, len(codes)-1)])
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestClient_RetryPolicy(t *testing.T) {
	tests := []struct {
		name       string
		codes      []int
		retries    int
		wantStatus int
		wantHits   int32
	}{
		{"success first try", []int{http.StatusOK}, 3, http.StatusOK, 1},
		{"recovers after 5xx", []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusOK}, 3, http.StatusOK, 3},
		{"gives up with last 5xx", []int{http.StatusInternalServerError}, 2, http.StatusInternalServerError, 3},
		{"501 not retried", []int{http.StatusNotImplemented}, 3, http.StatusNotImplemented, 1},
		{"4xx not retried", []int{http.StatusBadRequest}, 3, http.StatusBadRequest, 1},
		{"no retries configured", []int{http.StatusServiceUnavailable}, 0, http.StatusServiceUnavailable, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hits := statusSequence(t, tt.codes...)

			resp, err := postQuery(t, fastRetryClient(tt.retries), context.Background(), srv.URL)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantHits, hits.Load())
		})
	}
}

func TestClient_RetryReplaysBody(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		first := len(bodies) == 1
		mu.Unlock()
		if first {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	resp, err := postQuery(t, fastRetryClient(2), context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, []string{carsQuery, carsQuery}, bodies)
}

func TestClient_WithoutRetries(t *testing.T) {
	srv, hits := statusSequence(t, http.StatusServiceUnavailable)
	base := fastRetryClient(3)

	resp, err := postQuery(t, base.WithoutRetries(), context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 3, base.config.MaxRetries)
}

func TestClient_CancelledWhileWaiting(t *testing.T) {
	srv, _ := statusSequence(t, http.StatusServiceUnavailable)
	client := New(Config{Timeout: 5 * time.Second, MaxRetries: 3, RetryWaitMin: time.Second, RetryWaitMax: time.Second, MaxConnsPerHost: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := postQuery(t, client, ctx, srv.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := postQuery(t, fastRetryClient(1), context.Background(), url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestClient_Backoff(t *testing.T) {
	c := New(Config{RetryWaitMin: 100 * time.Millisecond, RetryWaitMax: 300 * time.Millisecond})

	assert.Equal(t, 100*time.Millisecond, c.backoff(1))
	assert.Equal(t, 200*time.Millisecond, c.backoff(2))
	assert.Equal(t, 300*time.Millisecond, c.backoff(3))
	assert.Equal(t, 300*time.Millisecond, c.backoff(70))
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(context.Canceled))
	assert.False(t, isRetryableError(io.EOF))
	// DeadlineExceeded satisfies net.Error.
	assert.True(t, isRetryableError(context.DeadlineExceeded))
}

func TestAddJitter(t *testing.T) {
	assert.Zero(t, addJitter(0))
	assert.Equal(t, time.Nanosecond, addJitter(time.Nanosecond))

	const base = time.Second
	seen := map[time.Duration]struct{}{}
	for range 100 {
		d := addJitter(base)
		assert.GreaterOrEqual(t, d, base*3/4)
		assert.LessOrEqual(t, d, base*5/4)
		seen[d] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}
