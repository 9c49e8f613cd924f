package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	internalErrors "github.com/gcbaptista/go-facet-query/internal/errors"
)

func TestDispatchAwait(t *testing.T) {
	requests := make(chan *http.Request, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"response":{}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/select?", time.Second, WithLogger(zaptest.NewLogger(t)))
	call := client.Dispatch(context.Background(), "wt=json&q=cat*")

	body, err := call.Await(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":{}}`, string(body))
	req := <-requests
	assert.Equal(t, "wt=json&q=cat*", req.URL.RawQuery)
	assert.Equal(t, "/select", req.URL.Path)
	assert.Equal(t, "application/json", req.Header.Get("Accept"))

	select {
	case <-call.Done():
	default:
		t.Fatal("call should be done after Await returns")
	}
}

func TestDispatchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL+"/select?", 0).Dispatch(context.Background(), "q=*:*").Await(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalErrors.ErrTransport))

	var transportErr *internalErrors.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusServiceUnavailable, transportErr.Status)
}

func TestDispatchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL + "/select?"
	server.Close()

	_, err := NewClient(baseURL, time.Second).Dispatch(context.Background(), "q=*:*").Await(context.Background())
	require.Error(t, err)

	var transportErr *internalErrors.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Zero(t, transportErr.Status)
}

func TestRateLimit(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/select?", time.Second, WithRateLimit(0.001, 1))

	_, err := client.Dispatch(context.Background(), "q=*:*").Await(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Dispatch(ctx, "q=*:*").Await(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalErrors.ErrTransport))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestRateLimitDisabled(t *testing.T) {
	client := NewClient("http://localhost/select?", 0, WithRateLimit(5, 2), WithRateLimit(0, 0))
	assert.Nil(t, client.limiter)

	client = NewClient("http://localhost/select?", 0, WithRateLimit(5, 0))
	require.NotNil(t, client.limiter)
	assert.Equal(t, 1, client.limiter.Burst())
}

func TestCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	call := NewClient(server.URL+"/select?", 5*time.Second).Dispatch(context.Background(), "q=*:*")
	call.Cancel()
	call.Cancel()

	_, err := call.Await(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAwaitContextDone(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	call := NewClient(server.URL+"/select?", 5*time.Second).Dispatch(context.Background(), "q=*:*")
	defer call.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := call.Await(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRequestSafe(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"wt=json&q=cat*", "wt=json&q=cat*"},
		{"sort=year+desc&q=*:*", "sort=year+desc&q=*:*"},
		{`q=type:"book" AND cat*`, "q=type:%22book%22%20AND%20cat*"},
		{`q=title\:a#b`, "q=title%5C:a%23b"},
		{"q=100%", "q=100%25"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, requestSafe(tt.in))
		})
	}
}
