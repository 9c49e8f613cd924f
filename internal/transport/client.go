// Package transport sends serialized queries to the search endpoint.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	internalErrors "github.com/gcbaptista/go-facet-query/internal/errors"
)

// DefaultTimeout bounds a single request when the caller sets none.
const DefaultTimeout = 30 * time.Second

// Client issues GET <baseURL><query string> requests.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithRateLimit throttles requests to perSecond with the given burst.
// A non-positive rate leaves the client unthrottled.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(cl *Client) {
		if perSecond <= 0 {
			cl.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		cl.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a client for baseURL, e.g. "http://solr:8983/solr/core/select?".
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Call is a request in flight.
type Call struct {
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once

	body []byte
	err  error
}

// Dispatch starts the request in the background and returns immediately.
func (c *Client) Dispatch(ctx context.Context, queryString string) *Call {
	ctx, cancel := context.WithCancel(ctx)
	call := &Call{done: make(chan struct{}), cancel: cancel}
	url := c.baseURL + requestSafe(queryString)

	go func() {
		defer close(call.done)
		defer cancel()
		call.body, call.err = c.get(ctx, url)
	}()

	return call
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, internalErrors.NewTransportError(url, 0, err)
	}
	req.Header.Set("Accept", "application/json")

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, internalErrors.NewTransportError(url, 0, fmt.Errorf("rate limit: %w", err))
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Search request failed", zap.String("url", url), zap.Error(err))
		return nil, internalErrors.NewTransportError(url, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, internalErrors.NewTransportError(url, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Search endpoint returned an error status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		return nil, internalErrors.NewTransportError(url, resp.StatusCode, nil)
	}

	c.logger.Debug("Search request completed",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return body, nil
}

// Await blocks until the response arrives or ctx is done. Abandoning the
// wait through ctx does not cancel the request; use Cancel for that.
func (c *Call) Await(ctx context.Context) ([]byte, error) {
	select {
	case <-c.done:
		return c.body, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel aborts the request. Await then returns a transport error.
func (c *Call) Cancel() {
	c.once.Do(c.cancel)
}

// Done is closed once the call has finished.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// requestSafe percent-encodes the bytes of a serialized query string that
// cannot appear in a request line. Separators and the '+' spaces written by
// the serializer are left as they are.
func requestSafe(qs string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(qs); i++ {
		ch := qs[i]
		switch {
		case ch <= ' ' || ch >= 0x7f, strings.IndexByte(`"#%<>\^`+"`"+`{|}`, ch) >= 0:
			b.WriteByte('%')
			b.WriteByte(hex[ch>>4])
			b.WriteByte(hex[ch&0x0f])
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
