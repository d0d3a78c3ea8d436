// Package upstream wraps outbound HTTP calls to third-party providers with
// connect/read timeouts, retries with exponential backoff, a per-provider
// circuit breaker and an optional rate limit.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	Name           string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Backoff        BackoffConfig
	// RatePerSecond limits outgoing requests; 0 disables limiting.
	RatePerSecond float64
	// HTTPClient overrides the client built from the timeouts (tests).
	HTTPClient *http.Client
}

var (
	ErrRateLimited = errors.New("rate limited")
	ErrServer      = errors.New("server error")
	ErrStatus      = errors.New("unexpected status code")
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// StatusError is a non-2xx answer other than 429 or 5xx. It matches ErrStatus.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrStatus, e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// countsAsSuccess keeps client errors out of the breaker's failure count: the
// provider answered, the request was wrong.
func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, ErrStatus)
}

// Client executes requests against one provider.
type Client struct {
	name    string
	http    *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// New builds a Client for the named provider.
func New(opts Options) *Client {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.Backoff.InitialInterval <= 0 {
		opts.Backoff = BackoffConfig{
			MaxRetries:      2,
			InitialInterval: 300 * time.Millisecond,
			MaxInterval:     3 * time.Second,
		}
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = NewHTTPClient(opts.ConnectTimeout, opts.ReadTimeout)
	}

	c := &Client{
		name:    opts.Name,
		http:    hc,
		backoff: opts.Backoff,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:         opts.Name,
			MaxRequests:  5,
			Interval:     1 * time.Minute,
			Timeout:      2 * time.Minute,
			IsSuccessful: countsAsSuccess,
		}),
	}
	if opts.RatePerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	return c
}

// NewHTTPClient returns an *http.Client whose dialer gives up after connect and
// whose overall request budget (headers and body) is connect+read.
func NewHTTPClient(connect, read time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connect}).DialContext
	transport.ResponseHeaderTimeout = read
	return &http.Client{Transport: transport, Timeout: connect + read}
}

// Name returns the provider name the client was built for.
func (c *Client) Name() string {
	return c.name
}

// HTTPClient exposes the underlying client for SDKs that manage their own requests.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// GetJSON performs the request built by buildRequest and decodes a 2xx JSON
// body into dest.
func (c *Client) GetJSON(ctx context.Context, buildRequest func() (*http.Request, error), dest any) error {
	resp, err := c.Do(ctx, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("upstream.%s: decode: %w", c.name, err)
	}
	return nil
}

// Do executes the request with retries, exponential backoff and the circuit
// breaker. The caller owns the returned response body.
func (c *Client) Do(ctx context.Context, buildRequest func() (*http.Request, error)) (*http.Response, error) {
	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := c.http.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				drain(resp)
				return nil, ErrRateLimited
			case resp.StatusCode >= 500:
				drain(resp)
				return nil, ErrServer
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				drain(resp)
				return nil, &StatusError{Code: resp.StatusCode}
			}
			return resp, nil
		})
		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("upstream.%s: unexpected result type from circuit breaker", c.name)
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("upstream.%s: %w: %v", c.name, ErrCircuitOpen, err)
		}
		// Client errors other than 429 will not get better on retry.
		if errors.Is(err, ErrStatus) || attempt >= c.backoff.MaxRetries {
			return nil, fmt.Errorf("upstream.%s: %w", c.name, err)
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
