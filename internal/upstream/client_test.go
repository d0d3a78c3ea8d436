package upstream_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trayananedelcheva/travel-buddy/internal/upstream"
)

func fastClient(name string) *upstream.Client {
	return upstream.New(upstream.Options{
		Name: name,
		Backoff: upstream.BackoffConfig{
			MaxRetries:      2,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
	})
}

func getter(url string) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, url, nil)
	}
}

func TestGetJSON_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	var out struct {
		Status string `json:"status"`
	}
	err := fastClient("ok").GetJSON(context.Background(), getter(srv.URL), &out)

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Status)
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := fastClient("retry").GetJSON(context.Background(), getter(srv.URL), &out)

	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestDo_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := fastClient("noretry").Do(context.Background(), getter(srv.URL))

	assert.ErrorIs(t, err, upstream.ErrStatus)
	assert.EqualValues(t, 1, calls.Load())
}

func TestGetJSON_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := fastClient("malformed").GetJSON(context.Background(), getter(srv.URL), &out)

	assert.Error(t, err)
}

func noRetryClient(name string) *upstream.Client {
	return upstream.New(upstream.Options{
		Name:    name,
		Backoff: upstream.BackoffConfig{MaxRetries: 0, InitialInterval: time.Millisecond},
	})
}

func TestDo_ClientErrorsKeepCircuitClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/places/unknown" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := noRetryClient("client-errors")
	for i := 0; i < 10; i++ {
		_, err := c.Do(context.Background(), getter(srv.URL+"/places/unknown"))
		require.ErrorIs(t, err, upstream.ErrStatus)
		assert.Equal(t, http.StatusNotFound, upstream.StatusCode(err))
		assert.NotErrorIs(t, err, upstream.ErrCircuitOpen)
	}

	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, c.GetJSON(context.Background(), getter(srv.URL+"/places/search"), &out))
	assert.Equal(t, "ok", out.Status)
}

func TestDo_ServerErrorsOpenCircuit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := noRetryClient("server-errors")
	for i := 0; i < 6; i++ {
		_, err := c.Do(context.Background(), getter(srv.URL))
		require.ErrorIs(t, err, upstream.ErrServer)
	}

	_, err := c.Do(context.Background(), getter(srv.URL))

	assert.ErrorIs(t, err, upstream.ErrCircuitOpen)
	assert.EqualValues(t, 6, calls.Load(), "open circuit sends nothing")
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 0, upstream.StatusCode(upstream.ErrServer))
	assert.Equal(t, http.StatusGone, upstream.StatusCode(fmt.Errorf("wrapped: %w", &upstream.StatusError{Code: http.StatusGone})))
}
