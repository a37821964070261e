package gateway

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shareit/internal/api"
	"shareit/internal/models"
	"shareit/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type forwarded struct {
	Method    string
	Path      string
	Query     string
	Body      string
	UserID    string
	RequestID string
}

type fakeServer struct {
	mu       sync.Mutex
	requests []forwarded
	status   int
	body     string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, forwarded{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.RawQuery,
		Body:      string(body),
		UserID:    r.Header.Get(models.UserIDHeader),
		RequestID: r.Header.Get(api.RequestIDHeader),
	})
	status, payload := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	if payload == "" {
		payload = `{"ok":true}`
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, payload)
}

func (f *fakeServer) last(t *testing.T) forwarded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "nothing was forwarded")
	return f.requests[len(f.requests)-1]
}

func (f *fakeServer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestGateway(t *testing.T, backend http.Handler, opts ...func(*Gateway)) http.Handler {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	client, err := NewClient(srv.URL, 2*time.Second, &logger)
	require.NoError(t, err)

	g := New(client, NewValidator(), nil, &logger)
	for _, opt := range opts {
		opt(g)
	}
	return g.Router()
}

func send(h http.Handler, method, path, userID, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set(models.UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGatewayForwardsValidRequests(t *testing.T) {
	backend := &fakeServer{}
	h := newTestGateway(t, backend)

	start := time.Now().Add(time.Hour).Format(models.DateTimeLayout)
	end := time.Now().Add(2 * time.Hour).Format(models.DateTimeLayout)
	body := fmt.Sprintf(`{"itemId":7,"start":%q,"end":%q}`, start, end)

	rec := send(h, http.MethodPost, "/bookings", "3", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	got := backend.last(t)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/bookings", got.Path)
	assert.Equal(t, body, got.Body)
	assert.Equal(t, "3", got.UserID)
	assert.NotEmpty(t, got.RequestID)
	assert.Equal(t, rec.Header().Get(api.RequestIDHeader), got.RequestID)

	rec = send(h, http.MethodPatch, "/bookings/5?approved=false", "3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = backend.last(t)
	assert.Equal(t, "/bookings/5", got.Path)
	assert.Equal(t, "approved=false", got.Query)

	rec = send(h, http.MethodGet, "/bookings/owner?state=waiting&from=0&size=5", "3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "state=waiting&from=0&size=5", backend.last(t).Query)

	rec = send(h, http.MethodGet, "/items/search?text=drill", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/items/search", backend.last(t).Path)

	rec = send(h, http.MethodPatch, "/users/4", "", `{"name":"New"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"name":"New"}`, backend.last(t).Body)
}

func TestGatewayRejectsBeforeForwarding(t *testing.T) {
	backend := &fakeServer{}
	h := newTestGateway(t, backend)

	past := time.Now().Add(-time.Hour).Format(models.DateTimeLayout)
	future := time.Now().Add(time.Hour).Format(models.DateTimeLayout)

	tests := []struct {
		name   string
		method string
		path   string
		userID string
		body   string
	}{
		{"missing header", http.MethodGet, "/bookings", "", ""},
		{"non numeric header", http.MethodGet, "/bookings", "abc", ""},
		{"unknown state", http.MethodGet, "/bookings?state=UNSUPPORTED_STATUS", "1", ""},
		{"negative from", http.MethodGet, "/requests/all?from=-1", "1", ""},
		{"zero size", http.MethodGet, "/bookings/owner?size=0", "1", ""},
		{"non numeric size", http.MethodGet, "/bookings?size=ten", "1", ""},
		{"bad path id", http.MethodGet, "/bookings/abc", "1", ""},
		{"missing approved", http.MethodPatch, "/bookings/1", "1", ""},
		{"start in past", http.MethodPost, "/bookings", "1",
			fmt.Sprintf(`{"itemId":1,"start":%q,"end":%q}`, past, future)},
		{"no dates", http.MethodPost, "/bookings", "1", `{"itemId":1}`},
		{"malformed json", http.MethodPost, "/bookings", "1", `{"itemId":`},
		{"bad email", http.MethodPost, "/users", "", `{"name":"Ann","email":"nope"}`},
		{"blank item name", http.MethodPost, "/items", "1", `{"name":"","description":"x","available":true}`},
		{"blank comment", http.MethodPost, "/items/1/comment", "1", `{"text":" "}`},
		{"blank request", http.MethodPost, "/requests", "1", `{"description":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(h, tt.method, tt.path, tt.userID, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}

	assert.Zero(t, backend.count())
}

func TestGatewayPassesServerErrorsThrough(t *testing.T) {
	backend := &fakeServer{status: http.StatusConflict, body: `{"error":"booking 1 is already decided"}`}
	h := newTestGateway(t, backend)

	rec := send(h, http.MethodPatch, "/bookings/1?approved=true", "2", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"booking 1 is already decided"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestGatewayUpstreamFailures(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client, err := NewClient(url, time.Second, &logger)
		require.NoError(t, err)
		h := New(client, NewValidator(), nil, &logger).Router()

		rec := send(h, http.MethodGet, "/users", "", "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("Timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		client, err := NewClient(srv.URL, 50*time.Millisecond, &logger)
		require.NoError(t, err)
		h := New(client, NewValidator(), nil, &logger).Router()

		rec := send(h, http.MethodGet, "/users", "", "")
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})

	t.Run("BadURL", func(t *testing.T) {
		_, err := NewClient("localhost:9090", time.Second, &logger)
		assert.Error(t, err)
	})
}

func TestGatewayRateLimit(t *testing.T) {
	backend := &fakeServer{}
	limiter := repository.NewMemoryRateLimiter(2, time.Hour)
	h := newTestGateway(t, backend, func(g *Gateway) { g.limiter = limiter })

	for i := 0; i < 2; i++ {
		rec := send(h, http.MethodGet, "/requests", "9", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := send(h, http.MethodGet, "/requests", "9", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 2, backend.count())

	rec = send(h, http.MethodGet, "/requests", "10", "")
	assert.Equal(t, http.StatusOK, rec.Code, "other callers keep their own quota")

	rec = send(h, http.MethodGet, "/healthz", "9", "")
	assert.Equal(t, http.StatusOK, rec.Code, "probes are not limited")
}

func TestGatewayRetriesIdempotentRequests(t *testing.T) {
	logger := zerolog.Nop()

	// Reserve an address, then bring the server up after the first attempt fails.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	client, err := NewClient("http://"+addr, time.Second, &logger)
	require.NoError(t, err)
	client.WithRetry(RetryPolicy{MaxRetries: 5, InitialDelay: 50 * time.Millisecond, MaxDelay: 200 * time.Millisecond})
	h := New(client, NewValidator(), nil, &logger).Router()

	backend := &fakeServer{}
	srv := httptest.NewUnstartedServer(backend)
	go func() {
		time.Sleep(60 * time.Millisecond)
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return
		}
		_ = srv.Listener.Close()
		srv.Listener = l
		srv.Start()
	}()
	t.Cleanup(srv.Close)

	rec := send(h, http.MethodGet, "/users", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, backend.count())
}

func TestGatewayDoesNotRetryWrites(t *testing.T) {
	logger := zerolog.Nop()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(url, time.Second, &logger)
	require.NoError(t, err)
	client.WithRetry(RetryPolicy{MaxRetries: 3, InitialDelay: time.Hour})
	h := New(client, NewValidator(), nil, &logger).Router()

	start := time.Now()
	rec := send(h, http.MethodPost, "/requests", "1", `{"description":"Need a tent"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Less(t, time.Since(start), time.Minute)
}

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}
	assert.Equal(t, 100*time.Millisecond, p.NextDelay(0))
	assert.Equal(t, 100*time.Millisecond, p.NextDelay(1))
	assert.Equal(t, 400*time.Millisecond, p.NextDelay(3))
	assert.Equal(t, time.Second, p.NextDelay(10))
	assert.Equal(t, 200*time.Millisecond, RetryPolicy{}.NextDelay(2))
}
