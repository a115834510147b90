// Copyright (c) 2026 CoPla. All rights reserved.

package middleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copla/copla/internal/platform/ctxutil"
	"github.com/copla/copla/internal/platform/middleware"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func serve(handler http.Handler, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

var ok = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

/*
TestRequestID keeps a caller-supplied id and mints one otherwise.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/api/artists", nil)
	request.Header.Set("X-Request-ID", "req-1")
	recorder := serve(handler, request)
	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", recorder.Header().Get("X-Request-ID"))

	recorder = serve(handler, httptest.NewRequest(http.MethodGet, "/api/artists", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "req-1", seen)
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))
}

/*
TestRateLimit rejects a client once its bucket is empty and leaves others alone.
*/
func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, middleware.Limit{RPS: 0.01, Burst: 2})(ok)

	from := func(ip string) *http.Request {
		request := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		request.Header.Set("X-Real-IP", ip)
		return request
	}

	assert.Equal(t, http.StatusOK, serve(handler, from("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, serve(handler, from("10.0.0.1")).Code)

	limited := serve(handler, from("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), `"RATE_LIMITED"`)

	assert.Equal(t, http.StatusOK, serve(handler, from("10.0.0.2")).Code)
}

/*
TestPanicRecovery converts a panic into the standard 500 envelope.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(discard)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"INTERNAL_ERROR"`)
	assert.NotContains(t, recorder.Body.String(), "boom")
}

type policy struct {
	development bool
	origins     []string
}

func (p policy) IsDevelopment() bool      { return p.development }
func (p policy) AllowedOrigins() []string { return p.origins }

/*
TestCORS only reflects allowed origins and short-circuits preflight requests.
*/
func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		policy     policy
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{"allowed_origin", policy{origins: []string{"https://copla.art"}}, http.MethodGet, "https://copla.art", "https://copla.art", http.StatusOK},
		{"unknown_origin", policy{origins: []string{"https://copla.art"}}, http.MethodGet, "https://evil.example", "", http.StatusOK},
		{"development_any", policy{development: true}, http.MethodGet, "http://localhost:5173", "http://localhost:5173", http.StatusOK},
		{"preflight", policy{origins: []string{"https://copla.art"}}, http.MethodOptions, "https://copla.art", "https://copla.art", http.StatusNoContent},
		{"no_origin", policy{}, http.MethodGet, "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, "/api/artists", nil)
			if tt.origin != "" {
				request.Header.Set("Origin", tt.origin)
			}

			recorder := serve(middleware.CORS(tt.policy)(ok), request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantOrigin, recorder.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

/*
TestRealIP prefers proxy headers over the socket address.
*/
func TestRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"real_ip", map[string]string{"X-Real-IP": "203.0.113.7"}, "203.0.113.7"},
		{"forwarded_first_hop", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, "198.51.100.1"},
		{"remote_addr", nil, "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			for key, value := range tt.headers {
				request.Header.Set(key, value)
			}
			assert.Equal(t, tt.want, middleware.RealIP(request))
		})
	}
}

/*
TestStructuredLogger hands downstream handlers a request-scoped logger.
*/
func TestStructuredLogger(t *testing.T) {
	var got *slog.Logger
	handler := middleware.StructuredLogger(discard)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		got = ctxutil.GetLogger(request.Context())
		writer.WriteHeader(http.StatusAccepted)
	}))

	recorder := serve(handler, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusAccepted, recorder.Code)
	require.NotNil(t, got)
	assert.NotSame(t, slog.Default(), got)
}
