package test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github/chapool/go-invoker/internal/api"
	"github/chapool/go-invoker/internal/api/router"
	"github/chapool/go-invoker/internal/config"
)

// WithTestServer returns a fully configured server backed by a healthy RPC stub.
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerConfigurable(t, config.DefaultServiceConfigFromEnv(), closure)
}

// WithTestServerConfigurable returns a fully configured server, allowing
// for configuration via the provided server config. The RPC URL is always
// pointed at a fresh stub.
func WithTestServerConfigurable(t *testing.T, config config.Server, closure func(s *api.Server)) {
	t.Helper()

	stub := NewRPCStub(t)
	config.RPC.URL = stub.URL
	config.RPC.RateLimit = 0

	s := NewTestServer(t, config)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if errs := s.Shutdown(ctx); len(errs) > 0 {
			t.Fatalf("Failed to shutdown server: %v", errs)
		}
	}()

	closure(s)
}

// NewTestServer builds a server with all components and routes attached.
func NewTestServer(t *testing.T, config config.Server) *api.Server {
	t.Helper()

	s, err := api.InitNewServer(config)
	if err != nil {
		t.Fatalf("Failed to init server: %v", err)
	}

	router.Init(s)

	return s
}

// PerformRequest runs a request against the echo instance of s without a
// network listener.
func PerformRequest(t *testing.T, s *api.Server, method string, path string, body io.Reader, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header[k] = v
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}
