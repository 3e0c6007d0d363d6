package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github/chapool/go-invoker/internal/contract/rpc"
)

// RPCHandler answers a single JSON-RPC method.
type RPCHandler func(params json.RawMessage) (any, *rpc.Error)

// RPCStub is a JSON-RPC endpoint served by httptest. Unknown methods answer
// with a method not found error.
type RPCStub struct {
	URL string

	mu       sync.Mutex
	handlers map[string]RPCHandler
}

// NewRPCStub starts a stub that reports itself healthy on the test network.
func NewRPCStub(t *testing.T) *RPCStub {
	t.Helper()

	stub := &RPCStub{handlers: map[string]RPCHandler{}}
	stub.SetHealthy(true)

	srv := httptest.NewServer(http.HandlerFunc(stub.serveHTTP))
	t.Cleanup(srv.Close)

	stub.URL = srv.URL
	return stub
}

// Handle registers h for method, replacing any previous handler.
func (s *RPCStub) Handle(method string, h RPCHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[method] = h
}

func (s *RPCStub) SetHealthy(healthy bool) {
	status := "unhealthy"
	if healthy {
		status = "healthy"
	}

	s.Handle("getHealth", func(json.RawMessage) (any, *rpc.Error) {
		return rpc.Health{Status: status, LatestLedger: 100, OldestLedger: 1}, nil
	})
}

func (s *RPCStub) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     uint64          `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	h, ok := s.handlers[req.Method]
	s.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if !ok {
		resp["error"] = &rpc.Error{Code: -32601, Message: "method not found"}
	} else if result, rpcErr := h(req.Params); rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
