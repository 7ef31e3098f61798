// Package testutil provides an in-process fake ICON node for tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Klingon-tech/icon-cli/internal/rpcclient"
)

// Handler answers one JSON-RPC method. Returning a non-nil error sends a
// JSON-RPC error response.
type Handler func(params json.RawMessage) (any, *rpcclient.RPCError)

// Request is a recorded request.
type Request struct {
	Path   string
	Method string
	Params json.RawMessage
}

// Node is a fake node serving /api/v3 and /api/v3d.
type Node struct {
	srv *httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	calls    map[string]Handler
	requests []Request
}

// NewNode starts a fake node that is closed when the test ends.
func NewNode(t *testing.T) *Node {
	t.Helper()
	n := &Node{
		handlers: make(map[string]Handler),
		calls:    make(map[string]Handler),
	}
	n.srv = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.srv.Close)
	return n
}

// URL returns the base URL of the node.
func (n *Node) URL() string {
	return n.srv.URL
}

// Handle registers a handler for a JSON-RPC method.
func (n *Node) Handle(method string, h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

// HandleResult registers a method that always returns result.
func (n *Node) HandleResult(method string, result any) {
	n.Handle(method, func(json.RawMessage) (any, *rpcclient.RPCError) { return result, nil })
}

// HandleCall registers an icx_call handler for one contract method.
func (n *Node) HandleCall(to, method string, h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls[to+"/"+method] = h
}

// HandleCallResult registers a contract method that always returns result.
func (n *Node) HandleCallResult(to, method string, result any) {
	n.HandleCall(to, method, func(json.RawMessage) (any, *rpcclient.RPCError) { return result, nil })
}

// Requests returns the recorded requests for method.
func (n *Node) Requests(method string) []Request {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Request
	for _, r := range n.requests {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

// CallRequests returns the params of recorded icx_call requests for a
// contract method.
func (n *Node) CallRequests(to, method string) []json.RawMessage {
	var out []json.RawMessage
	for _, r := range n.Requests("icx_call") {
		var p callParams
		if json.Unmarshal(r.Params, &p) == nil && p.To == to && p.Data.Method == method {
			out = append(out, r.Params)
		}
	}
	return out
}

type callParams struct {
	To   string `json:"to"`
	Data struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	} `json:"data"`
}

func (n *Node) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
		ID     int64           `json:"id"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.requests = append(n.requests, Request{Path: r.URL.Path, Method: req.Method, Params: req.Params})
	h := n.handlers[req.Method]
	if req.Method == "icx_call" && h == nil {
		var p callParams
		if json.Unmarshal(req.Params, &p) == nil {
			if ch, ok := n.calls[p.To+"/"+p.Data.Method]; ok {
				h = func(json.RawMessage) (any, *rpcclient.RPCError) { return ch(p.Data.Params) }
			}
		}
	}
	n.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if h == nil {
		w.WriteHeader(http.StatusBadRequest)
		resp["error"] = &rpcclient.RPCError{Code: rpcclient.CodeMethodNotFound, Message: "no handler for " + req.Method}
	} else if result, rpcErr := h(req.Params); rpcErr != nil {
		w.WriteHeader(http.StatusBadRequest)
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	_ = json.NewEncoder(w).Encode(resp)
}
