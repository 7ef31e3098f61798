package rpcclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve starts a server that answers each request with handler's result or error.
func serve(t *testing.T, handler func(method string, params json.RawMessage) (any, *RPCError)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			JSONRPC string          `json:"jsonrpc"`
			Method  string          `json:"method"`
			Params  json.RawMessage `json:"params"`
			ID      int64           `json:"id"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "2.0", req.JSONRPC)

		result, rpcErr := handler(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			w.WriteHeader(http.StatusBadRequest)
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestCall_Result(t *testing.T) {
	c := serve(t, func(method string, params json.RawMessage) (any, *RPCError) {
		assert.Equal(t, "icx_getBalance", method)
		assert.JSONEq(t, `{"address":"hx0000000000000000000000000000000000000001"}`, string(params))
		return "0xde0b6b3a7640000", nil
	})

	var balance string
	err := c.Call(context.Background(), "icx_getBalance",
		map[string]string{"address": "hx0000000000000000000000000000000000000001"}, &balance)
	require.NoError(t, err)
	assert.Equal(t, "0xde0b6b3a7640000", balance)
}

func TestCall_NilResult(t *testing.T) {
	c := serve(t, func(string, json.RawMessage) (any, *RPCError) {
		return map[string]string{"ignored": "yes"}, nil
	})
	require.NoError(t, c.Call(context.Background(), "icx_getLastBlock", nil, nil))
}

func TestCall_RPCError(t *testing.T) {
	c := serve(t, func(string, json.RawMessage) (any, *RPCError) {
		return nil, &RPCError{Code: CodePending, Message: "Pending"}
	})

	err := c.Call(context.Background(), "icx_getTransactionResult", map[string]string{"txHash": "0x00"}, nil)
	require.Error(t, err)

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, CodePending, rpcErr.Code)
	assert.Equal(t, "rpc error -31002: Pending", err.Error())
	assert.True(t, IsPending(err))
}

func TestIsPending(t *testing.T) {
	assert.True(t, IsPending(&RPCError{Code: CodeExecuting}))
	assert.True(t, IsPending(&RPCError{Code: CodeNotFound}))
	assert.False(t, IsPending(&RPCError{Code: CodeInvalidParams}))
	assert.False(t, IsPending(io.EOF))
}

func TestCall_Unreachable(t *testing.T) {
	c := NewWithTimeout("http://127.0.0.1:1", time.Second)
	err := c.Call(context.Background(), "icx_getTotalSupply", nil, nil)
	require.ErrorContains(t, err, "http request")
}

func TestCall_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway</html>"))
	}))
	t.Cleanup(srv.Close)

	err := New(srv.URL).Call(context.Background(), "icx_call", nil, nil)
	require.ErrorContains(t, err, "decode response")
}

func TestCall_IncrementsID(t *testing.T) {
	var ids []int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int64 `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		ids = append(ids, req.ID)
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": "0x1"})
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	for range 3 {
		require.NoError(t, c.Call(context.Background(), "icx_getTotalSupply", nil, nil))
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
}
