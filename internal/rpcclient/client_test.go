package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type callLog struct {
	mu    sync.Mutex
	calls []recorded
}

func (l *callLog) add(r recorded) {
	l.mu.Lock()
	l.calls = append(l.calls, r)
	l.mu.Unlock()
}

func (l *callLog) all() []recorded {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recorded(nil), l.calls...)
}

type recorded struct {
	path   string
	method string
	params map[string]any
	id     uint64
}

// newTestServer answers every request with handle's result, or with an
// RPC error when handle returns one.
func newTestServer(t *testing.T, handle func(method string, params map[string]any) (any, *rpcError)) (*Client, *callLog) {
	t.Helper()
	calls := &callLog{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string         `json:"method"`
			Params map[string]any `json:"params"`
			ID     uint64         `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		calls.add(recorded{path: r.URL.Path, method: req.Method, params: req.Params, id: req.ID})

		result, rerr := handle(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rerr != nil {
			resp["error"] = rerr
		} else {
			resp["result"] = result
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	return New(srv.URL + "/"), calls
}

func TestClient_Call(t *testing.T) {
	client, calls := newTestServer(t, func(method string, params map[string]any) (any, *rpcError) {
		return map[string]string{"nodeID": "NodeID-abc"}, nil
	})

	var result struct {
		NodeID string `json:"nodeID"`
	}
	if err := client.Call(context.Background(), "/ext/info", "info.getNodeID", nil, &result); err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	if result.NodeID != "NodeID-abc" {
		t.Errorf("nodeID = %q", result.NodeID)
	}

	seen := calls.all()
	if len(seen) != 1 {
		t.Fatalf("server saw %d calls", len(seen))
	}
	got := seen[0]
	if got.path != "/ext/info" || got.method != "info.getNodeID" {
		t.Errorf("request = %+v", got)
	}
}

func TestClient_Call_NamedParamsAndIDs(t *testing.T) {
	client, calls := newTestServer(t, func(string, map[string]any) (any, *rpcError) {
		return map[string]any{}, nil
	})

	params := map[string]any{"address": "X-abc"}
	for i := 0; i < 2; i++ {
		if err := client.Call(context.Background(), "/ext/bc/X", "avm.getBalance", params, nil); err != nil {
			t.Fatalf("Call() error: %v", err)
		}
	}

	seen := calls.all()
	if seen[0].params["address"] != "X-abc" {
		t.Errorf("params = %v", seen[0].params)
	}
	if seen[0].id == seen[1].id {
		t.Error("request ids should differ")
	}
}

func TestClient_Call_RPCError(t *testing.T) {
	client, _ := newTestServer(t, func(string, map[string]any) (any, *rpcError) {
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	})

	err := client.Call(context.Background(), "/ext/info", "nonexistent", nil, nil)
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != -32601 {
		t.Errorf("error code = %d, want -32601", rpcErr.Code)
	}
}

func TestClient_Call_InvalidEndpoint(t *testing.T) {
	client := New("http://127.0.0.1:1") // nothing listens on port 1

	err := client.Call(context.Background(), "/ext/info", "info.getNodeID", nil, nil)
	if err == nil {
		t.Fatal("expected connection error")
	}
}

func TestClient_Call_Canceled(t *testing.T) {
	client, _ := newTestServer(t, func(string, map[string]any) (any, *rpcError) {
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.Call(ctx, "/ext/info", "info.getNodeID", nil, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
