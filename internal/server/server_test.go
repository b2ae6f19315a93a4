// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/stark-deploy/internal/history"
)

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newServer(t *testing.T) (*httptest.Server, *history.Store) {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h, err := NewHandler(store, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, store
}

func call(t *testing.T, url, method string, params any) rpcResponse {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	})
	require.NoError(t, err)

	resp, err := http.Post(url+"/rpc", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func seed(t *testing.T, store *history.Store, n int) []string {
	t.Helper()
	var ids []string
	for i := 0; i < n; i++ {
		e := &history.Entry{
			Network:   "devnet",
			RPCURL:    "http://localhost:5050/rpc",
			Account:   "0x1",
			ClassHash: "0x2",
			Salt:      "0x3",
			Status:    history.StatusPending,
		}
		require.NoError(t, store.Create(context.Background(), e))
		ids = append(ids, e.ID)
	}
	return ids
}

func TestHistoryList(t *testing.T) {
	srv, store := newServer(t)
	seed(t, store, 3)

	resp := call(t, srv.URL, "History.List", map[string]any{"limit": 2})
	require.Nil(t, resp.Error)

	var reply ListReply
	require.NoError(t, json.Unmarshal(resp.Result, &reply))
	assert.Len(t, reply.Deployments, 2)

	resp = call(t, srv.URL, "History.List", map[string]any{})
	require.Nil(t, resp.Error)
	require.NoError(t, json.Unmarshal(resp.Result, &reply))
	assert.Len(t, reply.Deployments, 3)
}

func TestHistoryListEmpty(t *testing.T) {
	srv, _ := newServer(t)

	resp := call(t, srv.URL, "History.List", map[string]any{})
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `{"deployments":[]}`, string(resp.Result))
}

func TestHistoryGet(t *testing.T) {
	srv, store := newServer(t)
	ids := seed(t, store, 1)

	resp := call(t, srv.URL, "History.Get", map[string]any{"id": ids[0]})
	require.Nil(t, resp.Error)

	var reply GetReply
	require.NoError(t, json.Unmarshal(resp.Result, &reply))
	require.NotNil(t, reply.Deployment)
	assert.Equal(t, ids[0], reply.Deployment.ID)
	assert.Equal(t, history.StatusPending, reply.Deployment.Status)
}

func TestHistoryGetErrors(t *testing.T) {
	srv, _ := newServer(t)

	resp := call(t, srv.URL, "History.Get", map[string]any{"id": "missing"})
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "not found")

	resp = call(t, srv.URL, "History.Get", map[string]any{})
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "id is required")
}

func TestHealthz(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	h, err := NewHandler(store, []string{"https://dash.example"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/rpc", nil)
	req.Header.Set("Origin", "https://dash.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://dash.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler()) }()

	cancel()
	require.NoError(t, <-done)
}
