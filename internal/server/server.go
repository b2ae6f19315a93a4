// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the deployment ledger over JSON-RPC 2.0.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"

	"github.com/dotandev/stark-deploy/internal/history"
	"github.com/dotandev/stark-deploy/internal/logger"
)

// DefaultListLimit caps History.List when the caller sends no limit.
const DefaultListLimit = 50

// Ledger is the read side of the history store.
type Ledger interface {
	Get(ctx context.Context, id string) (*history.Entry, error)
	List(ctx context.Context, limit int) ([]history.Entry, error)
}

type ListArgs struct {
	Limit int `json:"limit"`
}

type ListReply struct {
	Deployments []history.Entry `json:"deployments"`
}

type GetArgs struct {
	ID string `json:"id"`
}

type GetReply struct {
	Deployment *history.Entry `json:"deployment"`
}

// HistoryService is registered under the "History" namespace.
type HistoryService struct {
	ledger Ledger
}

// List returns the most recent runs, newest first.
func (s *HistoryService) List(r *http.Request, args *ListArgs, reply *ListReply) error {
	limit := args.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	entries, err := s.ledger.List(r.Context(), limit)
	if err != nil {
		logger.Logger.Error("History.List failed", "error", err)
		return &json2.Error{Code: json2.E_SERVER, Message: err.Error()}
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	reply.Deployments = entries
	return nil
}

// Get returns a single run by id.
func (s *HistoryService) Get(r *http.Request, args *GetArgs, reply *GetReply) error {
	if args.ID == "" {
		return &json2.Error{Code: json2.E_INVALID_REQ, Message: "id is required"}
	}
	e, err := s.ledger.Get(r.Context(), args.ID)
	if errors.Is(err, history.ErrNotFound) {
		return &json2.Error{Code: json2.E_BAD_PARAMS, Message: err.Error(), Data: args.ID}
	}
	if err != nil {
		logger.Logger.Error("History.Get failed", "id", args.ID, "error", err)
		return &json2.Error{Code: json2.E_SERVER, Message: err.Error()}
	}
	reply.Deployment = e
	return nil
}

// NewHandler builds the JSON-RPC handler. allowedOrigins enables CORS for
// browser dashboards; nil disables it.
func NewHandler(ledger Ledger, allowedOrigins []string) (http.Handler, error) {
	s := rpc.NewServer()
	s.RegisterCodec(json2.NewCodec(), "application/json")
	if err := s.RegisterService(&HistoryService{ledger: ledger}, "History"); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/rpc", s)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var h http.Handler = mux
	if len(allowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(allowedOrigins),
			handlers.AllowedHeaders([]string{"Content-Type"}),
			handlers.AllowedMethods([]string{http.MethodPost}),
			handlers.MaxAge(600),
		)(h)
	}
	return h, nil
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Logger.Info("History server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
