// Copyright (c) 2026 CoPla. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/copla/copla/internal/platform/config"
)

const callbackPage = `<!doctype html><title>CoPla</title><p>You can close this window and return to the terminal.</p>`

// callbackServer receives the provider redirect on the loopback interface.
type callbackServer struct {
	listener net.Listener
	server   *http.Server
	results  chan url.Values
	logger   *slog.Logger
}

// listenCallback binds 127.0.0.1:port. Port 0 picks a free port.
func listenCallback(port int, logger *slog.Logger) (*callbackServer, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("callback_listen_failed: %w", err)
	}

	callback := &callbackServer{
		listener: listener,
		results:  make(chan url.Values, 1),
		logger:   logger,
	}

	router := chi.NewRouter()
	router.Get(config.CallbackPath, callback.handle)
	callback.server = &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := callback.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("callback_serve_failed", slog.Any("error", err))
		}
	}()
	return callback, nil
}

// RedirectURI is the loopback redirect registered with the provider.
func (c *callbackServer) RedirectURI() string {
	return "http://" + c.listener.Addr().String() + config.CallbackPath
}

func (c *callbackServer) handle(writer http.ResponseWriter, request *http.Request) {
	select {
	case c.results <- request.URL.Query():
	default:
		c.logger.Warn("callback_duplicate_ignored")
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = writer.Write([]byte(callbackPage))
}

// Wait returns the first callback's query parameters.
func (c *callbackServer) Wait(ctx context.Context) (url.Values, error) {
	select {
	case params := <-c.results:
		return params, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("callback_wait_failed: %w", ctx.Err())
	}
}

// Close stops the server, waiting briefly for the page to be written.
func (c *callbackServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.server.Shutdown(ctx)
}
