// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"go.geekbrox.name/autoblog/internal/logger"
)

// ListenAndServeConfig configures the bot's status server.
type ListenAndServeConfig struct {
	// Addr is the "host:port" to listen on.
	Addr    string
	Handler http.Handler
	// Logf defaults to log.Printf.
	Logf logger.Logf
	// Ready, if set, is called with the bound address once the server
	// accepts connections.
	Ready func(addr net.Addr)
	// ShutdownTimeout bounds the graceful shutdown. Zero means 10 seconds.
	ShutdownTimeout time.Duration
}

var (
	errNoAddr     = errors.New("web: no listen address")
	errNilHandler = errors.New("web: nil handler")
)

// ListenAndServe serves c.Handler until ctx is done, then waits for
// in-flight requests. Streaming log requests end with ctx, so they do not
// hold up shutdown.
func ListenAndServe(ctx context.Context, c *ListenAndServeConfig) error {
	if c.Addr == "" {
		return errNoAddr
	}
	if c.Handler == nil {
		return errNilHandler
	}
	logf := c.Logf
	if logf == nil {
		logf = log.Printf
	}

	l, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return fmt.Errorf("web: listening on %s: %w", c.Addr, err)
	}
	defer l.Close()
	if !isLoopback(l.Addr()) {
		logf("⚠️  상태 서버가 외부에 노출됩니다 (%s): 로그와 공유 상태가 공개됩니다", l.Addr())
	} else {
		logf("상태 서버 시작: http://%s", l.Addr())
	}

	s := &http.Server{
		Handler:           c.Handler,
		ErrorLog:          log.New(logf, "", 0),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if c.Ready != nil {
		c.Ready(l.Addr())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	timeout := c.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

func isLoopback(addr net.Addr) bool {
	tcp, ok := addr.(*net.TCPAddr)
	return ok && tcp.IP.IsLoopback()
}
