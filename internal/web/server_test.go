// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"

	"go.geekbrox.name/autoblog/internal/testutil"
)

func TestListenAndServeConfig(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		c       *ListenAndServeConfig
		wantErr error
	}{
		"no Addr": {
			c:       &ListenAndServeConfig{Handler: http.NotFoundHandler()},
			wantErr: errNoAddr,
		},
		"nil Handler": {
			c:       &ListenAndServeConfig{Addr: ":3000"},
			wantErr: errNilHandler,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if err := ListenAndServe(t.Context(), tc.c); !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestListenAndServe(t *testing.T) {
	t.Parallel()

	ready := make(chan net.Addr, 1)
	errCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(t.Context())

	go func() {
		errCh <- ListenAndServe(ctx, &ListenAndServeConfig{
			Addr: "localhost:0",
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "hello")
			}),
			Logf:  t.Logf,
			Ready: func(addr net.Addr) { ready <- addr },
		})
	}()

	var addr net.Addr
	select {
	case err := <-errCh:
		t.Fatalf("server crashed during startup: %v", err)
	case addr = <-ready:
	}

	resp, err := http.Get("http://" + addr.String() + "/")
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, string(b), "hello")

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
}

func TestIsLoopback(t *testing.T) {
	t.Parallel()

	testutil.AssertEqual(t, isLoopback(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}), true)
	testutil.AssertEqual(t, isLoopback(&net.TCPAddr{IP: net.IPv6loopback}), true)
	testutil.AssertEqual(t, isLoopback(&net.TCPAddr{IP: net.IPv4zero}), false)
	testutil.AssertEqual(t, isLoopback(&net.UnixAddr{Name: "/run/bot.sock"}), false)
}
