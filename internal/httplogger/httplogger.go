// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package httplogger traces outgoing API calls.
//
// Each request is logged when it starts and when it finishes. Concurrent
// requests are drawn as columns so overlapping calls stay readable. Query
// parameters that carry credentials are masked before logging.
package httplogger

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.geekbrox.name/autoblog/internal/logger"
)

// secretParams are query parameters masked in logs.
var secretParams = []string{"key", "api_key", "client_id", "token"}

// New wraps t so that every round trip is logged to logf. A nil t means
// http.DefaultTransport.
func New(t http.RoundTripper, logf logger.Logf) http.RoundTripper {
	if t == nil {
		t = http.DefaultTransport
	}
	return &transport{base: t, logf: logf, now: time.Now}
}

type transport struct {
	base http.RoundTripper
	logf logger.Logf
	now  func() time.Time

	mu      sync.Mutex
	columns []byte
}

func (t *transport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.mu.Lock()
	col := len(t.columns)
	start := t.now()
	t.logf("HTTP: %s %s+ %s %s", clock(start), t.columns, r.Method, Redact(r.URL))
	t.columns = append(t.columns, '|')
	t.mu.Unlock()

	resp, err := t.base.RoundTrip(r)

	summary := r.URL.Host + r.URL.Path
	switch {
	case err != nil:
		summary += " error: " + err.Error()
	case resp != nil:
		summary += " " + resp.Status
	}
	end := t.now()

	t.mu.Lock()
	t.columns[col] = '-'
	t.logf("HTTP: %s %s %s (%.3fs)", clock(end), t.columns, summary, end.Sub(start).Seconds())
	t.columns[col] = ' '
	// Drop finished columns from the right edge.
	n := len(t.columns)
	for n > 0 && t.columns[n-1] == ' ' {
		n--
	}
	t.columns = t.columns[:n]
	t.mu.Unlock()

	return resp, err
}

// Redact returns u as a string with credential query parameters masked.
func Redact(u *url.URL) string {
	q := u.Query()
	masked := false
	for _, p := range secretParams {
		for k := range q {
			if strings.EqualFold(k, p) {
				q.Set(k, "xxx")
				masked = true
			}
		}
	}
	if !masked {
		return u.Redacted()
	}
	c := *u
	c.RawQuery = q.Encode()
	return c.Redacted()
}

func clock(t time.Time) string { return t.Format("15:04:05.000") }
