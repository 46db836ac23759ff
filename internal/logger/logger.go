// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package logger defines the printf-style logging type used across the
// pipeline and keeps the bot's recent log lines for the status server.
package logger

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// Logf is the basic logger type: a printf-like func. Like [log.Printf], the
// format need not end in a newline. Logf functions must be safe for concurrent
// use.
type Logf func(format string, args ...any)

// Write implements the [io.Writer] interface.
func (f Logf) Write(p []byte) (n int, err error) {
	f("%s", p)
	return len(p), nil
}

// Streamer keeps the last lines written to it and fans new lines out to
// subscribers. Partial lines are held until their newline arrives.
type Streamer struct {
	mu      sync.Mutex
	lines   []string // ring of len <= cap
	next    int      // slot for the next line once the ring is full
	partial string
	subs    map[chan string]struct{}
}

// NewStreamer returns a Streamer that remembers up to size lines.
func NewStreamer(size int) *Streamer {
	return &Streamer{
		lines: make([]string, 0, max(size, 1)),
		subs:  make(map[chan string]struct{}),
	}
}

// Write implements [io.Writer].
func (s *Streamer) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.partial + string(b)
	for {
		line, rest, ok := strings.Cut(text, "\n")
		if !ok {
			break
		}
		s.pushLocked(line + "\n")
		text = rest
	}
	s.partial = text
	return len(b), nil
}

func (s *Streamer) pushLocked(line string) {
	if len(s.lines) < cap(s.lines) {
		s.lines = append(s.lines, line)
	} else {
		s.lines[s.next] = line
		s.next = (s.next + 1) % len(s.lines)
	}
	for sub := range s.subs {
		select {
		case sub <- line:
		default:
			// Slow subscribers miss lines.
		}
	}
}

// Tail returns up to n of the most recent lines, oldest first. A
// non-positive n returns all of them.
func (s *Streamer) Tail(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]string, 0, len(s.lines))
	all = append(all, s.lines[s.next:]...)
	all = append(all, s.lines[:s.next]...)
	if n > 0 && n < len(all) {
		all = all[len(all)-n:]
	}
	return all
}

// Subscribe returns a channel receiving lines written from now on. Call the
// returned func to unsubscribe.
func (s *Streamer) Subscribe() (<-chan string, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := make(chan string, cap(s.lines)+1)
	s.subs[sub] = struct{}{}
	return sub, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[sub]; ok {
			delete(s.subs, sub)
			close(sub)
		}
	}
}

// ServeHTTP writes the recent lines (the last ?n= of them, if given). With
// ?follow=1 or an Accept: text/event-stream header it then keeps streaming
// new lines until the client goes away; event streams use server-sent
// events framing.
func (s *Streamer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, _ := strconv.Atoi(r.URL.Query().Get("n"))
	sse := strings.Contains(strings.ToLower(r.Header.Get("Accept")), "text/event-stream")
	follow := sse || r.URL.Query().Get("follow") == "1"

	w.Header().Set("Cache-Control", "no-cache")
	if sse {
		w.Header().Set("Content-Type", "text/event-stream")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}

	// Subscribe before reading the tail so no line falls in between.
	var (
		sub         <-chan string
		unsubscribe = func() {}
	)
	if follow {
		sub, unsubscribe = s.Subscribe()
	}
	defer unsubscribe()

	write := func(line string) {
		if sse {
			fmt.Fprintf(w, "event: logline\ndata: %s\n", line)
		} else {
			fmt.Fprint(w, line)
		}
	}
	for _, line := range s.Tail(n) {
		write(line)
	}
	if !follow {
		return
	}

	flusher, _ := w.(http.Flusher)
	for {
		if flusher != nil {
			flusher.Flush()
		}
		select {
		case line := <-sub:
			write(line)
		case <-r.Context().Done():
			return
		}
	}
}
