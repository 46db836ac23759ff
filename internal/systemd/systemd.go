// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package systemd tells systemd when a long-running command is ready, alive
// and stopping.
package systemd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.geekbrox.name/autoblog/internal/logger"
)

// State is a sd-notify protocol state.
// See https://www.freedesktop.org/software/systemd/man/sd_notify.html.
type State string

const (
	// Ready tells the service manager that startup is finished.
	Ready State = "READY=1"
	// Stopping tells the service manager that the service is shutting down.
	Stopping State = "STOPPING=1"
	// Watchdog updates the watchdog timestamp.
	Watchdog State = "WATCHDOG=1"
)

// Status returns a state that sets the status line shown by systemctl.
func Status(text string) State { return State("STATUS=" + text) }

// Notify sends state to the socket named by NOTIFY_SOCKET, looked up with
// getenv. It does nothing outside systemd. Errors are logged to logf.
func Notify(getenv func(string) string, logf logger.Logf, state State) {
	addr := &net.UnixAddr{Net: "unixgram", Name: getenv("NOTIFY_SOCKET")}
	if addr.Name == "" {
		return
	}

	conn, err := net.DialUnix(addr.Net, nil, addr)
	if err != nil {
		logf("systemd: failed when notifying: %v", err)
		return
	}
	defer conn.Close()

	if _, err = conn.Write([]byte(state)); err != nil {
		logf("systemd: failed when notifying: %v", err)
	}
}

// WatchdogLoop updates the watchdog timestamp at the interval from
// WATCHDOG_USEC until ctx is done. It returns at once when the watchdog is
// not enabled.
func WatchdogLoop(ctx context.Context, getenv func(string) string, logf logger.Logf) {
	usec := getenv("WATCHDOG_USEC")
	if usec == "" {
		return
	}
	interval, err := watchdogInterval(usec)
	if err != nil {
		logf("%v", err)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			Notify(getenv, logf, Watchdog)
		case <-ctx.Done():
			return
		}
	}
}

func watchdogInterval(usec string) (time.Duration, error) {
	n, err := strconv.Atoi(usec)
	if err != nil {
		return 0, fmt.Errorf("systemd: error converting WATCHDOG_USEC: %w", err)
	}
	if n <= 0 {
		return 0, errors.New("systemd: WATCHDOG_USEC must be a positive number")
	}
	// Notify twice per interval so a slow tick does not trip the watchdog.
	return time.Duration(n) * time.Microsecond / 2, nil
}
