// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestSleep(t *testing.T) {
	t.Parallel()

	if !Sleep(context.Background(), time.Millisecond) {
		t.Error("Sleep returned false for a live context")
	}
	if !Sleep(context.Background(), 0) {
		t.Error("Sleep(0) returned false for a live context")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if Sleep(ctx, time.Hour) {
		t.Error("Sleep returned true for a canceled context")
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep did not return when the context was canceled")
	}
	if Sleep(ctx, 0) {
		t.Error("Sleep(0) returned true for a canceled context")
	}
}
