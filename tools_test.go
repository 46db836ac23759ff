// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package autoblog

import (
	"bytes"
	"os/exec"
	"testing"
)

func TestGofmt(t *testing.T) {
	if _, err := exec.LookPath("gofmt"); err != nil {
		t.Skip("gofmt not found in PATH")
	}
	var w bytes.Buffer
	c := exec.Command("gofmt", "-l", "cmd", "internal")
	c.Stdout = &w
	c.Stderr = &w
	if err := c.Run(); err != nil {
		t.Fatalf("gofmt failed: %v:\n%v", err, w.String())
	}
	if files := w.String(); files != "" {
		t.Fatalf("run gofmt on these files:\n%v", files)
	}
}
