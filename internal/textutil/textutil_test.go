// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package textutil

import (
	"testing"

	"go.geekbrox.name/autoblog/internal/testutil"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 2, "he"},
		{"장송의 프리렌", 3, "장송의"},
		{"hello", 0, ""},
		{"", 5, ""},
	}
	for _, tc := range cases {
		testutil.AssertEqual(t, Truncate(tc.in, tc.n), tc.want)
	}
}

func TestTail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 2, "lo"},
		{"장송의 프리렌", 3, "프리렌"},
		{"hello", -1, ""},
	}
	for _, tc := range cases {
		testutil.AssertEqual(t, Tail(tc.in, tc.n), tc.want)
	}
}
