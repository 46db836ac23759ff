// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package tistory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chromedp/cdproto/network"

	"go.geekbrox.name/autoblog/internal/testutil"
)

func TestAcceptDialog(t *testing.T) {
	t.Parallel()

	cases := []struct {
		msg  string
		want bool
	}{
		{"이어서 작성하시겠습니까?", true},
		{"  저장된 글이 있습니다.  ", true},
		{"작성 중인 글을 이어서 보시겠어요?", true},
		{"페이지를 나가시겠습니까?", false},
		{"", false},
	}
	for _, tc := range cases {
		testutil.AssertEqual(t, acceptDialog(tc.msg), tc.want)
	}
}

func TestMergeCookies(t *testing.T) {
	t.Parallel()

	all := []Cookie{
		{Name: "TSSESSION", Value: "a", Domain: ".tistory.com"},
	}
	got := mergeCookies(all,
		Cookie{Name: "TSSESSION", Value: "b", Domain: ".tistory.com"},
		Cookie{Name: "TSSESSION", Value: "c", Domain: "geekbrox.tistory.com"},
		Cookie{Name: "_T_ANO", Value: "d", Domain: ".tistory.com"},
		Cookie{Name: "_T_ANO", Value: "e", Domain: ".tistory.com"},
	)
	testutil.AssertEqual(t, got, []Cookie{
		{Name: "TSSESSION", Value: "a", Domain: ".tistory.com"},
		{Name: "TSSESSION", Value: "c", Domain: "geekbrox.tistory.com"},
		{Name: "_T_ANO", Value: "d", Domain: ".tistory.com"},
	})
}

func TestCookiesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cookies.json")
	saved := []Cookie{
		{Name: "TSSESSION", Value: "a", Domain: ".tistory.com", Path: "/", Expiry: 1.7e9, HTTPOnly: true, Secure: true, SameSite: "None"},
		{Name: "_kawlt", Value: "b", Domain: ".kakao.com", Path: "/"},
	}
	if err := SaveCookies(path, saved); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, fi.Mode().Perm(), os.FileMode(0o600))

	got, err := LoadCookies(path)
	if err != nil {
		t.Fatal(err)
	}
	saved[0].SameSite = ""
	testutil.AssertEqual(t, got, saved)

	if _, err := LoadCookies(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}
}

func TestFromNetwork(t *testing.T) {
	t.Parallel()

	got := fromNetwork(&network.Cookie{
		Name:     "TSSESSION",
		Value:    "a",
		Domain:   ".tistory.com",
		Path:     "/",
		Expires:  1.7e9,
		HTTPOnly: true,
		SameSite: network.CookieSameSiteLax,
	})
	testutil.AssertEqual(t, got, Cookie{
		Name: "TSSESSION", Value: "a", Domain: ".tistory.com", Path: "/",
		Expiry: 1.7e9, HTTPOnly: true, SameSite: "Lax",
	})

	session := fromNetwork(&network.Cookie{Name: "s", Expires: -1, Session: true})
	testutil.AssertEqual(t, session.Expiry, float64(0))
}

func TestURLs(t *testing.T) {
	t.Parallel()

	p := &Publisher{BlogName: "geekbrox"}
	testutil.AssertEqual(t, p.NewPostURL(), "https://geekbrox.tistory.com/manage/newpost")
	testutil.AssertEqual(t, p.LoginURL(), "https://www.tistory.com/auth/login?redirectUrl=https%3A%2F%2Fgeekbrox.tistory.com%2Fmanage%2Fnewpost")

	testutil.AssertEqual(t, isManageURL("https://geekbrox.tistory.com/manage/newpost"), true)
	testutil.AssertEqual(t, isManageURL(p.LoginURL()), false)
	testutil.AssertEqual(t, isManageURL("https://accounts.kakao.com/login?continue=https://geekbrox.tistory.com/manage"), false)
}

func TestJSString(t *testing.T) {
	t.Parallel()

	testutil.AssertEqual(t, jsString(`애니 "리뷰"`+"\n"), `"애니 \"리뷰\"\n"`)
}

func TestImageMIME(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]string{
		"a.PNG":  "image/png",
		"a.gif":  "image/gif",
		"a.jpg":  "image/jpeg",
		"a.webp": "image/jpeg",
	} {
		testutil.AssertEqual(t, imageMIME(name), want)
	}
}

type fakeNotifier struct{ sent []string }

func (f *fakeNotifier) NotifyPlain(_ context.Context, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func TestNotify(t *testing.T) {
	t.Parallel()

	n := &fakeNotifier{}
	p := &Publisher{Notifier: n}
	p.notify(t.Context(), "✅ 포스팅 완료")
	testutil.AssertEqual(t, n.sent, []string{"✅ 포스팅 완료"})

	var logged []string
	p = &Publisher{Logf: func(format string, args ...any) { logged = append(logged, format) }}
	p.notify(t.Context(), "hello")
	testutil.AssertEqual(t, logged, []string{"[TG 미설정] %s"})

	if _, err := p.confirm(t.Context(), "포스팅"); err == nil {
		t.Fatal("want error without a confirmer")
	}
}
