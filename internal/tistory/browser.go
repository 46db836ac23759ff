// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package tistory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"go.geekbrox.name/autoblog/internal/atomicio"
	"go.geekbrox.name/autoblog/internal/textutil"
)

// errNotFound is returned when none of the tried selectors matched.
var errNotFound = errors.New("no matching element")

type selector struct {
	query string
	by    chromedp.QueryOption
}

func css(q string) selector   { return selector{q, chromedp.ByQuery} }
func xpath(q string) selector { return selector{q, chromedp.BySearch} }

// clickFirst clicks the first visible element matched by sels, giving each
// selector up to timeout to appear.
func clickFirst(ctx context.Context, timeout time.Duration, sels ...selector) (selector, error) {
	for _, s := range sels {
		tctx, cancel := context.WithTimeout(ctx, timeout)
		err := chromedp.Run(tctx, chromedp.Click(s.query, s.by, chromedp.NodeVisible))
		cancel()
		if err == nil {
			return s, nil
		}
		if ctx.Err() != nil {
			return selector{}, ctx.Err()
		}
	}
	return selector{}, errNotFound
}

// present reports whether s matches an element within timeout.
func present(ctx context.Context, timeout time.Duration, s selector) bool {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(tctx, chromedp.WaitReady(s.query, s.by)) == nil
}

// eval evaluates a JavaScript expression and returns its result.
func eval[T any](ctx context.Context, expr string) (T, error) {
	var res T
	err := chromedp.Run(ctx, chromedp.Evaluate(expr, &res))
	return res, err
}

func location(ctx context.Context) string {
	var u string
	if err := chromedp.Run(ctx, chromedp.Location(&u)); err != nil {
		return ""
	}
	return u
}

func pause(ctx context.Context, d time.Duration) error {
	return chromedp.Run(ctx, chromedp.Sleep(d))
}

// jsString encodes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// acceptDialog reports whether a native dialog should be accepted. The kept
// draft prompt on the new post page must be accepted for the editor to load;
// anything else is dismissed.
func acceptDialog(msg string) bool {
	msg = strings.TrimSpace(msg)
	return strings.Contains(msg, "이어서 작성") ||
		strings.Contains(msg, "저장된 글이 있습니다") ||
		(strings.Contains(msg, "이어서") && strings.Contains(msg, "작성"))
}

// handleDialogs answers native dialogs of the browser context as they open.
func (p *Publisher) handleDialogs(ctx context.Context) {
	chromedp.ListenTarget(ctx, func(ev any) {
		e, ok := ev.(*page.EventJavascriptDialogOpening)
		if !ok {
			return
		}
		accept := acceptDialog(e.Message)
		if accept {
			p.logf("  [alert 감지] 이어서 작성 안내 → accept (예)")
		} else {
			p.logf("  [alert 감지] %q → dismiss", textutil.Truncate(e.Message, 60))
		}
		go func() {
			if err := chromedp.Run(ctx, page.HandleJavaScriptDialog(accept)); err != nil {
				p.logf("  alert 처리 실패: %v", err)
			}
		}()
	})
}

// Cookie is a browser cookie as stored in the cookies file.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expiry   float64 `json:"expiry,omitempty"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

func (c Cookie) key() string { return c.Domain + ":" + c.Name }

// LoadCookies reads cookies saved by SaveCookies. SameSite attributes are
// dropped, since browsers reject some recorded values.
func LoadCookies(path string) ([]Cookie, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cookies []Cookie
	if err := json.Unmarshal(b, &cookies); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i := range cookies {
		cookies[i].SameSite = ""
	}
	return cookies, nil
}

// SaveCookies writes cookies to path.
func SaveCookies(path string, cookies []Cookie) error {
	b, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}
	return atomicio.WriteFile(path, b, 0o600)
}

// mergeCookies appends cookies from more to all, skipping those already
// present by domain and name.
func mergeCookies(all []Cookie, more ...Cookie) []Cookie {
	seen := make(map[string]bool, len(all))
	for _, c := range all {
		seen[c.key()] = true
	}
	for _, c := range more {
		if seen[c.key()] {
			continue
		}
		seen[c.key()] = true
		all = append(all, c)
	}
	return all
}

func fromNetwork(nc *network.Cookie) Cookie {
	c := Cookie{
		Name:     nc.Name,
		Value:    nc.Value,
		Domain:   nc.Domain,
		Path:     nc.Path,
		HTTPOnly: nc.HTTPOnly,
		Secure:   nc.Secure,
		SameSite: string(nc.SameSite),
	}
	if !nc.Session && nc.Expires > 0 {
		c.Expiry = nc.Expires
	}
	return c
}

// browserCookies returns the cookies visible to the current page.
func browserCookies(ctx context.Context) ([]Cookie, error) {
	var cookies []Cookie
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		ncs, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, nc := range ncs {
			cookies = append(cookies, fromNetwork(nc))
		}
		return nil
	}))
	return cookies, err
}

// setCookies installs cookies into the browser and returns how many were
// accepted.
func setCookies(ctx context.Context, cookies []Cookie) (int, error) {
	var loaded int
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			set := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithHTTPOnly(c.HTTPOnly).
				WithSecure(c.Secure)
			if c.Expiry > 0 {
				expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expiry), 0))
				set = set.WithExpires(&expires)
			}
			if err := set.Do(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				continue
			}
			loaded++
		}
		return nil
	}))
	return loaded, err
}

const dumpScript = `(function() {
	var out = [];
	var els = document.querySelectorAll('button, a, [role="button"], [onclick], [class*="btn"], [class*="button"], [class*="publish"], [class*="Publish"]');
	for (var i = 0; i < Math.min(els.length, 120); i++) {
		var e = els[i];
		var t = (e.innerText || e.textContent || '').trim().slice(0, 50);
		out.push({tag: e.tagName, class: String(e.className || '').slice(0, 120), text: t, id: (e.id || '').slice(0, 80)});
	}
	return out;
})()`

// Element is a clickable element recorded in a DOM dump.
type Element struct {
	Tag   string `json:"tag"`
	Class string `json:"class"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

func dumpElements(ctx context.Context) ([]Element, error) {
	els, err := eval[[]Element](ctx, dumpScript)
	if els == nil {
		els = []Element{}
	}
	return els, err
}
