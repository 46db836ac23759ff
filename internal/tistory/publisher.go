// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package tistory publishes drafts to a Tistory blog by driving a Chrome
// browser.
//
// Tistory has no usable publishing API, so the [Publisher] logs in through
// Kakao (replaying saved cookies when possible), fills the post editor and
// clicks publish. Steps that need a human, like two-factor confirmation and
// the final go-ahead, are confirmed over Telegram with a [Confirmer].
package tistory

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"go.geekbrox.name/autoblog/internal/atomicio"
	"go.geekbrox.name/autoblog/internal/logger"
	"go.geekbrox.name/autoblog/internal/textutil"
)

const (
	// DefaultCategory is the blog category posts are filed under.
	DefaultCategory = "애니소개 및 리뷰"

	// DumpFile and ScreenshotFile are written into the dump directory when
	// the publish button can't be found.
	DumpFile       = "publish_button_dump.json"
	ScreenshotFile = "publish_fail_screenshot.png"

	// ConfirmTimeout bounds each wait for a Telegram keyword.
	ConfirmTimeout = 10 * time.Minute
	// MaxRunTime bounds a whole publish: two keyword waits, the login
	// recovery loop and the browser work around them.
	MaxRunTime = 2*ConfirmTimeout + recoveryTries*recoveryInterval + 5*time.Minute

	recoveryTries    = 20
	recoveryInterval = 3 * time.Second
)

// ErrPublish is returned when the post could not be published.
var ErrPublish = errors.New("발행 실패")

// Notifier sends plain text notifications.
type Notifier interface {
	NotifyPlain(ctx context.Context, text string) error
}

// Publisher drives a browser to publish posts.
type Publisher struct {
	BlogName    string
	Email       string
	Password    string
	CookiesFile string
	// DumpDir receives DOM dumps and screenshots for debugging. Defaults to
	// the working directory.
	DumpDir  string
	Category string
	Headless bool

	Notifier  Notifier
	Confirmer *Confirmer
	Logf      logger.Logf
}

func (p *Publisher) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}

func (p *Publisher) notify(ctx context.Context, text string) {
	if p.Notifier == nil {
		p.logf("[TG 미설정] %s", text)
		return
	}
	if err := p.Notifier.NotifyPlain(context.WithoutCancel(ctx), text); err != nil {
		p.logf("Telegram 전송 실패: %v", err)
	}
}

func (p *Publisher) confirm(ctx context.Context, keyword string) (bool, error) {
	if p.Confirmer == nil {
		return false, fmt.Errorf("'%s' 확인 수단이 없습니다", keyword)
	}
	return p.Confirmer.WaitKeyword(ctx, keyword, ConfirmTimeout)
}

func (p *Publisher) blogURL() string { return "https://" + p.BlogName + ".tistory.com" }

// NewPostURL returns the editor URL of the blog.
func (p *Publisher) NewPostURL() string { return p.blogURL() + "/manage/newpost" }

// LoginURL returns the login page that redirects to the editor.
func (p *Publisher) LoginURL() string {
	return "https://www.tistory.com/auth/login?redirectUrl=" + url.QueryEscape(p.NewPostURL())
}

func isManageURL(u string) bool {
	return strings.Contains(u, "tistory.com/manage") &&
		!strings.Contains(u, "accounts.kakao.com") &&
		!strings.Contains(u, "/auth/login")
}

// run starts a browser and calls fn with its context.
func (p *Publisher) run(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.Headless),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("lang", "ko-KR"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.WindowSize(1400, 1000),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(p.logf))
	defer taskCancel()

	if err := chromedp.Run(taskCtx, network.Enable()); err != nil {
		return fmt.Errorf("Chrome 실행 실패: %w", err)
	}
	p.handleDialogs(taskCtx)
	return fn(taskCtx)
}

// Publish logs in and publishes post. It returns the URL of the published
// post.
func (p *Publisher) Publish(ctx context.Context, post *Post) (string, error) {
	var published string
	err := p.run(ctx, func(ctx context.Context) error {
		if err := p.login(ctx); err != nil {
			return err
		}
		var err error
		published, err = p.write(ctx, post)
		return err
	})
	return published, err
}

// DumpDOM logs in, opens the editor and saves the clickable elements of the
// page for selector debugging. It returns the path of the dump.
func (p *Publisher) DumpDOM(ctx context.Context) (string, error) {
	var path string
	err := p.run(ctx, func(ctx context.Context) error {
		if err := p.login(ctx); err != nil {
			return err
		}
		if err := p.navigate(ctx, p.NewPostURL(), 5*time.Second); err != nil {
			return err
		}
		if !p.waitForEditor(ctx, 25*time.Second) {
			return errors.New("에디터 로딩 실패")
		}
		var err error
		path, err = p.saveDump(ctx)
		return err
	})
	return path, err
}

func (p *Publisher) navigate(ctx context.Context, u string, wait time.Duration) error {
	return chromedp.Run(ctx, chromedp.Navigate(u), chromedp.Sleep(wait))
}

// Login.

func (p *Publisher) login(ctx context.Context) error {
	if p.CookiesFile != "" {
		ok, err := p.cookieLogin(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return p.autoLogin(ctx)
}

func (p *Publisher) cookieLogin(ctx context.Context) (bool, error) {
	cookies, err := LoadCookies(p.CookiesFile)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		p.logf("쿠키 파일 오류: %v", err)
		return false, nil
	}
	p.logf("cookies.json 발견 → 쿠키 로드")

	for _, u := range []string{"https://www.tistory.com", p.blogURL()} {
		if err := p.navigate(ctx, u, 2*time.Second); err != nil {
			return false, err
		}
		loaded, err := setCookies(ctx, cookies)
		if err != nil {
			return false, err
		}
		p.logf("쿠키 로드 완료 (%d/%d개)", loaded, len(cookies))
	}
	if err := chromedp.Run(ctx, chromedp.Reload(), chromedp.Sleep(3*time.Second)); err != nil {
		return false, err
	}

	if err := p.navigate(ctx, p.NewPostURL(), 4*time.Second); err != nil {
		return false, err
	}
	u := location(ctx)
	if isManageURL(u) {
		p.logf("쿠키 로그인 성공")
		return true, nil
	}
	p.logf("쿠키 만료됨 (현재 URL: %s) → 재로그인", u)
	if err := chromedp.Run(ctx, network.ClearBrowserCookies()); err != nil {
		return false, err
	}
	if err := os.Remove(p.CookiesFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	return false, nil
}

var (
	kakaoButtons = []selector{
		css("a[href*='kakao']"),
		xpath("//a[contains(., '카카오')]"),
		xpath("//button[contains(., '카카오')]"),
	}
	loginButtons = []selector{
		css("button[type='submit']"),
		css("button#loginBtn"),
		xpath("//button[contains(., '로그인')]"),
	}
	kakaoContinue = []selector{
		xpath("//button[normalize-space(.)='계속하기']"),
		xpath("//a[normalize-space(.)='계속하기']"),
		xpath("//button[contains(normalize-space(.), '계속하기')]"),
		xpath("//a[contains(normalize-space(.), '계속하기')]"),
		css(".link_account"),
		css(".item_account"),
		css("li.item_account a"),
		css(".btn_account"),
		css(".wrap_account a"),
		css(".list_account li:first-child a"),
		css(".list_account li:first-child button"),
		xpath("//button[normalize-space(.)='확인']"),
		xpath("//button[normalize-space(.)='동의하고 계속하기']"),
		xpath("//button[contains(., '동의')]"),
		css("button[type='submit']"),
		xpath("//ul[contains(@class,'list') or contains(@class,'account')]//li[1]//a"),
		xpath("//ul[contains(@class,'list') or contains(@class,'account')]//li[1]//button"),
	}
)

func (p *Publisher) autoLogin(ctx context.Context) error {
	p.logf("자동 카카오 로그인 시도")
	if err := p.navigate(ctx, p.LoginURL(), 3*time.Second); err != nil {
		return err
	}

	if _, err := clickFirst(ctx, 10*time.Second, kakaoButtons...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logf("  카카오 로그인 버튼 미발견 - 이미 카카오 페이지로 리다이렉트됐을 수 있음")
	}
	if err := pause(ctx, 3*time.Second); err != nil {
		return err
	}

	email := css("input#loginId")
	if !present(ctx, time.Second, email) {
		email = css("input[name='loginId']")
	}
	if present(ctx, time.Second, email) {
		password := css("input#password")
		if !present(ctx, time.Second, password) {
			password = css("input[type='password']")
		}
		if err := chromedp.Run(ctx,
			chromedp.Clear(email.query, email.by),
			chromedp.SendKeys(email.query, p.Email, email.by),
			chromedp.Sleep(time.Second),
			chromedp.Clear(password.query, password.by),
			chromedp.SendKeys(password.query, p.Password, password.by),
			chromedp.Sleep(time.Second),
		); err != nil {
			return fmt.Errorf("로그인 정보 입력 실패: %w", err)
		}
		if _, err := clickFirst(ctx, 10*time.Second, loginButtons...); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logf("  로그인 버튼 미발견")
		}
	} else {
		p.logf("  이메일 입력칸 미발견 - 이미 로그인됐거나 페이지 구조가 다름")
	}
	if err := pause(ctx, 5*time.Second); err != nil {
		return err
	}

	if u := location(ctx); strings.Contains(u, "tistory.com/manage") {
		p.logf("로그인 성공 → 관리 페이지 도달")
		return p.saveCookies(ctx)
	}
	p.logf("추가 인증 필요 감지 (현재: %s)", location(ctx))

	p.notify(ctx, "⚠️ 추가 인증이 필요합니다.\n휴대폰에서 인증 완료 후 '인증완료' 를 입력해주세요. (최대 10분 대기)")
	p.logf("Telegram '인증완료' 대기 중 (최대 10분)...")
	ok, err := p.confirm(ctx, "인증완료")
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("인증완료 타임아웃 (10분)")
	}

recovery:
	for attempt := 1; attempt <= recoveryTries; attempt++ {
		if err := pause(ctx, recoveryInterval); err != nil {
			return err
		}
		u := location(ctx)
		p.logf("  [%d/%d] URL: %s", attempt, recoveryTries, textutil.Truncate(u, 80))

		switch {
		case strings.Contains(u, "tistory.com/manage"):
			break recovery
		case strings.Contains(u, "kauth.kakao.com") || strings.Contains(u, "accounts.kakao.com"):
			if _, err := clickFirst(ctx, 5*time.Second, kakaoContinue...); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.logf("  카카오 버튼 미발견 (attempt %d) - 자동 진행 대기 중", attempt)
				continue
			}
			p.logf("  카카오 화면 클릭 완료 (계속하기/계정 선택)")
			if err := pause(ctx, 5*time.Second); err != nil {
				return err
			}
		case strings.Contains(u, "/auth/login"):
			p.logf("  로그인 페이지 감지 → LOGIN_URL 재접속")
			if err := p.navigate(ctx, p.LoginURL(), 5*time.Second); err != nil {
				return err
			}
		}
	}

	u := location(ctx)
	if !strings.Contains(u, "tistory.com/manage") {
		p.logf("⚠️ 로그인 실패 (URL: %s)", u)
		return fmt.Errorf("카카오 인증 완료 후에도 tistory 로그인 실패. 현재 URL: %s", u)
	}
	p.logf("로그인 성공 확인 → %s", textutil.Truncate(u, 60))
	return p.saveCookies(ctx)
}

// saveCookies stores the cookies of the current page, the main Tistory
// domain and the blog subdomain.
func (p *Publisher) saveCookies(ctx context.Context) error {
	if p.CookiesFile == "" {
		return nil
	}
	all, err := browserCookies(ctx)
	if err != nil {
		return err
	}
	for _, u := range []string{"https://www.tistory.com", p.blogURL()} {
		if err := p.navigate(ctx, u, time.Second); err != nil {
			p.logf("  쿠키 수집 실패 (%s): %v", u, err)
			continue
		}
		more, err := browserCookies(ctx)
		if err != nil {
			p.logf("  쿠키 수집 실패 (%s): %v", u, err)
			continue
		}
		all = mergeCookies(all, more...)
	}
	if err := SaveCookies(p.CookiesFile, all); err != nil {
		return err
	}
	p.logf("쿠키 저장 완료 (%d개) → %s", len(all), p.CookiesFile)
	return nil
}

// Editor.

var titleInputs = []selector{
	css("input#post-title-inp"),
	css("input[name='title']"),
	css("#post-title-inp"),
	css("input.post-title-inp"),
}

const continueModalScript = `(function() {
	var els = document.querySelectorAll('button, a, [role="dialog"] button');
	for (var i = 0; i < els.length; i++) {
		var t = (els[i].innerText || '').trim();
		if ((t.indexOf('이어서 작성') >= 0 || t === '예') && els[i].offsetParent !== null) {
			els[i].click();
			return true;
		}
	}
	return false;
})()`

func (p *Publisher) waitForEditor(ctx context.Context, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		state, err := eval[string](ctx, "document.readyState")
		if err != nil || state == "complete" {
			break
		}
		if pause(ctx, 500*time.Millisecond) != nil {
			return false
		}
	}

	for range 4 {
		if clicked, _ := eval[bool](ctx, continueModalScript); clicked {
			p.logf("  [커스텀 모달] 이어서 작성/예 클릭")
		}
		if pause(ctx, 800*time.Millisecond) != nil {
			return false
		}
	}

	for _, s := range titleInputs {
		if present(ctx, timeout/time.Duration(len(titleInputs)), s) {
			return true
		}
	}
	return false
}

const categoryScript = `(function(name) {
	var sels = ['select#category', "select[name='category']", '.tt_category select', "[data-role='category'] select", "select[id*='categ']", "select[name*='categ']"];
	for (var i = 0; i < sels.length; i++) {
		var s = document.querySelector(sels[i]);
		if (!s) continue;
		for (var j = 0; j < s.options.length; j++) {
			var t = s.options[j].text.trim();
			if (t === name || t.indexOf(name) >= 0 || (t && name.indexOf(t) >= 0)) {
				s.selectedIndex = j;
				s.dispatchEvent(new Event('change', {bubbles: true}));
				return t;
			}
		}
	}
	return '';
})(%s)`

func (p *Publisher) setCategory(ctx context.Context, name string) bool {
	if picked, _ := eval[string](ctx, fmt.Sprintf(categoryScript, jsString(name))); picked != "" {
		p.logf("  카테고리 선택 완료: %s", picked)
		return true
	}
	if _, err := clickFirst(ctx, 3*time.Second,
		css(".btn-category"),
		css("[class*='category'] button"),
		xpath("//button[contains(@class,'category')]"),
	); err != nil {
		p.logf("  ⚠️ 카테고리 드롭다운 미발견")
		return false
	}
	if _, err := clickFirst(ctx, 3*time.Second,
		xpath(fmt.Sprintf("//li[normalize-space(.)='%s']", name)),
		xpath(fmt.Sprintf("//a[normalize-space(.)='%s']", name)),
		xpath(fmt.Sprintf("//*[contains(text(),'%s')]", name)),
	); err != nil {
		p.logf("  ⚠️ 카테고리 옵션 미발견: %s", name)
		return false
	}
	p.logf("  카테고리 선택 완료: %s", name)
	return true
}

const markdownFallbackScript = `(function() {
	var all = document.querySelectorAll('button, a, li, div, span, [role="option"], [role="menuitem"]');
	for (var i = 0; i < all.length; i++) {
		var t = (all[i].innerText || all[i].textContent || '').trim();
		if ((t === '마크다운' || t === 'Markdown' || t === 'markdown') && all[i].offsetParent !== null) {
			all[i].click();
			return true;
		}
	}
	return false;
})()`

func (p *Publisher) switchToMarkdown(ctx context.Context) bool {
	p.logf("  에디터 모드 → 마크다운 전환 시도")
	if _, err := clickFirst(ctx, 3*time.Second,
		xpath("//button[contains(., '기본모드')]"),
		xpath("//button[contains(., '모드')]"),
		xpath("//div[contains(@class, 'mode')]//button"),
		css("button[class*='mode']"),
		css("[class*='mode-selector'] button"),
		css("button[aria-label*='모드']"),
		css("button[aria-label*='에디터']"),
	); err != nil {
		p.logf("  ⚠️ 모드 선택 버튼 미발견 - 기본 모드로 진행")
		return false
	}
	if pause(ctx, 1500*time.Millisecond) != nil {
		return false
	}

	if _, err := clickFirst(ctx, 3*time.Second,
		xpath("//button[normalize-space(.)='마크다운']"),
		xpath("//a[normalize-space(.)='마크다운']"),
		xpath("//li[normalize-space(.)='마크다운']"),
		xpath("//*[@role='option' and contains(., '마크다운')]"),
		xpath("//*[@role='menuitem' and contains(., '마크다운')]"),
		css("[data-mode='markdown']"),
		css("[data-value='markdown']"),
		css(".mode-markdown"),
	); err == nil {
		p.logf("  ✅ 마크다운 모드로 전환 완료")
		return true
	}
	if ok, _ := eval[bool](ctx, markdownFallbackScript); ok {
		p.logf("  ✅ 마크다운 모드로 전환 완료 (JS 폴백)")
		return true
	}
	p.logf("  ⚠️ 마크다운 옵션 미발견 - 기본 모드로 진행")
	return false
}

const dropImageScript = `(function(b64, name, mime) {
	var frame = document.querySelector("#editor-tistory_ifr, iframe[id*='tistory'], iframe[id*='editor'], iframe.mce-edit-area");
	var doc = frame ? (frame.contentDocument || frame.contentWindow.document) : null;
	if (!doc) return false;
	var body = doc.querySelector("body#tinymce, body.mce-content-body, body[contenteditable='true']") || doc.body;
	if (!body) return false;
	var binary = atob(b64);
	var bytes = new Uint8Array(binary.length);
	for (var i = 0; i < binary.length; i++) bytes[i] = binary.charCodeAt(i);
	var file = new File([new Blob([bytes], {type: mime})], name, {type: mime});
	var dt = new DataTransfer();
	dt.items.add(file);
	body.focus();
	body.dispatchEvent(new DragEvent('drop', {bubbles: true, cancelable: true, dataTransfer: dt}));
	return true;
})(%s, %s, %s)`

const attachScript = `(function() {
	var el = document.querySelector('[aria-label="첨부"]') || document.getElementById('attach-layer-btn');
	if (!el) return false;
	el.click();
	return true;
})()`

func imageMIME(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	}
	return "image/jpeg"
}

func (p *Publisher) uploadImage(ctx context.Context, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		p.logf("  이미지 없음: %s", path)
		return false
	}
	name := filepath.Base(abs)
	p.logf("  이미지 업로드 시도: %s", name)

	script := fmt.Sprintf(dropImageScript, jsString(base64.StdEncoding.EncodeToString(b)), jsString(name), jsString(imageMIME(name)))
	if ok, err := eval[bool](ctx, script); ok {
		pause(ctx, 4*time.Second)
		p.logf("  ✅ 이미지 업로드 완료 (DataTransfer drop): %s", name)
		return true
	} else if err != nil {
		p.logf("  DataTransfer drop 실패: %v", err)
	}

	if clicked, _ := eval[bool](ctx, attachScript); clicked {
		p.logf("  attach-layer-btn(첨부) 클릭 완료")
		pause(ctx, 2*time.Second)
	}
	for _, s := range []selector{
		css("#attach-image"),
		css("input[type='file'][accept*='image']"),
		css("input[type='file']"),
	} {
		tctx, cancel := context.WithTimeout(ctx, 8*time.Second)
		err := chromedp.Run(tctx, chromedp.SetUploadFiles(s.query, []string{abs}, s.by))
		cancel()
		if err != nil {
			continue
		}
		pause(ctx, 5*time.Second)
		if _, err := clickFirst(ctx, 3*time.Second,
			xpath("//button[normalize-space(.)='확인']"),
			xpath("//button[normalize-space(.)='삽입']"),
			css(".btn-confirm, .btn-insert, .btn-upload"),
		); err == nil {
			p.logf("  이미지 삽입 확인 클릭")
		}
		p.logf("  ✅ 이미지 업로드 완료 (%s): %s", s.query, name)
		return true
	}
	p.logf("  ⚠️ 이미지 업로드 실패 - 모든 방법 시도 완료")
	return false
}

// focusEditorScript focuses the largest visible editable area, in the page
// or in the editor iframe, and places the caret at its start or end.
const focusEditorScript = `(function(atEnd) {
	function best(doc) {
		var els = doc.querySelectorAll("[contenteditable='true'], div.ProseMirror, .ke-content, .toast-ui-editor-contents, .CodeMirror textarea, textarea.textarea_tit, body#tinymce");
		var found = null, h = 60;
		for (var i = 0; i < els.length; i++) {
			var r = els[i].getBoundingClientRect();
			if (r.height > h || els[i].id === 'tinymce') { found = els[i]; h = r.height; }
		}
		return found;
	}
	var el = best(document), doc = document;
	if (!el) {
		var frame = document.querySelector("#editor-tistory_ifr, iframe[id*='editor']");
		if (frame && frame.contentDocument) { doc = frame.contentDocument; el = best(doc) || doc.body; frame.focus(); }
	}
	if (!el) return false;
	el.focus();
	var sel = doc.getSelection ? doc.getSelection() : null;
	if (sel && el.isContentEditable) {
		var range = doc.createRange();
		range.selectNodeContents(el);
		if (atEnd) range.collapse(false);
		sel.removeAllRanges();
		sel.addRange(range);
	} else if (el.select && !atEnd) {
		el.select();
	}
	return true;
})(%t)`

const editorTextScript = `(function() {
	var frame = document.querySelector("#editor-tistory_ifr, iframe[id*='editor']");
	var doc = frame && frame.contentDocument ? frame.contentDocument : document;
	var el = doc.activeElement;
	if (!el) return 0;
	return ((el.value !== undefined ? el.value : el.innerText) || '').length;
})()`

const insertTextScript = `(function(text) {
	var els = document.querySelectorAll('[contenteditable="true"], div.ProseMirror, .ke-content, .toast-ui-editor-contents');
	var best = null, h = 80;
	for (var i = 0; i < els.length; i++) {
		if (els[i].offsetHeight > h && els[i].offsetParent !== null) { best = els[i]; h = els[i].offsetHeight; }
	}
	if (!best) return false;
	best.focus();
	try { if (document.execCommand && document.execCommand('insertText', false, text)) return true; } catch (e) {}
	best.innerText = text;
	best.dispatchEvent(new Event('input', {bubbles: true}));
	best.dispatchEvent(new Event('change', {bubbles: true}));
	return true;
})(%s)`

// typeInto replaces the selection of the focused element with text, the way a
// paste would.
func typeInto(ctx context.Context, text string) error {
	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return input.InsertText(text).Do(ctx)
	}))
}

func (p *Publisher) fillTitle(ctx context.Context, title string) error {
	for _, s := range titleInputs {
		if !present(ctx, time.Second, s) {
			continue
		}
		var value string
		err := chromedp.Run(ctx,
			chromedp.Click(s.query, s.by),
			chromedp.Clear(s.query, s.by),
			chromedp.ActionFunc(func(ctx context.Context) error { return input.InsertText(title).Do(ctx) }),
			chromedp.Value(s.query, &value, s.by),
		)
		if err != nil {
			return err
		}
		if value == "" {
			p.logf("  제목 붙여넣기 후 값 비어있음 → SendKeys 재시도")
			return chromedp.Run(ctx, chromedp.SendKeys(s.query, title, s.by))
		}
		p.logf("  제목 입력 완료: %s", textutil.Truncate(value, 40))
		return nil
	}
	return errNotFound
}

func (p *Publisher) fillBody(ctx context.Context, body string) bool {
	if ok, _ := eval[bool](ctx, fmt.Sprintf(focusEditorScript, false)); ok {
		if err := typeInto(ctx, body); err == nil {
			pause(ctx, time.Second)
			if n, _ := eval[int](ctx, editorTextScript); n > 10 {
				p.logf("  본문 입력 완료 (%d자)", n)
				return true
			}
		}
	}
	if ok, _ := eval[bool](ctx, fmt.Sprintf(insertTextScript, jsString(body))); ok {
		p.logf("  본문 입력 완료 (JS fallback)")
		return true
	}
	p.logf("  본문 입력칸 미발견")
	return false
}

func (p *Publisher) appendHashtags(ctx context.Context, tags string) {
	ok, _ := eval[bool](ctx, fmt.Sprintf(focusEditorScript, true))
	if !ok {
		p.logf("  ⚠️ 해시태그 삽입 에디터 미발견 - 건너뜀")
		return
	}
	if err := typeInto(ctx, "\n\n"+tags); err != nil {
		p.logf("  ⚠️ 해시태그 삽입 실패: %v", err)
		return
	}
	p.logf("  해시태그 삽입 완료")
}

const saveScript = `(function() {
	var b = document.querySelector("button.btn-save, button[data-t='save'], button.saveBtn");
	if (!b) return false;
	b.click();
	return true;
})()`

// write fills the editor with post, waits for a go-ahead and publishes.
func (p *Publisher) write(ctx context.Context, post *Post) (string, error) {
	if err := p.navigate(ctx, p.NewPostURL(), 3*time.Second); err != nil {
		return "", err
	}
	ready := p.waitForEditor(ctx, 25*time.Second)
	if u := location(ctx); !ready || !strings.Contains(u, "tistory.com/manage/newpost") {
		p.logf("  에디터 로딩 실패 (현재 URL: %s)", u)
		p.notify(ctx, fmt.Sprintf("❌ 에디터 로딩 실패: %s\n현재 URL: %s", post.Title, u))
		return "", fmt.Errorf("%w: 에디터 로딩 실패", ErrPublish)
	}
	p.logf("  에디터 준비 완료")

	category := p.Category
	if category == "" {
		category = DefaultCategory
	}
	if !p.setCategory(ctx, category) {
		p.logf("  ⚠️ 카테고리 설정 실패 - 계속 진행")
	}
	p.switchToMarkdown(ctx)

	if post.Image != "" {
		if !p.uploadImage(ctx, post.Image) {
			p.logf("  ⚠️ 이미지 업로드 실패 - 본문만 작성 계속")
		}
	} else {
		p.logf("  이미지 없음 - 본문만 작성")
	}

	if err := p.fillTitle(ctx, post.Title); err != nil {
		p.logf("  제목 입력칸 미발견: %v", err)
		p.notify(ctx, "❌ 제목 입력칸 미발견: "+post.Title)
		return "", fmt.Errorf("%w: 제목 입력칸 미발견", ErrPublish)
	}
	pause(ctx, 2*time.Second)

	if !p.fillBody(ctx, post.Body) {
		p.notify(ctx, "❌ 본문 입력칸 미발견: "+post.Title)
		return "", fmt.Errorf("%w: 본문 입력칸 미발견", ErrPublish)
	}
	pause(ctx, 2*time.Second)

	tags := Hashtags(post.Title, post.Body)
	p.logf("  해시태그 생성: %s", tags)
	p.appendHashtags(ctx, tags)

	saved, _ := eval[bool](ctx, saveScript)
	step := "글쓰기"
	if saved {
		pause(ctx, 3*time.Second)
		p.logf("  임시저장 완료")
		step = "임시저장"
	} else {
		p.logf("  임시저장 버튼 미발견 - 임시저장 없이 발행 진행")
	}

	p.notify(ctx, fmt.Sprintf("📝 %s 완료: %s\n미리보기: %s\n\n포스팅하려면 '포스팅' 이라고 입력하세요", step, post.Title, post.Preview()))
	p.logf("Telegram에서 '포스팅' 대기 중 (최대 10분)...")
	ok, err := p.confirm(ctx, "포스팅")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("포스팅 확인 타임아웃 (10분)")
	}

	u, err := p.publish(ctx, post.Title)
	if err != nil {
		return "", err
	}
	p.notify(ctx, fmt.Sprintf("✅ 포스팅 완료: %s\n%s", post.Title, u))
	return u, nil
}

var (
	publishLayerButtons = []selector{
		css("#publish-layer-btn"),
		css("#publish-layer-btn-open"),
		css("#publish-layer-btn-open-btn"),
	}
	publishButtons = []selector{
		css("#publish-btn"),
		css("button.btn-publish"),
		xpath("//button[normalize-space(.)='발행']"),
		xpath("//button[normalize-space(.)='발행하기']"),
		xpath("//button[normalize-space(.)='지금 발행']"),
		xpath("//a[normalize-space(.)='발행']"),
		xpath("//button[contains(@class,'publish') and not(contains(@id,'layer'))]"),
		xpath("//*[@role='button' and normalize-space(.)='발행']"),
		css("[data-action='publish'], .publish-btn"),
		xpath("//button//span[normalize-space(.)='발행']/.."),
		css("[data-testid*='publish'], [aria-label*='발행']"),
		css(".publish-area button, .post-publish-btn"),
	}
	confirmButtons = []selector{
		xpath("//button[contains(., '확인')]"),
		xpath("//button[contains(., '완료')]"),
		xpath("//button[contains(., '발행하기')]"),
		xpath("//div[contains(@class,'modal')]//button[contains(., '확인') or contains(., '발행')]"),
	}
)

const publicScript = `(function() {
	var el = document.getElementById('open20') || document.querySelector("input[type='radio'][value='20']");
	if (!el) return false;
	el.click();
	return true;
})()`

const publishFallbackScript = `(function() {
	function find(root) {
		var c = root.querySelectorAll('button, a, [role="button"], [class*="btn"], [id*="publish"]');
		for (var i = 0; i < c.length; i++) {
			var el = c[i], t = (el.innerText || el.textContent || '').trim();
			if (el.offsetParent === null || (el.id || '').indexOf('layer') >= 0) continue;
			if (/발행|공개|게시/.test(t) && t.length < 20) return el;
			if (el.id && /publish/i.test(el.id)) return el;
		}
		var all = root.querySelectorAll('*');
		for (var i = 0; i < Math.min(all.length, 50); i++) {
			if (all[i].shadowRoot) { var f = find(all[i].shadowRoot); if (f) return f; }
		}
		return null;
	}
	var el = find(document);
	if (!el) return false;
	el.click();
	return true;
})()`

// publish opens the publish layer, makes the post public and clicks the
// publish button. It returns the URL the editor moved to.
func (p *Publisher) publish(ctx context.Context, title string) (string, error) {
	before := location(ctx)

	if s, err := clickFirst(ctx, 3*time.Second, publishLayerButtons...); err == nil {
		p.logf("  발행 패널 열기: %s", s.query)
		pause(ctx, 2*time.Second)
		if ok, _ := eval[bool](ctx, publicScript); ok {
			p.logf("  공개 설정 선택")
			pause(ctx, time.Second)
		}
	}

	s, err := clickFirst(ctx, 5*time.Second, publishButtons...)
	switch {
	case err == nil:
		p.logf("  발행 버튼 클릭: %s", s.query)
	case ctx.Err() != nil:
		return "", ctx.Err()
	default:
		clicked, _ := eval[bool](ctx, publishFallbackScript)
		if !clicked {
			p.reportFailure(ctx, title)
			return "", fmt.Errorf("%w: 발행 버튼을 찾을 수 없습니다", ErrPublish)
		}
		p.logf("  발행 버튼 클릭 (JS 폴백)")
	}
	pause(ctx, 4*time.Second)

	if _, err := clickFirst(ctx, 5*time.Second, confirmButtons...); err == nil {
		pause(ctx, 3*time.Second)
	}

	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		if u := location(ctx); u != "" && u != before {
			p.logf("  발행 성공 → %s", u)
			return u, nil
		}
		if err := pause(ctx, 500*time.Millisecond); err != nil {
			return "", err
		}
	}
	p.notify(ctx, fmt.Sprintf("⚠️ 발행 실패: %s\n수동으로 블로그를 확인해 주세요.", title))
	return "", fmt.Errorf("%w: 발행 후 페이지가 바뀌지 않았습니다", ErrPublish)
}

// reportFailure saves a DOM dump and a screenshot and notifies about the
// failed publish.
func (p *Publisher) reportFailure(ctx context.Context, title string) {
	if path, err := p.saveDump(ctx); err != nil {
		p.logf("  DOM 덤프 실패: %v", err)
	} else {
		p.logf("  DOM 덤프 저장: %s", path)
	}

	var shot []byte
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&shot, 90)); err != nil {
		p.logf("  스크린샷 실패: %v", err)
	} else {
		path := filepath.Join(p.DumpDir, ScreenshotFile)
		if err := atomicio.WriteFile(path, shot, 0o644); err != nil {
			p.logf("  스크린샷 저장 실패: %v", err)
		} else {
			p.logf("  스크린샷 저장: %s", path)
		}
	}

	p.logf("  발행 실패: 발행 버튼을 찾을 수 없습니다.")
	p.notify(ctx, fmt.Sprintf("⚠️ 발행 실패: %s\n발행 버튼을 찾을 수 없습니다.", title))
}

func (p *Publisher) saveDump(ctx context.Context) (string, error) {
	els, err := dumpElements(ctx)
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(els, "", "  ")
	if err != nil {
		return "", err
	}
	if p.DumpDir != "" {
		if err := os.MkdirAll(p.DumpDir, 0o755); err != nil {
			return "", err
		}
	}
	path := filepath.Join(p.DumpDir, DumpFile)
	return path, atomicio.WriteFile(path, b, 0o644)
}
