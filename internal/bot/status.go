// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.geekbrox.name/autoblog/internal/textutil"
)

// Dirs are the directories the pipeline commands read and write.
type Dirs struct {
	Posts     string // drafts waiting to be published
	Published string // published drafts
	Images    string
}

func mdFiles(dir string) []string {
	files, _ := filepath.Glob(filepath.Join(dir, "*.md"))
	slices.Sort(files)
	return files
}

func countFiles(dir string) int {
	files, _ := filepath.Glob(filepath.Join(dir, "*.*"))
	return len(files)
}

func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// postTitle returns the "# " heading of the post at path, or its file name.
func postTitle(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return stem(path)
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	if s.Scan() {
		if line := s.Text(); strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return stem(path)
}

func (b *Bot) statusText() string {
	pending := mdFiles(b.dirs.Posts)
	done := mdFiles(b.dirs.Published)
	waiting := "⚪️ 대기 초안 없음"
	if len(pending) > 0 {
		waiting = "🟢 대기 중인 초안 있음"
	}
	return fmt.Sprintf("⚙️ *GeekBrox 블로그 자동화 현황* (%s)\n\n"+
		"📝 포스팅 대기: *%d개*\n"+
		"✅ 게시 완료: *%d개*\n"+
		"🖼️ 이미지 보유: *%d개*\n\n%s",
		b.now().Format("2006-01-02 15:04"), len(pending), len(done), countFiles(b.dirs.Images), waiting)
}

// summaryText lists what was published today, recently and what is waiting.
func (b *Bot) summaryText() string {
	pending := mdFiles(b.dirs.Posts)
	done := mdFiles(b.dirs.Published)
	today := b.now().Format(time.DateOnly)

	lines := []string{b.statusText(), ""}

	var doneToday []string
	for _, p := range done {
		fi, err := os.Stat(p)
		if err == nil && fi.ModTime().Format(time.DateOnly) == today {
			doneToday = append(doneToday, p)
		}
	}
	if len(doneToday) > 0 {
		lines = append(lines, fmt.Sprintf("📅 *오늘 게시 완료* (%d개)", len(doneToday)))
		for _, p := range doneToday[:min(len(doneToday), 15)] {
			lines = append(lines, "  • "+textutil.Truncate(postTitle(p), 50))
		}
		lines = append(lines, "")
	}

	lines = append(lines, fmt.Sprintf("✅ *게시 완료* (총 %d개, 최근 10개)", len(done)))
	recent := done[max(0, len(done)-10):]
	for i := len(recent) - 1; i >= 0; i-- {
		lines = append(lines, "  • "+textutil.Truncate(stem(recent[i]), 45))
	}
	lines = append(lines, "")

	lines = append(lines, fmt.Sprintf("📝 *포스팅 대기* (%d개)", len(pending)))
	for _, p := range pending[:min(len(pending), 10)] {
		lines = append(lines, "  • "+textutil.Truncate(stem(p), 45))
	}
	if len(pending) > 10 {
		lines = append(lines, fmt.Sprintf("  ... 외 %d개", len(pending)-10))
	}
	return strings.Join(lines, "\n")
}

func (b *Bot) doneListText(ctx context.Context) string {
	done := mdFiles(b.dirs.Published)
	if len(done) == 0 {
		return "📭 완료된 게시글이 없습니다."
	}
	slices.Reverse(done)
	lines := []string{fmt.Sprintf("📰 게시 완료 목록 *(%d개)*\n", len(done))}
	for i, p := range done[:min(len(done), 15)] {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, stem(p)))
	}
	if b.feed != nil {
		if titles, err := b.feed.Titles(ctx); err != nil {
			b.logf("bot: reading blog feed: %v", err)
		} else {
			lines = append(lines, fmt.Sprintf("\n🌐 블로그 피드 최신 글: *%d개*", len(titles)))
		}
	}
	return strings.Join(lines, "\n")
}

func (b *Bot) rateStatusText() string {
	rl := b.tracker.Status()
	running := "⏸ 큐 대기 중"
	if b.queue.isRunning() {
		running = "🔄 큐 처리 중"
	}
	return strings.Join([]string{
		"📊 *Rate Limit & 큐 현황*\n",
		fmt.Sprintf("%s API 상태: %s", safeIcon(rl), safeLabel(rl)),
		fmt.Sprintf("🕐 최근 60초 API 호출: *%d회*", rl.Recent),
		fmt.Sprintf("⚡ 최근 5초 burst: *%d회*", rl.Burst),
		fmt.Sprintf("⏳ 권장 딜레이: *%d초*", int(rl.Delay/time.Second)),
		"",
		fmt.Sprintf("📋 대기 큐: *%d개*", b.queue.len()),
		"상태: " + running,
		fmt.Sprintf("글 간 딜레이: *%d초*", b.delaySeconds()),
	}, "\n")
}
