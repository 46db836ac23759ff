// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package tistory

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.geekbrox.name/autoblog/internal/api/telegram"
	"go.geekbrox.name/autoblog/internal/ctxutil"
	"go.geekbrox.name/autoblog/internal/logger"
	"go.geekbrox.name/autoblog/internal/textutil"
)

const (
	pollTimeout  = 25 * time.Second
	pollInterval = 2 * time.Second
	errorBackoff = 5 * time.Second
	backlogLimit = 100
)

// Confirmer waits for a human to confirm a step by sending a keyword to the
// configured Telegram chat.
type Confirmer struct {
	Telegram *telegram.Client
	// Stdin is read instead when Telegram is not configured.
	Stdin io.Reader
	Logf  logger.Logf

	// PollTimeout and PollInterval default to 25 and 2 seconds.
	PollTimeout  time.Duration
	PollInterval time.Duration
}

func (c *Confirmer) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// WaitKeyword blocks until a message containing keyword arrives from the
// configured chat, or timeout passes. Messages sent before the call are
// ignored. It reports whether the keyword was received.
func (c *Confirmer) WaitKeyword(ctx context.Context, keyword string, timeout time.Duration) (bool, error) {
	if c.Telegram == nil || !c.Telegram.Configured() {
		return c.waitStdin(ctx)
	}

	longPoll, interval := c.PollTimeout, c.PollInterval
	if longPoll == 0 {
		longPoll = pollTimeout
	}
	if interval == 0 {
		interval = pollInterval
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	var offset int64
	backlog, err := c.Telegram.GetUpdates(ctx, 0, 0, backlogLimit)
	switch {
	case err != nil:
		c.logf("  TG 초기 폴링 실패: %v", err)
	case len(backlog) > 0:
		offset = backlog[len(backlog)-1].UpdateID + 1
		c.logf("  TG 대기 시작 (offset=%d, 이전 메시지 무시)", offset)
	default:
		c.logf("  TG 대기 시작 (기존 메시지 없음)")
	}

	c.logf("  '%s' 입력 대기 중...", keyword)
	chatID := c.Telegram.ChatID()
	for {
		updates, err := c.Telegram.GetUpdates(ctx, offset, longPoll, backlogLimit)
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			c.logf("  TG 폴링 오류: %v", err)
			if !ctxutil.Sleep(ctx, errorBackoff) {
				break
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil {
				continue
			}
			from := strconv.FormatInt(u.Message.Chat.ID, 10)
			if from != chatID {
				c.logf("  TG chat_id 불일치: 수신=%s, 설정=%s", from, chatID)
				continue
			}
			text := strings.TrimSpace(u.Message.Text)
			c.logf("  TG 수신: %q", textutil.Truncate(text, 40))
			if strings.Contains(text, keyword) {
				ack := fmt.Sprintf("✅ '%s' 수신했습니다. 진행합니다.", keyword)
				if err := c.Telegram.NotifyPlain(context.WithoutCancel(ctx), ack); err != nil {
					c.logf("Telegram 전송 실패: %v", err)
				}
				return true, nil
			}
		}

		if !ctxutil.Sleep(ctx, interval) {
			break
		}
	}

	if err := parent.Err(); err != nil {
		return false, err
	}
	c.logf("  '%s' 타임아웃", keyword)
	return false, nil
}

func (c *Confirmer) waitStdin(ctx context.Context) (bool, error) {
	if c.Stdin == nil {
		return false, fmt.Errorf("Telegram 미설정, 입력 없음")
	}
	c.logf("Telegram 미설정. 직접 완료 후 Enter ▶ ")
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(c.Stdin).ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- err
	}()
	select {
	case err := <-done:
		return err == nil, err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
