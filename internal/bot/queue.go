// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.geekbrox.name/autoblog/internal/metrics"
	"go.geekbrox.name/autoblog/internal/textutil"
)

const (
	// DefaultQueueDelay is the pause between queued tasks.
	DefaultQueueDelay = 30 * time.Second

	trackedCalls = 20
	safeRecent   = 8
	safeBurst    = 2
)

// RateStatus describes how busy the language model API has been recently.
type RateStatus struct {
	Recent int  `json:"recent"` // calls in the last minute
	Burst  int  `json:"burst"`  // calls in the last five seconds
	Safe   bool `json:"safe"`
	// Delay is the recommended pause before the next call.
	Delay time.Duration `json:"delay"`
}

// Tracker remembers the times of the last language model calls.
type Tracker struct {
	delay time.Duration
	now   func() time.Time

	mu    sync.Mutex
	calls []time.Time
}

// NewTracker returns a Tracker that recommends at least delay between calls.
func NewTracker(delay time.Duration, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{delay: delay, now: now}
}

// Record notes a call made now.
func (t *Tracker) Record() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, t.now())
	if len(t.calls) > trackedCalls {
		t.calls = t.calls[len(t.calls)-trackedCalls:]
	}
	metrics.SetRecentAPICalls(t.countSince(time.Minute))
}

// Status reports the current call rate.
func (t *Tracker) Status() RateStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	recent, burst := t.countSince(time.Minute), t.countSince(5*time.Second)
	delay := time.Duration(60/max(1, safeRecent-recent)) * time.Second
	return RateStatus{
		Recent: recent,
		Burst:  burst,
		Safe:   recent < safeRecent && burst < safeBurst,
		Delay:  max(t.delay, delay),
	}
}

func (t *Tracker) countSince(d time.Duration) int {
	now := t.now()
	var n int
	for _, c := range t.calls {
		if now.Sub(c) < d {
			n++
		}
	}
	return n
}

// Task is a queued command run.
type Task struct {
	Label string
	Cmd   string
	Args  []string
	// Files are registered in the shared state while the task runs.
	Files []string
}

// queue holds tasks waiting to be run one after another.
type queue struct {
	mu      sync.Mutex
	tasks   []Task
	running bool
}

func (q *queue) push(t Task) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
	metrics.SetQueueLength(len(q.tasks))
	return len(q.tasks)
}

func (q *queue) pop() (Task, int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return Task{}, 0, false
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	metrics.SetQueueLength(len(q.tasks))
	return t, len(q.tasks), true
}

// clear drops every waiting task and returns how many there were.
func (q *queue) clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.tasks)
	q.tasks = nil
	metrics.SetQueueLength(0)
	return n
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *queue) isRunning() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// claim marks the queue as being drained. It reports false if a worker is
// already running.
func (q *queue) claim() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return false
	}
	q.running = true
	return true
}

func (q *queue) release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.running = false
}

// finish releases the queue if it is empty. It reports false if tasks
// arrived in the meantime and the worker should go on.
func (q *queue) finish() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) > 0 {
		return false
	}
	q.running = false
	return true
}

// enqueue adds t to the queue and starts a worker reporting to chatID if
// none is running.
func (b *Bot) enqueue(ctx context.Context, chatID string, t Task) int {
	n := b.queue.push(t)
	if b.queue.claim() {
		b.goroutine(func() { b.drain(ctx, chatID) })
	}
	return n
}

// drain runs queued tasks in order, pausing between them.
func (b *Bot) drain(ctx context.Context, chatID string) {
	total := b.queue.len()
	var completed int
	for {
		t, remaining, ok := b.queue.pop()
		if !ok {
			if b.queue.finish() {
				break
			}
			continue
		}
		completed++
		// Tasks added while draining extend the run.
		total = max(total, completed+remaining)

		b.send(ctx, chatID, fmt.Sprintf("▶️ *작업 시작* [%d/%d]\n📄 %s\n⏳ 남은 작업: %d개", completed, total, t.Label, remaining), nil)

		b.tracker.Record()
		res := b.runTracked(ctx, t)

		icon := "✅"
		if !res.OK {
			icon = "❌"
		}
		text := fmt.Sprintf("%s *완료* [%d/%d]: %s\n\n```\n%s\n```", icon, completed, total, t.Label, textutil.Truncate(res.Output, 600))
		if remaining > 0 {
			text += fmt.Sprintf("\n\n⏳ 다음 작업까지 %d초 대기 중...", int(b.queueDelay/time.Second))
		}
		b.send(ctx, chatID, text, nil)

		if remaining > 0 && !b.sleep(ctx, b.queueDelay) {
			b.queue.release()
			return
		}
	}
	if ctx.Err() != nil {
		return
	}
	b.send(ctx, chatID, fmt.Sprintf("🎉 *모든 작업 완료!* (총 %d개)\nRate Limit 없이 안전하게 처리되었습니다.", completed), nil)
}
