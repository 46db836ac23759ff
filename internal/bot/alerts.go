// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tg "go.geekbrox.name/autoblog/internal/api/telegram"
	"go.geekbrox.name/autoblog/internal/metrics"
	"go.geekbrox.name/autoblog/internal/sharedstate"
)

// StateChanged is called with the shared state every time another process
// saves it. Critical conflicts that appeared since the previous call are
// reported to the allowed chat with buttons to inspect or resolve them. The
// first call only remembers the conflicts that already exist, so restarting
// the bot does not repeat old alerts.
func (b *Bot) StateChanged(ctx context.Context, st *sharedstate.State) {
	metrics.SetUnresolvedConflicts(len(st.UnresolvedConflicts))

	var fresh []sharedstate.Conflict
	b.seenMu.Lock()
	seen := make(map[string]bool, len(st.UnresolvedConflicts))
	for _, c := range st.UnresolvedConflicts {
		if c.Resolved {
			continue
		}
		seen[c.ID] = true
		if b.seenReady && !b.seen[c.ID] && c.Severity == sharedstate.Critical {
			fresh = append(fresh, c)
		}
	}
	b.seen, b.seenReady = seen, true
	b.seenMu.Unlock()

	if len(fresh) == 0 {
		return
	}
	if b.allowed == "" {
		b.logf("bot: %d new conflicts, but no chat to alert", len(fresh))
		return
	}
	b.send(ctx, b.allowed, conflictAlert(fresh), tg.Keyboard{
		tg.Row(tg.Callback("🚨 충돌 확인", cbConflicts), tg.Callback("✅ 충돌 해제", cbResolveConflicts)),
		tg.Row(btnMenu),
	})
}

func conflictAlert(conflicts []sharedstate.Conflict) string {
	lines := []string{fmt.Sprintf("🚨 *새 파일 충돌 %d건*\n", len(conflicts))}
	for _, c := range conflicts {
		names := make([]string, 0, len(c.OverlappingFiles))
		for _, f := range c.OverlappingFiles {
			names = append(names, filepath.Base(f))
		}
		lines = append(lines, fmt.Sprintf("• %s %s ↔ %s %s: `%s`",
			c.ActorA.Icon(), c.ActorA.Label(), c.ActorB.Icon(), c.ActorB.Label(), strings.Join(names, ", ")))
	}
	return strings.Join(lines, "\n")
}
