package services

import (
	"sort"

	"github.com/xvierd/pomo/internal/domain"
)

// mergeSessions reconciles the local ledger with one another process saved.
// base holds the ids both sides last agreed on: a session only one side has
// was added there if it is missing from base, and removed on the other side
// if it is in base. keepOurs names sessions changed locally since then; for
// those the local copy wins, even over a removal.
func mergeSessions(ours, theirs []domain.Session, base map[string]struct{}, keepOurs func(id string) bool) []domain.Session {
	local := make(map[string]domain.Session, len(ours))
	for _, sess := range ours {
		local[sess.ID] = sess
	}

	seen := make(map[string]struct{}, len(theirs))
	out := make([]domain.Session, 0, len(ours)+len(theirs))
	for _, sess := range theirs {
		seen[sess.ID] = struct{}{}
		mine, ok := local[sess.ID]
		_, shared := base[sess.ID]
		switch {
		case ok && keepOurs(sess.ID):
			out = append(out, mine)
		case ok, !shared:
			out = append(out, sess)
		}
	}
	for _, sess := range ours {
		if _, ok := seen[sess.ID]; ok {
			continue
		}
		if _, shared := base[sess.ID]; !shared || keepOurs(sess.ID) {
			out = append(out, sess)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}
