package services

import (
	"testing"
	"time"

	"github.com/xvierd/pomo/internal/domain"
)

func TestMergeSessions(t *testing.T) {
	at := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	session := func(id string, minute int, d domain.Disposition) domain.Session {
		return domain.Session{ID: id, Phase: domain.PhaseWork, StartedAt: at.Add(time.Duration(minute) * time.Minute), Disposition: d}
	}
	ids := func(sessions []domain.Session) []string {
		var out []string
		for _, s := range sessions {
			out = append(out, s.ID+":"+string(s.Disposition))
		}
		return out
	}
	set := func(ids ...string) map[string]struct{} {
		m := make(map[string]struct{})
		for _, id := range ids {
			m[id] = struct{}{}
		}
		return m
	}

	tests := []struct {
		name   string
		ours   []domain.Session
		theirs []domain.Session
		base   map[string]struct{}
		keep   map[string]struct{}
		want   []string
	}{
		{
			name:   "additions on both sides",
			ours:   []domain.Session{session("b", 2, domain.DispositionOpen), session("a", 0, domain.DispositionCompleted)},
			theirs: []domain.Session{session("c", 1, domain.DispositionCompleted), session("a", 0, domain.DispositionCompleted)},
			base:   set("a"),
			keep:   set("b"),
			want:   []string{"b:open", "c:completed", "a:completed"},
		},
		{
			name:   "removed by them",
			ours:   []domain.Session{session("a", 0, domain.DispositionCompleted)},
			theirs: nil,
			base:   set("a"),
			want:   nil,
		},
		{
			name:   "removed by us",
			ours:   nil,
			theirs: []domain.Session{session("a", 0, domain.DispositionCompleted)},
			base:   set("a"),
			want:   nil,
		},
		{
			name:   "changed by them",
			ours:   []domain.Session{session("a", 0, domain.DispositionOpen)},
			theirs: []domain.Session{session("a", 0, domain.DispositionAbandoned)},
			base:   set("a"),
			want:   []string{"a:abandoned"},
		},
		{
			name:   "changed by us wins",
			ours:   []domain.Session{session("a", 0, domain.DispositionCompleted)},
			theirs: []domain.Session{session("a", 0, domain.DispositionAbandoned)},
			base:   set("a"),
			keep:   set("a"),
			want:   []string{"a:completed"},
		},
		{
			name:   "changed by us survives their removal",
			ours:   []domain.Session{session("a", 0, domain.DispositionCompleted)},
			theirs: nil,
			base:   set("a"),
			keep:   set("a"),
			want:   []string{"a:completed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keep := func(id string) bool { _, ok := tt.keep[id]; return ok }
			got := ids(mergeSessions(tt.ours, tt.theirs, tt.base, keep))
			if len(got) != len(tt.want) {
				t.Fatalf("mergeSessions() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("mergeSessions() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}
