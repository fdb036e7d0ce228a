package taboo

import (
	"testing"
	"time"
)

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true

	return true
}

// fakeScheduler only moves forward when Advance is called.
type fakeScheduler struct {
	now    time.Duration
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: s.now + d, f: f}
	s.timers = append(s.timers, t)

	return t
}

func (s *fakeScheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}

	return n
}

func (s *fakeScheduler) Advance(d time.Duration) {
	end := s.now + d
	for {
		var next *fakeTimer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.at > end {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			break
		}

		s.now = next.at
		next.fired = true
		next.f()
	}
	s.now = end
}

type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) Notify(events []Event) {
	r.events = append(r.events, events...)
}

func (r *eventRecorder) has(typ EventType) bool {
	for _, e := range r.events {
		if e.Type == typ {
			return true
		}
	}

	return false
}

func testDeck(words ...string) Deck {
	deck := make(Deck, 0, len(words))
	for _, w := range words {
		deck = append(deck, Card{TargetWord: w, ForbiddenWords: []string{"x", "y"}})
	}

	return deck
}

func newTestController(t *testing.T, deck Deck, cfg Config) (*Controller, *fakeScheduler, *eventRecorder) {
	t.Helper()

	sched := &fakeScheduler{}
	rec := &eventRecorder{}
	cfg.Scheduler = sched
	cfg.Notifier = rec
	if cfg.Rand == nil {
		cfg.Rand = func(int) int { return 0 }
	}

	return NewController(deck, cfg), sched, rec
}

// mustJoin joins players given as id, name pairs.
func mustJoin(t *testing.T, c *Controller, pairs ...string) {
	t.Helper()

	for i := 0; i+1 < len(pairs); i += 2 {
		if err := c.Join(pairs[i], pairs[i+1]); err != nil {
			t.Fatalf("join %s: %v", pairs[i+1], err)
		}
	}
}

func mustStart(t *testing.T, c *Controller, host string) string {
	t.Helper()

	if err := c.StartGame(host); err != nil {
		t.Fatalf("start game: %v", err)
	}

	return c.Snapshot("").GiverID
}

func guessersOf(giver string, ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != giver {
			out = append(out, id)
		}
	}

	return out
}

func scoreOf(c *Controller, id string) int {
	for _, p := range c.Snapshot("").Players {
		if p.ID == id {
			return p.Score
		}
	}

	return -1
}

func currentWord(t *testing.T, c *Controller) string {
	t.Helper()

	snap := c.Snapshot(c.Snapshot("").GiverID)
	if snap.CurrentCard == nil {
		t.Fatal("giver has no card")
	}

	return snap.CurrentCard.TargetWord
}
