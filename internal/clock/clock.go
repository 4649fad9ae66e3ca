// Package clock provides the date/time collaborator used for sale times,
// invoice dates and archival dates.
package clock

import (
	"sync"
	"time"
)

// DateLayout is the canonical day key used across the ledger.
const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// Today formats the clock's current day as a DateLayout string.
func Today(c Clock) string {
	return c.Now().In(c.Location()).Format(DateLayout)
}

type System struct {
	loc *time.Location
}

func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.Local
	}
	return System{loc: loc}
}

func (s System) Now() time.Time           { return time.Now().In(s.loc) }
func (s System) Location() *time.Location { return s.loc }

// Fixed is a settable clock for tests and replays.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Location() *time.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now.Location()
}

func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	f.now = now
	f.mu.Unlock()
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
