// Package ledger holds the bookkeeping rules for the active day: inventory,
// transaction journals, catalog registries and day archival.
//
// A Book mutates the State it wraps in place. Callers that need
// all-or-nothing semantics hand it a private copy and discard the copy when
// an operation fails.
package ledger

import (
	"strings"
	"time"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/clock"
	"bakeryledger/backend/internal/domain"
)

type Book struct {
	state *domain.State
	clock clock.Clock
}

func NewBook(state *domain.State, clk clock.Clock) *Book {
	if clk == nil {
		clk = clock.NewSystem(time.Local)
	}
	return &Book{state: state, clock: clk}
}

func (b *Book) State() *domain.State {
	return b.state
}

func (b *Book) now() time.Time {
	return b.clock.Now().In(b.clock.Location())
}

func (b *Book) today() string {
	return clock.Today(b.clock)
}

// dateOrToday validates an optional YYYY-MM-DD date.
func (b *Book) dateOrToday(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return b.today(), nil
	}
	if _, err := time.ParseInLocation(clock.DateLayout, date, b.clock.Location()); err != nil {
		return "", apperror.NewValidation("date must be YYYY-MM-DD").WithDetail("date", date)
	}
	return date, nil
}

func indexByID[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

func removeAt[T any](items []T, i int) []T {
	return append(items[:i], items[i+1:]...)
}
