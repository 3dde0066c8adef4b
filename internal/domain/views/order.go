// Package views projects derived records into the orderings and groupings
// shown by the record table, the exclusion table and the CSV export.
package views

import (
	"cmp"
	"slices"

	"github.com/okian/polo/internal/domain/derive"
	"github.com/okian/polo/internal/domain/gameclock"
)

// Policy selects the sort directions of a display ordering. The zero value is
// period ascending with the clock counting down, i.e. match order.
type Policy struct {
	PeriodDescending bool `json:"periodDescending"`
	ClockAscending   bool `json:"clockAscending"`
}

// Preset policies.
var (
	// ScreenPolicy shows the latest period first.
	ScreenPolicy = Policy{PeriodDescending: true}
	// ExportPolicy lists periods in match order.
	ExportPolicy = Policy{}
)

// DisplayOrder returns a reordered copy of derived: period, then seconds
// remaining, then chronological rank ascending. Derived values are untouched.
func DisplayOrder(derived []derive.Record, p Policy) []derive.Record {
	out := slices.Clone(derived)
	slices.SortStableFunc(out, func(a, b derive.Record) int {
		if c := cmp.Compare(a.Period, b.Period); c != 0 {
			if p.PeriodDescending {
				return -c
			}
			return c
		}
		// Clock counts down: more time remaining means earlier in the period.
		if c := cmp.Compare(gameclock.SecondsRemaining(b.Clock), gameclock.SecondsRemaining(a.Clock)); c != 0 {
			if p.ClockAscending {
				return -c
			}
			return c
		}
		return cmp.Compare(a.Rank, b.Rank)
	})
	return out
}
