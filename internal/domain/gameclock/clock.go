// Package gameclock parses, validates and formats the countdown clock values
// entered on the scorer's numeric keypad.
package gameclock

import (
	"fmt"
	"regexp"
	"strconv"
)

// Period length limits.
const (
	MaxMinutes       = 8
	secondsPerMinute = 60
	MaxSeconds       = MaxMinutes * secondsPerMinute
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// Clock is a validated time remaining in a period.
type Clock struct {
	Minutes int
	Seconds int
}

// Parse validates a committed "M:SS" clock string.
func Parse(s string) (Clock, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return Clock{}, fmt.Errorf("%w: %q is not M:SS", ErrInvalidClock, s)
	}
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	if seconds >= secondsPerMinute {
		return Clock{}, fmt.Errorf("%w: seconds must be 59 or less", ErrInvalidClock)
	}
	c := Clock{Minutes: minutes, Seconds: seconds}
	if c.Total() > MaxSeconds {
		return Clock{}, fmt.Errorf("%w: time must be within %d:00", ErrInvalidClock, MaxMinutes)
	}
	return c, nil
}

// Total returns the clock as seconds remaining.
func (c Clock) Total() int {
	return c.Minutes*secondsPerMinute + c.Seconds
}

// String renders the canonical M:SS form.
func (c Clock) String() string {
	return fmt.Sprintf("%d:%02d", c.Minutes, c.Seconds)
}

// SecondsRemaining decodes s for ordering purposes. Unparseable values sort as 0:00.
func SecondsRemaining(s string) int {
	c, err := Parse(s)
	if err != nil {
		return 0
	}
	return c.Total()
}
