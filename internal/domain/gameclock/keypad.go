package gameclock

import (
	"fmt"
	"strconv"
)

// MaxDigits is the keypad buffer capacity.
const MaxDigits = 4

// OverflowPolicy decides what a fourth digit does when it would push the
// clock past MaxMinutes.
type OverflowPolicy int

// Overflow policies.
const (
	// OverflowDropKeystroke refuses the digit; buffer and display stay at three digits.
	OverflowDropKeystroke OverflowPolicy = iota
	// OverflowFreezeDisplay keeps the digit but the display keeps its previous value.
	OverflowFreezeDisplay
)

// DefaultOverflowPolicy is the policy used by NewKeypad.
const DefaultOverflowPolicy = OverflowDropKeystroke

// FormatBuffer renders a keypad buffer as M:SS.
//
//	""     -> 0:00
//	"5"    -> 0:05
//	"45"   -> 0:45
//	"512"  -> 5:12
//	"5123" -> 5:12 (first digit minutes, next two seconds; the fourth is held)
//
// A four-digit buffer whose minutes digit exceeds MaxMinutes returns
// ErrOverflow; the keypad's OverflowPolicy decides what happens to that digit.
func FormatBuffer(buf string) (string, error) {
	if len(buf) > MaxDigits {
		return "", ErrBufferFull
	}
	for i := 0; i < len(buf); i++ {
		if buf[i] < '0' || buf[i] > '9' {
			return "", ErrNotDigit
		}
	}
	switch len(buf) {
	case 0:
		return "0:00", nil
	case 1:
		return "0:0" + buf, nil
	case 2:
		return "0:" + buf, nil
	case 3:
		return buf[:1] + ":" + buf[1:], nil
	}
	minutes, _ := strconv.Atoi(buf[:1])
	if minutes > MaxMinutes {
		return "", fmt.Errorf("%w: %d minutes", ErrOverflow, minutes)
	}
	return buf[:1] + ":" + buf[1:3], nil
}

// Keypad accumulates clock digits one keystroke at a time.
type Keypad struct {
	buf     string
	display string
	policy  OverflowPolicy
}

// Option applies a configuration option to the Keypad.
type Option func(*Keypad)

// WithOverflowPolicy overrides DefaultOverflowPolicy.
func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(k *Keypad) {
		k.policy = p
	}
}

// NewKeypad returns an empty keypad.
func NewKeypad(opts ...Option) *Keypad {
	k := &Keypad{display: "0:00", policy: DefaultOverflowPolicy}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Press appends a digit and reformats the display.
func (k *Keypad) Press(digit byte) error {
	if digit < '0' || digit > '9' {
		return ErrNotDigit
	}
	if len(k.buf) >= MaxDigits {
		return ErrBufferFull
	}
	next := k.buf + string(digit)
	shown, err := FormatBuffer(next)
	if err != nil {
		if k.policy == OverflowFreezeDisplay {
			k.buf = next
			return nil
		}
		return err
	}
	k.buf = next
	k.display = shown
	return nil
}

// Type presses every digit of s in order, stopping at the first refused keystroke.
func (k *Keypad) Type(s string) error {
	for i := 0; i < len(s); i++ {
		if err := k.Press(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// Clear empties the buffer.
func (k *Keypad) Clear() {
	k.buf = ""
	k.display = "0:00"
}

// Buffer returns the raw digits.
func (k *Keypad) Buffer() string { return k.buf }

// Display returns the formatted clock shown to the operator.
func (k *Keypad) Display() string { return k.display }

// Empty reports whether nothing has been typed.
func (k *Keypad) Empty() bool { return k.buf == "" }

// Value validates the displayed clock for commit.
func (k *Keypad) Value() (Clock, error) {
	return Parse(k.display)
}
