package gameclock

import "errors"

// Sentinel kinds for clock errors.
var (
	ErrInvalidClock = errors.New("invalid clock time")
	ErrBufferFull   = errors.New("keypad buffer full")
	ErrNotDigit     = errors.New("keypad accepts digits only")
	ErrOverflow     = errors.New("keypad entry exceeds period length")
)
