package matchsim

import "time"

// HTTP status code constants.
const (
	StatusOK      = 200
	StatusCreated = 201
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Generator constants.
const (
	PeriodStartClock   = "8:00"
	periodSeconds      = 8 * 60
	unknownNumberRatio = 0.05
	maxCap             = 13
)

// Runner configuration constants.
const (
	DefaultTimeout = 10 * time.Second
)
