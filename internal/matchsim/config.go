package matchsim

import "time"

// Config holds configuration for a simulated match.
type Config struct {
	BaseURL         string        // Base URL of the scorer
	Periods         int           // Number of periods to play
	EventsPerPeriod int           // Records per period after the center ball
	Workers         int           // Concurrent workers replaying duplicate requests
	DuplicateRatio  float64       // Share of adds replayed with the same request id
	KeypadRatio     float64       // Share of adds sent as raw keypad digits
	Locale          string        // Export locale checked at the end: en or ja
	Seed            uint64        // Generator seed; 0 picks a random one
	Timeout         time.Duration // HTTP request timeout
	OutputFile      string        // Output file for the generated plan
	LogFile         string        // Log file for run output
	Verbose         bool          // Enable verbose logging
}

// Step is one add-record request of the plan.
type Step struct {
	RequestID string `json:"requestId"`
	Clock     string `json:"clockTime,omitempty"`
	Keypad    string `json:"keypad,omitempty"`
	Number    string `json:"playerNumber"`
	Team      string `json:"teamColor"`
	Kind      string `json:"eventKind"`
}

// Plan is a generated match in chronological order.
type Plan struct {
	RunID     string `json:"runId"`
	Seed      uint64 `json:"seed"`
	MatchDate string `json:"matchDate"`
	TeamWhite string `json:"teamNameA"`
	TeamBlue  string `json:"teamNameB"`
	Steps     []Step `json:"steps"`
}

// Scoreboard mirrors GET /scoreboard.
type Scoreboard struct {
	Period     int `json:"period"`
	ScoreWhite int `json:"scoreWhite"`
	ScoreBlue  int `json:"scoreBlue"`
	Records    int `json:"records"`
}

// AddResponse mirrors POST /records.
type AddResponse struct {
	Duplicate  bool       `json:"duplicate"`
	Scoreboard Scoreboard `json:"scoreboard"`
}

// Stats holds run statistics.
type Stats struct {
	StepsGenerated   int
	StepsSubmitted   int
	StepsFailed      int
	DuplicatesSent   int
	DuplicatesAcked  int
	DuplicatesMissed int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
