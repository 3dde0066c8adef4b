package service

import (
	"github.com/okian/polo/internal/domain/derive"
	"github.com/okian/polo/internal/domain/model"
	"github.com/okian/polo/internal/domain/views"
)

// AddInput is one add-record request. Clock wins over Keypad when both are
// set; Keypad carries raw keypad digits that are formatted server-side.
type AddInput struct {
	Clock     string          `json:"clockTime,omitempty"`
	Keypad    string          `json:"keypad,omitempty"`
	Number    string          `json:"playerNumber,omitempty"`
	Team      model.Team      `json:"teamColor"`
	Kind      model.EventKind `json:"eventKind"`
	RequestID string          `json:"requestId,omitempty"`
}

// Scoreboard is the header shown above the record list.
type Scoreboard struct {
	Date       string `json:"matchDate"`
	TeamWhite  string `json:"teamNameA"`
	TeamBlue   string `json:"teamNameB"`
	WhiteLabel string `json:"whiteLabel"`
	BlueLabel  string `json:"blueLabel"`
	derive.Summary
}

// AddResult reports an add-record call.
type AddResult struct {
	Record     derive.Record `json:"record"`
	Duplicate  bool          `json:"duplicate"`
	Scoreboard Scoreboard    `json:"scoreboard"`
}

// Result reports a delete or correction. Applied is false when the id did not
// exist; that is not an error.
type Result struct {
	Applied    bool       `json:"applied"`
	Scoreboard Scoreboard `json:"scoreboard"`
}

// Exclusions is the foul view: the fixed grid plus the per-player aggregates.
type Exclusions struct {
	Table   views.FoulTable       `json:"table"`
	Players []views.FoulAggregate `json:"players"`
}

// KeypadPreview is what the clock display shows for a digit buffer.
type KeypadPreview struct {
	Buffer  string `json:"buffer"`
	Display string `json:"display"`
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
}
