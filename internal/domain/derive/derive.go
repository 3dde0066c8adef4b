// Package derive computes periods, chronological ranks and running scores
// from the raw record log. Everything here is pure: the full result is
// recomputed from scratch whenever the log changes.
package derive

import (
	"slices"

	"github.com/okian/polo/internal/domain/model"
)

// PeriodBeforeFirstCenterBall is the period assigned to records logged before
// any center ball. Every center ball, the first included, advances the period
// counter, and a record's period is max(counter, PeriodBeforeFirstCenterBall).
const PeriodBeforeFirstCenterBall = 1

// Record is a raw record enriched with values derived from its position in the log.
type Record struct {
	model.Record
	Period     int `json:"period"`
	Rank       int `json:"rank"`
	ScoreWhite int `json:"scoreWhite"`
	ScoreBlue  int `json:"scoreBlue"`
}

// Correctable reports whether the record still waits for a player number.
func (r Record) Correctable() bool {
	return r.Number == model.UnknownNumber
}

// Derive sorts records by id and stamps each with its period, rank and running
// score in a single forward pass. The input slice is not modified.
func Derive(records []model.Record) []Record {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b model.Record) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	out := make([]Record, len(sorted))
	counter, white, blue := 0, 0, 0
	for i, r := range sorted {
		if r.Kind.IsPeriodStart() {
			counter++
		}
		if r.Kind.IsGoal() {
			switch r.Team {
			case model.White:
				white++
			case model.Blue:
				blue++
			}
		}
		out[i] = Record{
			Record:     r,
			Period:     max(counter, PeriodBeforeFirstCenterBall),
			Rank:       i + 1,
			ScoreWhite: white,
			ScoreBlue:  blue,
		}
	}
	return out
}

// Summary is the scoreboard view of a derived log.
type Summary struct {
	CurrentPeriod int `json:"period"`
	ScoreWhite    int `json:"scoreWhite"`
	ScoreBlue     int `json:"scoreBlue"`
	Records       int `json:"records"`
}

// Summarize reads the scoreboard off the last derived record. An empty log is
// period 1 with a 0-0 score.
func Summarize(derived []Record) Summary {
	if len(derived) == 0 {
		return Summary{CurrentPeriod: PeriodBeforeFirstCenterBall}
	}
	last := derived[len(derived)-1]
	return Summary{
		CurrentPeriod: last.Period,
		ScoreWhite:    last.ScoreWhite,
		ScoreBlue:     last.ScoreBlue,
		Records:       len(derived),
	}
}
