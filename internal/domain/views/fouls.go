package views

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/okian/polo/internal/domain/derive"
	"github.com/okian/polo/internal/domain/model"
)

// Fixed exclusion rules.
const (
	FoulOutThreshold = 3
	SevereCode       = "SV"
)

// FoulEntry is one foul in a player's cell, e.g. "E2 5:12".
type FoulEntry struct {
	Code   string `json:"code"`
	Period int    `json:"period"`
	Clock  string `json:"clock"`
	Rank   int    `json:"rank"`
}

// String renders the cell text.
func (f FoulEntry) String() string {
	return fmt.Sprintf("%s%d %s", f.Code, f.Period, f.Clock)
}

// FoulAggregate collects the fouls of one player.
type FoulAggregate struct {
	Team     model.Team  `json:"team"`
	Number   string      `json:"number"`
	Entries  []FoulEntry `json:"entries"` // newest first
	Count    int         `json:"count"`
	Severe   bool        `json:"severe"`
	Excluded bool        `json:"excluded"`
}

// Lines returns the rendered entries, newest first.
func (a FoulAggregate) Lines() []string {
	lines := make([]string, len(a.Entries))
	for i, e := range a.Entries {
		lines[i] = e.String()
	}
	return lines
}

type playerKey struct {
	team   model.Team
	number string
}

// Fouls groups foul records by player. Records without a concrete cap number
// ("?" or "-") are left out. Aggregates are ordered white first, then by cap number.
func Fouls(derived []derive.Record) []FoulAggregate {
	byPlayer := map[playerKey]*FoulAggregate{}
	for _, r := range derived {
		info, ok := r.Kind.Info()
		if !ok || !info.Foul() || !r.IsIdentified() {
			continue
		}
		key := playerKey{team: r.Team, number: r.Number}
		agg, ok := byPlayer[key]
		if !ok {
			agg = &FoulAggregate{Team: r.Team, Number: r.Number}
			byPlayer[key] = agg
		}
		agg.Entries = append(agg.Entries, FoulEntry{Code: info.FoulCode, Period: r.Period, Clock: r.Clock, Rank: r.Rank})
		if info.FoulCode == SevereCode {
			agg.Severe = true
		}
	}

	out := make([]FoulAggregate, 0, len(byPlayer))
	for _, agg := range byPlayer {
		slices.SortFunc(agg.Entries, func(a, b FoulEntry) int { return cmp.Compare(b.Rank, a.Rank) })
		agg.Count = len(agg.Entries)
		agg.Excluded = agg.Count >= FoulOutThreshold || agg.Severe
		out = append(out, *agg)
	}
	slices.SortFunc(out, func(a, b FoulAggregate) int {
		if a.Team != b.Team {
			if a.Team == model.White {
				return -1
			}
			return 1
		}
		an, _ := strconv.Atoi(a.Number)
		bn, _ := strconv.Atoi(b.Number)
		return cmp.Compare(an, bn)
	})
	return out
}

// FoulCell is one cell of the exclusion table.
type FoulCell struct {
	Number   string   `json:"number"`
	Lines    []string `json:"lines"`
	Excluded bool     `json:"excluded"`
}

// FoulTable is the fixed exclusion grid: caps 1..14 for each team.
type FoulTable struct {
	White []FoulCell `json:"white"`
	Blue  []FoulCell `json:"blue"`
}

// BuildFoulTable lays Fouls out on the fixed grid.
func BuildFoulTable(derived []derive.Record) FoulTable {
	t := FoulTable{White: blankCells(), Blue: blankCells()}
	for _, agg := range Fouls(derived) {
		n, _ := strconv.Atoi(agg.Number)
		cells := t.White
		if agg.Team == model.Blue {
			cells = t.Blue
		}
		cells[n-1].Lines = agg.Lines()
		cells[n-1].Excluded = agg.Excluded
	}
	return t
}

func blankCells() []FoulCell {
	cells := make([]FoulCell, model.MaxPlayerNumber)
	for i := range cells {
		cells[i] = FoulCell{Number: strconv.Itoa(i + 1), Lines: []string{}}
	}
	return cells
}
