// Package model contains domain models passed between layers.
package model

import "strings"

// EventKind identifies what happened in a record. The set is closed; every
// kind has exactly one row in Catalog.
type EventKind string

// Event kinds known to the scorer.
const (
	CenterBall    EventKind = "CENTER_BALL"
	Goal          EventKind = "GOAL"
	PenaltyGoal   EventKind = "PENALTY_GOAL"
	ExclusionGoal EventKind = "EXCLUSION_GOAL"
	Exclusion     EventKind = "EXCLUSION"
	Penalty       EventKind = "PENALTY"
	Brutality     EventKind = "BRUTALITY"
	Timeout       EventKind = "TIMEOUT"
	YellowCard    EventKind = "YELLOW_CARD"
	RedCard       EventKind = "RED_CARD"
)

// KindInfo is the side-table row describing how a kind behaves.
type KindInfo struct {
	Kind  EventKind
	Label string // operator-facing label, "<code> <name>"
	// FoulCode is the exclusion-table code, empty for non-foul kinds.
	FoulCode       string
	Goal           bool
	Severe         bool
	NumberOptional bool
	PeriodStart    bool
}

// Code returns the short event code: the first whitespace-delimited token of the label.
func (k KindInfo) Code() string {
	fields := strings.Fields(k.Label)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Foul reports whether the kind counts towards a player's exclusion aggregate.
func (k KindInfo) Foul() bool { return k.FoulCode != "" }

// Catalog lists every event kind in button order.
var Catalog = []KindInfo{
	{Kind: CenterBall, Label: "CB センターボール", PeriodStart: true},
	{Kind: Goal, Label: "G 得点", Goal: true},
	{Kind: PenaltyGoal, Label: "PG ペナルティ得点", Goal: true},
	{Kind: ExclusionGoal, Label: "EG 退水得点", Goal: true, FoulCode: "E"},
	{Kind: Exclusion, Label: "E 退水", FoulCode: "E"},
	{Kind: Penalty, Label: "P ペナルティ", FoulCode: "P"},
	{Kind: Brutality, Label: "SV 乱暴行為", FoulCode: "SV", Severe: true},
	{Kind: Timeout, Label: "TO タイムアウト", NumberOptional: true},
	{Kind: YellowCard, Label: "YC イエローカード", NumberOptional: true},
	{Kind: RedCard, Label: "RC レッドカード", NumberOptional: true},
}

var (
	byKind = make(map[EventKind]KindInfo, len(Catalog))
	byCode = make(map[string]KindInfo, len(Catalog))
)

func init() {
	for _, info := range Catalog {
		byKind[info.Kind] = info
		byCode[info.Code()] = info
	}
}

// Info returns the catalog row for k.
func (k EventKind) Info() (KindInfo, bool) {
	info, ok := byKind[k]
	return info, ok
}

// Valid reports whether k is a known kind.
func (k EventKind) Valid() bool {
	_, ok := byKind[k]
	return ok
}

// Code returns the short code of k, or an empty string for unknown kinds.
func (k EventKind) Code() string {
	return byKind[k].Code()
}

// IsGoal reports whether k increments the scoring team's total.
func (k EventKind) IsGoal() bool { return byKind[k].Goal }

// IsPeriodStart reports whether k opens a new period.
func (k EventKind) IsPeriodStart() bool { return byKind[k].PeriodStart }

// IsFoul reports whether k contributes to the exclusion aggregate.
func (k EventKind) IsFoul() bool { return byKind[k].Foul() }

// RequiresNumber reports whether a record of kind k must carry a player number.
func (k EventKind) RequiresNumber() bool {
	info, ok := byKind[k]
	return ok && !info.NumberOptional
}

// KindByCode resolves a short code (e.g. "EG") back to its kind.
func KindByCode(code string) (EventKind, bool) {
	info, ok := byCode[code]
	return info.Kind, ok
}
