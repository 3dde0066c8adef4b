package model

import (
	"strconv"
	"time"
)

// DateLayout is the match date format.
const DateLayout = "2006-01-02"

// Player number markers.
const (
	UnknownNumber   = "?" // player not identified at entry time
	NoNumber        = "-" // kind carries no player
	MaxPlayerNumber = 14
)

// Record is one raw scoresheet entry. Only Number may change after creation.
type Record struct {
	ID     int64     `json:"id"`
	Clock  string    `json:"clockTime"`
	Number string    `json:"playerNumber"`
	Team   Team      `json:"teamColor"`
	Kind   EventKind `json:"eventKind"`
}

// IsCapNumber reports whether s is a cap number "1".."14".
func IsCapNumber(s string) bool {
	if s == "" || s[0] == '0' {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 1 && n <= MaxPlayerNumber
}

// ValidNumber reports whether number may be stored on a record of kind: a cap
// number or "?", and "-" only for kinds without a player.
func ValidNumber(kind EventKind, number string) bool {
	switch {
	case IsCapNumber(number), number == UnknownNumber:
		return true
	case number == NoNumber:
		return !kind.RequiresNumber()
	}
	return false
}

// ValidDate reports whether s is empty or a DateLayout date.
func ValidDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsIdentified reports whether the record names a concrete player.
func (r Record) IsIdentified() bool {
	return IsCapNumber(r.Number)
}

// Match holds the scoresheet header.
type Match struct {
	Date      string `json:"matchDate"`
	TeamWhite string `json:"teamNameA"`
	TeamBlue  string `json:"teamNameB"`
}

// Snapshot is the serializable persistence contract: header plus raw records.
type Snapshot struct {
	Match
	Records []Record `json:"records"`
}
