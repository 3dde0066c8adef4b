package export

import (
	"fmt"
	"strings"

	"github.com/okian/polo/internal/domain/model"
)

// Locale carries the localized header row and color names.
type Locale struct {
	Name      string
	Header    []string
	WhiteName string
	BlueName  string
}

// Supported locales.
var (
	LocaleEN = Locale{
		Name:      "en",
		Header:    []string{"No", "Period", "Time", "Number", "Color", "Event", "ScoreWhite", "ScoreBlue"},
		WhiteName: "white",
		BlueName:  "blue",
	}
	LocaleJA = Locale{
		Name:      "ja",
		Header:    []string{"No", "ピリオド", "時間", "番号", "色", "イベント", "得点(白)", "得点(青)"},
		WhiteName: "白",
		BlueName:  "青",
	}
)

// LookupLocale resolves a locale by name.
func LookupLocale(name string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", LocaleEN.Name:
		return LocaleEN, nil
	case LocaleJA.Name:
		return LocaleJA, nil
	}
	return Locale{}, fmt.Errorf("%w: %q", ErrUnknownLocale, name)
}

// TeamName returns the localized color name.
func (l Locale) TeamName(t model.Team) string {
	if t == model.Blue {
		return l.BlueName
	}
	return l.WhiteName
}

// Team resolves a localized color name back to the team.
func (l Locale) Team(name string) (model.Team, bool) {
	switch name {
	case l.WhiteName, string(model.White):
		return model.White, true
	case l.BlueName, string(model.Blue):
		return model.Blue, true
	}
	return "", false
}

// TeamLabel renders the scoreboard label, e.g. "白 (Kobe)" or just "白".
func (l Locale) TeamLabel(t model.Team, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return l.TeamName(t)
	}
	return l.TeamName(t) + " (" + name + ")"
}
