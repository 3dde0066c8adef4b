package persistence

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/polo/internal/domain/model"
)

// legacyState is the document the browser-only scorer kept in local storage.
type legacyState struct {
	MatchDate string         `json:"matchDate"`
	TeamWhite string         `json:"teamWhite"`
	TeamBlue  string         `json:"teamBlue"`
	Records   []legacyRecord `json:"records"`
}

type legacyRecord struct {
	ID     int64  `json:"id"`
	Time   string `json:"time"`
	Number string `json:"number"`
	Color  string `json:"color"`
	Event  string `json:"event"` // full label, e.g. "G 得点"
}

// legacySeriousFoul is a foul code the browser scorer listed but never
// offered as an event button; records carrying it are refused.
const legacySeriousFoul = "SR"

var legacyColors = map[string]model.Team{
	"白":     model.White,
	"青":     model.Blue,
	"white": model.White,
	"blue":  model.Blue,
}

// DecodeLegacy converts the browser app's saved state into a Snapshot. Events
// are matched by the code token of their label.
func DecodeLegacy(data []byte) (model.Snapshot, error) {
	var st legacyState
	if err := json.Unmarshal(data, &st); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	snap := model.Snapshot{
		Match: model.Match{
			Date:      st.MatchDate,
			TeamWhite: st.TeamWhite,
			TeamBlue:  st.TeamBlue,
		},
		Records: make([]model.Record, 0, len(st.Records)),
	}
	for i, lr := range st.Records {
		team, ok := legacyColors[strings.TrimSpace(lr.Color)]
		if !ok {
			return model.Snapshot{}, fmt.Errorf("%w: record %d: color %q", ErrCorruptSnapshot, i, lr.Color)
		}
		fields := strings.Fields(lr.Event)
		if len(fields) == 0 {
			return model.Snapshot{}, fmt.Errorf("%w: record %d: empty event", ErrCorruptSnapshot, i)
		}
		if fields[0] == legacySeriousFoul {
			return model.Snapshot{}, fmt.Errorf("%w: record %d: event code %s has no scoresheet kind", ErrCorruptSnapshot, i, legacySeriousFoul)
		}
		kind, ok := model.KindByCode(fields[0])
		if !ok {
			return model.Snapshot{}, fmt.Errorf("%w: record %d: event %q", ErrCorruptSnapshot, i, lr.Event)
		}
		number := strings.TrimSpace(lr.Number)
		if number == "" {
			number = model.NoNumber
		}
		snap.Records = append(snap.Records, model.Record{
			ID:     lr.ID,
			Clock:  lr.Time,
			Number: number,
			Team:   team,
			Kind:   kind,
		})
	}
	return Check(snap)
}
