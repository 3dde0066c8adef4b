// Package export encodes the derived scoresheet as a spreadsheet-friendly CSV file.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/polo/internal/domain/derive"
	"github.com/okian/polo/internal/domain/model"
)

// BOM is the UTF-8 byte-order mark prefixed to every export.
var BOM = []byte{0xEF, 0xBB, 0xBF}

const columns = 8

var unsafeFilenameChars = regexp.MustCompile(`[\s\\/:*?"<>|]`)

// Encode writes the records, already in display order, as CSV. The sequence
// column numbers rows by their position in the export.
func Encode(records []derive.Record, match model.Match, loc Locale) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if strings.TrimSpace(match.Date) == "" {
		return nil, ErrMissingDate
	}

	var buf bytes.Buffer
	buf.Write(BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(loc.Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		row := []string{
			fmt.Sprintf("%03d", i+1),
			strconv.Itoa(r.Period),
			r.Clock,
			r.Number,
			loc.TeamName(r.Team),
			r.Kind.Code(),
			strconv.Itoa(r.ScoreWhite),
			strconv.Itoa(r.ScoreBlue),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Row is one parsed data row of an exported file.
type Row struct {
	Seq        int
	Period     int
	Clock      string
	Number     string
	Team       model.Team
	Kind       model.EventKind
	ScoreWhite int
	ScoreBlue  int
}

// Decode parses a file produced by Encode in any supported locale.
func Decode(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, BOM)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	if len(records) == 0 || len(records[0]) != columns {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedCSV)
	}
	loc := LocaleEN
	if records[0][1] == LocaleJA.Header[1] {
		loc = LocaleJA
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != columns {
			return nil, fmt.Errorf("%w: line %d has %d columns", ErrMalformedCSV, i+2, len(rec))
		}
		row, err := parseRow(rec, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string, loc Locale) (Row, error) {
	var (
		row Row
		err error
	)
	ints := []struct {
		dst *int
		src string
	}{{&row.Seq, rec[0]}, {&row.Period, rec[1]}, {&row.ScoreWhite, rec[6]}, {&row.ScoreBlue, rec[7]}}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(f.src); err != nil {
			return Row{}, err
		}
	}
	team, ok := loc.Team(rec[4])
	if !ok {
		return Row{}, fmt.Errorf("unknown color %q", rec[4])
	}
	kind, ok := model.KindByCode(rec[5])
	if !ok {
		return Row{}, fmt.Errorf("unknown event code %q", rec[5])
	}
	row.Clock, row.Number, row.Team, row.Kind = rec[2], rec[3], team, kind
	return row, nil
}

// Filename builds waterpolo_record_<date>_<white>_vs_<blue>.csv with
// filesystem-unsafe characters replaced by "_". Blank team names fall back to
// the localized color names.
func Filename(match model.Match, loc Locale) string {
	white := strings.TrimSpace(match.TeamWhite)
	if white == "" {
		white = loc.WhiteName
	}
	blue := strings.TrimSpace(match.TeamBlue)
	if blue == "" {
		blue = loc.BlueName
	}
	return fmt.Sprintf("waterpolo_record_%s_%s_vs_%s.csv",
		match.Date, sanitize(white), sanitize(blue))
}

func sanitize(s string) string {
	return unsafeFilenameChars.ReplaceAllString(s, "_")
}
