package matchsim

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/polo/internal/domain/derive"
	"github.com/okian/polo/internal/domain/export"
	"github.com/okian/polo/internal/domain/views"
	"github.com/okian/polo/pkg/logger"
)

// Expected is what the scorer should report once the plan is applied.
type Expected struct {
	Scoreboard Scoreboard
	Excluded   map[string]bool // "team/number" of fouled-out players
	Rows       []derive.Record // export order
}

// Expect derives the final state of plan offline.
func Expect(plan *Plan) (Expected, error) {
	records, err := plan.Records()
	if err != nil {
		return Expected{}, err
	}
	derived := derive.Derive(records)
	sum := derive.Summarize(derived)
	exp := Expected{
		Scoreboard: Scoreboard{
			Period:     sum.CurrentPeriod,
			ScoreWhite: sum.ScoreWhite,
			ScoreBlue:  sum.ScoreBlue,
			Records:    sum.Records,
		},
		Excluded: map[string]bool{},
		Rows:     views.DisplayOrder(derived, views.ExportPolicy),
	}
	for _, agg := range views.Fouls(derived) {
		if agg.Excluded {
			exp.Excluded[string(agg.Team)+"/"+agg.Number] = true
		}
	}
	return exp, nil
}

// verifyResults checks the scoreboard, the exclusion list and the CSV export
// against the offline expectation.
func verifyResults(ctx context.Context, client *HTTPClient, config *Config, exp Expected) error {
	logger.Get().Info(ctx, "verifying results")

	var board Scoreboard
	if err := client.JSON(ctx, http.MethodGet, "/scoreboard", nil, &board, StatusOK); err != nil {
		return err
	}
	if board != exp.Scoreboard {
		return fmt.Errorf("scoreboard %+v, want %+v", board, exp.Scoreboard)
	}

	var excl struct {
		Players []views.FoulAggregate `json:"players"`
	}
	if err := client.JSON(ctx, http.MethodGet, "/exclusions", nil, &excl, StatusOK); err != nil {
		return err
	}
	got := map[string]bool{}
	for _, agg := range excl.Players {
		if agg.Excluded {
			got[string(agg.Team)+"/"+agg.Number] = true
		}
	}
	if len(got) != len(exp.Excluded) {
		return fmt.Errorf("%d excluded players, want %d", len(got), len(exp.Excluded))
	}
	for k := range exp.Excluded {
		if !got[k] {
			return fmt.Errorf("player %s should be excluded", k)
		}
	}

	if err := verifyExport(ctx, client, config, exp); err != nil {
		return err
	}

	logger.Get().Info(ctx, "result verification completed",
		logger.Int("period", board.Period),
		logger.Int("white", board.ScoreWhite),
		logger.Int("blue", board.ScoreBlue),
		logger.Int("excluded", len(got)))
	return nil
}

func verifyExport(ctx context.Context, client *HTTPClient, config *Config, exp Expected) error {
	resp, err := client.Do(ctx, http.MethodGet, "/export.csv?locale="+config.Locale, nil)
	if err != nil {
		return err
	}
	data, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("export: status %d", resp.StatusCode)
	}
	rows, err := export.Decode(data)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if len(rows) != len(exp.Rows) {
		return fmt.Errorf("export has %d rows, want %d", len(rows), len(exp.Rows))
	}
	for i, row := range rows {
		want := exp.Rows[i]
		if row.Seq != i+1 || row.Period != want.Period || row.Clock != want.Clock ||
			row.Number != want.Number ||
			row.Team != want.Team || row.Kind != want.Kind ||
			row.ScoreWhite != want.ScoreWhite || row.ScoreBlue != want.ScoreBlue {
			return fmt.Errorf("export row %d is %+v, want %+v", i+1, row, want)
		}
	}
	return nil
}
