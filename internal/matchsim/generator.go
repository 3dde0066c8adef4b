package matchsim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/polo/internal/domain/gameclock"
	"github.com/okian/polo/internal/domain/model"
	"github.com/okian/polo/pkg/logger"
)

// kindWeights is the relative frequency of each non-period-start kind.
var kindWeights = []struct {
	kind   model.EventKind
	weight int
}{
	{model.Goal, 30},
	{model.PenaltyGoal, 4},
	{model.ExclusionGoal, 8},
	{model.Exclusion, 25},
	{model.Penalty, 5},
	{model.Brutality, 1},
	{model.Timeout, 6},
	{model.YellowCard, 2},
	{model.RedCard, 1},
}

var teamNames = []string{"Kobe", "Osaka", "Kyoto", "Nagoya", "Yokohama", "Chiba", "Sendai", "Fukuoka"}

// Generate builds a random but well-formed match: every period opens with a
// center ball at 8:00 followed by records with a strictly falling clock.
func Generate(ctx context.Context, config *Config, stats *Stats) (*Plan, error) {
	if config.Periods <= 0 || config.EventsPerPeriod < 0 {
		return nil, fmt.Errorf("periods must be positive and events per period non-negative")
	}
	if config.EventsPerPeriod >= periodSeconds {
		return nil, fmt.Errorf("at most %d events fit in a period", periodSeconds-1)
	}

	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	white := teamNames[rng.IntN(len(teamNames))]
	blue := teamNames[rng.IntN(len(teamNames))]
	if blue == white {
		blue += " B"
	}
	plan := &Plan{
		RunID:     uuid.NewString(),
		Seed:      seed,
		MatchDate: time.Now().Format("2006-01-02"),
		TeamWhite: white,
		TeamBlue:  blue,
	}

	for p := 0; p < config.Periods; p++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		plan.Steps = append(plan.Steps, Step{
			RequestID: uuid.NewString(),
			Clock:     PeriodStartClock,
			Number:    capNumber(rng),
			Team:      string(randomTeam(rng)),
			Kind:      string(model.CenterBall),
		})
		for _, sec := range fallingClock(rng, config.EventsPerPeriod) {
			plan.Steps = append(plan.Steps, randomStep(rng, config, sec))
		}
	}

	stats.StepsGenerated = len(plan.Steps)
	logger.Get().Info(ctx, "generated match plan",
		logger.String("runId", plan.RunID),
		logger.Int64("seed", int64(plan.Seed)),
		logger.Int("steps", len(plan.Steps)))
	return plan, nil
}

// fallingClock picks n distinct seconds-remaining values below 8:00, newest last.
func fallingClock(rng *rand.Rand, n int) []int {
	picked := rng.Perm(periodSeconds - 1)[:n]
	for i := range picked {
		picked[i]++
	}
	slices.Sort(picked)
	slices.Reverse(picked)
	return picked
}

func randomStep(rng *rand.Rand, config *Config, secondsLeft int) Step {
	kind := randomKind(rng)
	c := gameclock.Clock{Minutes: secondsLeft / 60, Seconds: secondsLeft % 60}
	step := Step{
		RequestID: uuid.NewString(),
		Team:      string(randomTeam(rng)),
		Kind:      string(kind),
		Number:    model.NoNumber,
	}
	if kind.RequiresNumber() {
		step.Number = capNumber(rng)
		if rng.Float64() < unknownNumberRatio {
			step.Number = model.UnknownNumber
		}
	}
	if rng.Float64() < config.KeypadRatio {
		step.Keypad = keypadDigits(c)
	} else {
		step.Clock = c.String()
	}
	return step
}

// keypadDigits is what the operator types to show c on the clock display.
func keypadDigits(c gameclock.Clock) string {
	if c.Minutes == 0 {
		return strconv.Itoa(c.Seconds)
	}
	return fmt.Sprintf("%d%02d", c.Minutes, c.Seconds)
}

func randomKind(rng *rand.Rand) model.EventKind {
	total := 0
	for _, w := range kindWeights {
		total += w.weight
	}
	n := rng.IntN(total)
	for _, w := range kindWeights {
		if n < w.weight {
			return w.kind
		}
		n -= w.weight
	}
	return model.Goal
}

func randomTeam(rng *rand.Rand) model.Team {
	return model.Teams[rng.IntN(len(model.Teams))]
}

func capNumber(rng *rand.Rand) string {
	return strconv.Itoa(1 + rng.IntN(maxCap))
}

// Records converts the plan into the raw records the scorer should hold,
// numbering ids in submission order.
func (p *Plan) Records() ([]model.Record, error) {
	out := make([]model.Record, len(p.Steps))
	for i, s := range p.Steps {
		clock := s.Clock
		if clock == "" {
			shown, err := gameclock.FormatBuffer(s.Keypad)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			clock = shown
		}
		out[i] = model.Record{
			ID:     int64(i + 1),
			Clock:  clock,
			Number: s.Number,
			Team:   model.Team(s.Team),
			Kind:   model.EventKind(s.Kind),
		}
	}
	return out, nil
}
