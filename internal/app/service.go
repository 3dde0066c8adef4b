// Package service owns the scoresheet: it validates operator input, applies
// it to the record store and recomputes every derived view after each change.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/polo/internal/adapters/persistence"
	"github.com/okian/polo/internal/adapters/repository"
	"github.com/okian/polo/internal/domain/dedupe"
	"github.com/okian/polo/internal/domain/derive"
	"github.com/okian/polo/internal/domain/export"
	"github.com/okian/polo/internal/domain/gameclock"
	"github.com/okian/polo/internal/domain/model"
	"github.com/okian/polo/internal/domain/views"
	"github.com/okian/polo/pkg/logger"
	"github.com/okian/polo/pkg/metrics"
)

// MessageScoreboard is the live message type pushed after every change.
const MessageScoreboard = "scoreboard"

// Notifier receives the scoreboard after every change.
type Notifier interface {
	Broadcast(ctx context.Context, typ string, payload any) error
}

type nopNotifier struct{}

func (nopNotifier) Broadcast(context.Context, string, any) error { return nil }

// Service implements the scoresheet operations used by the HTTP API.
//
// Every mutation holds mu for its whole validate, mutate, derive, persist,
// broadcast sequence, so there is exactly one mutator at a time and readers
// never see a half-applied change.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	snapshots persistence.Store
	deduper   dedupe.Deduper
	notifier  Notifier
	clock     clockwork.Clock

	match    model.Match
	screen   views.Policy
	locale   export.Locale
	overflow gameclock.OverflowPolicy

	dedupeSize int
	started    bool
	logger     logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		snapshots:  persistence.NopStore{},
		notifier:   nopNotifier{},
		clock:      clockwork.NewRealClock(),
		screen:     views.ScreenPolicy,
		locale:     export.LocaleEN,
		overflow:   gameclock.DefaultOverflowPolicy,
		dedupeSize: 1024,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithClock(s.clock))
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.match = model.Match{Date: s.today()}
	return s
}

// Start restores the last saved snapshot, if any. A corrupt snapshot is
// logged and skipped so the table can still score a match.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	snap, ok, err := s.snapshots.Load(ctx)
	switch {
	case errors.Is(err, persistence.ErrCorruptSnapshot):
		metrics.RecordSnapshotFailure("load")
		s.logger.Error(ctx, "ignoring corrupt snapshot", logger.Error(err))
	case err != nil:
		metrics.RecordSnapshotFailure("load")
		return fmt.Errorf("load snapshot: %w", err)
	case ok:
		if err := s.store.Replace(ctx, snap.Records); err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
		s.match = snap.Match
		s.logger.Info(ctx, "snapshot restored",
			logger.String("date", snap.Date),
			logger.Int("records", len(snap.Records)))
	}

	s.started = true
	s.publish(ctx, s.derived(ctx))
	s.logger.Info(ctx, "scoresheet service started",
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("locale", s.locale.Name))
	return nil
}

// Stop writes a final snapshot.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.persist(ctx)
	s.started = false
	s.logger.Info(ctx, "scoresheet service stopped")
}

// AddRecord validates in and appends it to the scoresheet. A request id that
// was already applied returns the current state with Duplicate set.
func (s *Service) AddRecord(ctx context.Context, in AddInput) (AddResult, error) {
	draft, err := s.validateAdd(in)
	if err != nil {
		s.logger.Debug(ctx, "add rejected", logger.Error(err))
		return AddResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.RequestID != "" && s.deduper.SeenAndRecord(ctx, in.RequestID) {
		metrics.RecordDuplicate()
		s.logger.Debug(ctx, "duplicate add ignored", logger.String("requestId", in.RequestID))
		return AddResult{Duplicate: true, Scoreboard: s.scoreboard(derive.Summarize(s.derived(ctx)))}, nil
	}

	rec, err := s.store.Add(ctx, draft)
	if err != nil {
		if in.RequestID != "" {
			s.deduper.Unrecord(ctx, in.RequestID)
		}
		return AddResult{}, fmt.Errorf("add record: %w", err)
	}
	metrics.RecordAdded(string(rec.Kind))

	derived := s.afterChange(ctx, "add")
	res := AddResult{Scoreboard: s.scoreboard(derive.Summarize(derived))}
	for _, d := range derived {
		if d.ID == rec.ID {
			res.Record = d
			break
		}
	}
	s.logger.Info(ctx, "record added",
		logger.Int64("id", rec.ID),
		logger.String("kind", string(rec.Kind)),
		logger.String("team", string(rec.Team)),
		logger.String("clock", rec.Clock),
		logger.String("number", rec.Number))
	return res, nil
}

func (s *Service) validateAdd(in AddInput) (repository.Draft, error) {
	raw := strings.TrimSpace(in.Clock)
	if raw == "" && in.Keypad != "" {
		shown, err := gameclock.FormatBuffer(in.Keypad)
		if err != nil {
			return repository.Draft{}, invalidWrap("clock", err)
		}
		raw = shown
	}
	if raw == "" {
		return repository.Draft{}, invalid("clock", "clock time is required")
	}
	clock, err := gameclock.Parse(raw)
	if err != nil {
		return repository.Draft{}, invalidWrap("clock", err)
	}

	if in.Team == "" {
		return repository.Draft{}, invalid("team", "team color is required")
	}
	if !in.Team.Valid() {
		return repository.Draft{}, invalid("team", "unknown team color %q", in.Team)
	}
	if in.Kind == "" {
		return repository.Draft{}, invalid("kind", "event kind is required")
	}
	if !in.Kind.Valid() {
		return repository.Draft{}, invalid("kind", "unknown event kind %q", in.Kind)
	}

	number := strings.TrimSpace(in.Number)
	if number == "" {
		if in.Kind.RequiresNumber() {
			return repository.Draft{}, invalid("number", "%s needs a player number (use %q if unknown)", in.Kind, model.UnknownNumber)
		}
		number = model.NoNumber
	}
	if err := checkNumber(in.Kind, number); err != nil {
		return repository.Draft{}, err
	}

	return repository.Draft{Clock: clock.String(), Number: number, Team: in.Team, Kind: in.Kind}, nil
}

// checkNumber applies model.ValidNumber and counts a rejection.
func checkNumber(kind model.EventKind, number string) error {
	if model.ValidNumber(kind, number) {
		return nil
	}
	return invalid("number", "player number %q is not 1-%d or %q", number, model.MaxPlayerNumber, model.UnknownNumber)
}

// DeleteRecord removes record id. A missing id is a no-op.
func (s *Service) DeleteRecord(ctx context.Context, id int64) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.Delete(ctx, id) {
		s.logger.Debug(ctx, "delete of unknown record ignored", logger.Int64("id", id))
		return Result{Scoreboard: s.scoreboard(derive.Summarize(s.derived(ctx)))}, nil
	}
	metrics.RecordDeleted()
	derived := s.afterChange(ctx, "delete")
	s.logger.Info(ctx, "record deleted", logger.Int64("id", id))
	return Result{Applied: true, Scoreboard: s.scoreboard(derive.Summarize(derived))}, nil
}

// CorrectNumber replaces the player number of record id, typically to resolve
// an unknown "?". A missing id is a no-op.
func (s *Service) CorrectNumber(ctx context.Context, id int64, number string) (Result, error) {
	number = strings.TrimSpace(number)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.store.Get(ctx, id)
	if !ok {
		s.logger.Debug(ctx, "correction of unknown record ignored", logger.Int64("id", id))
		return Result{Scoreboard: s.scoreboard(derive.Summarize(s.derived(ctx)))}, nil
	}
	if err := checkNumber(rec.Kind, number); err != nil {
		return Result{}, err
	}
	s.store.SetNumber(ctx, id, number)
	metrics.RecordNumberCorrected()
	derived := s.afterChange(ctx, "correct")
	s.logger.Info(ctx, "player number corrected",
		logger.Int64("id", id),
		logger.String("from", rec.Number),
		logger.String("to", number))
	return Result{Applied: true, Scoreboard: s.scoreboard(derive.Summarize(derived))}, nil
}

// Reset clears every record, the team names and the request id cache, and
// sets the match date to today.
func (s *Service) Reset(ctx context.Context) (Scoreboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Reset(ctx)
	s.deduper.Reset(ctx)
	s.match = model.Match{Date: s.today()}
	if err := s.snapshots.Clear(ctx); err != nil {
		metrics.RecordSnapshotFailure("clear")
		s.logger.Error(ctx, "failed to clear snapshot", logger.Error(err))
	}
	metrics.RecordReset()

	derived := s.derived(ctx)
	s.publish(ctx, derived)
	s.logger.Info(ctx, "match reset", logger.String("date", s.match.Date))
	return s.scoreboard(derive.Summarize(derived)), nil
}

// SetMatch replaces the match header. An empty date is allowed; export
// refuses it later.
func (s *Service) SetMatch(ctx context.Context, m model.Match) (Scoreboard, error) {
	m.Date = strings.TrimSpace(m.Date)
	m.TeamWhite = strings.TrimSpace(m.TeamWhite)
	m.TeamBlue = strings.TrimSpace(m.TeamBlue)
	if !model.ValidDate(m.Date) {
		return Scoreboard{}, invalid("match_date", "match date %q is not YYYY-MM-DD", m.Date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.match = m
	derived := s.afterChange(ctx, "match")
	return s.scoreboard(derive.Summarize(derived)), nil
}

// Match returns the match header.
func (s *Service) Match(_ context.Context) model.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.match
}

// Scoreboard returns the current period, scores and team labels.
func (s *Service) Scoreboard(ctx context.Context) Scoreboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scoreboard(derive.Summarize(s.derived(ctx)))
}

// Records returns the derived records in display order p.
func (s *Service) Records(ctx context.Context, p views.Policy) []derive.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return views.DisplayOrder(s.derived(ctx), p)
}

// Chronological returns the derived records in id order.
func (s *Service) Chronological(ctx context.Context) []derive.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.derived(ctx)
}

// ScreenPolicy returns the configured on-screen order.
func (s *Service) ScreenPolicy() views.Policy { return s.screen }

// Locale returns the default locale.
func (s *Service) Locale() export.Locale { return s.locale }

// Exclusions returns the foul table.
func (s *Service) Exclusions(ctx context.Context) Exclusions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	derived := s.derived(ctx)
	return Exclusions{Table: views.BuildFoulTable(derived), Players: views.Fouls(derived)}
}

// ExportCSV encodes the scoresheet in export order and returns the suggested
// file name with the file contents.
func (s *Service) ExportCSV(ctx context.Context, loc export.Locale) (string, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := views.DisplayOrder(s.derived(ctx), views.ExportPolicy)
	data, err := export.Encode(ordered, s.match, loc)
	if err != nil {
		outcome := "error"
		if errors.Is(err, export.ErrNoRecords) || errors.Is(err, export.ErrMissingDate) {
			outcome = "refused"
		}
		metrics.RecordExport(loc.Name, outcome)
		return "", nil, err
	}
	metrics.RecordExport(loc.Name, "ok")
	name := export.Filename(s.match, loc)
	s.logger.Info(ctx, "scoresheet exported",
		logger.String("file", name),
		logger.Int("records", len(ordered)))
	return name, data, nil
}

// Snapshot returns the persistable state.
func (s *Service) Snapshot(ctx context.Context) model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(ctx)
}

// Restore replaces the whole scoresheet with snap.
func (s *Service) Restore(ctx context.Context, snap model.Snapshot) (Scoreboard, error) {
	snap, err := persistence.Check(snap)
	if err != nil {
		return Scoreboard{}, invalidWrap("snapshot", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Replace(ctx, snap.Records); err != nil {
		return Scoreboard{}, invalidWrap("snapshot", err)
	}
	s.match = snap.Match
	s.deduper.Reset(ctx)
	derived := s.afterChange(ctx, "restore")
	s.logger.Info(ctx, "snapshot restored",
		logger.String("date", snap.Date),
		logger.Int("records", len(snap.Records)))
	return s.scoreboard(derive.Summarize(derived)), nil
}

// ImportLegacy restores a state document saved by the browser-only scorer.
func (s *Service) ImportLegacy(ctx context.Context, data []byte) (Scoreboard, error) {
	snap, err := persistence.DecodeLegacy(data)
	if err != nil {
		return Scoreboard{}, invalidWrap("snapshot", err)
	}
	return s.Restore(ctx, snap)
}

// PreviewKeypad shows what the clock display reads after typing digits.
func (s *Service) PreviewKeypad(digits string) KeypadPreview {
	k := gameclock.NewKeypad(gameclock.WithOverflowPolicy(s.overflow))
	err := k.Type(digits)
	p := KeypadPreview{Buffer: k.Buffer(), Display: k.Display()}
	if err == nil {
		_, err = k.Value()
	}
	if err != nil {
		p.Error = err.Error()
	} else {
		p.Valid = true
	}
	return p
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	sum := derive.Summarize(s.derived(ctx))
	stats := map[string]any{
		"started":        s.started,
		"records":        sum.Records,
		"period":         sum.CurrentPeriod,
		"scoreWhite":     sum.ScoreWhite,
		"scoreBlue":      sum.ScoreBlue,
		"matchDate":      s.match.Date,
		"dedupeSize":     s.dedupeSize,
		"dedupeEntries":  s.deduper.Size(),
		"locale":         s.locale.Name,
		"screenPolicy":   s.screen,
		"overflowPolicy": int(s.overflow),
	}
	if st, ok := s.notifier.(interface{ Stats() map[string]any }); ok {
		stats["live"] = st.Stats()
	}
	return stats
}

// derived runs the derivation pass. Caller holds mu.
func (s *Service) derived(ctx context.Context) []derive.Record {
	start := time.Now()
	out := derive.Derive(s.store.List(ctx))
	metrics.RecordDeriveLatency(float64(time.Since(start).Microseconds()) / 1000)
	return out
}

// afterChange recomputes everything from scratch, persists and broadcasts.
// Caller holds the write lock.
func (s *Service) afterChange(ctx context.Context, op string) []derive.Record {
	derived := s.derived(ctx)
	s.persist(ctx)
	s.publish(ctx, derived)
	s.logger.Debug(ctx, "scoresheet recomputed",
		logger.String("op", op),
		logger.Int("records", len(derived)))
	return derived
}

// persist saves the snapshot. A failed save is logged; the in-memory state
// stays authoritative and the next change retries.
func (s *Service) persist(ctx context.Context) {
	start := time.Now()
	if err := s.snapshots.Save(ctx, s.snapshot(ctx)); err != nil {
		metrics.RecordSnapshotFailure("save")
		s.logger.Error(ctx, "failed to save snapshot", logger.Error(err))
		return
	}
	metrics.RecordSnapshotSave(float64(time.Since(start).Microseconds()) / 1000)
}

func (s *Service) publish(ctx context.Context, derived []derive.Record) {
	sum := derive.Summarize(derived)
	metrics.UpdateMatchState(sum.Records, sum.CurrentPeriod, sum.ScoreWhite, sum.ScoreBlue)
	excluded := map[model.Team]int{}
	for _, agg := range views.Fouls(derived) {
		if agg.Excluded {
			excluded[agg.Team]++
		}
	}
	for _, t := range model.Teams {
		metrics.UpdateExcludedPlayers(string(t), excluded[t])
	}

	if err := s.notifier.Broadcast(ctx, MessageScoreboard, s.scoreboard(sum)); err != nil {
		metrics.RecordErrorByComponent("live", "broadcast")
		s.logger.Warn(ctx, "scoreboard broadcast failed", logger.Error(err))
	}
}

func (s *Service) snapshot(ctx context.Context) model.Snapshot {
	records := s.store.List(ctx)
	if records == nil {
		records = []model.Record{}
	}
	return model.Snapshot{Match: s.match, Records: records}
}

func (s *Service) scoreboard(sum derive.Summary) Scoreboard {
	return Scoreboard{
		Date:       s.match.Date,
		TeamWhite:  s.match.TeamWhite,
		TeamBlue:   s.match.TeamBlue,
		WhiteLabel: s.locale.TeamLabel(model.White, s.match.TeamWhite),
		BlueLabel:  s.locale.TeamLabel(model.Blue, s.match.TeamBlue),
		Summary:    sum,
	}
}

func (s *Service) today() string {
	return s.clock.Now().Format(model.DateLayout)
}
