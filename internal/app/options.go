package service

import (
	"github.com/jonboulle/clockwork"

	"github.com/okian/polo/internal/adapters/persistence"
	"github.com/okian/polo/internal/adapters/repository"
	"github.com/okian/polo/internal/domain/export"
	"github.com/okian/polo/internal/domain/gameclock"
	"github.com/okian/polo/internal/domain/views"
	"github.com/okian/polo/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSnapshotStore sets where snapshots are persisted.
func WithSnapshotStore(store persistence.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.snapshots = store
		}
	}
}

// WithNotifier sets the live scoreboard notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock sets the clock used for record ids and the reset date.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDedupeSize sets the size of the request id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithScreenPolicy sets the on-screen record order.
func WithScreenPolicy(p views.Policy) Option {
	return func(s *Service) {
		s.screen = p
	}
}

// WithLocale sets the locale for team labels and the default export.
func WithLocale(loc export.Locale) Option {
	return func(s *Service) {
		if loc.Name != "" {
			s.locale = loc
		}
	}
}

// WithOverflowPolicy sets how keypad previews treat a fourth digit past 8 minutes.
func WithOverflowPolicy(p gameclock.OverflowPolicy) Option {
	return func(s *Service) {
		s.overflow = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
