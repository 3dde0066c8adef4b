package repository

import "github.com/jonboulle/clockwork"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock sets the clock used to mint record ids.
func WithClock(c clockwork.Clock) Option {
	return func(s *MemoryStore) {
		if c != nil {
			s.clock = c
		}
	}
}
