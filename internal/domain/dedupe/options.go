package dedupe

// Option configures NewInMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxSize caps how many request ids are remembered before the oldest is
// forgotten. Zero or less keeps every id for the life of the match.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
