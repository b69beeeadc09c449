package dependent

import "github.com/rs/zerolog"

// Observer receives settled load events, e.g. to feed metrics.
type Observer func(Event)

// BindOption configures a Synchronizer.
type BindOption func(*Synchronizer)

// WithLogger sets the diagnostic logger lookup failures are reported to.
func WithLogger(logger zerolog.Logger) BindOption {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// WithObserver registers a callback invoked after each load settles.
func WithObserver(fn Observer) BindOption {
	return func(s *Synchronizer) {
		if fn != nil {
			s.observers = append(s.observers, fn)
		}
	}
}
