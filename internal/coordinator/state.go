package coordinator

import "github.com/couchcryptid/weathernow/internal/domain"

// State is everything the presentation layer needs. Snapshots share the
// suggestion slice and reading with the coordinator; both are replaced, never
// mutated, so treat them as read-only.
type State struct {
	Query              string
	Suggestions        []domain.Suggestion
	SuggestionsVisible bool
	Loading            bool
	Weather            *domain.WeatherReading

	// Each error is set and cleared only by its own operation.
	SearchErr  error
	WeatherErr error
}

// Listener is notified with a snapshot after every state change. It runs on
// the coordinator goroutine and must not block.
type Listener interface {
	StateChanged(State)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(State)

func (f ListenerFunc) StateChanged(s State) { f(s) }
