package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weathernow/internal/domain"
	"github.com/couchcryptid/weathernow/internal/observability"
	"github.com/jonboulle/clockwork"
)

const (
	// DebounceInterval is the quiet period after the last query change before
	// suggestions are requested.
	DebounceInterval = 400 * time.Millisecond

	// MinQueryLength is the shortest query, in code points, that is looked up.
	MinQueryLength = 2

	eventBuffer = 64
)

// event is one unit of work for the loop. apply reports whether the visible
// state changed.
type event interface {
	apply(c *Coordinator) bool
}

// Coordinator owns the widget state. Inputs, debounce timer firings and
// network completions are serialized through a single event loop, so state is
// only ever touched by the Run goroutine.
type Coordinator struct {
	geocoder domain.Geocoder
	weather  domain.WeatherProvider
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	events    chan event
	done      chan struct{}
	started   atomic.Bool
	running   atomic.Bool
	last      atomic.Pointer[State]
	listeners []Listener

	// Owned by the Run goroutine.
	runCtx        context.Context
	state         State
	searchEpoch   uint64
	weatherEpoch  uint64
	debounce      clockwork.Timer
	cancelSearch  context.CancelFunc
	cancelWeather context.CancelFunc
}

// New creates a Coordinator. Call Run to start processing.
func New(geocoder domain.Geocoder, weather domain.WeatherProvider, logger *slog.Logger, metrics *observability.Metrics) *Coordinator {
	c := &Coordinator{
		geocoder: geocoder,
		weather:  weather,
		clock:    domain.Clock(),
		logger:   logger,
		metrics:  metrics,
		events:   make(chan event, eventBuffer),
		done:     make(chan struct{}),
	}
	c.last.Store(&State{})
	return c
}

// AddListener registers l. It must be called before Run.
func (c *Coordinator) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// CheckReadiness returns nil while the event loop is running.
func (c *Coordinator) CheckReadiness(_ context.Context) error {
	if !c.running.Load() {
		return errors.New("coordinator event loop is not running")
	}
	return nil
}

// Run processes events until the context is cancelled. It may be called once.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.New("coordinator already started")
	}

	c.runCtx = ctx
	c.running.Store(true)
	c.metrics.CoordinatorRunning.Set(1)
	c.logger.Info("coordinator started", "debounce", DebounceInterval)

	defer func() {
		c.stopDebounce()
		if c.cancelSearch != nil {
			c.cancelSearch()
		}
		if c.cancelWeather != nil {
			c.cancelWeather()
		}
		c.running.Store(false)
		c.metrics.CoordinatorRunning.Set(0)
		close(c.done)
	}()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("coordinator stopping", "reason", ctx.Err())
			return nil
		case ev := <-c.events:
			if ev.apply(c) {
				c.notify()
			}
		}
	}
}

// QueryChanged records new search text.
func (c *Coordinator) QueryChanged(text string) {
	c.post(queryChanged{text: text})
}

// SelectSuggestion hides the suggestion list and fetches weather for s.
func (c *Coordinator) SelectSuggestion(s domain.Suggestion) {
	c.post(weatherRequested{lat: s.Latitude, lon: s.Longitude, name: s.Name, hideSuggestions: true})
}

// FetchWeather fetches weather for a coordinate and labels the reading with name.
func (c *Coordinator) FetchWeather(lat, lon float64, name string) {
	c.post(weatherRequested{lat: lat, lon: lon, name: name})
}

// Snapshot returns the current state. It is ordered after every input
// previously sent from the same goroutine. Once the loop has stopped it
// returns the last published state.
func (c *Coordinator) Snapshot() State {
	reply := make(chan State, 1)
	if !c.post(snapshotRequest{reply: reply}) {
		return *c.last.Load()
	}
	select {
	case s := <-reply:
		return s
	case <-c.done:
		return *c.last.Load()
	}
}

// post enqueues ev. It reports false if the loop has already stopped.
func (c *Coordinator) post(ev event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

func (c *Coordinator) notify() {
	s := c.state
	c.last.Store(&s)
	for _, l := range c.listeners {
		l.StateChanged(s)
	}
}

type snapshotRequest struct {
	reply chan<- State
}

func (e snapshotRequest) apply(c *Coordinator) bool {
	e.reply <- c.state
	return false
}
