package coordinator

import (
	"context"
	"slices"
	"unicode/utf8"

	"github.com/couchcryptid/weathernow/internal/domain"
	"github.com/couchcryptid/weathernow/internal/observability"
)

type queryChanged struct {
	text string
}

func (e queryChanged) apply(c *Coordinator) bool {
	c.metrics.QueryChanges.Inc()
	c.state.Query = e.text
	c.supersedeSearch()

	if utf8.RuneCountInString(e.text) < MinQueryLength {
		c.state.Suggestions = nil
		c.state.SuggestionsVisible = false
		return true
	}

	epoch, query := c.searchEpoch, e.text
	c.debounce = c.clock.AfterFunc(DebounceInterval, func() {
		c.post(debounceFired{epoch: epoch, query: query})
	})
	return true
}

// supersedeSearch invalidates all earlier searches: the pending timer is
// stopped, the in-flight request is cancelled and the epoch advances so any
// completion still on its way is discarded.
func (c *Coordinator) supersedeSearch() {
	c.stopDebounce()
	if c.cancelSearch != nil {
		c.cancelSearch()
		c.cancelSearch = nil
	}
	c.searchEpoch++
}

func (c *Coordinator) stopDebounce() {
	if c.debounce == nil {
		return
	}
	if c.debounce.Stop() {
		c.metrics.DebounceCancelled.Inc()
	}
	c.debounce = nil
}

type debounceFired struct {
	epoch uint64
	query string
}

func (e debounceFired) apply(c *Coordinator) bool {
	// The timer fired concurrently with a Stop from a newer change.
	if e.epoch != c.searchEpoch {
		return false
	}
	c.debounce = nil

	ctx, cancel := context.WithCancel(c.runCtx)
	c.cancelSearch = cancel

	c.logger.Debug("geocode request", "query", e.query, "epoch", e.epoch)
	go func() {
		results, err := c.geocoder.SearchLocations(ctx, e.query)
		c.post(suggestionsLoaded{epoch: e.epoch, query: e.query, results: results, err: err})
	}()
	return false
}

type suggestionsLoaded struct {
	epoch   uint64
	query   string
	results []domain.Suggestion
	err     error
}

func (e suggestionsLoaded) apply(c *Coordinator) bool {
	if e.epoch != c.searchEpoch {
		c.metrics.StaleResponses.WithLabelValues(observability.CollaboratorGeocode).Inc()
		c.logger.Debug("discarding stale suggestions", "query", e.query, "epoch", e.epoch, "current_epoch", c.searchEpoch)
		return false
	}
	if c.cancelSearch != nil {
		c.cancelSearch()
		c.cancelSearch = nil
	}

	if e.err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		c.logger.Warn("geocode failed", "query", e.query, "error", e.err)
		c.state.SearchErr = &domain.GeocodeTransportError{Query: e.query, Err: e.err}
		return true
	}

	results := e.results
	if len(results) > domain.SuggestionLimit {
		results = results[:domain.SuggestionLimit]
	}
	if len(results) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	} else {
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}

	c.state.Suggestions = slices.Clone(results)
	c.state.SuggestionsVisible = true
	c.state.SearchErr = nil
	return true
}
