package coordinator

import (
	"context"
	"errors"

	"github.com/couchcryptid/weathernow/internal/domain"
	"github.com/couchcryptid/weathernow/internal/observability"
)

type weatherRequested struct {
	lat, lon        float64
	name            string
	hideSuggestions bool
}

func (e weatherRequested) apply(c *Coordinator) bool {
	if e.hideSuggestions {
		c.state.SuggestionsVisible = false
	}

	// Only the latest request is authoritative.
	if c.cancelWeather != nil {
		c.cancelWeather()
	}
	c.weatherEpoch++
	epoch := c.weatherEpoch

	c.state.Loading = true
	c.state.WeatherErr = nil
	c.state.Weather = nil

	ctx, cancel := context.WithCancel(c.runCtx)
	c.cancelWeather = cancel

	c.logger.Info("weather request", "location", e.name, "lat", e.lat, "lon", e.lon, "epoch", epoch)
	go func() {
		cond, err := c.weather.CurrentWeather(ctx, e.lat, e.lon)
		c.post(weatherLoaded{epoch: epoch, lat: e.lat, lon: e.lon, name: e.name, cond: cond, err: err})
	}()
	return true
}

type weatherLoaded struct {
	epoch    uint64
	lat, lon float64
	name     string
	cond     domain.CurrentConditions
	err      error
}

func (e weatherLoaded) apply(c *Coordinator) bool {
	if e.epoch != c.weatherEpoch {
		c.metrics.StaleResponses.WithLabelValues(observability.CollaboratorWeather).Inc()
		c.logger.Debug("discarding stale weather", "location", e.name, "epoch", e.epoch, "current_epoch", c.weatherEpoch)
		return false
	}
	c.cancelWeather()
	c.cancelWeather = nil
	c.state.Loading = false

	if e.err != nil {
		c.state.WeatherErr = domain.ClassifyWeatherError(e.name, e.lat, e.lon, e.err)
		if errors.Is(e.err, domain.ErrNoWeatherData) {
			c.metrics.WeatherRequests.WithLabelValues("no_data").Inc()
			c.logger.Warn("no weather data", "location", e.name, "lat", e.lat, "lon", e.lon)
		} else {
			c.metrics.WeatherRequests.WithLabelValues("error").Inc()
			c.logger.Warn("weather fetch failed", "location", e.name, "lat", e.lat, "lon", e.lon, "error", e.err)
		}
		return true
	}

	reading := domain.NewWeatherReading(e.name, e.lat, e.lon, e.cond)
	c.state.Weather = &reading
	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	c.logger.Info("weather applied", "location", e.name, "condition_code", e.cond.ConditionCode)
	return true
}
