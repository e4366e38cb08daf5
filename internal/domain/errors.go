package domain

import (
	"errors"
	"fmt"
)

// ErrNoWeatherData is returned when the forecast response has no current conditions.
var ErrNoWeatherData = errors.New("no weather data found")

// GeocodeTransportError is a network, status or decode failure while loading suggestions.
type GeocodeTransportError struct {
	Query string
	Err   error
}

func (e *GeocodeTransportError) Error() string {
	return fmt.Sprintf("geocode %q: %v", e.Query, e.Err)
}

func (e *GeocodeTransportError) Unwrap() error { return e.Err }

// WeatherTransportError is a network, status or decode failure while loading weather.
type WeatherTransportError struct {
	Latitude  float64
	Longitude float64
	Err       error
}

func (e *WeatherTransportError) Error() string {
	return fmt.Sprintf("weather at %.4f,%.4f: %v", e.Latitude, e.Longitude, e.Err)
}

func (e *WeatherTransportError) Unwrap() error { return e.Err }

// WeatherDataAbsentError means the transport succeeded but returned no current conditions.
type WeatherDataAbsentError struct {
	LocationName string
}

func (e *WeatherDataAbsentError) Error() string {
	return fmt.Sprintf("weather for %s: %v", e.LocationName, ErrNoWeatherData)
}

// Is reports ErrNoWeatherData as equivalent so callers can use errors.Is.
func (e *WeatherDataAbsentError) Is(target error) bool {
	return target == ErrNoWeatherData
}

// ClassifyWeatherError maps a WeatherProvider failure onto the error taxonomy.
func ClassifyWeatherError(name string, lat, lon float64, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNoWeatherData) {
		return &WeatherDataAbsentError{LocationName: name}
	}
	return &WeatherTransportError{Latitude: lat, Longitude: lon, Err: err}
}
