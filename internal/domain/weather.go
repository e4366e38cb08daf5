package domain

import (
	"context"
	"time"
)

// SuggestionLimit is the maximum number of geocoding matches kept per query.
const SuggestionLimit = 5

// Suggestion is one geocoding match offered to the user.
type Suggestion struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Region    string  `json:"region,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentConditions is the weather collaborator's current_weather payload.
type CurrentConditions struct {
	TemperatureC     float64
	WindSpeedKmh     float64
	WindDirectionDeg int
	ConditionCode    int
}

// WeatherReading is what the widget displays after a completed fetch.
type WeatherReading struct {
	LocationName     string    `json:"location_name"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	TemperatureC     float64   `json:"temperature_c"`
	WindSpeedKmh     float64   `json:"wind_speed_kmh"`
	WindDirectionDeg int       `json:"wind_direction_deg"`
	ConditionCode    int       `json:"condition_code"`
	ObservedAt       time.Time `json:"observed_at"`
}

// NewWeatherReading tags current conditions with the selected location and
// stamps it with the package clock.
func NewWeatherReading(name string, lat, lon float64, cond CurrentConditions) WeatherReading {
	return WeatherReading{
		LocationName:     name,
		Latitude:         lat,
		Longitude:        lon,
		TemperatureC:     cond.TemperatureC,
		WindSpeedKmh:     cond.WindSpeedKmh,
		WindDirectionDeg: cond.WindDirectionDeg,
		ConditionCode:    cond.ConditionCode,
		ObservedAt:       clock.Now().UTC(),
	}
}

// Geocoder resolves free-text place names into suggestions.
type Geocoder interface {
	// SearchLocations returns up to SuggestionLimit matches in provider order.
	// No matches is an empty slice and a nil error.
	SearchLocations(ctx context.Context, name string) ([]Suggestion, error)
}

// WeatherProvider reports current conditions at a coordinate.
type WeatherProvider interface {
	// CurrentWeather returns ErrNoWeatherData (possibly wrapped) when the
	// request succeeded but carried no current conditions.
	CurrentWeather(ctx context.Context, lat, lon float64) (CurrentConditions, error)
}
