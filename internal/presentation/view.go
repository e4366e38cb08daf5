// Package presentation maps coordinator state to what the user sees. Nothing
// here mutates state.
package presentation

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/couchcryptid/weathernow/internal/coordinator"
	"github.com/couchcryptid/weathernow/internal/domain"
)

// User-facing messages.
const (
	MsgGeocodeFailed = "⚠️ Failed to load cities"
	MsgWeatherFailed = "⚠️ Failed to fetch weather data"
	MsgNoWeatherData = "No weather data found"
	MsgLoading       = "Fetching weather data..."
	MsgEmptyState    = "Search your city to view the weather!"
)

const imageURLFormat = "https://images.unsplash.com/%s?auto=format&fit=crop&w=2000&q=80"

var (
	imageThunderstorm = fmt.Sprintf(imageURLFormat, "photo-1500674425229-f692875b0ab7")
	imageShowers      = fmt.Sprintf(imageURLFormat, "photo-1504386106331-3e4e71712b38")
	imageRain         = fmt.Sprintf(imageURLFormat, "photo-1527766833261-b09c3163a791")
	imageClear        = fmt.Sprintf(imageURLFormat, "photo-1506744038136-46273834b3fb")
	imageEvening      = fmt.Sprintf(imageURLFormat, "photo-1502082553048-f009c37129b9")
	imageNight        = fmt.Sprintf(imageURLFormat, "photo-1504384308090-c894fdcc538d")
	imageDaytime      = fmt.Sprintf(imageURLFormat, "photo-1500375592092-40eb2168fd21")
)

// Background picks the backdrop image for a WMO condition code. Weather
// categories win over time of day.
func Background(code int, tod domain.TimeOfDay) string {
	switch {
	case code >= 95:
		return imageThunderstorm
	case code >= 80:
		return imageShowers
	case code >= 51:
		return imageRain
	case code <= 3:
		return imageClear
	case tod == domain.Evening:
		return imageEvening
	case tod == domain.Night:
		return imageNight
	default:
		return imageDaytime
	}
}

// Emoji returns the icon for a WMO condition code.
func Emoji(code int) string {
	switch {
	case code == 0:
		return "☀️"
	case code <= 3:
		return "🌤️"
	case code >= 45 && code <= 48:
		return "🌫️"
	case code >= 51 && code <= 67:
		return "🌧️"
	case code >= 71 && code <= 77:
		return "❄️"
	case code >= 80 && code <= 82:
		return "🌦️"
	case code >= 95:
		return "🌩️"
	default:
		return "☁️"
	}
}

// View is the rendered widget. Empty strings and nil fields are hidden regions.
type View struct {
	Background string
	Query      string
	Dropdown   []string
	Errors     []string // geocoding first, then weather
	Loading    string
	Reading    *ReadingView
	EmptyState string
}

// ReadingView is the formatted weather reading region.
type ReadingView struct {
	Emoji       string
	Name        string
	Temperature string
	Wind        string
	Direction   string
	FeelsLike   string
}

// Render builds the view for a state snapshot.
func Render(s coordinator.State, tod domain.TimeOfDay) View {
	code := 0
	if s.Weather != nil {
		code = s.Weather.ConditionCode
	}

	v := View{
		Background: Background(code, tod),
		Query:      s.Query,
	}
	for _, err := range []error{s.SearchErr, s.WeatherErr} {
		if msg := ErrorMessage(err); msg != "" {
			v.Errors = append(v.Errors, msg)
		}
	}

	if s.SuggestionsVisible && len(s.Suggestions) > 0 {
		v.Dropdown = make([]string, 0, len(s.Suggestions))
		for _, sug := range s.Suggestions {
			v.Dropdown = append(v.Dropdown, SuggestionLabel(sug))
		}
	}

	switch {
	case s.Loading:
		v.Loading = MsgLoading
	case s.Weather != nil:
		v.Reading = renderReading(s.Weather)
	default:
		v.EmptyState = MsgEmptyState
	}
	return v
}

func renderReading(r *domain.WeatherReading) *ReadingView {
	temp := FormatTemperature(r.TemperatureC)
	return &ReadingView{
		Emoji:       Emoji(r.ConditionCode),
		Name:        r.LocationName,
		Temperature: temp,
		Wind:        "Wind: " + strconv.FormatFloat(r.WindSpeedKmh, 'f', -1, 64) + " km/h",
		Direction:   strconv.Itoa(r.WindDirectionDeg) + "°",
		FeelsLike:   "Feels like " + temp,
	}
}

// SuggestionLabel formats a dropdown entry.
func SuggestionLabel(s domain.Suggestion) string {
	return s.Name + ", " + s.Country
}

// FormatTemperature rounds half up to whole degrees.
func FormatTemperature(c float64) string {
	n := int(math.Floor(c + 0.5))
	return strconv.Itoa(n) + "°C"
}

// ErrorMessage maps the error taxonomy onto the error region text.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var geocodeErr *domain.GeocodeTransportError
	switch {
	case errors.As(err, &geocodeErr):
		return MsgGeocodeFailed
	case errors.Is(err, domain.ErrNoWeatherData):
		return MsgNoWeatherData
	default:
		return MsgWeatherFailed
	}
}
