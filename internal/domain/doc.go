// Package domain models the weather lookup widget: geocoding suggestions,
// current-weather readings, and the errors the two remote collaborators can
// produce.
//
// # Collaborators
//
// Both collaborators are Open-Meteo JSON APIs (https://open-meteo.com), read-only
// and unauthenticated:
//
//	Geocoding:  GET /v1/search?name=<query>&count=5&language=en
//	Forecast:   GET /v1/forecast?latitude=<lat>&longitude=<lon>&current_weather=true&timezone=auto
//
// The geocoding response lists matches under "results"; the key is omitted
// entirely when nothing matches, which is not an error. The forecast response
// carries current conditions under "current_weather"; when that object is
// missing the request succeeded but there is nothing to show, reported as
// [ErrNoWeatherData] rather than a transport failure.
//
// # Units
//
//	temperature    degrees Celsius
//	windspeed      km/h
//	winddirection  degrees, 0-360, meteorological (direction the wind comes from)
//
// # Condition codes
//
// "weathercode" is a WMO 4677 code as simplified by Open-Meteo:
//
//	0        clear sky
//	1-3      mainly clear, partly cloudy, overcast
//	45, 48   fog, depositing rime fog
//	51-57    drizzle (incl. freezing)
//	61-67    rain (incl. freezing)
//	71-77    snow fall, snow grains
//	80-82    rain showers
//	85, 86   snow showers
//	95-99    thunderstorm (with hail at 96, 99)
//
// Codes between the listed bands do not occur in practice; presentation treats
// them as generic cloud cover.
package domain
