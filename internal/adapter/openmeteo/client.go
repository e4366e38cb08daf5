package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/weathernow/internal/domain"
	"github.com/couchcryptid/weathernow/internal/observability"
	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
)

// Client implements domain.Geocoder and domain.WeatherProvider using the
// Open-Meteo geocoding and forecast APIs.
type Client struct {
	httpClient   *http.Client
	geocodingURL string
	forecastURL  string
	geocodeCB    *gobreaker.CircuitBreaker
	weatherCB    *gobreaker.CircuitBreaker
	validate     *validator.Validate
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewClient creates an Open-Meteo client. Base URLs are the scheme and host
// of each collaborator, e.g. https://geocoding-api.open-meteo.com.
func NewClient(geocodingBaseURL, weatherBaseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		geocodingURL: geocodingBaseURL + "/v1/search",
		forecastURL:  weatherBaseURL + "/v1/forecast",
		geocodeCB:    newBreaker(observability.CollaboratorGeocode, metrics, logger),
		weatherCB:    newBreaker(observability.CollaboratorWeather, metrics, logger),
		validate:     validator.New(),
		metrics:      metrics,
		logger:       logger,
	}
}

// SearchLocations looks up places matching name.
func (c *Client) SearchLocations(ctx context.Context, name string) ([]domain.Suggestion, error) {
	params := url.Values{
		"name":     {name},
		"count":    {strconv.Itoa(domain.SuggestionLimit)},
		"language": {"en"},
	}

	var payload searchResponse
	if err := c.getJSON(ctx, c.geocodeCB, observability.CollaboratorGeocode, c.geocodingURL+"?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	results := payload.Results
	if len(results) > domain.SuggestionLimit {
		results = results[:domain.SuggestionLimit]
	}
	out := make([]domain.Suggestion, 0, len(results))
	for _, r := range results {
		out = append(out, domain.Suggestion{
			Name:      r.Name,
			Country:   r.Country,
			Region:    r.Admin1,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		})
	}
	return out, nil
}

// CurrentWeather fetches current conditions at lat, lon.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (domain.CurrentConditions, error) {
	params := url.Values{
		"latitude":        {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":       {strconv.FormatFloat(lon, 'f', -1, 64)},
		"current_weather": {"true"},
		"timezone":        {"auto"},
	}

	var payload forecastResponse
	if err := c.getJSON(ctx, c.weatherCB, observability.CollaboratorWeather, c.forecastURL+"?"+params.Encode(), &payload); err != nil {
		return domain.CurrentConditions{}, err
	}

	cw := payload.CurrentWeather
	if cw == nil {
		return domain.CurrentConditions{}, fmt.Errorf("forecast at %s,%s: %w", params.Get("latitude"), params.Get("longitude"), domain.ErrNoWeatherData)
	}
	if err := c.validate.Struct(cw); err != nil {
		return domain.CurrentConditions{}, fmt.Errorf("invalid current_weather payload: %w", err)
	}

	return domain.CurrentConditions{
		TemperatureC:     cw.Temperature,
		WindSpeedKmh:     cw.WindSpeed,
		WindDirectionDeg: int(cw.WindDirection + 0.5),
		ConditionCode:    cw.WeatherCode,
	}, nil
}

// getJSON runs one GET, recording its outcome on the collaborator's circuit
// breaker, and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, cb *gobreaker.CircuitBreaker, collaborator, fullURL string, out any) error {
	start := time.Now()
	defer func() {
		c.metrics.APIDuration.WithLabelValues(collaborator).Observe(time.Since(start).Seconds())
	}()

	_, err := cb.Execute(func() (any, error) {
		return nil, c.doRequest(ctx, fullURL, collaborator, out)
	})
	// Every fetch is user-initiated, so an open breaker still sends the
	// request. The breaker only tracks collaborator health.
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Debug("circuit breaker open, sending anyway", "collaborator", collaborator)
		return c.doRequest(ctx, fullURL, collaborator, out)
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, fullURL, collaborator string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", collaborator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("open-meteo %s API error: status %d: %s", collaborator, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", collaborator, err)
	}
	return nil
}

// Open-Meteo API response types.

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Admin1    string  `json:"admin1"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type forecastResponse struct {
	CurrentWeather *currentWeather `json:"current_weather"`
}

type currentWeather struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"windspeed" validate:"gte=0"`
	WindDirection float64 `json:"winddirection" validate:"gte=0,lte=360"`
	WeatherCode   int     `json:"weathercode" validate:"gte=0"`
}
