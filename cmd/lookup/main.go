// Command lookup resolves a city name and prints its current weather once,
// without the interactive prompt.
//
// Usage:
//
//	go run ./cmd/lookup -city London
//	go run ./cmd/lookup -city London -pick 2
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/couchcryptid/weathernow/internal/adapter/openmeteo"
	"github.com/couchcryptid/weathernow/internal/config"
	"github.com/couchcryptid/weathernow/internal/coordinator"
	"github.com/couchcryptid/weathernow/internal/domain"
	"github.com/couchcryptid/weathernow/internal/observability"
	"github.com/couchcryptid/weathernow/internal/presentation"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	city := flag.String("city", "", "city name to look up")
	pick := flag.Int("pick", 1, "which suggestion to use (1-based)")
	flag.Parse()

	if *city == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -city")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	client := openmeteo.NewClient(cfg.GeocodingBaseURL, cfg.WeatherBaseURL, cfg.RequestTimeout, observability.NewMetrics(), logger)

	ctx := context.Background()

	suggestions, err := client.SearchLocations(ctx, *city)
	if err != nil {
		return fmt.Errorf("search %q: %w", *city, err)
	}
	if len(suggestions) == 0 {
		return fmt.Errorf("no locations match %q", *city)
	}
	if *pick < 1 || *pick > len(suggestions) {
		return fmt.Errorf("-pick %d out of range, %d suggestions", *pick, len(suggestions))
	}

	for i, s := range suggestions {
		fmt.Printf("  %d. %s\n", i+1, presentation.SuggestionLabel(s))
	}
	chosen := suggestions[*pick-1]

	state := coordinator.State{Query: *city, Suggestions: suggestions}
	cond, err := client.CurrentWeather(ctx, chosen.Latitude, chosen.Longitude)
	if err != nil {
		state.WeatherErr = domain.ClassifyWeatherError(chosen.Name, chosen.Latitude, chosen.Longitude, err)
	} else {
		reading := domain.NewWeatherReading(chosen.Name, chosen.Latitude, chosen.Longitude, cond)
		state.Weather = &reading
	}

	fmt.Fprint(os.Stdout, presentation.Format(presentation.Render(state, domain.CurrentTimeOfDay())))
	return state.WeatherErr
}
