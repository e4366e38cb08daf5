package presentation

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/couchcryptid/weathernow/internal/coordinator"
	"github.com/couchcryptid/weathernow/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTextRenderer_StateChanged(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextRenderer(&buf, domain.Afternoon, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var _ coordinator.Listener = r

	r.StateChanged(coordinator.State{
		Query:              "Lon",
		Suggestions:        []domain.Suggestion{{Name: "London", Country: "UK"}},
		SuggestionsVisible: true,
	})
	r.StateChanged(coordinator.State{Query: "Lon", Weather: londonReading()})

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, separator))
	assert.Contains(t, out, "Search: Lon\n")
	assert.Contains(t, out, "  1. London, UK\n")
	assert.Contains(t, out, "🌤️ London\n15°C\nWind: 10 km/h\n200° | Feels like 15°C\n")
	assert.Contains(t, out, MsgEmptyState)
}

func TestFormat(t *testing.T) {
	t.Run("loading", func(t *testing.T) {
		out := Format(Render(coordinator.State{Query: "Paris", Loading: true}, domain.Night))

		assert.Contains(t, out, MsgLoading)
		assert.NotContains(t, out, MsgEmptyState)
		assert.NotContains(t, out, "°C")
	})

	t.Run("error", func(t *testing.T) {
		out := Format(Render(coordinator.State{WeatherErr: &domain.WeatherDataAbsentError{LocationName: "Atlantis"}}, domain.Night))

		assert.Contains(t, out, MsgNoWeatherData+"\n")
	})

	t.Run("background first", func(t *testing.T) {
		out := Format(Render(coordinator.State{}, domain.Morning))
		lines := strings.Split(out, "\n")

		assert.Equal(t, "["+imageClear+"]", lines[1])
	})
}
