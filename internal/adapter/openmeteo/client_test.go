package openmeteo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/weathernow/internal/domain"
	"github.com/couchcryptid/weathernow/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, baseURL, 5*time.Second, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set(headerContentType, contentTypeJSON)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_SearchLocations_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "Lon", r.URL.Query().Get("name"))
		assert.Equal(t, "5", r.URL.Query().Get("count"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))

		writeJSON(t, w, searchResponse{Results: []searchResult{
			{Name: "London", Country: "United Kingdom", Admin1: "England", Latitude: 51.50853, Longitude: -0.12574},
			{Name: "London", Country: "Canada", Admin1: "Ontario", Latitude: 42.98339, Longitude: -81.23304},
		}})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	got, err := c.SearchLocations(context.Background(), "Lon")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, domain.Suggestion{
		Name: "London", Country: "United Kingdom", Region: "England", Latitude: 51.50853, Longitude: -0.12574,
	}, got[0])
	assert.Equal(t, "Canada", got[1].Country)
}

func TestClient_SearchLocations_NoResultsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"generationtime_ms":0.5}`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).SearchLocations(context.Background(), "Xyzzy")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClient_SearchLocations_KeepsFirstFiveInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		results := make([]searchResult, 0, 7)
		for _, n := range []string{"a", "b", "c", "d", "e", "f", "g"} {
			results = append(results, searchResult{Name: n, Country: "X", Latitude: 1, Longitude: 1})
		}
		writeJSON(t, w, searchResponse{Results: results})
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).SearchLocations(context.Background(), "any")
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, want := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, want, got[i].Name)
	}
}

func TestClient_SearchLocations_KeepsEntriesAsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, searchResponse{Results: []searchResult{
			{Name: "", Country: "X", Latitude: 1, Longitude: 1},
			{Name: "Odd", Country: "X", Latitude: 200, Longitude: 1},
			{Name: "Good", Country: "X", Latitude: 10, Longitude: 20},
		}})
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).SearchLocations(context.Background(), "any")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Empty(t, got[0].Name)
	assert.Equal(t, "Odd", got[1].Name)
	assert.Equal(t, 200.0, got[1].Latitude)
	assert.Equal(t, "Good", got[2].Name)
}

func TestClient_SearchLocations_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":true,"reason":"upstream"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).SearchLocations(context.Background(), "Lon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_SearchLocations_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"results": [`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).SearchLocations(context.Background(), "Lon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_SearchLocations_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, 50*time.Millisecond, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.SearchLocations(context.Background(), "Lon")
	require.Error(t, err)
}

func TestClient_CurrentWeather_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "51.5", q.Get("latitude"))
		assert.Equal(t, "-0.12", q.Get("longitude"))
		assert.Equal(t, "true", q.Get("current_weather"))
		assert.Equal(t, "auto", q.Get("timezone"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"latitude":51.5,"longitude":-0.12,"current_weather":{"temperature":15.2,"windspeed":10,"winddirection":200,"weathercode":2,"time":"2024-04-26T15:00"}}`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).CurrentWeather(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.Equal(t, domain.CurrentConditions{
		TemperatureC:     15.2,
		WindSpeedKmh:     10,
		WindDirectionDeg: 200,
		ConditionCode:    2,
	}, got)
}

func TestClient_CurrentWeather_MissingCurrentWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"latitude":51.5,"longitude":-0.12}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CurrentWeather(context.Background(), 51.5, -0.12)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoWeatherData)
}

func TestClient_CurrentWeather_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CurrentWeather(context.Background(), 51.5, -0.12)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoWeatherData)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_CurrentWeather_InvalidPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":15.2,"windspeed":10,"winddirection":200,"weathercode":-1}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CurrentWeather(context.Background(), 51.5, -0.12)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoWeatherData)
}

func TestClient_CurrentWeather_CodeAboveNinetyNine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":21,"windspeed":30,"winddirection":90,"weathercode":100}}`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).CurrentWeather(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.Equal(t, 100, got.ConditionCode)
}

func TestClient_OpenBreakerStillSendsRequests(t *testing.T) {
	var (
		hits    atomic.Int32
		healthy atomic.Bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !healthy.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if r.URL.Path == "/v1/forecast" {
			w.Header().Set(headerContentType, contentTypeJSON)
			_, _ = w.Write([]byte(`{"current_weather":{"temperature":15.2,"windspeed":10,"winddirection":200,"weathercode":2}}`))
			return
		}
		writeJSON(t, w, searchResponse{Results: []searchResult{{Name: "London", Country: "UK", Latitude: 51.5, Longitude: -0.12}}})
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := NewClient(srv.URL, srv.URL, 5*time.Second, metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for range breakerTripAfter {
		_, err := c.SearchLocations(context.Background(), "Lon")
		require.Error(t, err)
		_, err = c.CurrentWeather(context.Background(), 51.5, -0.12)
		require.Error(t, err)
	}
	assert.Equal(t, int32(2*breakerTripAfter), hits.Load())
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.BreakerOpen.WithLabelValues(observability.CollaboratorGeocode)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.BreakerOpen.WithLabelValues(observability.CollaboratorWeather)), 0)

	// The collaborator has recovered; both calls must reach it and succeed.
	healthy.Store(true)

	got, err := c.SearchLocations(context.Background(), "London")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	cond, err := c.CurrentWeather(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.Equal(t, 2, cond.ConditionCode)

	assert.Equal(t, int32(2*breakerTripAfter+2), hits.Load())
}

func TestClient_OpenBreakerReportsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	for range breakerTripAfter {
		_, _ = c.CurrentWeather(context.Background(), 51.5, -0.12)
	}

	_, err := c.CurrentWeather(context.Background(), 51.5, -0.12)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_CancelledRequestsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, searchResponse{Results: []searchResult{{Name: "London", Country: "UK", Latitude: 51.5, Longitude: -0.12}}})
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for range breakerTripAfter + 1 {
		_, err := c.SearchLocations(ctx, "Lon")
		require.ErrorIs(t, err, context.Canceled)
	}

	got, err := c.SearchLocations(context.Background(), "London")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
