package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeWeatherProvider serves geocoding and forecast endpoints from canned
// payloads and counts calls per endpoint.
type fakeWeatherProvider struct {
	srv           *httptest.Server
	geoResults    []map[string]interface{}
	daily         map[string]interface{}
	geoCalls      int
	forecastCalls int
}

func newFakeWeatherProvider(t *testing.T) *fakeWeatherProvider {
	t.Helper()
	p := &fakeWeatherProvider{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		p.geoCalls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"results": p.geoResults})
	})
	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, r *http.Request) {
		p.forecastCalls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"daily": p.daily})
	})
	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeWeatherProvider) service() *WeatherService {
	return NewWeatherService(&WeatherServiceConfig{
		GeocodingURL: p.srv.URL + "/v1/search",
		ForecastURL:  p.srv.URL + "/v1/forecast",
		ForecastDays: 14,
	})
}

func parisGeoResults() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"name":      "Paris",
			"country":   "France",
			"latitude":  48.85,
			"longitude": 2.35,
			"timezone":  "Europe/Paris",
		},
	}
}

// dailySeries builds a parallel-array daily payload starting at the given
// date with one entry per weather code.
func dailySeries(start string, codes []int) map[string]interface{} {
	base, _ := time.Parse("2006-01-02", start)
	n := len(codes)
	times := make([]string, n)
	tempMax := make([]float64, n)
	tempMin := make([]float64, n)
	precip := make([]float64, n)
	wind := make([]float64, n)
	humidity := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = base.AddDate(0, 0, i).Format("2006-01-02")
		tempMax[i] = 70 + float64(i)
		tempMin[i] = 50 + float64(i)
		precip[i] = float64(10 * i)
		wind[i] = 12.4
		humidity[i] = 60
	}
	return map[string]interface{}{
		"time":                          times,
		"temperature_2m_max":            tempMax,
		"temperature_2m_min":            tempMin,
		"weathercode":                   codes,
		"precipitation_probability_max": precip,
		"windspeed_10m_max":             wind,
		"relative_humidity_2m_max":      humidity,
	}
}

func TestWeatherService_ExactDateMatch(t *testing.T) {
	p := newFakeWeatherProvider(t)
	p.geoResults = parisGeoResults()
	p.daily = dailySeries("2026-09-01", []int{0, 2, 61, 95})

	snapshot, err := p.service().Resolve(context.Background(), "Paris", "2026-09-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.Location != "Paris, France" {
		t.Errorf("expected location 'Paris, France', got %q", snapshot.Location)
	}
	if snapshot.Date != "2026-09-03" {
		t.Errorf("expected date 2026-09-03, got %s", snapshot.Date)
	}
	if snapshot.RequestedDate != "2026-09-03" {
		t.Errorf("expected requested date 2026-09-03, got %s", snapshot.RequestedDate)
	}
	if snapshot.Warning != "" {
		t.Errorf("expected no warning for exact match, got %q", snapshot.Warning)
	}
	if snapshot.Temperature != 72 {
		t.Errorf("expected temperature 72, got %f", snapshot.Temperature)
	}
	if snapshot.Description != "Light rain" {
		t.Errorf("expected 'Light rain', got %q", snapshot.Description)
	}
	if snapshot.Icon != "cloud-rain" {
		t.Errorf("expected icon cloud-rain, got %q", snapshot.Icon)
	}
	if snapshot.Details.FeelsLike != snapshot.Temperature {
		t.Errorf("expected feels-like to equal max temperature, got %f", snapshot.Details.FeelsLike)
	}
	if snapshot.Details.WindSpeed != 12 {
		t.Errorf("expected wind speed rounded to 12, got %f", snapshot.Details.WindSpeed)
	}
}

func TestWeatherService_NearestDateSubstitution(t *testing.T) {
	p := newFakeWeatherProvider(t)
	p.geoResults = parisGeoResults()
	// Window covers Sep 1-14; request Sep 30 -> nearest is Sep 14 (last entry).
	codes := make([]int, 14)
	p.daily = dailySeries("2026-09-01", codes)

	snapshot, err := p.service().Resolve(context.Background(), "Paris", "2026-09-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.Date != "2026-09-14" {
		t.Errorf("expected substituted date 2026-09-14, got %s", snapshot.Date)
	}
	if snapshot.RequestedDate != "2026-09-30" {
		t.Errorf("expected requested date 2026-09-30, got %s", snapshot.RequestedDate)
	}
	if snapshot.Warning == "" {
		t.Fatal("expected a warning for substituted date")
	}
	if !strings.Contains(snapshot.Warning, "September 14, 2026") {
		t.Errorf("expected warning to name the substituted date, got %q", snapshot.Warning)
	}
	if !strings.Contains(snapshot.Warning, "2026-09-30") {
		t.Errorf("expected warning to name the requested date, got %q", snapshot.Warning)
	}
}

func TestSelectForecastDay_TieBreaksToFirstEntry(t *testing.T) {
	// Target sits exactly between the two entries; the earlier-indexed
	// provider entry must win.
	dates := []string{"2026-09-10", "2026-09-12"}
	target, _ := time.Parse("2006-01-02", "2026-09-11")

	idx, warning := selectForecastDay(dates, target)
	if idx != 0 {
		t.Errorf("expected tie to resolve to index 0, got %d", idx)
	}
	if warning == "" {
		t.Error("expected a warning for substituted date")
	}
}

func TestSelectForecastDay_ExactMatch(t *testing.T) {
	dates := []string{"2026-09-10", "2026-09-11", "2026-09-12"}
	target, _ := time.Parse("2006-01-02", "2026-09-11")

	idx, warning := selectForecastDay(dates, target)
	if idx != 1 {
		t.Errorf("expected index 1, got %d", idx)
	}
	if warning != "" {
		t.Errorf("expected no warning, got %q", warning)
	}
}

func TestWeatherService_LocationNotFound(t *testing.T) {
	p := newFakeWeatherProvider(t)
	p.geoResults = nil

	_, err := p.service().Resolve(context.Background(), "Atlantis", "2026-09-03")
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
	if p.forecastCalls != 0 {
		t.Errorf("expected no forecast call after failed geocoding, got %d", p.forecastCalls)
	}
}

func TestWeatherService_InvalidDate(t *testing.T) {
	p := newFakeWeatherProvider(t)
	p.geoResults = parisGeoResults()

	_, err := p.service().Resolve(context.Background(), "Paris", "soonish")
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if p.geoCalls != 0 {
		t.Errorf("expected no provider calls for invalid date, got %d", p.geoCalls)
	}
}

func TestWeatherService_NoForecastData(t *testing.T) {
	p := newFakeWeatherProvider(t)
	p.geoResults = parisGeoResults()
	p.daily = dailySeries("2026-09-01", []int{})

	_, err := p.service().Resolve(context.Background(), "Paris", "2026-09-03")
	if !errors.Is(err, ErrNoForecastData) {
		t.Fatalf("expected ErrNoForecastData, got %v", err)
	}
}

func TestWeatherService_TruncatedValueArrays(t *testing.T) {
	p := newFakeWeatherProvider(t)
	p.geoResults = parisGeoResults()
	// Date series longer than every value array; selecting any entry must
	// surface an error, not panic.
	p.daily = map[string]interface{}{
		"time":                          []string{"2026-09-01", "2026-09-02", "2026-09-03"},
		"temperature_2m_max":            []float64{},
		"temperature_2m_min":            []float64{},
		"weathercode":                   []int{},
		"precipitation_probability_max": []float64{},
		"windspeed_10m_max":             []float64{},
		"relative_humidity_2m_max":      []float64{},
	}

	_, err := p.service().Resolve(context.Background(), "Paris", "2026-09-02")
	if !errors.Is(err, ErrNoForecastData) {
		t.Fatalf("expected ErrNoForecastData for truncated payload, got %v", err)
	}
}

func TestWeatherService_PartiallyTruncatedValueArrays(t *testing.T) {
	p := newFakeWeatherProvider(t)
	p.geoResults = parisGeoResults()
	// Only the wind array falls short of the selected index.
	daily := dailySeries("2026-09-01", []int{0, 1, 2})
	daily["windspeed_10m_max"] = []float64{12.4}
	p.daily = daily

	_, err := p.service().Resolve(context.Background(), "Paris", "2026-09-03")
	if !errors.Is(err, ErrNoForecastData) {
		t.Fatalf("expected ErrNoForecastData for short wind array, got %v", err)
	}
}

func TestWeatherCodeMapping(t *testing.T) {
	tests := []struct {
		code        int
		description string
		icon        string
	}{
		{0, "Clear sky", "sun"},
		{2, "Partly cloudy", "cloud-sun"},
		{45, "Foggy", "cloud-fog"},
		{65, "Heavy rain", "cloud-rain"},
		{75, "Heavy snow", "cloud-snow"},
		{99, "Thunderstorm with heavy hail", "cloud-lightning"},
		{42, "Unknown", "cloud"}, // unmapped code
	}

	for _, tt := range tests {
		if got := weatherCodeDescription(tt.code); got != tt.description {
			t.Errorf("weatherCodeDescription(%d) = %q, want %q", tt.code, got, tt.description)
		}
		if got := weatherCodeIcon(tt.code); got != tt.icon {
			t.Errorf("weatherCodeIcon(%d) = %q, want %q", tt.code, got, tt.icon)
		}
	}
}
