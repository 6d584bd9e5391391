package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nkatz/stylist/internal/domain"
	"github.com/nkatz/stylist/internal/logger"
)

// Weather resolution errors. These abort the pipeline run and reach the user.
var (
	ErrInvalidDate      = errors.New("invalid date format")
	ErrLocationNotFound = errors.New("location not found, please try a different city name")
	ErrNoForecastData   = errors.New("no weather data available for the selected date")
)

// WeatherServiceConfig holds configuration for the weather resolver.
type WeatherServiceConfig struct {
	GeocodingURL string
	ForecastURL  string
	ForecastDays int
	Timeout      time.Duration
}

// WeatherService resolves a place name and target date into a forecast
// snapshot, substituting the nearest available date when needed.
type WeatherService struct {
	client       *resty.Client
	geocodingURL string
	forecastURL  string
	forecastDays int
}

// NewWeatherService creates a new weather resolver.
// Parameters:
//   - cfg: provider endpoints and forecast horizon.
//
// Returns:
//   - *WeatherService: initialized weather resolver.
func NewWeatherService(cfg *WeatherServiceConfig) *WeatherService {
	client := resty.New()
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client.SetTimeout(timeout)

	days := cfg.ForecastDays
	if days <= 0 {
		days = 14
	}

	return &WeatherService{
		client:       client,
		geocodingURL: cfg.GeocodingURL,
		forecastURL:  cfg.ForecastURL,
		forecastDays: days,
	}
}

type geoResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

type forecastResponse struct {
	Daily struct {
		Time                        []string  `json:"time"`
		TemperatureMax              []float64 `json:"temperature_2m_max"`
		TemperatureMin              []float64 `json:"temperature_2m_min"`
		WeatherCode                 []int     `json:"weathercode"`
		PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
		WindSpeedMax                []float64 `json:"windspeed_10m_max"`
		HumidityMax                 []float64 `json:"relative_humidity_2m_max"`
	} `json:"daily"`
}

// Resolve geocodes the location, fetches the daily forecast window and
// selects the entry for the requested date. When the exact date is absent
// it selects the nearest available date by absolute day distance (ties go
// to the earlier provider entry) and attaches a warning naming it.
func (s *WeatherService) Resolve(ctx context.Context, location, date string) (*domain.WeatherSnapshot, error) {
	target, err := parseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}
	requested := target.Format("2006-01-02")

	var geo geoResponse
	geoResp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"name":  location,
			"count": "1",
		}).
		SetResult(&geo).
		Get(s.geocodingURL)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	if geoResp.StatusCode() < 200 || geoResp.StatusCode() >= 300 {
		return nil, fmt.Errorf("geocoding failed with status %d", geoResp.StatusCode())
	}
	if len(geo.Results) == 0 {
		return nil, ErrLocationNotFound
	}
	place := geo.Results[0]

	var forecast forecastResponse
	fcResp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":  strconv.FormatFloat(place.Latitude, 'f', -1, 64),
			"longitude": strconv.FormatFloat(place.Longitude, 'f', -1, 64),
			"daily": strings.Join([]string{
				"temperature_2m_max",
				"temperature_2m_min",
				"weathercode",
				"precipitation_probability_max",
				"windspeed_10m_max",
				"relative_humidity_2m_max",
			}, ","),
			"timezone":         place.Timezone,
			"temperature_unit": "fahrenheit",
			"windspeed_unit":   "mph",
			"forecast_days":    strconv.Itoa(s.forecastDays),
		}).
		SetResult(&forecast).
		Get(s.forecastURL)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	if fcResp.StatusCode() < 200 || fcResp.StatusCode() >= 300 {
		return nil, fmt.Errorf("forecast failed with status %d", fcResp.StatusCode())
	}

	daily := forecast.Daily
	if len(daily.Time) == 0 {
		return nil, ErrNoForecastData
	}

	idx, warning := selectForecastDay(daily.Time, target)
	// Providers may truncate a value array relative to the date series.
	if idx >= len(daily.TemperatureMax) ||
		idx >= len(daily.WeatherCode) ||
		idx >= len(daily.HumidityMax) ||
		idx >= len(daily.WindSpeedMax) ||
		idx >= len(daily.PrecipitationProbabilityMax) {
		logger.CtxWarn(ctx, "Forecast value arrays shorter than date series at index %d", idx)
		return nil, ErrNoForecastData
	}
	if warning != "" {
		logger.CtxInfo(ctx, "Requested date %s outside forecast window, using %s",
			requested, daily.Time[idx])
	}

	snapshot := &domain.WeatherSnapshot{
		Location:      place.Name + ", " + place.Country,
		Date:          daily.Time[idx],
		RequestedDate: requested,
		Temperature:   daily.TemperatureMax[idx],
		Description:   weatherCodeDescription(daily.WeatherCode[idx]),
		Icon:          weatherCodeIcon(daily.WeatherCode[idx]),
		Details: domain.WeatherDetails{
			Humidity:  daily.HumidityMax[idx],
			WindSpeed: math.Round(daily.WindSpeedMax[idx]),
			// Daily granularity has no independent feels-like figure.
			FeelsLike:     daily.TemperatureMax[idx],
			Precipitation: daily.PrecipitationProbabilityMax[idx],
		},
		Warning: warning,
	}
	return snapshot, nil
}

// parseDate accepts yyyy-mm-dd and RFC3339 inputs.
func parseDate(date string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", date)
}

// selectForecastDay returns the index of the forecast entry for target, or
// the entry with minimum absolute day distance together with a warning
// naming the substituted date. Ties resolve to the first provider entry.
func selectForecastDay(dates []string, target time.Time) (int, string) {
	requested := target.Format("2006-01-02")

	bestIdx := 0
	bestDiff := -1
	for i, d := range dates {
		if d == requested {
			return i, ""
		}
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		diff := int(math.Abs(target.Sub(day).Hours() / 24))
		if bestDiff == -1 || diff < bestDiff {
			bestDiff = diff
			bestIdx = i
		}
	}

	substituted, _ := time.Parse("2006-01-02", dates[bestIdx])
	warning := fmt.Sprintf(
		"Weather forecast for %s is not available. Showing forecast for nearest available date: %s",
		requested, substituted.Format("January 2, 2006"))
	return bestIdx, warning
}

// weatherCodeDescriptions maps Open-Meteo categorical weather codes to
// human-readable condition descriptions.
var weatherCodeDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Foggy with rime",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Light rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Light snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Light rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Light snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with hail",
	99: "Thunderstorm with heavy hail",
}

// weatherCodeIcons maps the same codes to icon categories for the UI.
var weatherCodeIcons = map[int]string{
	0:  "sun",
	1:  "sun",
	2:  "cloud-sun",
	3:  "cloud",
	45: "cloud-fog",
	48: "cloud-fog",
	51: "cloud-drizzle",
	53: "cloud-drizzle",
	55: "cloud-drizzle",
	61: "cloud-rain",
	63: "cloud-rain",
	65: "cloud-rain",
	71: "cloud-snow",
	73: "cloud-snow",
	75: "cloud-snow",
	77: "cloud-snow",
	80: "cloud-rain",
	81: "cloud-rain",
	82: "cloud-rain",
	85: "cloud-snow",
	86: "cloud-snow",
	95: "cloud-lightning",
	96: "cloud-lightning",
	99: "cloud-lightning",
}

func weatherCodeDescription(code int) string {
	if desc, ok := weatherCodeDescriptions[code]; ok {
		return desc
	}
	return "Unknown"
}

func weatherCodeIcon(code int) string {
	if icon, ok := weatherCodeIcons[code]; ok {
		return icon
	}
	return "cloud"
}
