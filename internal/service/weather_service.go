package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/farmsight/backend/internal/domain"
	"github.com/farmsight/backend/pkg/utils"
)

// WeatherService fetches current conditions and daily forecasts by coordinates
type WeatherService struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewWeatherService creates a new weather service backed by Open-Meteo
func NewWeatherService(client *http.Client) *WeatherService {
	return &WeatherService{
		baseURL: "https://api.open-meteo.com/v1/forecast",
		client:  client,
		circuit: newBreaker("openmeteo-forecast"),
	}
}

// openMeteoResponse mirrors the fields we request from the forecast API
type openMeteoResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		Pressure    float64 `json:"surface_pressure"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time        []string  `json:"time"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		PrecipSum   []float64 `json:"precipitation_sum"`
		HumidityMax []float64 `json:"relative_humidity_2m_max"`
		WeatherCode []int     `json:"weather_code"`
	} `json:"daily"`
}

// Fetch retrieves a weather snapshot for the given coordinates. Unlike the
// dashboard path, callers receive errors as-is; substituting demo data is the
// dashboard's decision, not this service's.
func (s *WeatherService) Fetch(ctx context.Context, coords domain.Coordinates, days int) (domain.WeatherSnapshot, error) {
	days = utils.ClampInt(days, 1, 7)

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coords.Latitude))
		values.Set("longitude", fmt.Sprintf("%f", coords.Longitude))
		values.Set("current", "temperature_2m,relative_humidity_2m,surface_pressure,wind_speed_10m,weather_code")
		values.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,relative_humidity_2m_max,weather_code")
		values.Set("timezone", "auto")
		values.Set("forecast_days", strconv.Itoa(days))

		u := fmt.Sprintf("%s?%s", s.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doResilientRequest(ctx, s.client, s.circuit, defaultRetryPolicy, buildRequest)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather: request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather: failed to decode response: %w", err)
	}

	snapshot := domain.WeatherSnapshot{
		Current: domain.CurrentWeather{
			TemperatureC: payload.Current.Temperature,
			Humidity:     int(payload.Current.Humidity),
			Description:  describeWeatherCode(payload.Current.WeatherCode),
			WindSpeedKmh: payload.Current.WindSpeed,
			PressureHpa:  payload.Current.Pressure,
		},
		FetchedAt: time.Now().UTC(),
		IsMock:    false,
	}

	for i, date := range payload.Daily.Time {
		day := domain.ForecastDay{Date: date}
		if i < len(payload.Daily.TempMax) {
			day.MaxTempC = payload.Daily.TempMax[i]
		}
		if i < len(payload.Daily.TempMin) {
			day.MinTempC = payload.Daily.TempMin[i]
		}
		if i < len(payload.Daily.PrecipSum) {
			day.PrecipMM = payload.Daily.PrecipSum[i]
		}
		if i < len(payload.Daily.HumidityMax) {
			day.Humidity = int(payload.Daily.HumidityMax[i])
		}
		if i < len(payload.Daily.WeatherCode) {
			day.Description = describeWeatherCode(payload.Daily.WeatherCode[i])
		}
		snapshot.Forecast = append(snapshot.Forecast, day)
	}

	return snapshot, nil
}

// describeWeatherCode maps WMO weather codes to display strings (simplified)
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code == 1:
		return "mainly clear"
	case code == 2:
		return "partly cloudy"
	case code == 3:
		return "overcast"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snowfall"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code == 85 || code == 86:
		return "snow showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown"
	}
}

// mockForecastPattern drives the fixed demo forecast, repeated day by day
var mockForecastPattern = []domain.ForecastDay{
	{MaxTempC: 31.0, MinTempC: 22.0, Description: "partly cloudy", Humidity: 60, PrecipMM: 0},
	{MaxTempC: 32.0, MinTempC: 23.0, Description: "clear sky", Humidity: 55, PrecipMM: 0},
	{MaxTempC: 30.0, MinTempC: 22.0, Description: "rain", Humidity: 75, PrecipMM: 4.0},
	{MaxTempC: 29.0, MinTempC: 21.0, Description: "rain showers", Humidity: 80, PrecipMM: 8.5},
	{MaxTempC: 30.0, MinTempC: 22.0, Description: "partly cloudy", Humidity: 70, PrecipMM: 1.2},
	{MaxTempC: 31.0, MinTempC: 22.0, Description: "clear sky", Humidity: 58, PrecipMM: 0},
	{MaxTempC: 32.0, MinTempC: 23.0, Description: "partly cloudy", Humidity: 62, PrecipMM: 0},
}

// MockSnapshot returns the fixed demo payload shown when live data is
// unavailable. Values are deterministic apart from the forecast dates, which
// start at today.
func (s *WeatherService) MockSnapshot(days int) domain.WeatherSnapshot {
	days = utils.ClampInt(days, 1, len(mockForecastPattern))

	today := time.Now()
	forecast := make([]domain.ForecastDay, 0, days)
	for i := 0; i < days; i++ {
		day := mockForecastPattern[i%len(mockForecastPattern)]
		day.Date = today.AddDate(0, 0, i).Format("2006-01-02")
		forecast = append(forecast, day)
	}

	return domain.WeatherSnapshot{
		Current: domain.CurrentWeather{
			TemperatureC: 28.0,
			Humidity:     65,
			Description:  "partly cloudy",
			WindSpeedKmh: 12.0,
			PressureHpa:  1012,
		},
		Forecast:  forecast,
		FetchedAt: time.Now().UTC(),
		IsMock:    true,
	}
}
